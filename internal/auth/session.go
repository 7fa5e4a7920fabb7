package auth

import (
	"context"
	"errors"

	"github.com/corexus/apiserver/internal/store"
)

// TokenTypeBearer is the token type tag returned with every session.
const TokenTypeBearer = "bearer"

// Session is the result of a successful login.
type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Issuer verifies credentials and mints sessions.
type Issuer struct {
	codec *TokenCodec
	repo  UserFinder
}

func NewIssuer(codec *TokenCodec, repo UserFinder) *Issuer {
	return &Issuer{codec: codec, repo: repo}
}

// Login verifies the email/password pair and returns a bearer session.
// Unknown email and wrong password both fail with ErrInvalidCredentials;
// for an unknown email the password is still verified against a placeholder
// hash so the two failures take comparable time.
func (i *Issuer) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := i.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			VerifyPassword(password, placeholderHash)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	token, err := i.codec.Encode(user.Email)
	if err != nil {
		return Session{}, err
	}

	return Session{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
	}, nil
}
