package auth

import (
	"context"
	"errors"

	"github.com/corexus/apiserver/internal/store"
	"github.com/corexus/apiserver/types"
)

// UserFinder is the read-only persistence view the auth core depends on.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
}

// Resolver turns a raw bearer token into the request's acting user.
type Resolver struct {
	codec *TokenCodec
	repo  UserFinder
}

func NewResolver(codec *TokenCodec, repo UserFinder) *Resolver {
	return &Resolver{codec: codec, repo: repo}
}

// Resolve decodes the token, loads the subject, and checks that the account
// is active. Token failures and unknown subjects both surface as
// ErrUnauthorized so a caller cannot tell a forged token from an expired one
// or probe for account existence. A disabled account yields
// ErrInactiveAccount. Every failure is terminal for the request.
func (r *Resolver) Resolve(ctx context.Context, tokenString string) (types.User, error) {
	subject, err := r.codec.Decode(tokenString)
	if err != nil {
		return types.User{}, ErrUnauthorized
	}

	user, err := r.repo.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUnauthorized
		}
		return types.User{}, err
	}

	if !user.IsActive {
		return types.User{}, ErrInactiveAccount
	}
	return user, nil
}
