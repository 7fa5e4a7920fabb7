package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Minute)

	token, err := codec.Encode("alice@example.com")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact three-part token, got %q", token)
	}

	subject, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if subject != "alice@example.com" {
		t.Fatalf("expected subject %q, got %q", "alice@example.com", subject)
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	codec := NewTokenCodec("test-secret", 0)
	if codec.TTL() != DefaultTokenTTL {
		t.Fatalf("expected default TTL %v, got %v", DefaultTokenTTL, codec.TTL())
	}
}

func TestDecodeExpiredToken(t *testing.T) {
	codec := &TokenCodec{secret: []byte("test-secret"), ttl: -time.Second}

	token, err := codec.Encode("alice@example.com")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := codec.Decode(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestDecodeMutatedSignature(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Minute)

	token, err := codec.Encode("alice@example.com")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	mutated := []byte(token)
	last := len(mutated) - 1
	if mutated[last] == 'A' {
		mutated[last] = 'B'
	} else {
		mutated[last] = 'A'
	}

	if _, err := codec.Decode(string(mutated)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeWrongSecret(t *testing.T) {
	token, err := NewTokenCodec("one-secret", time.Minute).Encode("alice@example.com")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := NewTokenCodec("other-secret", time.Minute).Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeMalformedToken(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Minute)
	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := codec.Decode(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestDecodeEmptySubject(t *testing.T) {
	codec := NewTokenCodec("test-secret", time.Minute)

	token, err := codec.Encode("")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := codec.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
