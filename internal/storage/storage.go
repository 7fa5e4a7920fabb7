package storage

import (
	"context"
	"fmt"
	"io"
)

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// AvatarStore keeps user avatar images in an object storage backend,
// one object per user.
type AvatarStore struct {
	backend ObjectStorage
}

// NewAvatarStore constructs an AvatarStore for the provided backend.
func NewAvatarStore(backend ObjectStorage) *AvatarStore {
	return &AvatarStore{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *AvatarStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads the avatar for the given user, replacing any existing one.
func (s *AvatarStore) Put(ctx context.Context, userID int, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, avatarKey(userID), r, size, contentType)
}

// Get opens a reader for the given user's avatar.
func (s *AvatarStore) Get(ctx context.Context, userID int) (io.ReadCloser, error) {
	return s.backend.Get(ctx, avatarKey(userID))
}

// Delete removes the given user's avatar.
func (s *AvatarStore) Delete(ctx context.Context, userID int) error {
	return s.backend.Delete(ctx, avatarKey(userID))
}

// Bucket returns the configured bucket name.
func (s *AvatarStore) Bucket() string {
	return s.backend.Bucket()
}

func avatarKey(userID int) string {
	return fmt.Sprintf("avatars/%d", userID)
}
