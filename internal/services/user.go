package services

import (
	"context"

	"github.com/corexus/apiserver/internal/mq"
	"github.com/corexus/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context, offset, limit int) ([]types.User, int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// UserService encapsulates user use-cases. Lifecycle changes publish
// events to the configured broker; publishing is best-effort and never
// fails the request.
type UserService struct {
	repo   UserRepository
	events *mq.Publisher
}

func NewUserService(repo UserRepository, events *mq.Publisher) *UserService {
	return &UserService{repo: repo, events: events}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	_, _ = s.events.PublishUserEvent(ctx, mq.ActionUserCreated, created.ID, created.Email)
	return created, nil
}

func (s *UserService) Update(ctx context.Context, user types.User) (types.User, error) {
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	_, _ = s.events.PublishUserEvent(ctx, mq.ActionUserUpdated, updated.ID, updated.Email)
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_, _ = s.events.PublishUserEvent(ctx, mq.ActionUserDeleted, user.ID, user.Email)
	return nil
}
