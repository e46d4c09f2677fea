package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ticketdesk/ticketdesk/internal/domain/entity"
	repo "github.com/ticketdesk/ticketdesk/internal/domain/repository"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already in use")
	ErrUserHasTickets = errors.New("user is referenced by tickets")
)

// UserService owns user CRUD. Every operation raises ErrUserNotFound when
// the target is absent, including update and delete.
type UserService struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewUserService(r repo.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{Repo: r, Logger: logger}
}

type CreateUserInput struct {
	Name  string
	Email string
	Age   *int
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	u := &entity.User{Name: in.Name, Email: in.Email, Age: in.Age}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	return s.Repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateUserInput struct {
	Name  *string
	Email *string
	Age   *int
}

// Update applies a partial update, then re-fetches and returns the record.
func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*entity.User, error) {
	affected, err := s.Repo.Update(ctx, id, repo.UserUpdate{Name: in.Name, Email: in.Email, Age: in.Age})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	affected, err := s.Repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return ErrUserHasTickets
		}
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
