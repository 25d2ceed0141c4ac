package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Mehdichaaki/dashbord/internal/events"
	"github.com/Mehdichaaki/dashbord/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email address is already in use")
)

type Service interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *service) List(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// Create stores a new user whose password is already hashed. The email is
// looked up first; the unique index catches concurrent duplicates.
func (s *service) Create(ctx context.Context, user *User) (*User, error) {
	existing, err := s.repo.FindByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewUserEvent(events.UserRegistered, created.ID))
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Grade = strings.TrimSpace(req.Grade)
	req.Year = strings.TrimSpace(req.Year)

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user := &User{
		ID:          id,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Grade:       req.Grade,
		Year:        req.Year,
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewUserEvent(events.UserUpdated, id))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.NewUserEvent(events.UserDeleted, id))
	return nil
}

func (s *service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "error", err)
	}
}
