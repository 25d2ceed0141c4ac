package gradebook

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Mehdichaaki/dashbord/internal/events"
	"github.com/Mehdichaaki/dashbord/internal/metrics"
	"github.com/Mehdichaaki/dashbord/internal/user"
	"github.com/Mehdichaaki/dashbord/internal/validation"

	"github.com/google/uuid"
)

var ErrEntryNotFound = errors.New("grade entry not found")

// UserFinder confirms the owning user exists.
type UserFinder interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service struct {
	repo      Repository
	users     UserFinder
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(repo Repository, users UserFinder, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// List returns the user's entries; never nil.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req EntryRequest) (*Entry, error) {
	req = Normalize(req)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	entry := &Entry{
		UserID:     userID,
		Subject:    req.Subject,
		Grade:      req.Grade,
		Attendance: *req.Attendance,
		Comments:   req.Comments,
	}
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.recorded(ctx, created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req EntryRequest) (*Entry, error) {
	req = Normalize(req)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:         id,
		UserID:     userID,
		Subject:    req.Subject,
		Grade:      req.Grade,
		Attendance: *req.Attendance,
		Comments:   req.Comments,
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.recorded(ctx, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) recorded(ctx context.Context, entry *Entry) {
	s.metrics.RecordGradeEntry(ctx)
	event := events.NewEntryEvent(entry.UserID, entry.ID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "type", event.Type, "error", err)
	}
}

// Normalize applies the write-time rules: subject trimmed, grade trimmed
// and upper-cased, comments lower-cased.
func Normalize(req EntryRequest) EntryRequest {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Grade = strings.ToUpper(strings.TrimSpace(req.Grade))
	req.Comments = strings.ToLower(req.Comments)
	return req
}
