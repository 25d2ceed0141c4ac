package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/metrics"
	"github.com/Mehdichaaki/dashbord/internal/user"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Entry, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Entry, error)
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	start := time.Now()
	entries := make([]Entry, 0)
	err := r.db.NewSelect().
		Model(&entries).
		Where("user_id = ?", userID).
		OrderExpr("created_at ASC, subject ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "grade_entries", time.Since(start), err)

	return entries, err
}

func (r *repository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Entry, error) {
	start := time.Now()
	entry := new(Entry)
	err := r.db.NewSelect().
		Model(entry).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "grade_entries", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *repository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	start := time.Now()
	_, err := r.db.NewInsert().Model(entry).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "grade_entries", time.Since(start), err)

	if err != nil {
		// the user was deleted after the service looked it up
		if isForeignKeyViolation(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (r *repository) Update(ctx context.Context, entry *Entry) error {
	entry.UpdatedAt = time.Now()

	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(entry).
		Column("subject", "grade", "attendance", "comments", "updated_at").
		Where("id = ?", entry.ID).
		Where("user_id = ?", entry.UserID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "grade_entries", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	start := time.Now()
	result, err := r.db.NewDelete().
		Model((*Entry)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "grade_entries", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// isForeignKeyViolation reports SQLSTATE 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23503"
}
