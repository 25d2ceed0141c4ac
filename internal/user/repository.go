package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/metrics"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
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

// List returns every user without the password column, ordered by name.
func (r *repository) List(ctx context.Context) ([]User, error) {
	start := time.Now()
	users := make([]User, 0)
	err := r.db.NewSelect().
		Model(&users).
		ExcludeColumn("password").
		OrderExpr("name ASC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	return users, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	start := time.Now()
	user := new(User)
	err := r.db.NewSelect().
		Model(user).
		Where("email = ?", email).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "users", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) Create(ctx context.Context, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	start := time.Now()
	_, err := r.db.NewInsert().Model(user).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "users", time.Since(start), err)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now()

	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(user).
		Column("name", "phone_number", "grade", "year", "updated_at").
		WherePK().
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "users", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	user := &User{ID: id}
	result, err := r.db.NewDelete().Model(user).WherePK().Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "delete", "users", time.Since(start), err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// isUniqueViolation reports SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
