package gradebook

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is one subject row of a student's grade table.
type Entry struct {
	bun.BaseModel `bun:"table:grade_entries,alias:ge"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID     uuid.UUID `bun:"user_id,type:uuid,notnull" json:"userId"`
	Subject    string    `bun:"subject,notnull" json:"subject"`
	Grade      string    `bun:"grade,notnull" json:"grade"`
	Attendance int       `bun:"attendance,notnull" json:"attendance"`
	Comments   string    `bun:"comments,notnull,default:''" json:"comments"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

var (
	_ bun.BeforeCreateTableHook = (*Entry)(nil)
	_ bun.AfterCreateTableHook  = (*Entry)(nil)
)

// Entries go away with their user.
func (*Entry) BeforeCreateTable(ctx context.Context, query *bun.CreateTableQuery) error {
	query.ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`)
	return nil
}

func (*Entry) AfterCreateTable(ctx context.Context, query *bun.CreateTableQuery) error {
	_, err := query.DB().NewCreateIndex().
		Model((*Entry)(nil)).
		Index("grade_entries_user_id_idx").
		Column("user_id").
		IfNotExists().
		Exec(ctx)
	return err
}

// EntryRequest is the body for creating or replacing an entry. Attendance
// is a pointer so that a missing value is told apart from 0.
type EntryRequest struct {
	Subject    string `json:"subject" validate:"required"`
	Grade      string `json:"grade" validate:"required,letter_grade"`
	Attendance *int   `json:"attendance" validate:"required,min=0,max=100"`
	Comments   string `json:"comments" validate:"max=500"`
}
