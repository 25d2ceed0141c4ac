package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Email       string    `bun:"email,unique,notnull" json:"email"`
	Password    string    `bun:"password,notnull" json:"-"` // bcrypt hash, never exposed
	PhoneNumber string    `bun:"phone_number,notnull" json:"phoneNumber"`
	Grade       string    `bun:"grade,notnull" json:"grade"`
	Year        string    `bun:"year,notnull" json:"year"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updatedAt"`
}

// UpdateRequest holds the mutable fields. Email and password are not
// accepted here; an email in the body is ignored.
type UpdateRequest struct {
	Name        string `json:"name" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Grade       string `json:"grade" validate:"required"`
	Year        string `json:"year" validate:"required"`
}
