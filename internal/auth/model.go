package auth

import (
	"github.com/Mehdichaaki/dashbord/internal/user"

	"github.com/google/uuid"
)

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email_address"`
	Password    string `json:"password" validate:"required,password"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Grade       string `json:"grade" validate:"required"`
	Year        string `json:"year" validate:"required"`
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

// SessionUser is the identity returned with a token.
type SessionUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
