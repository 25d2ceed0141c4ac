package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mehdichaaki/dashbord/internal/user"
	"github.com/Mehdichaaki/dashbord/internal/validation"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	users  user.Service
	tokens *TokenIssuer
}

func NewService(users user.Service, tokens *TokenIssuer) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// Register validates the request, hashes the password and stores the user.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Grade = strings.TrimSpace(req.Grade)
	req.Year = strings.TrimSpace(req.Year)

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, &user.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hashed,
		PhoneNumber: req.PhoneNumber,
		Grade:       req.Grade,
		Year:        req.Year,
	})
}

// Login checks the credentials and issues a session token. Unknown email
// and wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(u.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token: token,
		User: SessionUser{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
		},
	}, nil
}
