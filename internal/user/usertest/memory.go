// Package usertest provides an in-memory user.Repository for handler and
// service tests that do not need PostgreSQL.
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/user"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[uuid.UUID]user.User)}
}

func (m *MemoryRepository) List(ctx context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		u.Password = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *MemoryRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, user.ErrDuplicateEmail
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = *u
	return u, nil
}

func (m *MemoryRepository) Update(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	stored, ok := m.users[u.ID]
	if !ok {
		return user.ErrUserNotFound
	}
	stored.Name = u.Name
	stored.PhoneNumber = u.PhoneNumber
	stored.Grade = u.Grade
	stored.Year = u.Year
	stored.UpdatedAt = time.Now()
	m.users[u.ID] = stored
	return nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// Len returns the number of stored users.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}
