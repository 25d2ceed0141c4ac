package gradebook_test

import (
	"context"
	"sort"
	"sync"

	"github.com/Mehdichaaki/dashbord/internal/gradebook"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]gradebook.Entry
	// createErr, when set, is returned by Create instead of storing.
	createErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{entries: make(map[uuid.UUID]gradebook.Entry)}
}

func (m *memoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]gradebook.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []gradebook.Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

func (m *memoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*gradebook.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return nil, gradebook.ErrEntryNotFound
	}
	return &e, nil
}

func (m *memoryRepository) Create(ctx context.Context, entry *gradebook.Entry) (*gradebook.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	entry.ID = uuid.New()
	m.entries[entry.ID] = *entry
	return entry, nil
}

func (m *memoryRepository) Update(ctx context.Context, entry *gradebook.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entry.ID]
	if !ok || e.UserID != entry.UserID {
		return gradebook.ErrEntryNotFound
	}
	m.entries[entry.ID] = *entry
	return nil
}

func (m *memoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok || e.UserID != userID {
		return gradebook.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}
