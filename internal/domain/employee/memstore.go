package employee

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore keeps employees in process memory with the same unique-email
// constraint as the employees table.
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]Employee
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, rows: make(map[int64]Employee)}
}

func (m *MemStore) List(ctx context.Context) ([]Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Employee, 0, len(m.rows))
	for _, emp := range m.rows {
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) Get(ctx context.Context, id int64) (Employee, error) {
	if err := ctx.Err(); err != nil {
		return Employee{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.rows[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return emp, nil
}

func (m *MemStore) Insert(ctx context.Context, fields Fields, now time.Time) (Employee, error) {
	if err := ctx.Err(); err != nil {
		return Employee{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailHeldLocked(fields.Email, 0) {
		return Employee{}, ErrEmailTaken
	}
	emp := Employee{
		ID:        m.nextID,
		Name:      fields.Name,
		Email:     fields.Email,
		Position:  fields.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.rows[emp.ID] = emp
	m.nextID++
	return emp, nil
}

func (m *MemStore) Update(ctx context.Context, id int64, fields Fields, now time.Time) (Employee, error) {
	if err := ctx.Err(); err != nil {
		return Employee{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	emp, ok := m.rows[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	if m.emailHeldLocked(fields.Email, id) {
		return Employee{}, ErrEmailTaken
	}
	emp.Name = fields.Name
	emp.Email = fields.Email
	emp.Position = fields.Position
	emp.UpdatedAt = now
	m.rows[id] = emp
	return emp, nil
}

func (m *MemStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *MemStore) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.emailHeldLocked(email, excludeID), nil
}

func (m *MemStore) emailHeldLocked(email string, excludeID int64) bool {
	for id, emp := range m.rows {
		if id != excludeID && emp.Email == email {
			return true
		}
	}
	return false
}
