package store

import (
	"context"

	"fjacquet/bankstmt/internal/models"
)

// MockStore wraps a MemoryStore and fails selected operations for testing
// error paths of the services.
type MockStore struct {
	*MemoryStore

	SaveStatementError  error
	GetStatementError   error
	CreateSuspenseError error
	UpdateSuspenseError error
}

// NewMockStore creates a MockStore over an empty memory store.
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: NewMemoryStore(nil)}
}

// SaveStatement returns SaveStatementError when set.
func (m *MockStore) SaveStatement(ctx context.Context, st *models.Statement) error {
	if m.SaveStatementError != nil {
		return m.SaveStatementError
	}
	return m.MemoryStore.SaveStatement(ctx, st)
}

// GetStatement returns GetStatementError when set.
func (m *MockStore) GetStatement(ctx context.Context, id string) (*models.Statement, error) {
	if m.GetStatementError != nil {
		return nil, m.GetStatementError
	}
	return m.MemoryStore.GetStatement(ctx, id)
}

// CreateSuspense returns CreateSuspenseError when set.
func (m *MockStore) CreateSuspense(ctx context.Context, e *models.SuspenseEntry) error {
	if m.CreateSuspenseError != nil {
		return m.CreateSuspenseError
	}
	return m.MemoryStore.CreateSuspense(ctx, e)
}

// UpdateSuspense returns UpdateSuspenseError when set.
func (m *MockStore) UpdateSuspense(ctx context.Context, id string, fn func(*models.SuspenseEntry) error) (*models.SuspenseEntry, error) {
	if m.UpdateSuspenseError != nil {
		return nil, m.UpdateSuspenseError
	}
	return m.MemoryStore.UpdateSuspense(ctx, id, fn)
}
