// Package store provides the repository holding statements and suspense
// entries, optionally backed by a YAML snapshot file.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/fileutils"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"gopkg.in/yaml.v3"
)

const snapshotVersion = 1

// snapshot is the on-disk layout of the data file.
type snapshot struct {
	Version    int                     `yaml:"version"`
	Statements []*models.Statement     `yaml:"statements"`
	Suspense   []*models.SuspenseEntry `yaml:"suspense"`
}

type pairKey struct {
	statementID   string
	transactionID string
}

// MemoryStore keeps statements and suspense entries in memory. Values are
// copied on the way in and out so callers never share memory with the store.
// Suspense creation checks (statement, transaction) uniqueness and inserts
// under one lock.
type MemoryStore struct {
	mu sync.RWMutex

	statements     map[string]*models.Statement
	statementOrder []string
	entries        map[string]*models.SuspenseEntry
	entryOrder     []string
	pairs          map[pairKey]string

	dataFile string
	autoSave bool
	logger   logging.Logger
}

// NewMemoryStore creates an empty store that is never written to disk.
func NewMemoryStore(logger logging.Logger) *MemoryStore {
	return &MemoryStore{
		statements: make(map[string]*models.Statement),
		entries:    make(map[string]*models.SuspenseEntry),
		pairs:      make(map[pairKey]string),
		logger:     logging.OrDefault(logger),
	}
}

// Open creates a store backed by dataFile, loading it when it exists.
// With autoSave every mutation rewrites the file; otherwise call Flush.
func Open(dataFile string, autoSave bool, logger logging.Logger) (*MemoryStore, error) {
	s := NewMemoryStore(logger)
	if dataFile == "" {
		return s, nil
	}

	path, err := fileutils.ExpandHome(dataFile)
	if err != nil {
		return nil, err
	}
	s.dataFile = path
	s.autoSave = autoSave

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// DataFile returns the snapshot path, empty for a memory-only store.
func (s *MemoryStore) DataFile() string {
	return s.dataFile
}

func (s *MemoryStore) load() error {
	data, err := os.ReadFile(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("Data file not found, starting empty", logging.F(logging.FieldFile, s.dataFile))
			return nil
		}
		return fmt.Errorf("error reading data file: %w", err)
	}

	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return &apperror.InvalidFormatError{
			FilePath:       s.dataFile,
			ExpectedFormat: "bankstmt YAML snapshot",
			Msg:            "cannot decode data file",
			Err:            err,
		}
	}
	if snap.Version > snapshotVersion {
		return fmt.Errorf("data file version %d is newer than supported version %d", snap.Version, snapshotVersion)
	}

	for _, st := range snap.Statements {
		if st == nil || st.ID == "" {
			continue
		}
		s.putStatement(st)
	}
	for _, e := range snap.Suspense {
		if e == nil || e.ID == "" {
			continue
		}
		key := pairKey{e.StatementID, e.TransactionID}
		if existing, ok := s.pairs[key]; ok && existing != e.ID {
			return fmt.Errorf("data file holds two suspense entries for statement '%s' transaction '%s'",
				e.StatementID, e.TransactionID)
		}
		s.putEntry(e)
	}

	s.logger.Debug("Loaded data file",
		logging.F(logging.FieldFile, s.dataFile),
		logging.F("statements", len(s.statements)),
		logging.F("suspense_entries", len(s.entries)))
	return nil
}

func (s *MemoryStore) putStatement(st *models.Statement) {
	if _, ok := s.statements[st.ID]; !ok {
		s.statementOrder = append(s.statementOrder, st.ID)
	}
	s.statements[st.ID] = st
}

func (s *MemoryStore) putEntry(e *models.SuspenseEntry) {
	if _, ok := s.entries[e.ID]; !ok {
		s.entryOrder = append(s.entryOrder, e.ID)
	}
	s.entries[e.ID] = e
	s.pairs[pairKey{e.StatementID, e.TransactionID}] = e.ID
}

// Flush writes the snapshot file. It is a no-op for a memory-only store.
func (s *MemoryStore) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writeLocked()
}

func (s *MemoryStore) persistLocked() error {
	if !s.autoSave {
		return nil
	}
	return s.writeLocked()
}

// writeLocked writes to a temporary file in the same directory and renames
// it over the data file.
func (s *MemoryStore) writeLocked() error {
	if s.dataFile == "" {
		return nil
	}

	snap := snapshot{Version: snapshotVersion}
	for _, id := range s.statementOrder {
		snap.Statements = append(snap.Statements, s.statements[id])
	}
	for _, id := range s.entryOrder {
		snap.Suspense = append(snap.Suspense, s.entries[id])
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("error marshaling data file: %w", err)
	}

	dir := filepath.Dir(s.dataFile)
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.dataFile)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary data file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("error writing data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error writing data file: %w", err)
	}
	if err := os.Chmod(tmpName, models.PermissionDataFile); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error setting data file permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.dataFile); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error replacing data file: %w", err)
	}

	s.logger.Debug("Saved data file",
		logging.F(logging.FieldFile, s.dataFile),
		logging.F("statements", len(snap.Statements)),
		logging.F("suspense_entries", len(snap.Suspense)))
	return nil
}

// SaveStatement inserts or replaces a statement.
func (s *MemoryStore) SaveStatement(ctx context.Context, st *models.Statement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st == nil || st.ID == "" {
		return &apperror.ValidationError{Field: "statement", Reason: "id is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.putStatement(st.Clone())
	return s.persistLocked()
}

// GetStatement returns a copy of the statement with the given id.
func (s *MemoryStore) GetStatement(ctx context.Context, id string) (*models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statements[id]
	if !ok {
		return nil, &apperror.NotFoundError{Kind: "statement", ID: id}
	}
	return st.Clone(), nil
}

// ListStatements returns copies of all statements in insertion order.
func (s *MemoryStore) ListStatements(ctx context.Context) ([]*models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Statement, 0, len(s.statementOrder))
	for _, id := range s.statementOrder {
		out = append(out, s.statements[id].Clone())
	}
	return out, nil
}

// CreateSuspense inserts a new entry. A second entry for the same
// (statement, transaction) pair fails with *apperror.ConflictError.
func (s *MemoryStore) CreateSuspense(ctx context.Context, e *models.SuspenseEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e == nil || e.ID == "" {
		return &apperror.ValidationError{Field: "suspense entry", Reason: "id is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{e.StatementID, e.TransactionID}
	if existing, ok := s.pairs[key]; ok {
		return &apperror.ConflictError{
			StatementID:   e.StatementID,
			TransactionID: e.TransactionID,
			ExistingID:    existing,
		}
	}
	if _, ok := s.entries[e.ID]; ok {
		return fmt.Errorf("suspense entry id '%s' already in use: %w", e.ID, apperror.ErrConflict)
	}

	s.putEntry(e.Clone())
	if err := s.persistLocked(); err != nil {
		s.removeEntry(e.ID)
		return err
	}
	return nil
}

func (s *MemoryStore) removeEntry(id string) {
	e, ok := s.entries[id]
	if !ok {
		return
	}
	delete(s.entries, id)
	delete(s.pairs, pairKey{e.StatementID, e.TransactionID})
	for i, other := range s.entryOrder {
		if other == id {
			s.entryOrder = append(s.entryOrder[:i], s.entryOrder[i+1:]...)
			break
		}
	}
}

// GetSuspense returns a copy of the entry with the given id.
func (s *MemoryStore) GetSuspense(ctx context.Context, id string) (*models.SuspenseEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, &apperror.NotFoundError{Kind: "suspense entry", ID: id}
	}
	return e.Clone(), nil
}

// FindSuspense returns the entry for a (statement, transaction) pair.
func (s *MemoryStore) FindSuspense(ctx context.Context, statementID, transactionID string) (*models.SuspenseEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pairs[pairKey{statementID, transactionID}]
	if !ok {
		return nil, &apperror.NotFoundError{Kind: "suspense entry", ID: statementID + "/" + transactionID}
	}
	return s.entries[id].Clone(), nil
}

// UpdateSuspense applies fn to a copy of the entry and stores the result
// when fn succeeds. The pair and id of the entry cannot change.
func (s *MemoryStore) UpdateSuspense(ctx context.Context, id string, fn func(*models.SuspenseEntry) error) (*models.SuspenseEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.entries[id]
	if !ok {
		return nil, &apperror.NotFoundError{Kind: "suspense entry", ID: id}
	}

	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.StatementID = current.StatementID
	updated.TransactionID = current.TransactionID

	s.entries[id] = updated
	if err := s.persistLocked(); err != nil {
		s.entries[id] = current
		return nil, err
	}
	return updated.Clone(), nil
}

// ListSuspense returns copies of all entries in creation order.
func (s *MemoryStore) ListSuspense(ctx context.Context) ([]*models.SuspenseEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.SuspenseEntry, 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		out = append(out, s.entries[id].Clone())
	}
	return out, nil
}
