package statement

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
)

// Repository persists statements.
type Repository interface {
	SaveStatement(ctx context.Context, st *models.Statement) error
	GetStatement(ctx context.Context, id string) (*models.Statement, error)
	ListStatements(ctx context.Context) ([]*models.Statement, error)
}

// Service ingests statements and answers statement queries.
type Service struct {
	repo      Repository
	assembler *Assembler
	logger    logging.Logger
}

// NewService creates a statement service.
func NewService(repo Repository, assembler *Assembler, logger logging.Logger) *Service {
	return &Service{
		repo:      repo,
		assembler: assembler,
		logger:    logging.OrDefault(logger),
	}
}

// Ingest extracts and persists one statement. Extraction problems are
// recorded on the statement; only invalid requests and storage failures are
// returned as errors.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*models.Statement, error) {
	if err := req.Uploader.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.FileName) == "" {
		req.FileName = "statement"
	} else {
		req.FileName = filepath.Base(req.FileName)
	}

	s.logger.Info("Ingesting statement",
		logging.F(logging.FieldFile, req.FileName),
		logging.F(logging.FieldUser, req.Uploader.UserID),
		logging.F("rows", len(req.Grid)))

	st := s.assembler.Assemble(req)
	if err := s.repo.SaveStatement(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save statement '%s': %w", st.ID, err)
	}

	fields := []logging.Field{
		logging.F(logging.FieldStatementID, st.ID),
		logging.F(logging.FieldStatus, string(st.Status)),
		logging.F(logging.FieldBank, st.Metadata.BankName),
		logging.F(logging.FieldCount, len(st.Transactions)),
	}
	if st.Status == models.StatusFailed || st.Status == models.StatusPartial {
		s.logger.Warn("Statement ingested with processing errors",
			append(fields, logging.F("processing_errors", len(st.Errors)))...)
	} else {
		s.logger.Info("Statement ingested", fields...)
	}
	return st, nil
}

// Get returns the statement with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.Statement, error) {
	if err := models.ValidateUUID("statement_id", id); err != nil {
		return nil, err
	}
	return s.repo.GetStatement(ctx, id)
}

// List returns one page of the statements matching filter, in ingestion
// order, along with the total number of matches.
func (s *Service) List(ctx context.Context, filter models.StatementFilter, page models.Page) ([]*models.Statement, int, error) {
	all, err := s.repo.ListStatements(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list statements: %w", err)
	}

	var matched []*models.Statement
	for _, st := range all {
		if filter.Matches(st) {
			matched = append(matched, st)
		}
	}

	start, end := page.Bounds(len(matched))
	return matched[start:end], len(matched), nil
}

// Transactions returns the transactions of one statement matching filter,
// in source row order.
func (s *Service) Transactions(ctx context.Context, statementID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	st, err := s.Get(ctx, statementID)
	if err != nil {
		return nil, err
	}

	var out []models.Transaction
	for _, tx := range st.Transactions {
		if filter.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}
