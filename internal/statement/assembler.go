// Package statement turns a raw grid into a persisted Statement and serves
// statement queries.
package statement

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/statementparser"
)

// IngestRequest carries one uploaded statement.
type IngestRequest struct {
	Grid         grid.Grid
	Uploader     models.Identity
	FileName     string
	FileMetadata map[string]string
	Tags         []string
}

// Assembler composes parser output into a Statement.
type Assembler struct {
	parser *statementparser.Parser
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

// NewAssembler creates an Assembler over parser.
func NewAssembler(parser *statementparser.Parser, logger logging.Logger) *Assembler {
	return &Assembler{
		parser: parser,
		logger: logging.OrDefault(logger),
		now:    time.Now,
		newID:  models.NewID,
	}
}

// Assemble runs the extractors and decides the processing status:
// FAILED without a header row or without any dated transaction, PARTIAL when
// ledger rows were dropped for an unparseable date, COMPLETED otherwise.
// The raw grid is deep-copied into the statement.
func (a *Assembler) Assemble(req IngestRequest) *models.Statement {
	st := &models.Statement{
		ID:         a.newID(),
		FileName:   req.FileName,
		UploadedBy: req.Uploader,
		UploadedAt: a.now().UTC(),
		RawGrid:    req.Grid.Clone(),
		Status:     models.StatusProcessing,
		Tags:       normalizeTags(req.Tags),
	}
	if len(req.FileMetadata) > 0 {
		st.FileMetadata = make(map[string]string, len(req.FileMetadata))
		for k, v := range req.FileMetadata {
			st.FileMetadata[k] = v
		}
	}

	res := a.parser.Parse(req.Grid)
	st.Metadata = res.Metadata
	st.Transactions = res.Transactions.Transactions
	st.Summary = res.Summary

	switch {
	case !res.Transactions.HasHeader():
		st.Status = models.StatusFailed
		st.Errors = append(st.Errors, models.ProcessingError{
			Row:     0,
			Message: "no transaction header row found",
		})
	case len(st.Transactions) == 0:
		st.Status = models.StatusFailed
		st.Errors = append(st.Errors, models.ProcessingError{
			Row:     res.Transactions.HeaderRow + 1,
			Message: "header row found but no dated transactions follow it",
		})
	default:
		st.Status = models.StatusCompleted
	}

	dateCol := res.Transactions.Columns.Date
	for _, idx := range res.Transactions.DroppedRows {
		value := ""
		if idx >= 0 && idx < len(req.Grid) {
			value = req.Grid[idx].Cell(dateCol).String()
		}
		st.Errors = append(st.Errors, models.ProcessingError{
			Row:     idx + 1,
			Message: fmt.Sprintf("unparseable transaction date %q", value),
		})
	}
	if st.Status == models.StatusCompleted && len(res.Transactions.DroppedRows) > 0 {
		st.Status = models.StatusPartial
	}

	a.logger.Debug("Assembled statement",
		logging.F(logging.FieldStatementID, st.ID),
		logging.F(logging.FieldStatus, string(st.Status)),
		logging.F(logging.FieldCount, len(st.Transactions)),
		logging.F("processing_errors", len(st.Errors)))
	return st
}

func normalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}
