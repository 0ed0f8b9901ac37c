package suspense

import (
	"context"
	"fmt"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"github.com/shopspring/decimal"
)

// BulkCreateRequest creates entries for several transactions of one
// statement. TransactionIDs and Balances are parallel; ClientNames and
// Descriptions are either empty or parallel too.
type BulkCreateRequest struct {
	StatementID    string
	TransactionIDs []string
	Balances       []decimal.Decimal
	ClientNames    []string
	Descriptions   []string
	Actor          models.Identity
}

// BulkItemError describes one rejected item.
type BulkItemError struct {
	Index         int    `json:"index" yaml:"index"`
	TransactionID string `json:"transaction_id" yaml:"transaction_id"`
	Reason        string `json:"reason" yaml:"reason"`
	Err           error  `json:"-" yaml:"-"`
}

func (e BulkItemError) Error() string {
	return fmt.Sprintf("item %d (%s): %s", e.Index, e.TransactionID, e.Reason)
}

func (e BulkItemError) Unwrap() error { return e.Err }

// BulkResult lists created entries in request order and the rejected items.
type BulkResult struct {
	Created []*models.SuspenseEntry `json:"created" yaml:"created"`
	Errors  []BulkItemError         `json:"errors" yaml:"errors"`
}

// BulkCreate creates one entry per transaction id. A bad request shape, an
// invalid actor or an unknown statement fails the whole call; otherwise each
// item succeeds or fails on its own.
func (s *Service) BulkCreate(ctx context.Context, req BulkCreateRequest) (*BulkResult, error) {
	if err := req.Actor.Validate(); err != nil {
		return nil, err
	}
	n := len(req.TransactionIDs)
	if n == 0 {
		return nil, &apperror.ValidationError{Field: "transaction_ids", Reason: "at least one transaction id is required"}
	}
	if len(req.Balances) != n {
		return nil, &apperror.ValidationError{
			Field:  "balances",
			Reason: fmt.Sprintf("got %d balances for %d transaction ids", len(req.Balances), n),
		}
	}
	if len(req.ClientNames) != 0 && len(req.ClientNames) != n {
		return nil, &apperror.ValidationError{
			Field:  "client_names",
			Reason: fmt.Sprintf("got %d client names for %d transaction ids", len(req.ClientNames), n),
		}
	}
	if len(req.Descriptions) != 0 && len(req.Descriptions) != n {
		return nil, &apperror.ValidationError{
			Field:  "descriptions",
			Reason: fmt.Sprintf("got %d descriptions for %d transaction ids", len(req.Descriptions), n),
		}
	}
	if err := models.ValidateUUID("statement_id", req.StatementID); err != nil {
		return nil, err
	}
	st, err := s.statements.GetStatement(ctx, req.StatementID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for i, txID := range req.TransactionIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		item := CreateRequest{
			StatementID:   req.StatementID,
			TransactionID: txID,
			Balance:       &req.Balances[i],
			Actor:         req.Actor,
		}
		if len(req.ClientNames) > 0 {
			item.ClientName = req.ClientNames[i]
		}
		if len(req.Descriptions) > 0 {
			item.Description = req.Descriptions[i]
		}

		entry, err := s.createFor(ctx, st, item)
		if err != nil {
			result.Errors = append(result.Errors, BulkItemError{
				Index:         i,
				TransactionID: txID,
				Reason:        apperror.Reason(err),
				Err:           err,
			})
			continue
		}
		result.Created = append(result.Created, entry)
	}

	s.logger.Info("Bulk suspense creation finished",
		logging.F(logging.FieldStatementID, req.StatementID),
		logging.F("created", len(result.Created)),
		logging.F("failed", len(result.Errors)),
		logging.F(logging.FieldUser, req.Actor.UserID))
	return result, nil
}
