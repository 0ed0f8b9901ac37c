// Package counterparty infers the client name of a statement transaction
// for the suspense ledger.
package counterparty

import (
	"context"

	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
)

// Strategy resolves a client name from a transaction by one approach.
type Strategy interface {
	// Resolve returns the client name and whether one was found. An error
	// is reported only for failures of an external service.
	Resolve(ctx context.Context, tx models.Transaction) (string, bool, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}

// Resolver runs strategies in order and returns the first name found.
type Resolver struct {
	strategies []Strategy
	logger     logging.Logger
}

// NewResolver creates a Resolver over the given strategies.
func NewResolver(logger logging.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, logger: logging.OrDefault(logger)}
}

// NewDefaultResolver resolves from the extracted beneficiary and remitter,
// then from the narration text, then from the AI client when one is given.
func NewDefaultResolver(aiClient AIClient, logger logging.Logger) *Resolver {
	logger = logging.OrDefault(logger)
	strategies := []Strategy{FieldStrategy{}, NarrationStrategy{}}
	if aiClient != nil {
		strategies = append(strategies, NewAIStrategy(aiClient, logger))
	}
	return NewResolver(logger, strategies...)
}

// Resolve returns the first client name found. Strategy errors are logged
// and treated as "not found".
func (r *Resolver) Resolve(ctx context.Context, tx models.Transaction) (string, bool) {
	for _, s := range r.strategies {
		name, ok, err := s.Resolve(ctx, tx)
		if err != nil {
			r.logger.WithError(err).Warn("Counterparty strategy failed",
				logging.F("strategy", s.Name()),
				logging.F(logging.FieldTransactionID, tx.ID))
			continue
		}
		if ok {
			r.logger.Debug("Counterparty resolved",
				logging.F("strategy", s.Name()),
				logging.F(logging.FieldTransactionID, tx.ID))
			return name, true
		}
	}
	return "", false
}
