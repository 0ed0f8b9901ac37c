package suspense

import (
	"context"
	"errors"
	"testing"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkCreate_PartialFailure(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.BulkCreate(context.Background(), BulkCreateRequest{
		StatementID:    f.statementID,
		TransactionIDs: []string{"txn-0001", "txn-0099", "txn-0002"},
		Balances:       []decimal.Decimal{decimal.NewFromInt(100), decimal.NewFromInt(200), decimal.NewFromInt(300)},
		Actor:          operator,
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 2)
	require.Len(t, res.Errors, 1)

	assert.Equal(t, "txn-0001", res.Created[0].TransactionID)
	assert.Equal(t, "txn-0002", res.Created[1].TransactionID)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, "txn-0099", res.Errors[0].TransactionID)
	assert.Equal(t, "transaction 'txn-0099' not found", res.Errors[0].Reason)
	assert.True(t, errors.Is(res.Errors[0], apperror.ErrNotFound))
	assert.True(t, f.logger.HasEntry("INFO", "Bulk suspense creation finished"))
}

func TestBulkCreate_ItemErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.create(t, "txn-0001", "10")

	res, err := f.svc.BulkCreate(context.Background(), BulkCreateRequest{
		StatementID:    f.statementID,
		TransactionIDs: []string{"txn-0001", "bogus", "txn-0003"},
		Balances:       []decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(-1)},
		ClientNames:    []string{"", "", "Someone"},
		Actor:          operator,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	require.Len(t, res.Errors, 3)
	assert.True(t, errors.Is(res.Errors[0], apperror.ErrConflict))
	assert.True(t, errors.Is(res.Errors[1], apperror.ErrInvalidInput))
	assert.True(t, errors.Is(res.Errors[2], apperror.ErrInvalidInput))
}

func TestBulkCreate_WholeBatchFailures(t *testing.T) {
	f := newFixture(t, nil)
	one := []decimal.Decimal{decimal.NewFromInt(1)}

	tests := []struct {
		name   string
		req    BulkCreateRequest
		target error
	}{
		{"length mismatch", BulkCreateRequest{StatementID: f.statementID, TransactionIDs: []string{"txn-0001", "txn-0002"}, Balances: one, Actor: operator}, apperror.ErrInvalidInput},
		{"client names mismatch", BulkCreateRequest{StatementID: f.statementID, TransactionIDs: []string{"txn-0001"}, Balances: one, ClientNames: []string{"a", "b"}, Actor: operator}, apperror.ErrInvalidInput},
		{"empty", BulkCreateRequest{StatementID: f.statementID, Actor: operator}, apperror.ErrInvalidInput},
		{"no actor", BulkCreateRequest{StatementID: f.statementID, TransactionIDs: []string{"txn-0001"}, Balances: one}, apperror.ErrInvalidInput},
		{"unknown statement", BulkCreateRequest{StatementID: models.NewID(), TransactionIDs: []string{"txn-0001"}, Balances: one, Actor: operator}, apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.BulkCreate(context.Background(), tt.req)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	all, err := f.repo.ListSuspense(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
