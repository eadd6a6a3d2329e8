package storage

import (
	"context"
	"errors"
	"fmt"

	"portfel/internal/core"
)

// ErrUnavailable marks any backend I/O or auth failure. The ledger never
// retries; callers decide whether to surface the error or fall back to an
// empty view.
var ErrUnavailable = errors.New("storage unavailable")

// Ports for ledger persistence.
type (
	// Store persists the ordered transaction sequence. Save replaces the
	// whole sequence and is all-or-nothing per call; there is no
	// incremental update primitive.
	Store interface {
		Load(ctx context.Context) ([]core.Transaction, error)
		Save(ctx context.Context, txs []core.Transaction) error
	}

	// TemplateSource provides the independently stored collections read
	// by the recurrence expander and the budget evaluator.
	TemplateSource interface {
		LoadTemplates(ctx context.Context) ([]core.RecurringTemplate, error)
		LoadLimits(ctx context.Context) ([]core.BudgetLimit, error)
	}
)

// Unavailable wraps a backend failure so that callers can match both
// ErrUnavailable and the underlying error chain.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}
