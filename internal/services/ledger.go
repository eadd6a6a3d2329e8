package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfel/internal/core"
	"portfel/internal/storage"
)

// SyncPublisher notifies the mirror pipeline after a successful save.
// A nil publisher disables sync.
type SyncPublisher interface {
	PublishLedgerSync(ctx context.Context, seq int64) error
}

// Ledger validates and records transactions, computes balances and
// answers filtered queries. It holds no state between calls: every
// operation loads the sequence from the store, and every write saves it
// back whole. Concurrent writers against the same backing store can lose
// updates; this matches the single-user deployment the tool targets.
type Ledger struct {
	store     storage.Store
	publisher SyncPublisher
	now       func() time.Time
}

func NewLedger(store storage.Store, publisher SyncPublisher) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Tests use it to pin "now".
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Record validates and appends a manual entry. The amount is the
// user-entered positive value; the stored amount is signed by kind.
// A zero `at` means now. Expenses are checked against the realized
// balance only — funds that have not arrived yet cannot cover an
// expense, and a future-dated expense cannot block itself.
func (l *Ledger) Record(ctx context.Context, kind core.Kind, amount core.Money, category, description string, at time.Time) (core.Transaction, error) {
	if err := kind.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := amount.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(category) == "" {
		return core.Transaction{}, core.ErrEmptyCategory
	}

	now := l.now()
	if at.IsZero() {
		at = now
	}

	txs, err := l.store.Load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}

	if kind == core.Expense {
		realized := sumThrough(txs, now)
		if amount.Grosze > realized.Grosze {
			return core.Transaction{}, fmt.Errorf("%w: %s exceeds realized balance %s",
				core.ErrInsufficientFunds, amount, realized)
		}
	}

	t := core.Transaction{
		Timestamp:   at,
		Kind:        kind,
		Category:    strings.TrimSpace(category),
		Amount:      core.Money{Grosze: kind.Sign() * amount.Grosze},
		Description: strings.TrimSpace(description),
	}
	return l.append(ctx, txs, t)
}

// Post appends a prepared transaction without the funds guard. The
// recurrence expander uses it: recurring entries always post.
func (l *Ledger) Post(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	txs, err := l.store.Load(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	return l.append(ctx, txs, t)
}

// append is the single validation and persistence point both recording
// paths funnel through.
func (l *Ledger) append(ctx context.Context, txs []core.Transaction, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	txs = append(txs, t)
	if err := l.store.Save(ctx, txs); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"kind", string(t.Kind),
		"category", t.Category,
		"amount_grosze", t.Amount.Grosze,
		"sequence_len", len(txs))

	l.publishSync(ctx, int64(len(txs)))
	return t, nil
}

func (l *Ledger) publishSync(ctx context.Context, seq int64) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishLedgerSync(ctx, seq); err != nil {
		// The entry is saved locally; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish ledger sync message",
			"seq", seq, "error", err)
	}
}

// BalanceAsOf sums signed amounts over transactions effective at or
// before instant.
func (l *Ledger) BalanceAsOf(ctx context.Context, instant time.Time) (core.Money, error) {
	txs, err := l.store.Load(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return sumThrough(txs, instant), nil
}

// Balances returns the realized, pending and forecast figures. Pending
// deliberately includes future-dated income as well as expense.
func (l *Ledger) Balances(ctx context.Context) (core.Balances, error) {
	txs, err := l.store.Load(ctx)
	if err != nil {
		return core.Balances{}, err
	}

	now := l.now()
	var b core.Balances
	for _, t := range txs {
		if t.Timestamp.After(now) {
			b.Pending = b.Pending.Add(t.Amount)
		} else {
			b.Realized = b.Realized.Add(t.Amount)
		}
	}
	b.Forecast = b.Realized.Add(b.Pending)
	return b, nil
}

// Filter selects transactions for Query. The zero value selects
// everything.
type Filter struct {
	Categories []string  // empty, or containing "all", selects every category
	From, To   time.Time // inclusive date bounds on date(timestamp); zero means unbounded
	Text       string    // case-insensitive substring match on description
}

// Query returns matching transactions in stored (insertion) order. The
// caller re-sorts for display if it wants newest-first.
func (l *Ledger) Query(ctx context.Context, f Filter) ([]core.Transaction, error) {
	txs, err := l.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f Filter) matches(t core.Transaction) bool {
	if !f.matchesCategory(t.Category) {
		return false
	}
	if !f.From.IsZero() && dateKey(t.Timestamp) < dateKey(f.From) {
		return false
	}
	if !f.To.IsZero() && dateKey(t.Timestamp) > dateKey(f.To) {
		return false
	}
	if f.Text != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(f.Text)) {
		return false
	}
	return true
}

func (f Filter) matchesCategory(category string) bool {
	if len(f.Categories) == 0 {
		return true
	}
	for _, c := range f.Categories {
		if c == "all" || c == category {
			return true
		}
	}
	return false
}

// dateKey collapses a timestamp to its calendar date for inclusive
// range comparison.
func dateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func sumThrough(txs []core.Transaction, instant time.Time) core.Money {
	var sum core.Money
	for _, t := range txs {
		if !t.Timestamp.After(instant) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}
