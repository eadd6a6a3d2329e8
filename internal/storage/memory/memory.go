package memory

import (
	"context"
	"sync"

	"portfel/internal/core"
)

// Store is a mutex-guarded in-memory backend. It is the zero-config
// default and the fake used throughout the tests.
type Store struct {
	mu        sync.Mutex
	txs       []core.Transaction
	templates []core.RecurringTemplate
	limits    []core.BudgetLimit
}

func New() *Store {
	return &Store{}
}

// Load returns a copy of the sequence in insertion order.
func (s *Store) Load(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

// Save replaces the whole sequence.
func (s *Store) Save(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = make([]core.Transaction, len(txs))
	copy(s.txs, txs)
	return nil
}

func (s *Store) LoadTemplates(_ context.Context) ([]core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringTemplate, len(s.templates))
	copy(out, s.templates)
	return out, nil
}

func (s *Store) LoadLimits(_ context.Context) ([]core.BudgetLimit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BudgetLimit, len(s.limits))
	copy(out, s.limits)
	return out, nil
}

// SetTemplates seeds the recurring templates collection.
func (s *Store) SetTemplates(templates []core.RecurringTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append([]core.RecurringTemplate(nil), templates...)
}

// SetLimits seeds the budget limits collection.
func (s *Store) SetLimits(limits []core.BudgetLimit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = append([]core.BudgetLimit(nil), limits...)
}
