package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"

	// CategoryOther is the fallback category assigned to legacy records
	// persisted without a kategoria field.
	CategoryOther = "Inne"
)

type (
	Kind string

	// Money is an amount in grosze (1/100 PLN). Transactions carry it
	// signed: income positive, expense negative.
	Money struct {
		Grosze int64
	}

	// Transaction is immutable once recorded. Corrections are recorded as
	// new transactions; nothing in the ledger is ever edited or deleted.
	Transaction struct {
		Timestamp   time.Time
		Kind        Kind
		Category    string
		Amount      Money // signed: income positive, expense negative
		Description string
	}

	// RecurringTemplate generates one concrete transaction per expander
	// run. Templates live outside the ledger sequence.
	RecurringTemplate struct {
		Kind        Kind
		Category    string
		Amount      Money // positive base amount
		DayOfMonth  int
		Description string
	}

	// BudgetLimit caps spending for one category per calendar month.
	// A category without a limit is unconstrained.
	BudgetLimit struct {
		Category string
		Cap      Money
	}

	// Balances is the trio of derived ledger figures.
	// Realized + Pending == Forecast always holds.
	Balances struct {
		Realized Money
		Pending  Money
		Forecast Money
	}

	// BudgetStatus reports one category's spending against its cap for a
	// single calendar month.
	BudgetStatus struct {
		Category    string
		Spent       Money
		Cap         Money
		OverBy      Money
		Utilization float64
	}
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEmptyTemplateSet  = errors.New("no recurring templates configured")
	ErrInvalidCap        = errors.New("budget cap must be positive")
	ErrUnknownKind       = errors.New("unknown transaction kind")
	ErrEmptyCategory     = errors.New("empty category")
	ErrZeroTimestamp     = errors.New("timestamp cannot be zero")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrUnknownKind
	}
}

// Sign returns +1 for income and -1 for expense.
func (k Kind) Sign() int64 {
	if k == Expense {
		return -1
	}
	return 1
}

// ParseKind maps user-supplied kind names to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", ErrUnknownKind
	}
}

func (m Money) Validate() error {
	if m.Grosze <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m.Grosze < 0 {
		return Money{Grosze: -m.Grosze}
	}
	return m
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Grosze: m.Grosze + o.Grosze}
}

func (t Transaction) Validate() error {
	if t.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if t.Amount.Grosze == 0 {
		return ErrInvalidAmount
	}
	// Sign convention: income stored positive, expense negative.
	if t.Kind == Income && t.Amount.Grosze < 0 {
		return errors.New("income amount must be stored positive")
	}
	if t.Kind == Expense && t.Amount.Grosze > 0 {
		return errors.New("expense amount must be stored negative")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (rt RecurringTemplate) Validate() error {
	if err := rt.Kind.Validate(); err != nil {
		return err
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rt.Category) == "" {
		return ErrEmptyCategory
	}
	if rt.DayOfMonth < 1 || rt.DayOfMonth > 31 {
		return errors.New("day of month must be between 1 and 31")
	}
	if len(rt.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (bl BudgetLimit) Validate() error {
	if strings.TrimSpace(bl.Category) == "" {
		return ErrEmptyCategory
	}
	if bl.Cap.Grosze <= 0 {
		return ErrInvalidCap
	}
	return nil
}
