package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfel/internal/core"
)

func TestExpandPostsOneTransactionPerTemplate(t *testing.T) {
	ledger, store := newTestLedger(t)
	expander := NewExpander(ledger)
	ctx := context.Background()

	templates := []core.RecurringTemplate{
		{Kind: core.Income, Category: "Wypłata", Amount: core.Money{Grosze: 500000}, DayOfMonth: 1, Description: "pensja"},
		{Kind: core.Expense, Category: "Rachunki", Amount: core.Money{Grosze: 120000}, DayOfMonth: 10, Description: "czynsz"},
	}

	ref := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.Local)
	created, total, err := expander.Expand(ctx, templates, ref)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d transactions, want 2", len(created))
	}
	if total.Grosze != 380000 {
		t.Errorf("total = %d grosze, want 380000", total.Grosze)
	}

	if created[0].Timestamp.Day() != 1 || created[0].Timestamp.Month() != time.June {
		t.Errorf("income dated %v, want June 1", created[0].Timestamp)
	}
	if created[0].Amount.Grosze != 500000 {
		t.Errorf("income amount = %d, want 500000", created[0].Amount.Grosze)
	}
	if created[1].Amount.Grosze != -120000 {
		t.Errorf("expense amount = %d, want -120000", created[1].Amount.Grosze)
	}

	txs, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txs) != 2 {
		t.Errorf("ledger holds %d transactions, want 2", len(txs))
	}
}

func TestExpandMarksGeneratedTransactions(t *testing.T) {
	ledger, _ := newTestLedger(t)
	expander := NewExpander(ledger)
	ctx := context.Background()

	templates := []core.RecurringTemplate{
		{Kind: core.Expense, Category: "Rozrywka", Amount: core.Money{Grosze: 2999}, DayOfMonth: 5, Description: "Netflix"},
		{Kind: core.Expense, Category: "Inne", Amount: core.Money{Grosze: 1000}, DayOfMonth: 5},
	}

	created, _, err := expander.Expand(ctx, templates, testNow)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if created[0].Description != "Netflix (Auto)" {
		t.Errorf("description = %q, want %q", created[0].Description, "Netflix (Auto)")
	}
	if created[1].Description != "(Auto)" {
		t.Errorf("blank-description template got %q, want %q", created[1].Description, "(Auto)")
	}
}

func TestExpandDayBeyondMonthFallsBackToReference(t *testing.T) {
	ledger, _ := newTestLedger(t)
	expander := NewExpander(ledger)
	ctx := context.Background()

	templates := []core.RecurringTemplate{
		{Kind: core.Expense, Category: "Rachunki", Amount: core.Money{Grosze: 5000}, DayOfMonth: 31, Description: "abonament"},
	}

	// June has 30 days.
	ref := time.Date(2025, time.June, 12, 9, 15, 0, 0, time.Local)
	created, _, err := expander.Expand(ctx, templates, ref)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if !created[0].Timestamp.Equal(ref) {
		t.Errorf("timestamp = %v, want reference %v", created[0].Timestamp, ref)
	}
}

func TestExpandEmptyTemplateSet(t *testing.T) {
	ledger, _ := newTestLedger(t)
	expander := NewExpander(ledger)

	_, _, err := expander.Expand(context.Background(), nil, testNow)
	if !errors.Is(err, core.ErrEmptyTemplateSet) {
		t.Fatalf("expected ErrEmptyTemplateSet, got %v", err)
	}
}

func TestExpandInvalidTemplateLeavesLedgerUntouched(t *testing.T) {
	ledger, store := newTestLedger(t)
	expander := NewExpander(ledger)
	ctx := context.Background()

	templates := []core.RecurringTemplate{
		{Kind: core.Expense, Category: "Rachunki", Amount: core.Money{Grosze: 5000}, DayOfMonth: 10},
		{Kind: core.Expense, Category: "", Amount: core.Money{Grosze: 100}, DayOfMonth: 1},
	}

	_, _, err := expander.Expand(ctx, templates, testNow)
	if !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}

	txs, loadErr := store.Load(ctx)
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if len(txs) != 0 {
		t.Errorf("invalid template set must not post anything, ledger holds %d", len(txs))
	}
}

func TestExpandSkipsFundsGuard(t *testing.T) {
	ledger, _ := newTestLedger(t)
	expander := NewExpander(ledger)
	ctx := context.Background()

	// Empty ledger: a manual expense would be rejected, a recurring one
	// must post and drive the balance negative.
	templates := []core.RecurringTemplate{
		{Kind: core.Expense, Category: "Rachunki", Amount: core.Money{Grosze: 90000}, DayOfMonth: 1, Description: "czynsz"},
	}

	if _, _, err := expander.Expand(ctx, templates, testNow); err != nil {
		t.Fatalf("expand: %v", err)
	}

	balance, err := ledger.BalanceAsOf(ctx, testNow)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Grosze != -90000 {
		t.Errorf("balance = %d, want -90000", balance.Grosze)
	}
}

func TestEffectiveDate(t *testing.T) {
	ref := time.Date(2025, time.February, 14, 11, 45, 0, 0, time.Local)

	tests := []struct {
		name    string
		day     int
		wantDay int
	}{
		{"valid day", 10, 10},
		{"last day of february", 28, 28},
		{"day 30 missing in february", 30, 14},
		{"day 31 missing in february", 31, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := effectiveDate(tt.day, ref)
			if got.Day() != tt.wantDay {
				t.Errorf("effectiveDate(%d) day = %d, want %d", tt.day, got.Day(), tt.wantDay)
			}
			if got.Month() != time.February || got.Year() != 2025 {
				t.Errorf("effectiveDate(%d) = %v, want February 2025", tt.day, got)
			}
		})
	}
}
