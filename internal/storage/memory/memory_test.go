package memory

import (
	"context"
	"testing"
	"time"

	"portfel/internal/core"
)

func TestStoreSaveLoadCopies(t *testing.T) {
	store := New()
	ctx := context.Background()

	txs := []core.Transaction{{
		Timestamp: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local),
		Kind:      core.Income, Category: "Wypłata",
		Amount: core.Money{Grosze: 500000},
	}}
	if err := store.Save(ctx, txs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's slice must not reach the store.
	txs[0].Category = "zmienione"

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Wypłata" {
		t.Errorf("store shares backing array with caller: %+v", got)
	}

	// And mutating a loaded slice must not reach the store either.
	got[0].Category = "zmienione"
	again, _ := store.Load(ctx)
	if again[0].Category != "Wypłata" {
		t.Errorf("Load returned shared slice: %+v", again)
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	store := New()
	ctx := context.Background()

	first := []core.Transaction{{
		Timestamp: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local),
		Kind:      core.Income, Category: "Inne",
		Amount: core.Money{Grosze: 100},
	}}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, nil); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d transactions after empty save, want 0", len(got))
	}
}

func TestStoreTemplatesAndLimits(t *testing.T) {
	store := New()
	ctx := context.Background()

	store.SetTemplates([]core.RecurringTemplate{{
		Kind: core.Expense, Category: "Rachunki",
		Amount: core.Money{Grosze: 120000}, DayOfMonth: 10,
	}})
	store.SetLimits([]core.BudgetLimit{{
		Category: "Jedzenie", Cap: core.Money{Grosze: 30000},
	}})

	tpls, err := store.LoadTemplates(ctx)
	if err != nil || len(tpls) != 1 || tpls[0].Category != "Rachunki" {
		t.Errorf("LoadTemplates = %+v, %v", tpls, err)
	}
	limits, err := store.LoadLimits(ctx)
	if err != nil || len(limits) != 1 || limits[0].Cap.Grosze != 30000 {
		t.Errorf("LoadLimits = %+v, %v", limits, err)
	}
}
