package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portfel/internal/core"
)

func testStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(
		filepath.Join(dir, "moj_portfel.json"),
		filepath.Join(dir, "cykliczne.json"),
		filepath.Join(dir, "limity.json"),
	), dir
}

func TestFileStoreMissingFile(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	txs, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}

	if tpls, err := store.LoadTemplates(ctx); err != nil || len(tpls) != 0 {
		t.Errorf("LoadTemplates = %v, %v; want empty, nil", tpls, err)
	}
	if limits, err := store.LoadLimits(ctx); err != nil || len(limits) != 0 {
		t.Errorf("LoadLimits = %v, %v; want empty, nil", limits, err)
	}
}

func TestFileStoreSaveLoadRoundtrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{
			Timestamp:   time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local),
			Kind:        core.Income,
			Category:    "Wypłata",
			Amount:      core.Money{Grosze: 500000},
			Description: "pensja",
		},
		{
			Timestamp:   time.Date(2025, time.June, 2, 18, 30, 0, 0, time.Local),
			Kind:        core.Expense,
			Category:    "Jedzenie",
			Amount:      core.Money{Grosze: -12050},
			Description: "zakupy",
		},
	}

	if err := store.Save(ctx, txs); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(txs) {
		t.Fatalf("got %d transactions, want %d", len(got), len(txs))
	}
	for i := range txs {
		if !got[i].Timestamp.Equal(txs[i].Timestamp) || got[i].Kind != txs[i].Kind ||
			got[i].Category != txs[i].Category || got[i].Amount != txs[i].Amount ||
			got[i].Description != txs[i].Description {
			t.Errorf("transaction %d: got %+v, want %+v", i, got[i], txs[i])
		}
	}
}

func TestFileStoreSaldoRecomputed(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	txs := []core.Transaction{
		{
			Timestamp: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local),
			Kind:      core.Income, Category: "Inne",
			Amount: core.Money{Grosze: 100000},
		},
		{
			Timestamp: time.Date(2025, time.June, 2, 9, 0, 0, 0, time.Local),
			Kind:      core.Expense, Category: "Inne",
			Amount: core.Money{Grosze: -40000},
		},
	}
	if err := store.Save(ctx, txs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatalf("read ledger file: %v", err)
	}
	if !strings.Contains(string(raw), `"saldo": 600.00`) {
		t.Errorf("saldo not recomputed in document:\n%s", raw)
	}
}

func TestFileStoreLegacyDocument(t *testing.T) {
	store, dir := testStore(t)
	ctx := context.Background()

	// Record with no kategoria field and a stale saldo; both are legacy
	// shapes the loader has to accept.
	doc := `{
    "saldo": 999.99,
    "historia": [
        {"data": "2024-03-05 10:00", "typ": "Wpływ", "kwota": 250.00, "opis": "zwrot"}
    ]
}`
	if err := os.WriteFile(filepath.Join(dir, "moj_portfel.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d transactions, want 1", len(got))
	}
	if got[0].Category != core.CategoryOther {
		t.Errorf("Category = %q, want %q", got[0].Category, core.CategoryOther)
	}
	if got[0].Amount.Grosze != 25000 {
		t.Errorf("Amount = %d, want 25000", got[0].Amount.Grosze)
	}
}

func TestFileStoreLoadTemplatesAndLimits(t *testing.T) {
	store, dir := testStore(t)
	ctx := context.Background()

	templates := `[
    {"typ": "Wydatek", "kategoria": "Rachunki", "kwota": 1200.00, "dzien": 10, "opis": "czynsz"}
]`
	limits := `[
    {"kategoria": "Jedzenie", "limit": 300.00}
]`
	if err := os.WriteFile(filepath.Join(dir, "cykliczne.json"), []byte(templates), 0o644); err != nil {
		t.Fatalf("write templates: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "limity.json"), []byte(limits), 0o644); err != nil {
		t.Fatalf("write limits: %v", err)
	}

	tpls, err := store.LoadTemplates(ctx)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if len(tpls) != 1 {
		t.Fatalf("got %d templates, want 1", len(tpls))
	}
	want := core.RecurringTemplate{
		Kind: core.Expense, Category: "Rachunki",
		Amount: core.Money{Grosze: 120000}, DayOfMonth: 10, Description: "czynsz",
	}
	if tpls[0] != want {
		t.Errorf("template = %+v, want %+v", tpls[0], want)
	}

	lims, err := store.LoadLimits(ctx)
	if err != nil {
		t.Fatalf("LoadLimits: %v", err)
	}
	if len(lims) != 1 || lims[0].Category != "Jedzenie" || lims[0].Cap.Grosze != 30000 {
		t.Errorf("limits = %+v", lims)
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	store, dir := testStore(t)

	if err := os.WriteFile(filepath.Join(dir, "moj_portfel.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := store.Load(context.Background()); err == nil {
		t.Error("expected error for corrupt document, got nil")
	}
}
