package worker

import (
	"context"
	"testing"
	"time"

	"portfel/internal/amqp"
	"portfel/internal/core"
	"portfel/internal/storage/memory"
)

func TestMirrorCopiesWholeSequence(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := memory.New()

	txs := []core.Transaction{
		{
			Timestamp: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local),
			Kind:      core.Income,
			Category:  "Wypłata",
			Amount:    core.Money{Grosze: 500000},
		},
		{
			Timestamp:   time.Date(2025, time.June, 3, 18, 0, 0, 0, time.Local),
			Kind:        core.Expense,
			Category:    "Jedzenie",
			Amount:      core.Money{Grosze: -12000},
			Description: "zakupy",
		},
	}
	if err := local.Save(ctx, txs); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	// Stale remote content must be replaced, not appended to.
	if err := remote.Save(ctx, txs[:1]); err != nil {
		t.Fatalf("seed remote: %v", err)
	}

	w := NewSyncWorker(local, remote)
	if err := w.Mirror(ctx); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	got, err := remote.Load(ctx)
	if err != nil {
		t.Fatalf("load remote: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("remote holds %d transactions, want 2", len(got))
	}
	if got[1].Description != "zakupy" {
		t.Errorf("remote[1] = %+v, want the zakupy expense", got[1])
	}
}

func TestHandleSyncMessageMirrors(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := memory.New()

	if err := local.Save(ctx, []core.Transaction{{
		Timestamp: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local),
		Kind:      core.Income,
		Category:  "Wpływ",
		Amount:    core.Money{Grosze: 100},
	}}); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	w := NewSyncWorker(local, remote)
	if err := w.HandleSyncMessage(ctx, amqp.NewLedgerSyncMessage(1)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := remote.Load(ctx)
	if err != nil {
		t.Fatalf("load remote: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("remote holds %d transactions, want 1", len(got))
	}
}

func TestMirrorEmptyLedgerClearsRemote(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := memory.New()

	if err := remote.Save(ctx, []core.Transaction{{
		Timestamp: time.Date(2025, time.June, 1, 9, 0, 0, 0, time.Local),
		Kind:      core.Income,
		Category:  "Wpływ",
		Amount:    core.Money{Grosze: 100},
	}}); err != nil {
		t.Fatalf("seed remote: %v", err)
	}

	w := NewSyncWorker(local, remote)
	if err := w.Mirror(ctx); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	got, err := remote.Load(ctx)
	if err != nil {
		t.Fatalf("load remote: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("remote holds %d transactions, want 0", len(got))
	}
}
