package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"portfel/internal/amqp"
	"portfel/internal/storage"
)

// SyncWorker mirrors the local ledger to a remote store (Google Sheets
// in production). Every sync rewrites the whole remote sequence from
// the local one, so it is idempotent and self-healing: a missed message
// is repaired by the next sync or by the periodic tick.
type SyncWorker struct {
	local  storage.Store
	remote storage.Store
}

func NewSyncWorker(local, remote storage.Store) *SyncWorker {
	return &SyncWorker{local: local, remote: remote}
}

// HandleSyncMessage processes one ledger sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing ledger sync message", "seq", msg.Seq)
	return w.Mirror(ctx)
}

// Mirror copies the local sequence to the remote store.
func (w *SyncWorker) Mirror(ctx context.Context) error {
	txs, err := w.local.Load(ctx)
	if err != nil {
		return fmt.Errorf("load local ledger: %w", err)
	}

	if err := w.remote.Save(ctx, txs); err != nil {
		return fmt.Errorf("save remote ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger mirrored", "transactions", len(txs))
	return nil
}

// StartupSyncCheck performs one mirror at worker startup so downtime or
// lost messages never leave the remote stale for long.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Running startup sync check")
	if err := w.Mirror(ctx); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	return nil
}

// RunPeriodic mirrors on every tick until ctx is done. It is the backup
// path for lost AMQP messages; failures are logged and retried next tick.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic sync started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Periodic sync stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Mirror(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}
