package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"portfel/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the ledger in a local SQLite database. The Store
// contract is still whole-sequence: Save rewrites the transactions table
// inside one database transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements Store. Insertion order is the rowid order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data, typ, kategoria, kwota_grosze, opis FROM transactions ORDER BY id`)
	if err != nil {
		return nil, Unavailable("query transactions", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			data, typ, kategoria, opis string
			grosze                     int64
		)
		if err := rows.Scan(&data, &typ, &kategoria, &grosze, &opis); err != nil {
			return nil, Unavailable("scan transaction", err)
		}
		ts, err := time.ParseInLocation(TimeLayout, data, time.Local)
		if err != nil {
			return nil, Unavailable("parse transaction date", err)
		}
		kind, err := KindFromWire(typ)
		if err != nil {
			return nil, Unavailable("parse transaction kind", err)
		}
		txs = append(txs, core.Transaction{
			Timestamp:   ts,
			Kind:        kind,
			Category:    NormalizeCategory(kategoria),
			Amount:      core.Money{Grosze: grosze},
			Description: opis,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, Unavailable("iterate transactions", err)
	}
	return txs, nil
}

// Save implements Store: delete-and-reinsert inside one transaction so the
// write is all-or-nothing.
func (r *SQLiteRepository) Save(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Unavailable("begin save", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return Unavailable("clear transactions", err)
	}

	stmt, err := dbTx.PrepareContext(ctx,
		`INSERT INTO transactions (data, typ, kategoria, kwota_grosze, opis) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Unavailable("prepare insert", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.ExecContext(ctx,
			t.Timestamp.Format(TimeLayout),
			WireKind(t.Kind),
			t.Category,
			t.Amount.Grosze,
			t.Description,
		)
		if err != nil {
			return Unavailable("insert transaction", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return Unavailable("commit save", err)
	}

	slog.DebugContext(ctx, "Ledger saved to SQLite", "transactions", len(txs))
	return nil
}

// LoadTemplates implements TemplateSource.
func (r *SQLiteRepository) LoadTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT typ, kategoria, kwota_grosze, dzien, opis FROM recurring_templates ORDER BY id`)
	if err != nil {
		return nil, Unavailable("query templates", err)
	}
	defer rows.Close()

	var templates []core.RecurringTemplate
	for rows.Next() {
		var (
			typ, kategoria, opis string
			grosze               int64
			dzien                int
		)
		if err := rows.Scan(&typ, &kategoria, &grosze, &dzien, &opis); err != nil {
			return nil, Unavailable("scan template", err)
		}
		kind, err := KindFromWire(typ)
		if err != nil {
			return nil, Unavailable("parse template kind", err)
		}
		templates = append(templates, core.RecurringTemplate{
			Kind:        kind,
			Category:    NormalizeCategory(kategoria),
			Amount:      core.Money{Grosze: grosze}.Abs(),
			DayOfMonth:  dzien,
			Description: opis,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, Unavailable("iterate templates", err)
	}
	return templates, nil
}

// LoadLimits implements TemplateSource.
func (r *SQLiteRepository) LoadLimits(ctx context.Context) ([]core.BudgetLimit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kategoria, limit_grosze FROM budget_limits ORDER BY kategoria`)
	if err != nil {
		return nil, Unavailable("query limits", err)
	}
	defer rows.Close()

	var limits []core.BudgetLimit
	for rows.Next() {
		var (
			kategoria string
			grosze    int64
		)
		if err := rows.Scan(&kategoria, &grosze); err != nil {
			return nil, Unavailable("scan limit", err)
		}
		limits = append(limits, core.BudgetLimit{
			Category: NormalizeCategory(kategoria),
			Cap:      core.Money{Grosze: grosze},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, Unavailable("iterate limits", err)
	}
	return limits, nil
}
