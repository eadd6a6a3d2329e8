package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"portfel/internal/core"
)

// FileStore persists the ledger as a single JSON document, compatible with
// the legacy moj_portfel.json layout: {"saldo": ..., "historia": [...]}.
// Templates and limits live in sibling JSON files.
type FileStore struct {
	path          string
	templatesPath string
	limitsPath    string
}

func NewFileStore(path, templatesPath, limitsPath string) *FileStore {
	return &FileStore{
		path:          path,
		templatesPath: templatesPath,
		limitsPath:    limitsPath,
	}
}

type ledgerDocument struct {
	Saldo    json.Number `json:"saldo"`
	Historia []Record    `json:"historia"`
}

type templateRecord struct {
	Typ       string      `json:"typ"`
	Kategoria string      `json:"kategoria"`
	Kwota     json.Number `json:"kwota"`
	Dzien     int         `json:"dzien"`
	Opis      string      `json:"opis"`
}

type limitRecord struct {
	Kategoria string      `json:"kategoria"`
	Limit     json.Number `json:"limit"`
}

// Load reads the whole sequence in stored order. A missing file is an
// empty ledger, not an error.
func (s *FileStore) Load(ctx context.Context) ([]core.Transaction, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, Unavailable("read ledger file", err)
	}

	var doc ledgerDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, Unavailable("decode ledger file", err)
	}

	txs := make([]core.Transaction, 0, len(doc.Historia))
	for i, rec := range doc.Historia {
		t, err := DecodeRecord(rec)
		if err != nil {
			return nil, Unavailable(fmt.Sprintf("decode record %d", i), err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// Save replaces the whole document atomically: the new content is written
// to a temp file in the same directory and renamed over the old one, so a
// failed write never leaves a truncated ledger behind. The legacy saldo
// field is recomputed as the full ledger sum.
func (s *FileStore) Save(ctx context.Context, txs []core.Transaction) error {
	doc := ledgerDocument{
		Historia: make([]Record, 0, len(txs)),
	}
	var total core.Money
	for _, t := range txs {
		doc.Historia = append(doc.Historia, EncodeRecord(t))
		total = total.Add(t.Amount)
	}
	doc.Saldo = json.Number(EncodeAmount(total))

	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return Unavailable("encode ledger file", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Unavailable("create ledger directory", err)
	}
	tmp, err := os.CreateTemp(dir, ".portfel-*.json")
	if err != nil {
		return Unavailable("create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Unavailable("write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Unavailable("close temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return Unavailable("replace ledger file", err)
	}

	slog.DebugContext(ctx, "Ledger file saved", "path", s.path, "transactions", len(txs))
	return nil
}

// LoadTemplates reads the recurring templates collection. A missing file
// means nothing is configured.
func (s *FileStore) LoadTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	raw, err := os.ReadFile(s.templatesPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, Unavailable("read templates file", err)
	}

	var recs []templateRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, Unavailable("decode templates file", err)
	}

	templates := make([]core.RecurringTemplate, 0, len(recs))
	for i, rec := range recs {
		kind, err := KindFromWire(rec.Typ)
		if err != nil {
			return nil, Unavailable(fmt.Sprintf("decode template %d", i), err)
		}
		amount, err := DecodeAmount(rec.Kwota.String())
		if err != nil {
			return nil, Unavailable(fmt.Sprintf("decode template %d", i), err)
		}
		templates = append(templates, core.RecurringTemplate{
			Kind:        kind,
			Category:    NormalizeCategory(rec.Kategoria),
			Amount:      amount.Abs(),
			DayOfMonth:  rec.Dzien,
			Description: rec.Opis,
		})
	}
	return templates, nil
}

// LoadLimits reads the budget limits collection. A missing file means no
// category is constrained.
func (s *FileStore) LoadLimits(ctx context.Context) ([]core.BudgetLimit, error) {
	raw, err := os.ReadFile(s.limitsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, Unavailable("read limits file", err)
	}

	var recs []limitRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, Unavailable("decode limits file", err)
	}

	limits := make([]core.BudgetLimit, 0, len(recs))
	for i, rec := range recs {
		capAmount, err := DecodeAmount(rec.Limit.String())
		if err != nil {
			return nil, Unavailable(fmt.Sprintf("decode limit %d", i), err)
		}
		limits = append(limits, core.BudgetLimit{
			Category: NormalizeCategory(rec.Kategoria),
			Cap:      capAmount,
		})
	}
	return limits, nil
}
