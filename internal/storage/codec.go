package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portfel/internal/core"
)

// TimeLayout is the persisted timestamp format, part of the wire contract
// shared by the file and sheets backends and the legacy data files.
const TimeLayout = "2006-01-02 15:04"

// Legacy wire names for the transaction kind.
const (
	WireExpense = "Wydatek"
	WireIncome  = "Wpływ"
)

// Record is the serialized form of a transaction. The field names are the
// stable contract consumers rely on; kwota is a signed decimal number.
type Record struct {
	Data      string      `json:"data"`
	Typ       string      `json:"typ"`
	Kategoria string      `json:"kategoria,omitempty"`
	Kwota     json.Number `json:"kwota"`
	Opis      string      `json:"opis"`
}

// EncodeRecord converts a transaction to its wire form.
func EncodeRecord(t core.Transaction) Record {
	return Record{
		Data:      t.Timestamp.Format(TimeLayout),
		Typ:       WireKind(t.Kind),
		Kategoria: t.Category,
		Kwota:     json.Number(EncodeAmount(t.Amount)),
		Opis:      t.Description,
	}
}

// DecodeRecord converts a wire record back to a transaction. A missing or
// blank kategoria becomes "Inne"; this is a compatibility rule for legacy
// records, not an error.
func DecodeRecord(r Record) (core.Transaction, error) {
	ts, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(r.Data), time.Local)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse data %q: %w", r.Data, err)
	}
	kind, err := KindFromWire(r.Typ)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := DecodeAmount(r.Kwota.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse kwota %q: %w", r.Kwota, err)
	}
	return core.Transaction{
		Timestamp:   ts,
		Kind:        kind,
		Category:    NormalizeCategory(r.Kategoria),
		Amount:      amount,
		Description: r.Opis,
	}, nil
}

// WireKind returns the legacy wire name for a kind.
func WireKind(k core.Kind) string {
	if k == core.Expense {
		return WireExpense
	}
	return WireIncome
}

// KindFromWire maps a legacy wire name back to a kind.
func KindFromWire(s string) (core.Kind, error) {
	switch strings.TrimSpace(s) {
	case WireExpense:
		return core.Expense, nil
	case WireIncome:
		return core.Income, nil
	default:
		return "", fmt.Errorf("typ %q: %w", s, core.ErrUnknownKind)
	}
}

// NormalizeCategory applies the missing-category fallback.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.CategoryOther
	}
	return s
}

// DecodeAmount parses a signed decimal amount (dot or comma separator)
// into grosze, rounding half-up beyond two decimals.
func DecodeAmount(s string) (core.Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Grosze: d.Shift(2).Round(0).IntPart()}, nil
}

// EncodeAmount renders grosze as a decimal string with two places.
func EncodeAmount(m core.Money) string {
	return decimal.New(m.Grosze, -2).StringFixed(2)
}
