package google

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"portfel/internal/core"
	"portfel/internal/storage"
)

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlankRow(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

// isHeaderRow detects a column-label first row so hand-edited sheets
// keep working with or without one.
func isHeaderRow(cols []string) bool {
	return strings.EqualFold(safeGet(cols, 0), "data")
}

// rowToRecord maps sheet columns A:E onto the wire record.
func rowToRecord(cols []string) storage.Record {
	return storage.Record{
		Data:      safeGet(cols, 0),
		Typ:       safeGet(cols, 1),
		Kategoria: safeGet(cols, 2),
		Kwota:     json.Number(normalizeNumber(safeGet(cols, 3))),
		Opis:      safeGet(cols, 4),
	}
}

// recordToRow is the inverse of rowToRecord.
func recordToRow(r storage.Record) []any {
	return []any{r.Data, r.Typ, r.Kategoria, r.Kwota.String(), r.Opis}
}

// parseTemplateRow maps columns typ, kategoria, kwota, dzien, opis.
func parseTemplateRow(cols []string) (core.RecurringTemplate, error) {
	kind, err := storage.KindFromWire(safeGet(cols, 0))
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	amount, err := storage.DecodeAmount(safeGet(cols, 2))
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("parse kwota %q: %w", safeGet(cols, 2), err)
	}
	day, err := strconv.Atoi(safeGet(cols, 3))
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("parse dzien %q: %w", safeGet(cols, 3), err)
	}
	return core.RecurringTemplate{
		Kind:        kind,
		Category:    storage.NormalizeCategory(safeGet(cols, 1)),
		Amount:      amount.Abs(),
		DayOfMonth:  day,
		Description: safeGet(cols, 4),
	}, nil
}

// parseLimitRow maps columns kategoria, limit.
func parseLimitRow(cols []string) (core.BudgetLimit, error) {
	capAmount, err := storage.DecodeAmount(safeGet(cols, 1))
	if err != nil {
		return core.BudgetLimit{}, fmt.Errorf("parse limit %q: %w", safeGet(cols, 1), err)
	}
	return core.BudgetLimit{
		Category: storage.NormalizeCategory(safeGet(cols, 0)),
		Cap:      capAmount,
	}, nil
}

// normalizeNumber makes a hand-typed amount digestible as a JSON number.
func normalizeNumber(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return "0"
	}
	return s
}
