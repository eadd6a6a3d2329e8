package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfel/internal/core"
)

// AutoSuffix marks transactions generated from recurring templates so
// they stay distinguishable from manual entries.
const AutoSuffix = "(Auto)"

// Expander materializes recurring templates into concrete ledger
// transactions for one period. It performs no duplicate detection; the
// caller decides when a run is due.
type Expander struct {
	ledger *Ledger
}

func NewExpander(ledger *Ledger) *Expander {
	return &Expander{ledger: ledger}
}

// Expand posts one transaction per template, dated at the template's
// day-of-month within ref's month, and returns the batch with its net
// signed total. Templates are validated up front so a configuration
// error leaves the ledger untouched.
func (e *Expander) Expand(ctx context.Context, templates []core.RecurringTemplate, ref time.Time) ([]core.Transaction, core.Money, error) {
	if len(templates) == 0 {
		// Nothing to do; the caller shows this as informational.
		return nil, core.Money{}, core.ErrEmptyTemplateSet
	}

	for i, tpl := range templates {
		if err := tpl.Validate(); err != nil {
			return nil, core.Money{}, fmt.Errorf("template %d (%s): %w", i, tpl.Category, err)
		}
	}

	created := make([]core.Transaction, 0, len(templates))
	var total core.Money
	for i, tpl := range templates {
		t := core.Transaction{
			Timestamp:   effectiveDate(tpl.DayOfMonth, ref),
			Kind:        tpl.Kind,
			Category:    tpl.Category,
			Amount:      core.Money{Grosze: tpl.Kind.Sign() * tpl.Amount.Grosze},
			Description: autoDescription(tpl.Description),
		}

		// Same recording path as manual entries, minus the funds guard:
		// recurring entries always post.
		posted, err := e.ledger.Post(ctx, t)
		if err != nil {
			return created, total, fmt.Errorf("post template %d (%s): %w", i, tpl.Category, err)
		}
		created = append(created, posted)
		total = total.Add(posted.Amount)
	}

	slog.InfoContext(ctx, "Recurring templates expanded",
		"created", len(created),
		"total_grosze", total.Grosze,
		"reference", ref.Format("2006-01-02"))

	return created, total, nil
}

// effectiveDate resolves a template's day-of-month within ref's month.
// A day the month does not have (e.g. 31 in February) falls back to ref
// itself.
func effectiveDate(day int, ref time.Time) time.Time {
	lastDay := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, ref.Location()).Day()
	if day < 1 || day > lastDay {
		return ref
	}
	return time.Date(ref.Year(), ref.Month(), day, ref.Hour(), ref.Minute(), 0, 0, ref.Location())
}

func autoDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return AutoSuffix
	}
	return desc + " " + AutoSuffix
}
