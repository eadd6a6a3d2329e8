package services

import (
	"testing"
	"time"

	"portfel/internal/core"
)

func TestDueTemplates(t *testing.T) {
	czynsz := core.RecurringTemplate{
		Kind: core.Expense, Category: "Rachunki",
		Amount: core.Money{Grosze: 120000}, DayOfMonth: 10, Description: "czynsz",
	}
	pensja := core.RecurringTemplate{
		Kind: core.Income, Category: "Wypłata",
		Amount: core.Money{Grosze: 500000}, DayOfMonth: 25, Description: "pensja",
	}
	templates := []core.RecurringTemplate{czynsz, pensja}

	t.Run("day not reached", func(t *testing.T) {
		now := time.Date(2025, time.June, 5, 12, 0, 0, 0, time.Local)
		if due := DueTemplates(templates, nil, now); len(due) != 0 {
			t.Errorf("got %d due templates on the 5th, want 0", len(due))
		}
	})

	t.Run("only reached days are due", func(t *testing.T) {
		now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)
		due := DueTemplates(templates, nil, now)
		if len(due) != 1 || due[0].Category != "Rachunki" {
			t.Errorf("got %+v, want just the czynsz template", due)
		}
	})

	t.Run("already expanded this month is skipped", func(t *testing.T) {
		now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)
		existing := []core.Transaction{{
			Timestamp:   time.Date(2025, time.June, 10, 0, 0, 0, 0, time.Local),
			Kind:        core.Expense,
			Category:    "Rachunki",
			Amount:      core.Money{Grosze: -120000},
			Description: "czynsz (Auto)",
		}}
		if due := DueTemplates(templates, existing, now); len(due) != 0 {
			t.Errorf("got %d due templates, want 0", len(due))
		}
	})

	t.Run("previous month expansion does not block", func(t *testing.T) {
		now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local)
		existing := []core.Transaction{{
			Timestamp:   time.Date(2025, time.May, 10, 0, 0, 0, 0, time.Local),
			Kind:        core.Expense,
			Category:    "Rachunki",
			Amount:      core.Money{Grosze: -120000},
			Description: "czynsz (Auto)",
		}}
		if due := DueTemplates(templates, existing, now); len(due) != 1 {
			t.Errorf("got %d due templates, want 1", len(due))
		}
	})

	t.Run("day 31 clamps to short month", func(t *testing.T) {
		tpl := core.RecurringTemplate{
			Kind: core.Expense, Category: "Inne",
			Amount: core.Money{Grosze: 100}, DayOfMonth: 31,
		}
		now := time.Date(2025, time.February, 28, 12, 0, 0, 0, time.Local)
		if due := DueTemplates([]core.RecurringTemplate{tpl}, nil, now); len(due) != 1 {
			t.Errorf("clamped day should be due on Feb 28, got %d", len(due))
		}
	})
}
