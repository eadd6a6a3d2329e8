package services

import (
	"time"

	"portfel/internal/core"
)

// DueTemplates filters templates down to those the periodic worker
// should expand at now: the month has reached the template's day
// (clamped to the month's length), and no matching auto-generated
// transaction exists in now's month yet. The manual run endpoint
// deliberately skips this filter.
func DueTemplates(templates []core.RecurringTemplate, existing []core.Transaction, now time.Time) []core.RecurringTemplate {
	var due []core.RecurringTemplate
	for _, tpl := range templates {
		if !dayReached(tpl.DayOfMonth, now) {
			continue
		}
		if expandedThisMonth(tpl, existing, now) {
			continue
		}
		due = append(due, tpl)
	}
	return due
}

// dayReached reports whether now's day has reached the template's day,
// clamping days the month does not have to its last day.
func dayReached(day int, now time.Time) bool {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return now.Day() >= day
}

// expandedThisMonth reports whether the template already produced a
// transaction in now's month. Matching is by kind, category, signed
// amount and the generated description.
func expandedThisMonth(tpl core.RecurringTemplate, existing []core.Transaction, now time.Time) bool {
	wantAmount := tpl.Kind.Sign() * tpl.Amount.Grosze
	wantDesc := autoDescription(tpl.Description)
	for _, t := range existing {
		if t.Timestamp.Year() != now.Year() || t.Timestamp.Month() != now.Month() {
			continue
		}
		if t.Kind == tpl.Kind && t.Category == tpl.Category &&
			t.Amount.Grosze == wantAmount && t.Description == wantDesc {
			return true
		}
	}
	return false
}
