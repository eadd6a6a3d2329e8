package services

import (
	"errors"
	"fmt"
	"time"

	"portfel/internal/core"
)

// EvaluateBudgets compares one calendar month's spending per category to
// the configured caps. Only categories carrying a limit are evaluated;
// everything else is unconstrained. A non-positive cap is a configuration
// error: the category is still reported (as fully utilized) and the
// error is joined into the returned error without aborting the rest.
func EvaluateBudgets(txs []core.Transaction, limits []core.BudgetLimit, ref time.Time) (map[string]core.BudgetStatus, error) {
	spent := make(map[string]core.Money)
	for _, t := range txs {
		if t.Kind != core.Expense {
			continue
		}
		if t.Timestamp.Year() != ref.Year() || t.Timestamp.Month() != ref.Month() {
			continue
		}
		spent[t.Category] = spent[t.Category].Add(t.Amount.Abs())
	}

	out := make(map[string]core.BudgetStatus, len(limits))
	var errs []error
	for _, lim := range limits {
		st := core.BudgetStatus{
			Category: lim.Category,
			Cap:      lim.Cap,
			Spent:    spent[lim.Category], // zero when no expense this month
		}
		if lim.Cap.Grosze <= 0 {
			st.Utilization = 1.0
			errs = append(errs, fmt.Errorf("category %q: %w", lim.Category, core.ErrInvalidCap))
		} else {
			if over := st.Spent.Grosze - lim.Cap.Grosze; over > 0 {
				st.OverBy = core.Money{Grosze: over}
			}
			st.Utilization = float64(st.Spent.Grosze) / float64(lim.Cap.Grosze)
			if st.Utilization > 1.0 {
				st.Utilization = 1.0
			}
		}
		out[lim.Category] = st
	}
	return out, errors.Join(errs...)
}
