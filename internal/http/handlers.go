package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"portfel/internal/core"
	applog "portfel/internal/log"
	"portfel/internal/services"
	"portfel/internal/storage"
)

const balanceCacheKey = "balance"

func budgetCacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodGet:
		s.handleListTransactions(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET or POST")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseTransactionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_kind", "kind must be income or expense")
		return
	}

	grosze, err := core.ParseDecimalToGrosze(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid_amount", "amount must be a positive decimal")
		return
	}

	category := storage.NormalizeCategory(req.Category)
	if !contains(s.categoriesFor(kind), category) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_category",
			"category not in the configured set for "+string(kind))
		return
	}

	var at time.Time
	if req.Date != "" {
		at, err = time.ParseInLocation(storage.TimeLayout, req.Date, time.Local)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid_date",
				"date must match "+storage.TimeLayout)
			return
		}
	}

	t, err := s.ledger.Record(r.Context(), kind, core.Money{Grosze: grosze}, category, req.Description, at)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	s.invalidateReadCaches(t.Timestamp)
	writeJSON(w, http.StatusCreated, storage.EncodeRecord(t))
}

func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "invalid_amount", err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		slog.ErrorContext(r.Context(), "Storage unavailable", applog.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "ledger storage unavailable")
	default:
		slog.ErrorContext(r.Context(), "Transaction write failed", applog.FieldError, err)
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	txs, err := s.ledger.Query(r.Context(), filter)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	records := make([]storage.Record, 0, len(txs))
	for _, t := range txs {
		records = append(records, storage.EncodeRecord(t))
	}
	writeJSON(w, http.StatusOK, listResponse{Transactions: records, Count: len(records)})
}

type listResponse struct {
	Transactions []storage.Record `json:"transactions"`
	Count        int              `json:"count"`
}

type balanceResponse struct {
	RealizedGrosze int64  `json:"realized_grosze"`
	PendingGrosze  int64  `json:"pending_grosze"`
	ForecastGrosze int64  `json:"forecast_grosze"`
	Realized       string `json:"realized"`
	Pending        string `json:"pending"`
	Forecast       string `json:"forecast"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	if cached, ok := s.balanceCache.Get(balanceCacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	b, err := s.ledger.Balances(r.Context())
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	resp := balanceResponse{
		RealizedGrosze: b.Realized.Grosze,
		PendingGrosze:  b.Pending.Grosze,
		ForecastGrosze: b.Forecast.Grosze,
		Realized:       b.Realized.String(),
		Pending:        b.Pending.String(),
		Forecast:       b.Forecast.String(),
	}
	s.balanceCache.Set(balanceCacheKey, resp)
	writeJSON(w, http.StatusOK, resp)
}

type recurringRunResponse struct {
	Created      int              `json:"created"`
	TotalGrosze  int64            `json:"total_grosze"`
	Total        string           `json:"total"`
	Transactions []storage.Record `json:"transactions,omitempty"`
	Info         string           `json:"info,omitempty"`
}

func (s *Server) handleRecurringRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	templates, err := s.source.LoadTemplates(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Load templates failed", applog.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "template source unavailable")
		return
	}

	created, total, err := s.expander.Expand(r.Context(), templates, time.Now())
	if errors.Is(err, core.ErrEmptyTemplateSet) {
		// Informational, not an error: there is simply nothing to expand.
		writeJSON(w, http.StatusOK, recurringRunResponse{
			Info: "no recurring templates configured",
		})
		return
	}
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	s.invalidateReadCaches(time.Now())

	records := make([]storage.Record, 0, len(created))
	for _, t := range created {
		records = append(records, storage.EncodeRecord(t))
	}
	writeJSON(w, http.StatusOK, recurringRunResponse{
		Created:      len(records),
		TotalGrosze:  total.Grosze,
		Total:        total.String(),
		Transactions: records,
	})
}

type budgetStatusResponse struct {
	SpentGrosze int64   `json:"spent_grosze"`
	CapGrosze   int64   `json:"cap_grosze"`
	OverGrosze  int64   `json:"over_by_grosze"`
	Spent       string  `json:"spent"`
	Cap         string  `json:"cap"`
	OverBy      string  `json:"over_by"`
	Utilization float64 `json:"utilization"`
}

type budgetResponse struct {
	Year     int                             `json:"year"`
	Month    int                             `json:"month"`
	Statuses map[string]budgetStatusResponse `json:"statuses"`
	Warnings []string                        `json:"warnings,omitempty"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	now := time.Now()
	year := intQuery(r, "year", now.Year())
	month := intQuery(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid_filter", "month must be between 1 and 12")
		return
	}

	key := budgetCacheKey(year, month)
	if cached, ok := s.budgetCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	limits, err := s.source.LoadLimits(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Load limits failed", applog.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "limit source unavailable")
		return
	}

	txs, err := s.ledger.Query(r.Context(), services.Filter{})
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}

	ref := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	statuses, evalErr := services.EvaluateBudgets(txs, limits, ref)

	resp := budgetResponse{
		Year:     year,
		Month:    month,
		Statuses: make(map[string]budgetStatusResponse, len(statuses)),
	}
	for category, st := range statuses {
		resp.Statuses[category] = budgetStatusResponse{
			SpentGrosze: st.Spent.Grosze,
			CapGrosze:   st.Cap.Grosze,
			OverGrosze:  st.OverBy.Grosze,
			Spent:       st.Spent.String(),
			Cap:         st.Cap.String(),
			OverBy:      st.OverBy.String(),
			Utilization: st.Utilization,
		}
	}
	if evalErr != nil {
		// Configuration problems surface as warnings; the evaluated
		// categories are still returned.
		slog.WarnContext(r.Context(), "Budget evaluation reported problems", applog.FieldError, evalErr)
		resp.Warnings = append(resp.Warnings, evalErr.Error())
	}

	s.budgetCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

type categoriesResponse struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{
		Expense: s.expenseCategories,
		Income:  s.incomeCategories,
	})
}
