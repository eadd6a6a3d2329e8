package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portfel/internal/services"
)

type transactionRequest struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// parseTransactionRequest accepts JSON bodies and form posts.
func parseTransactionRequest(r *http.Request) (transactionRequest, error) {
	var req transactionRequest

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("decode JSON body: %w", err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parse form: %w", err)
		}
		req = transactionRequest{
			Kind:        r.Form.Get("kind"),
			Amount:      r.Form.Get("amount"),
			Category:    r.Form.Get("category"),
			Description: r.Form.Get("description"),
			Date:        r.Form.Get("date"),
		}
	}

	req.Kind = strings.TrimSpace(req.Kind)
	req.Amount = strings.TrimSpace(req.Amount)
	req.Category = sanitizeInput(req.Category)
	req.Description = sanitizeInput(req.Description)
	req.Date = strings.TrimSpace(req.Date)
	return req, nil
}

// parseFilter reads the query-string filter for GET /transactions.
func parseFilter(r *http.Request) (services.Filter, error) {
	var f services.Filter

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Categories = append(f.Categories, c)
			}
		}
	}

	var err error
	if f.From, err = dateQuery(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = dateQuery(r, "to"); err != nil {
		return f, err
	}

	f.Text = strings.TrimSpace(r.URL.Query().Get("q"))
	return f, nil
}

func dateQuery(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return t, nil
}

func intQuery(r *http.Request, name string, fallback int) int {
	if raw := strings.TrimSpace(r.URL.Query().Get(name)); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// clientIP resolves the caller address behind common proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
