package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"portfel/internal/core"
	"portfel/internal/storage"
)

// Client mirrors the ledger to a Google spreadsheet. The transactions
// sheet holds one wire record per row (data, typ, kategoria, kwota,
// opis); recurring templates and budget limits live on their own sheets
// and are read-only from here.
type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	ledgerSheet    string
	templatesSheet string
	limitsSheet    string
}

var (
	_ storage.Store          = (*Client)(nil)
	_ storage.TemplateSource = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional sheet names: GOOGLE_LEDGER_SHEET_NAME (default "Transakcje"),
// GOOGLE_TEMPLATES_SHEET_NAME (default "Cykliczne"),
// GOOGLE_LIMITS_SHEET_NAME (default "Limity").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	ledgerSheet := strings.TrimSpace(os.Getenv("GOOGLE_LEDGER_SHEET_NAME"))
	if ledgerSheet == "" {
		ledgerSheet = "Transakcje"
	}
	templatesSheet := strings.TrimSpace(os.Getenv("GOOGLE_TEMPLATES_SHEET_NAME"))
	if templatesSheet == "" {
		templatesSheet = "Cykliczne"
	}
	limitsSheet := strings.TrimSpace(os.Getenv("GOOGLE_LIMITS_SHEET_NAME"))
	if limitsSheet == "" {
		limitsSheet = "Limity"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		ledgerSheet:    ledgerSheet,
		templatesSheet: templatesSheet,
		limitsSheet:    limitsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// Load implements storage.Store: the transactions sheet read top to
// bottom, header row skipped. Row order is the insertion order.
func (c *Client) Load(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, storage.Unavailable("load ledger", errors.New("sheets service not initialized"))
	}

	rng := fmt.Sprintf("%s!A:E", c.ledgerSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, storage.Unavailable("read ledger sheet", err)
	}

	var txs []core.Transaction
	for i, row := range resp.Values {
		cols := toStrings(row)
		if i == 0 && isHeaderRow(cols) {
			continue
		}
		if isBlankRow(cols) {
			continue
		}
		t, err := storage.DecodeRecord(rowToRecord(cols))
		if err != nil {
			return nil, storage.Unavailable(fmt.Sprintf("decode ledger row %d", i+1), err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

// Save implements storage.Store: clear the data range, then write the
// whole sequence back under the header.
func (c *Client) Save(ctx context.Context, txs []core.Transaction) error {
	if c.svc == nil {
		return storage.Unavailable("save ledger", errors.New("sheets service not initialized"))
	}

	clearRange := fmt.Sprintf("%s!A2:E", c.ledgerSheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return storage.Unavailable("clear ledger sheet", err)
	}

	if len(txs) == 0 {
		return nil
	}

	values := make([][]any, 0, len(txs))
	for _, t := range txs {
		values = append(values, recordToRow(storage.EncodeRecord(t)))
	}

	writeRange := fmt.Sprintf("%s!A2", c.ledgerSheet)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return storage.Unavailable("write ledger sheet", err)
	}

	slog.DebugContext(ctx, "Ledger mirrored to Google Sheets",
		"spreadsheet", c.spreadsheetID, "transactions", len(txs))
	return nil
}

// LoadTemplates implements storage.TemplateSource from the templates
// sheet: typ, kategoria, kwota, dzien, opis.
func (c *Client) LoadTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	if c.svc == nil {
		return nil, storage.Unavailable("load templates", errors.New("sheets service not initialized"))
	}

	rng := fmt.Sprintf("%s!A2:E", c.templatesSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, storage.Unavailable("read templates sheet", err)
	}

	var templates []core.RecurringTemplate
	for i, row := range resp.Values {
		cols := toStrings(row)
		if isBlankRow(cols) {
			continue
		}
		tpl, err := parseTemplateRow(cols)
		if err != nil {
			return nil, storage.Unavailable(fmt.Sprintf("decode template row %d", i+2), err)
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

// LoadLimits implements storage.TemplateSource from the limits sheet:
// kategoria, limit.
func (c *Client) LoadLimits(ctx context.Context) ([]core.BudgetLimit, error) {
	if c.svc == nil {
		return nil, storage.Unavailable("load limits", errors.New("sheets service not initialized"))
	}

	rng := fmt.Sprintf("%s!A2:B", c.limitsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, storage.Unavailable("read limits sheet", err)
	}

	var limits []core.BudgetLimit
	for i, row := range resp.Values {
		cols := toStrings(row)
		if isBlankRow(cols) {
			continue
		}
		limit, err := parseLimitRow(cols)
		if err != nil {
			return nil, storage.Unavailable(fmt.Sprintf("decode limit row %d", i+2), err)
		}
		limits = append(limits, limit)
	}
	return limits, nil
}
