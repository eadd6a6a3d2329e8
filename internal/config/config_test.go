package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	return &Config{
		Port:              "8081",
		DataBackend:       "file",
		LedgerFilePath:    filepath.Join(dir, "moj_portfel.json"),
		TemplatesFilePath: filepath.Join(dir, "cykliczne.json"),
		LimitsFilePath:    filepath.Join(dir, "limity.json"),
		SQLiteDBPath:      filepath.Join(dir, "portfel.db"),
		SyncInterval:      30 * time.Second,
		RecurringInterval: time.Hour,
		ExpenseCategories: []string{"Jedzenie", "Inne"},
		IncomeCategories:  []string{"Wypłata", "Inne"},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "not-a-port"
	cfg.DataBackend = "oracle"
	cfg.SyncInterval = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"invalid port", "invalid data backend", "invalid sync interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestValidateRejectsBadAMQPScheme(t *testing.T) {
	cfg := validConfig(t)
	cfg.AMQPURL = "http://localhost:5672/"
	cfg.AMQPExchange = "portfel"
	cfg.AMQPQueue = "sync_ledger"

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "AMQP URL scheme") {
		t.Fatalf("expected AMQP scheme error, got %v", err)
	}
}

func TestValidateSheetsRequiresSpreadsheetID(t *testing.T) {
	cfg := validConfig(t)
	cfg.DataBackend = "sheets"
	cfg.GoogleSpreadsheetID = ""

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "Spreadsheet ID") {
		t.Fatalf("expected spreadsheet ID error, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.DataBackend != "file" {
		t.Errorf("DataBackend = %q, want file", cfg.DataBackend)
	}
	if len(cfg.ExpenseCategories) == 0 || cfg.ExpenseCategories[len(cfg.ExpenseCategories)-1] != "Inne" {
		t.Errorf("ExpenseCategories = %v, want default set ending in Inne", cfg.ExpenseCategories)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("PORTFEL_TEST_LIST", "A, B ,,C")
	got := getEnvList("PORTFEL_TEST_LIST", []string{"x"})
	if len(got) != 3 || got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Errorf("got %v, want [A B C]", got)
	}

	got = getEnvList("PORTFEL_TEST_LIST_UNSET", []string{"x"})
	if len(got) != 1 || got[0] != "x" {
		t.Errorf("got %v, want fallback [x]", got)
	}
}
