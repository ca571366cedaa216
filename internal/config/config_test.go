package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8091" {
		t.Errorf("expected default port 8091, got %q", cfg.Port)
	}
	if cfg.ARCWorkbookPath != filepath.Join("data", "excel", "ARC_Codes.xlsx") {
		t.Errorf("unexpected ARC workbook path %q", cfg.ARCWorkbookPath)
	}
	if cfg.SearchResultCap != 100 {
		t.Errorf("expected default search cap 100, got %d", cfg.SearchResultCap)
	}
	if cfg.PreviewRows != 20 {
		t.Errorf("expected default preview rows 20, got %d", cfg.PreviewRows)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CODETREE_DATA_DIR", "/var/lib/codetree")
	t.Setenv("SEARCH_RESULT_CAP", "25")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.SQLitePath != filepath.Join("/var/lib/codetree", "db", "itac.db") {
		t.Errorf("unexpected sqlite path %q", cfg.SQLitePath)
	}
	if cfg.SearchResultCap != 25 {
		t.Errorf("expected search cap 25, got %d", cfg.SearchResultCap)
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("SEARCH_RESULT_CAP", "lots")
	cfg := Load()
	if cfg.SearchResultCap != 100 {
		t.Errorf("expected fallback 100, got %d", cfg.SearchResultCap)
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := cfg
	bad.Port = "not-a-port"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for non-numeric port")
	}

	bad = cfg
	bad.DataDir = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty data dir")
	}
}
