package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port string

	// Source data locations
	DataDir           string
	ARCWorkbookPath   string
	NAICSWorkbookPath string
	IACWorkbookPath   string

	// IAC database acquisition
	DatabaseArchiveURL string
	DownloadPageURL    string

	// Build outputs
	SQLitePath        string
	ARCSnapshotPath   string
	NAICSSnapshotPath string

	// Auth (optional; endpoints are public when unset)
	APIKey string

	// Query limits
	SearchResultCap int
	PreviewRows     int
}

func Load() Config {
	dataDir := envOr("CODETREE_DATA_DIR", "data")

	cfg := Config{
		Port: envOr("PORT", "8091"),

		DataDir:           dataDir,
		ARCWorkbookPath:   envOr("ARC_WORKBOOK_PATH", filepath.Join(dataDir, "excel", "ARC_Codes.xlsx")),
		NAICSWorkbookPath: envOr("NAICS_WORKBOOK_PATH", filepath.Join(dataDir, "excel", "NAICS_Codes.xlsx")),
		IACWorkbookPath:   envOr("IAC_WORKBOOK_PATH", filepath.Join(dataDir, "excel", "ITAC_Database.xlsx")),

		DatabaseArchiveURL: envOr("IAC_DATABASE_ARCHIVE_URL", "https://itac.university/storage/ITAC_Database.zip"),
		DownloadPageURL:    envOr("IAC_DOWNLOAD_PAGE_URL", "https://itac.university/download"),

		SQLitePath:        envOr("IAC_SQLITE_PATH", filepath.Join(dataDir, "db", "itac.db")),
		ARCSnapshotPath:   envOr("ARC_SNAPSHOT_PATH", filepath.Join(dataDir, "db", "arc_hierarchy.json")),
		NAICSSnapshotPath: envOr("NAICS_SNAPSHOT_PATH", filepath.Join(dataDir, "db", "naics_hierarchy.json")),

		APIKey: os.Getenv("CODETREE_API_KEY"),

		SearchResultCap: envInt("SEARCH_RESULT_CAP", 100),
		PreviewRows:     envInt("PREVIEW_ROWS", 20),
	}

	if cfg.SearchResultCap <= 0 {
		cfg.SearchResultCap = 100
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 20
	}

	return cfg
}

// Validate checks the settings that every command depends on.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("bad port %q: %w", c.Port, err)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
