package main

import (
	"fmt"
	"log/slog"

	"github.com/iacdata/codetree/internal/config"
	"github.com/iacdata/codetree/internal/hierarchy"
	"github.com/iacdata/codetree/internal/iacdb"
	"github.com/iacdata/codetree/internal/workbook"
	"github.com/spf13/cobra"
)

func newBuildCmd(log *slog.Logger) *cobra.Command {
	var skipDB bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the taxonomy snapshots and the SQLite database from the source workbooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := buildARC(cfg, log); err != nil {
				return err
			}
			if err := buildNAICS(cfg, log); err != nil {
				return err
			}
			if skipDB {
				return nil
			}
			return buildDatabase(cmd, cfg, log)
		},
	}
	cmd.Flags().BoolVar(&skipDB, "skip-db", false, "rebuild only the taxonomy snapshots")
	return cmd
}

func buildARC(cfg config.Config, log *slog.Logger) error {
	entries, err := workbook.ARCEntries(cfg.ARCWorkbookPath)
	if err != nil {
		return fmt.Errorf("load ARC workbook: %w", err)
	}
	tree := hierarchy.BuildARC(entries, log)
	codes := hierarchy.ARCCodeMap(entries)

	if err := hierarchy.SaveARCSnapshot(cfg.ARCSnapshotPath, tree, codes); err != nil {
		return fmt.Errorf("save ARC snapshot: %w", err)
	}
	log.Info("built ARC hierarchy", "codes", len(codes), "nodes", tree.Len(), "snapshot", cfg.ARCSnapshotPath)
	return nil
}

func buildNAICS(cfg config.Config, log *slog.Logger) error {
	entries, err := workbook.NAICSEntries(cfg.NAICSWorkbookPath)
	if err != nil {
		return fmt.Errorf("load NAICS workbook: %w", err)
	}
	tree := hierarchy.BuildNAICS(entries, log)

	if err := hierarchy.SaveNAICSSnapshot(cfg.NAICSSnapshotPath, tree); err != nil {
		return fmt.Errorf("save NAICS snapshot: %w", err)
	}
	log.Info("built NAICS hierarchy", "stats", tree.Stats().String(), "snapshot", cfg.NAICSSnapshotPath)
	return nil
}

func buildDatabase(cmd *cobra.Command, cfg config.Config, log *slog.Logger) error {
	sheets, err := workbook.Sheets(cfg.IACWorkbookPath)
	if err != nil {
		return fmt.Errorf("load IAC workbook: %w", err)
	}

	store, err := iacdb.Open(cfg.SQLitePath, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if err := store.Init(ctx); err != nil {
		return err
	}
	stats, err := store.LoadWorkbook(ctx, sheets)
	if err != nil {
		return fmt.Errorf("load IAC database: %w", err)
	}
	log.Info("built IAC database",
		"path", cfg.SQLitePath,
		"assessments", stats.Assessments,
		"recommendations", stats.Recommendations,
		"skipped", stats.SkippedRows,
	)
	return nil
}
