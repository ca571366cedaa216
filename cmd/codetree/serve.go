package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iacdata/codetree/internal/api"
	"github.com/iacdata/codetree/internal/config"
	"github.com/iacdata/codetree/internal/hierarchy"
	"github.com/iacdata/codetree/internal/iacdb"
	"github.com/spf13/cobra"
)

func newServeCmd(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the taxonomy and IAC database query API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			arc, arcCodes, err := hierarchy.LoadARCSnapshot(cfg.ARCSnapshotPath)
			if err != nil {
				return fmt.Errorf("load ARC snapshot (run `codetree build` first): %w", err)
			}
			naics, err := hierarchy.LoadNAICSSnapshot(cfg.NAICSSnapshotPath)
			if err != nil {
				return fmt.Errorf("load NAICS snapshot (run `codetree build` first): %w", err)
			}
			store, err := iacdb.Open(cfg.SQLitePath, log)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := api.NewServer(arc, arcCodes, naics, store, log, cfg)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
			}()

			log.Info("starting codetree",
				"port", cfg.Port,
				"arc_nodes", arc.Len(),
				"naics", naics.Stats().String(),
			)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}
