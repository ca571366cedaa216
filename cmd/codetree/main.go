package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	root := &cobra.Command{
		Use:           "codetree",
		Short:         "Build and serve the ARC and NAICS taxonomy trees over the IAC database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFetchCmd(log))
	root.AddCommand(newBuildCmd(log))
	root.AddCommand(newServeCmd(log))

	if err := root.Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
