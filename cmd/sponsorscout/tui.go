package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/sponsorscout/internal/tui"
)

var initialFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive session (default)",
	Long:  "Shows the server picker when several servers are enabled, then opens the upload and query TUI.",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVarP(&initialFile, "file", "f", "", "CSV file to upload as soon as the session opens")
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Anything written to the terminal while the alt screen is up corrupts
	// the display, so logs go to --log-file or nowhere.
	out, closeLog, err := openLogOutput(io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	logger := setupLogger(out, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	srv, ok, err := resolveServer(cfg, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if !ok {
		return nil
	}

	orch, m, cleanup, err := buildOrchestrator(cfg, srv, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	startMetrics(ctx, cfg, m, logger)

	logger.Info("session started", "server", srv.Name, "base_url", srv.BaseURL)
	err = tui.Run(ctx, orch, tui.Options{
		ServerName:     srv.Name,
		InitialFile:    initialFile,
		HistoryEnabled: cfg.History.Enabled,
		HistoryLimit:   cfg.History.Limit,
	})
	if err != nil {
		logger.Error("tui failed", "error", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	logger.Info("session ended")
	return nil
}
