package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/sponsorscout/internal/client"
	"github.com/amishk599/sponsorscout/internal/config"
	"github.com/amishk599/sponsorscout/internal/flow"
	"github.com/amishk599/sponsorscout/internal/history"
	"github.com/amishk599/sponsorscout/internal/metrics"
	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/session"
	"github.com/amishk599/sponsorscout/internal/tui"
)

const defaultConfigPath = "sponsorscout.yaml"

var (
	cfgPath    string
	debug      bool
	serverName string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "sponsorscout",
	Short: "Find job listings that sponsor work visas",
	Long: "sponsorscout uploads a CSV of job listings to a sponsorship service and " +
		"answers free-text questions about which roles offer visa sponsorship.",
	// No subcommand opens the interactive session.
	RunE:         runTUI,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: SPONSORSCOUT_CONFIG env var or ./sponsorscout.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&serverName, "server", "s", "", "name of the configured server to use")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file (the TUI discards logs otherwise)")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > SPONSORSCOUT_CONFIG env var > "./sponsorscout.yaml".
// Only a missing default file falls back to the built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if env := os.Getenv("SPONSORSCOUT_CONFIG"); env != "" {
		return config.Load(env)
	}
	return config.LoadOrDefault(defaultConfigPath)
}

func setupLogger(w io.Writer, dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

// openLogOutput returns the --log-file writer, or fallback when the flag is unset.
func openLogOutput(fallback io.Writer) (io.Writer, func(), error) {
	if logFile == "" {
		return fallback, func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// resolveServer picks the server to talk to. --server wins; otherwise the
// only enabled server is used, or the picker is shown when interactive.
// ok is false when the user quit the picker.
func resolveServer(cfg *config.Config, interactive bool) (srv config.ServerConfig, ok bool, err error) {
	if serverName != "" {
		s, found := cfg.Server(serverName)
		if !found {
			return config.ServerConfig{}, false, fmt.Errorf("server %q is not configured or not enabled", serverName)
		}
		return s, true, nil
	}

	enabled := cfg.EnabledServers()
	if len(enabled) == 1 || !interactive {
		return enabled[0], true, nil
	}

	choice, err := tui.RunServerPicker(enabled)
	if err != nil {
		return config.ServerConfig{}, false, err
	}
	if choice < 0 {
		return config.ServerConfig{}, false, nil
	}
	return enabled[choice], true, nil
}

// buildOrchestrator wires the service client, session history and metrics
// for one run against srv. cleanup releases the history database.
func buildOrchestrator(cfg *config.Config, srv config.ServerConfig, logger *slog.Logger) (orch *flow.Orchestrator, m *metrics.Metrics, cleanup func(), err error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	svc := client.NewClient(srv.BaseURL, "sponsorscout/"+version, httpClient)

	var hist model.HistoryStore = history.NewNopHistory()
	cleanup = func() {}
	if cfg.History.Enabled {
		h, err := history.NewSQLiteHistory()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open history: %w", err)
		}
		hist = h
		cleanup = func() { h.Close() }
	}

	m = metrics.New()
	return flow.New(session.NewStore(), svc, hist, m, logger), m, cleanup, nil
}

// startMetrics serves /metrics in the background when metrics.listen_addr is set.
func startMetrics(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) {
	if cfg.Metrics.ListenAddr == "" {
		return
	}
	go func() {
		if err := m.Serve(ctx, cfg.Metrics.ListenAddr, logger); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}
