package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/presenter"
	"github.com/amishk599/sponsorscout/internal/tui"
)

var askFile string

var askCmd = &cobra.Command{
	Use:   "ask --file <file.csv> <question>",
	Short: "Upload a CSV, ask one question, print the answer",
	Long:  "One-shot session: uploads the file, submits the question and prints the summary and relevant jobs.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "CSV of job listings to upload first")
	_ = askCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	out, closeLog, err := openLogOutput(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeLog()
	logger := setupLogger(out, debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	srv, _, err := resolveServer(cfg, false)
	if err != nil {
		logger.Error("failed to resolve server", "error", err)
		os.Exit(1)
	}

	orch, m, cleanup, err := buildOrchestrator(cfg, srv, logger)
	if err != nil {
		logger.Error("failed to set up session", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	startMetrics(ctx, cfg, m, logger)

	if !uploadOnce(ctx, orch, model.NewFileRef(askFile)) {
		os.Exit(1)
	}

	question := strings.Join(args, " ")
	orch.SetQueryText(question)
	err = tui.RunLoader(ctx, "Asking "+srv.Name, func(ctx context.Context) error {
		return orch.SubmitQuery(ctx, question)
	})

	view := presenter.Build(orch.State())
	if err != nil && view.Error == "" {
		// Rejected before anything was sent, e.g. a blank question.
		fmt.Fprintf(os.Stderr, "ask: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(presenter.Render(view, presenter.Options{}))
	if err != nil {
		os.Exit(1)
	}
	return nil
}
