package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/sponsorscout/internal/flow"
	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/presenter"
	"github.com/amishk599/sponsorscout/internal/tui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.csv>",
	Short: "Upload a CSV of job listings once and exit",
	Long:  "One-shot upload: sends the file to the selected server, logs the acknowledgement and exits non-zero on failure.",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
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

	file := model.NewFileRef(args[0])
	if !uploadOnce(ctx, orch, file) {
		os.Exit(1)
	}
	fmt.Println(presenter.RenderSelectedFile(presenter.Build(orch.State())))
	return nil
}

// uploadOnce runs an upload behind the spinner and reports whether it
// succeeded. Failures are printed the way the TUI shows them.
func uploadOnce(ctx context.Context, orch *flow.Orchestrator, file model.FileRef) bool {
	err := tui.RunLoader(ctx, "Uploading "+file.Name, func(ctx context.Context) error {
		return orch.Upload(ctx, file)
	})
	if err == nil {
		return true
	}
	if orch.State().ErrorMessage != "" {
		fmt.Fprintln(os.Stderr, presenter.Render(presenter.Build(orch.State()), presenter.Options{}))
	} else {
		fmt.Fprintf(os.Stderr, "upload %s: %v\n", file.Name, err)
	}
	return false
}
