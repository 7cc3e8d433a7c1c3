package cmd

import (
	"fmt"

	"github.com/mindguard/mindguard/internal/config"
	"github.com/mindguard/mindguard/internal/content"
	"github.com/mindguard/mindguard/internal/event"
	"github.com/mindguard/mindguard/internal/logging"
	"github.com/mindguard/mindguard/internal/orchestrator"
	"github.com/mindguard/mindguard/internal/tui"
	"github.com/mindguard/mindguard/internal/watch"
	"github.com/spf13/cobra"
)

var (
	runURL  string
	runPage string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the assistant overlay",
	Long: `Run starts the assistant against a page: the URL you are on and,
optionally, a snapshot file of the page's HTML. The snapshot is re-scanned
every few seconds and whenever the file changes, so piping a live page dump
into it behaves like watching the page itself.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "URL of the observed page")
	runCmd.Flags().StringVar(&runPage, "page", "", "path to an HTML snapshot of the page")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logger *logging.Logger
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
	} else {
		logger = logging.NopLogger()
	}
	defer logger.Close()

	library := content.NewLibrary()
	if cfg.Content.PackFile != "" {
		if err := library.LoadPack(cfg.Content.PackFile); err != nil {
			return fmt.Errorf("failed to load content pack: %w", err)
		}
	}

	bus := event.NewBus()

	orch := orchestrator.New(bus, library, cfg.Assist,
		orchestrator.WithLogger(logger.WithComponent("orchestrator")))
	orch.Start()
	defer orch.Stop()

	watcher := watch.New(bus, runURL, runPage,
		watch.WithPollInterval(cfg.Detection.PollInterval()),
		watch.WithLogger(logger.WithComponent("watch")))
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start detection watcher: %w", err)
	}
	defer watcher.Stop()

	app := tui.New(orch, bus)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
