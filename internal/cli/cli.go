package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/villagefoodie/foodie-events/internal/browser"
	"github.com/villagefoodie/foodie-events/internal/config"
	"github.com/villagefoodie/foodie-events/internal/extract"
	"github.com/villagefoodie/foodie-events/internal/logging"
	"github.com/villagefoodie/foodie-events/internal/pipeline"
	"github.com/villagefoodie/foodie-events/internal/store"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig     string
	flagDryRun     bool
	flagVerbose    bool
	flagLogFile    string
	flagMaxSources int
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foodie-events",
		Short: "Scrape food truck schedules into the events spreadsheet",
		Long: `Scrapes every truck and venue source declared in the spreadsheet,
extracts upcoming events, and appends the deduplicated results to the
Events tab. With --dry-run results go to a local database instead.`,
		SilenceUsage: true,
		RunE:         runScrape,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Write to the local database instead of the spreadsheet")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	cmd.Flags().StringVar(&flagLogFile, "log-file", "", "Log file path (overrides config)")
	cmd.Flags().IntVar(&flagMaxSources, "max-sources", 0, "Process at most N sources (0 = all)")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	// A missing .env is fine; the environment may already be set.
	godotenv.Load()

	cfg, err := config.Load(flagConfig, flagDryRun)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if flagMaxSources > 0 {
		cfg.MaxSources = flagMaxSources
	}

	log := logging.New(cfg.LogFile, flagVerbose)
	ctx := cmd.Context()

	rows, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	b, err := browser.Launch(browser.Config{Logger: log})
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	defer b.Close()

	gen := extract.NewOpenAIGenerator(cfg.OpenAIKey, cfg.Model)

	runner := &pipeline.Runner{
		Store:     rows,
		Browser:   b,
		Extractor: extract.New(gen, log),
		Log:       log,
		Tabs: pipeline.Tabs{
			Events: cfg.Tabs.Events,
			Trucks: cfg.Tabs.Trucks,
			Venues: cfg.Tabs.Venues,
		},
		NavigationTimeout: cfg.NavigationTimeout,
		MaxSources:        cfg.MaxSources,
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	fmt.Printf("Processed %d sources: %d new events, %d duplicates, %d skipped, %d failed\n",
		summary.Sources, summary.Accepted, summary.Duplicates, summary.Skipped, summary.Failed)
	return nil
}

// buildStore picks the spreadsheet or the local database depending on
// --dry-run. The cleanup func is safe to call in either case.
func buildStore(ctx context.Context, cfg *config.Config) (store.RowStore, func(), error) {
	if flagDryRun {
		s, err := store.NewSQLiteStore(cfg.LocalStorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening local store: %w", err)
		}
		return s, func() { s.Close() }, nil
	}

	s, err := store.NewSheetsStore(ctx, cfg.SheetsCreds, cfg.SpreadsheetID)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to spreadsheet: %w", err)
	}
	return s, func() {}, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
