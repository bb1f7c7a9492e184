package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mshears713/Research-Body/internal/config"
	"github.com/mshears713/Research-Body/internal/db"
	"github.com/mshears713/Research-Body/internal/logging"
	"github.com/mshears713/Research-Body/internal/mission"
	"github.com/mshears713/Research-Body/internal/pipeline"
	"github.com/mshears713/Research-Body/internal/plan"
	"github.com/mshears713/Research-Body/internal/store"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run a full research mission end-to-end",
	Long: `Orchestrates a research mission: planning -> fetching -> cleaning -> scoring -> summarizing -> storing -> logging.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	RunE: runMissionCmd,
}

var (
	runConfigPath   string
	runTopic        string
	runSources      []string
	runMaxSources   int
	runStyle        string
	runMode         string
	runFetchWorkers int
	runMaxRetries   int
	runTimeout      int
	runVerbose      bool
	runDatabaseURL  string
	runOutPath      string
	runExportPath   string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config file, .json or .yaml (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runTopic, "topic", "t", "", "Research topic")
	runCommand.Flags().StringArrayVarP(&runSources, "source", "s", nil, "Source URL to fetch (repeatable; auto-discovered if not provided)")
	runCommand.Flags().IntVar(&runMaxSources, "max-sources", 0, "Maximum sources to fetch (1-20)")
	runCommand.Flags().StringVar(&runStyle, "style", "", "Summary style: technical, executive, or casual")
	runCommand.Flags().StringVarP(&runMode, "mode", "m", "", "Fetch mode: simple (planned URLs only) or intelligent (adaptive crawler)")
	runCommand.Flags().IntVar(&runFetchWorkers, "fetch-workers", 0, "Concurrent fetch workers")
	runCommand.Flags().IntVar(&runMaxRetries, "max-retries", 0, "Fetch attempts per URL")
	runCommand.Flags().IntVar(&runTimeout, "timeout", 0, "Per-URL fetch timeout in seconds")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed mission information")

	// Database URL for mission history persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	runCommand.Flags().StringVarP(&runOutPath, "out", "o", "", "Write the mission result JSON to this path")
	runCommand.Flags().StringVar(&runExportPath, "export-config", "", "Export the effective config to this path before running")

	rootCmd.AddCommand(runCommand)
}

func runMissionCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loaded, err := config.Load(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = *loaded
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("topic") {
		cfg.Topic = runTopic
	}
	if cmd.Flags().Changed("source") {
		cfg.Sources = runSources
	}
	if cmd.Flags().Changed("max-sources") {
		cfg.MaxSources = runMaxSources
	}
	if cmd.Flags().Changed("style") {
		cfg.Style = runStyle
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode = runMode
	}
	if cmd.Flags().Changed("fetch-workers") {
		cfg.FetchWorkers = runFetchWorkers
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = runMaxRetries
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = runTimeout
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())

	// Step 4: Validate required fields
	if cfg.Topic == "" {
		return fmt.Errorf("a topic is required (set --topic or provide one in the config file)")
	}

	// Export before the env fallbacks below so credentials from the
	// environment never end up in a shareable config file.
	if runExportPath != "" {
		if err := config.Save(&cfg, runExportPath); err != nil {
			return fmt.Errorf("failed to export config: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Exported config to: %s\n", runExportPath)
	}

	// Step 5: Environment fallbacks for service credentials
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.NotionAPIKey == "" {
		cfg.NotionAPIKey = os.Getenv("NOTION_API_KEY")
	}
	if cfg.NotionDatabaseID == "" {
		cfg.NotionDatabaseID = os.Getenv("NOTION_DATABASE_ID")
	}
	if cfg.SearchAPIKey == "" {
		cfg.SearchAPIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if cfg.SearchEngineID == "" {
		cfg.SearchEngineID = os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	}

	// Step 6: Mission history store (optional; missions run without it)
	var history pipeline.History
	var missionLogger logging.Logger = logging.NewMemoryLogger(logging.DefaultMaxEntries)
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure database schema: %w", err)
		}
		history = database
		missionLogger = logging.NewMultiLogger(missionLogger, logging.NewDatabaseLogger(database))
	}

	// Step 7: Search-backed source discovery (optional; the planner falls
	// back to heuristic search URLs without it)
	var discoverer plan.Discoverer
	if cfg.SearchAPIKey != "" && cfg.SearchEngineID != "" {
		d, err := plan.NewSearchDiscoverer(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stdout, "Warning: search discovery unavailable: %v\n", err)
		} else {
			discoverer = d
		}
	}

	req := &mission.Request{
		Topic:      cfg.Topic,
		Sources:    cfg.Sources,
		MaxSources: cfg.MaxSources,
		Style:      mission.Style(cfg.Style),
	}

	orch := pipeline.New(pipeline.Options{
		Planner:       plan.NewPlanner(discoverer),
		Store:         store.NewClient(&store.Options{APIKey: cfg.NotionAPIKey, DatabaseID: cfg.NotionDatabaseID}),
		Logger:        missionLogger,
		History:       history,
		Mode:          mission.FetchMode(cfg.Mode),
		MaxRetries:    cfg.MaxRetries,
		TimeoutPerURL: time.Duration(cfg.TimeoutSeconds) * time.Second,
		FetchWorkers:  cfg.FetchWorkers,
		Verbose:       cfg.Verbose,
		Out:           os.Stdout,
	})

	result, err := orch.ExecuteMission(ctx, req)
	if err != nil {
		return fmt.Errorf("mission failed: %w", err)
	}

	// The result file is written for failed missions too
	if runOutPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		if err := os.WriteFile(runOutPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write result file %s: %w", runOutPath, err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Result: %s\n", runOutPath)
	}

	if result.Status == mission.StatusFailed {
		return fmt.Errorf("mission %s failed: %s", result.MissionID, result.ErrorMessage)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Mission %s completed in %.2fs\n", result.MissionID, result.Duration.Seconds())
	_, _ = fmt.Fprintf(os.Stdout, "Sources: %d fetched, %d failed\n", len(result.Pages), len(result.FetchErrors))
	_, _ = fmt.Fprintf(os.Stdout, "Summaries: %d (composite score %.2f)\n", len(result.Summaries), result.Scores.Composite)
	if result.StorageSuccess {
		_, _ = fmt.Fprintf(os.Stdout, "Stored to knowledge base\n")
	}

	return nil
}
