package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mshears713/Research-Body/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past missions from the history database",
	Long:  "Lists recent missions recorded in PostgreSQL, with optional status filtering, or shows one mission in detail with its event log.",
	RunE:  runHistoryCmd,
}

var (
	historyDatabaseURL string
	historyLimit       int
	historyStatus      string
	historyMissionID   string
)

func init() {
	historyCmd.Flags().StringVar(&historyDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum missions to list")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "Filter by status: running, completed, or failed")
	historyCmd.Flags().StringVar(&historyMissionID, "mission", "", "Show one mission in detail, with its event log")

	rootCmd.AddCommand(historyCmd)
}

func runHistoryCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	switch historyStatus {
	case "", "running", "completed", "failed":
	default:
		return fmt.Errorf("invalid status %q: must be running, completed, or failed", historyStatus)
	}

	databaseURL := historyDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if historyMissionID != "" {
		return showMission(ctx, database, historyMissionID)
	}
	return listMissions(ctx, database)
}

func listMissions(ctx context.Context, database *db.DB) error {
	var missions []db.Mission
	var err error
	if historyStatus != "" {
		missions, err = database.ListMissionsByStatus(ctx, historyStatus, historyLimit)
	} else {
		missions, err = database.ListMissions(ctx, historyLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to list missions: %w", err)
	}

	if len(missions) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "No missions recorded\n")
		return nil
	}

	_, _ = fmt.Fprintf(os.Stdout, "%-22s %-10s %-17s %s\n", "MISSION", "STATUS", "STARTED", "TOPIC")
	for _, m := range missions {
		_, _ = fmt.Fprintf(os.Stdout, "%s\n", formatMissionRow(m))
	}

	counts, err := database.CountMissionsByStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to count missions: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nTotal: %d completed, %d failed, %d running\n",
		counts["completed"], counts["failed"], counts["running"])

	return nil
}

func showMission(ctx context.Context, database *db.DB, missionID string) error {
	m, err := database.GetMission(ctx, missionID)
	if err != nil {
		return fmt.Errorf("failed to load mission: %w", err)
	}
	if m == nil {
		return fmt.Errorf("mission %s not found", missionID)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Mission:   %s\n", m.MissionID)
	_, _ = fmt.Fprintf(os.Stdout, "Topic:     %s\n", m.Topic)
	_, _ = fmt.Fprintf(os.Stdout, "Status:    %s\n", m.Status)
	_, _ = fmt.Fprintf(os.Stdout, "Style:     %s\n", m.Style)
	_, _ = fmt.Fprintf(os.Stdout, "Mode:      %s\n", m.Mode)
	_, _ = fmt.Fprintf(os.Stdout, "Started:   %s\n", m.StartedAt.Format(time.RFC3339))
	if m.CompletedAt != nil {
		_, _ = fmt.Fprintf(os.Stdout, "Completed: %s\n", m.CompletedAt.Format(time.RFC3339))
	}
	if m.ErrorMessage != nil && *m.ErrorMessage != "" {
		_, _ = fmt.Fprintf(os.Stdout, "Error:     %s\n", *m.ErrorMessage)
	}

	logs, err := database.GetMissionLogs(ctx, missionID)
	if err != nil {
		return fmt.Errorf("failed to load mission logs: %w", err)
	}
	if len(logs) == 0 {
		return nil
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nEvents:\n")
	for _, entry := range logs {
		_, _ = fmt.Fprintf(os.Stdout, "  %s  %-16s %s\n",
			entry.Timestamp.Format("15:04:05"), entry.EventType, entry.Message)
	}

	return nil
}

func formatMissionRow(m db.Mission) string {
	return fmt.Sprintf("%-22s %-10s %-17s %s",
		m.MissionID, m.Status, m.StartedAt.Format("2006-01-02 15:04"), clipText(m.Topic, 40))
}

func clipText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
