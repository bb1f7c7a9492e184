package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mshears713/Research-Body/internal/db"
	"github.com/mshears713/Research-Body/internal/plan"
	"github.com/mshears713/Research-Body/internal/trends"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Analyze patterns across stored mission history",
	Long:  "Builds a trend report over recorded missions: keyword movement between time windows, monthly quality drift, per-domain success rates, and emerging topics. Optionally ranks past missions by similarity to a topic.",
	RunE:  runTrendsCmd,
}

var (
	trendsDatabaseURL string
	trendsLimit       int
	trendsTopic       string
	trendsOutPath     string
)

func init() {
	trendsCmd.Flags().StringVar(&trendsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	trendsCmd.Flags().IntVarP(&trendsLimit, "limit", "n", 100, "Maximum missions to analyze")
	trendsCmd.Flags().StringVarP(&trendsTopic, "topic", "t", "", "Also rank past missions by similarity to this topic")
	trendsCmd.Flags().StringVarP(&trendsOutPath, "out", "o", "", "Write the report to this path instead of stdout")

	rootCmd.AddCommand(trendsCmd)
}

func runTrendsCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	databaseURL := trendsDatabaseURL
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

	records, err := database.ListMissions(ctx, trendsLimit)
	if err != nil {
		return fmt.Errorf("failed to list missions: %w", err)
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "No missions recorded\n")
		return nil
	}

	history := make([]trends.Mission, 0, len(records))
	for _, m := range records {
		resultJSON, err := database.GetMissionResult(ctx, m.MissionID)
		if err != nil {
			return fmt.Errorf("failed to load result for mission %s: %w", m.MissionID, err)
		}
		history = append(history, trendsMission(m, resultScores(resultJSON)))
	}

	analyzer := trends.NewAnalyzer(history)
	report := analyzer.Report()

	if trendsOutPath != "" {
		if err := os.WriteFile(trendsOutPath, []byte(report), 0644); err != nil {
			return fmt.Errorf("failed to write report file %s: %w", trendsOutPath, err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Report: %s\n", trendsOutPath)
	} else {
		_, _ = fmt.Fprint(os.Stdout, report)
	}

	if trendsTopic != "" {
		similar := analyzer.SimilarMissions(trendsTopic, trends.DefaultTopK)
		if len(similar) == 0 {
			_, _ = fmt.Fprintf(os.Stdout, "\nNo similar missions for %q\n", trendsTopic)
			return nil
		}
		_, _ = fmt.Fprintf(os.Stdout, "\nSimilar missions for %q:\n", trendsTopic)
		for _, s := range similar {
			_, _ = fmt.Fprintf(os.Stdout, "  %.2f  %-22s %s\n", s.Similarity, s.MissionID, clipText(s.Topic, 40))
		}
	}

	return nil
}

// trendsMission maps a stored mission row to the analyzer's input record.
// The research domain is re-derived from the topic; missions still running
// fall back to their start time for windowing.
func trendsMission(m db.Mission, scores map[string]float64) trends.Mission {
	completedAt := m.StartedAt
	if m.CompletedAt != nil {
		completedAt = *m.CompletedAt
	}
	return trends.Mission{
		MissionID:   m.MissionID,
		Topic:       m.Topic,
		Status:      m.Status,
		Domain:      plan.TopicType(m.Topic),
		Scores:      scores,
		CompletedAt: completedAt,
	}
}

// resultScores pulls the scores block out of a stored mission result
// document. Missing or unreadable results yield no scores.
func resultScores(data []byte) map[string]float64 {
	if len(data) == 0 {
		return nil
	}
	var payload struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return payload.Scores
}
