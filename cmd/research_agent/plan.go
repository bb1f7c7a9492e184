package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mshears713/Research-Body/internal/mission"
	"github.com/mshears713/Research-Body/internal/observability"
	"github.com/mshears713/Research-Body/internal/plan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create a mission plan without running it",
	Long:  "Builds the mission plan for a topic: curated user sources or discovered search URLs, extracted keywords, and a rationale. Prints the plan and optionally writes it as JSON.",
	RunE:  runPlanCmd,
}

var (
	planTopic      string
	planSources    []string
	planMaxSources int
	planOutPath    string
)

func init() {
	planCmd.Flags().StringVarP(&planTopic, "topic", "t", "", "Research topic (required)")
	planCmd.Flags().StringArrayVarP(&planSources, "source", "s", nil, "Source URL to include (repeatable)")
	planCmd.Flags().IntVar(&planMaxSources, "max-sources", plan.DefaultMaxSources, "Maximum sources to plan (1-20)")
	planCmd.Flags().StringVarP(&planOutPath, "out", "o", "", "Write the plan JSON to this path")

	if err := planCmd.MarkFlagRequired("topic"); err != nil {
		panic(fmt.Sprintf("failed to mark topic flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlanCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	req := &mission.Request{
		Topic:      planTopic,
		Sources:    planSources,
		MaxSources: planMaxSources,
		Style:      mission.StyleTechnical,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	// Search-backed discovery when credentials are present
	var discoverer plan.Discoverer
	apiKey := os.Getenv("GOOGLE_SEARCH_API_KEY")
	engineID := os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	if apiKey != "" && engineID != "" {
		d, err := plan.NewSearchDiscoverer(ctx, apiKey, engineID)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stdout, "Warning: search discovery unavailable: %v\n", err)
		} else {
			discoverer = d
		}
	}

	missionPlan := plan.NewPlanner(discoverer).CreatePlan(ctx, req)

	observability.NewPrinter(os.Stdout).PrintPlan(missionPlan)

	if planOutPath != "" {
		data, err := json.MarshalIndent(missionPlan, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plan: %w", err)
		}
		if err := os.WriteFile(planOutPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write plan file %s: %w", planOutPath, err)
		}
		_, _ = fmt.Fprintf(os.Stdout, "Plan: %s\n", planOutPath)
	}

	return nil
}
