// Package main provides the entry point for the research agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "research_agent",
	Short: "Autonomous research mission runner",
	Long:  "Research agent plans, fetches, cleans, scores, and summarizes web sources for a research topic, with an adaptive crawler, mission history, and trend analysis over past missions.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
