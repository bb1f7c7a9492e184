package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mshears713/Research-Body/internal/crawl"
	"github.com/mshears713/Research-Body/internal/fetch"
	"github.com/mshears713/Research-Body/internal/observability"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the adaptive crawler from seed URLs",
	Long:  "Crawls from seed URLs, scoring each page's relevance to the topic, following links from strong pages, and recording every decision in an audit trail.",
	RunE:  runCrawlCmd,
}

var (
	crawlSeeds     []string
	crawlTopic     string
	crawlKeywords  []string
	crawlMaxPages  int
	crawlDepth     int
	crawlWorkers   int
	crawlThreshold float64
	crawlOutDir    string
)

func init() {
	crawlCmd.Flags().StringArrayVarP(&crawlSeeds, "seed", "u", nil, "Seed URL to start from (repeatable, required)")
	crawlCmd.Flags().StringVarP(&crawlTopic, "topic", "t", "", "Research topic the crawl scores relevance against (required)")
	crawlCmd.Flags().StringArrayVarP(&crawlKeywords, "keyword", "k", nil, "Extra relevance keyword (repeatable)")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 10, "Maximum pages to fetch")
	crawlCmd.Flags().IntVar(&crawlDepth, "depth", crawl.DefaultMaxDepth, "Maximum link depth from the seeds")
	crawlCmd.Flags().IntVar(&crawlWorkers, "workers", 1, "Concurrent fetch workers per wave")
	crawlCmd.Flags().Float64Var(&crawlThreshold, "threshold", 0, "Relevance threshold below which pages are skipped (0 keeps the default)")
	crawlCmd.Flags().StringVarP(&crawlOutDir, "out", "o", "", "Directory to write pages.json and decisions.json into")

	if err := crawlCmd.MarkFlagRequired("seed"); err != nil {
		panic(fmt.Sprintf("failed to mark seed flag as required: %v", err))
	}
	if err := crawlCmd.MarkFlagRequired("topic"); err != nil {
		panic(fmt.Sprintf("failed to mark topic flag as required: %v", err))
	}

	rootCmd.AddCommand(crawlCmd)
}

func runCrawlCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	keywords := strings.Fields(strings.ToLower(crawlTopic))
	for _, kw := range crawlKeywords {
		keywords = append(keywords, strings.ToLower(kw))
	}

	cfg := crawl.DefaultConfig()
	if crawlWorkers > 0 {
		cfg.FetchWorkers = crawlWorkers
	}
	if crawlThreshold > 0 {
		cfg.RelevanceThreshold = crawlThreshold
	}

	crawler := crawl.NewCrawler(fetch.NewClient(fetch.DefaultOptions()), cfg)
	session := crawler.Crawl(ctx, crawlSeeds, keywords, crawlMaxPages, crawlDepth)

	observability.NewPrinter(os.Stdout).PrintCrawlSession(session)
	_, _ = fmt.Fprintf(os.Stdout, "Crawled %d pages (%d decisions)\n", len(session.Pages), len(session.Decisions))

	if crawlOutDir == "" {
		return nil
	}

	if err := os.MkdirAll(crawlOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", crawlOutDir, err)
	}

	pagesPath := filepath.Join(crawlOutDir, "pages.json")
	pagesJSON, err := json.MarshalIndent(session.Pages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pages to JSON: %w", err)
	}
	if err := os.WriteFile(pagesPath, pagesJSON, 0644); err != nil {
		return fmt.Errorf("failed to write pages file %s: %w", pagesPath, err)
	}

	decisionsPath := filepath.Join(crawlOutDir, "decisions.json")
	decisionsJSON, err := json.MarshalIndent(session.Decisions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal decisions to JSON: %w", err)
	}
	if err := os.WriteFile(decisionsPath, decisionsJSON, 0644); err != nil {
		return fmt.Errorf("failed to write decisions file %s: %w", decisionsPath, err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Pages: %s\n", pagesPath)
	_, _ = fmt.Fprintf(os.Stdout, "Decisions: %s\n", decisionsPath)

	return nil
}
