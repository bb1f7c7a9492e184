// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mshears713/Research-Body/internal/crawl"
	"github.com/mshears713/Research-Body/internal/mission"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPlan outputs a human-readable summary of the mission plan.
func (p *Printer) PrintPlan(plan *mission.Plan) {
	if plan == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Topic:    %s\n", plan.Topic))
	sb.WriteString(fmt.Sprintf("Mission:  %s\n", plan.MissionID))
	sb.WriteString("\n")

	if len(plan.TargetURLs) > 0 {
		sb.WriteString(fmt.Sprintf("Target URLs (%d):\n", len(plan.TargetURLs)))
		count := min(len(plan.TargetURLs), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", plan.TargetURLs[i]))
		}
		if len(plan.TargetURLs) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(plan.TargetURLs)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(plan.Keywords) > 0 {
		keywords := strings.Join(plan.Keywords, ", ")
		if len(keywords) > 45 {
			keywords = keywords[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Keywords: %s\n", keywords))
	}
	if plan.Rationale != "" {
		rationale := plan.Rationale
		if len(rationale) > 50 {
			rationale = rationale[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("Why:      %s\n", rationale))
	}

	p.printBox("MISSION PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCrawlSession outputs the crawler's decision trail for one mission.
func (p *Printer) PrintCrawlSession(session *crawl.Session) {
	if session == nil || len(session.Decisions) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages fetched: %d\n\n", len(session.Pages)))

	counts := session.DecisionCounts()
	actions := make([]string, 0, len(counts))
	for action := range counts {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	for _, action := range actions {
		sb.WriteString(fmt.Sprintf("  %-12s %d\n", action, counts[action]))
	}
	sb.WriteString("\n")

	sb.WriteString("Recent decisions:\n")
	start := max(len(session.Decisions)-maxItemsToShow, 0)
	for i := start; i < len(session.Decisions); i++ {
		d := session.Decisions[i]
		url := d.URL
		if len(url) > 38 {
			url = url[:35] + "..."
		}
		sb.WriteString(fmt.Sprintf("• [%s] %s\n", d.Action, url))
		reason := d.Reason
		if len(reason) > 45 {
			reason = reason[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("  %s (%.2f)\n", reason, d.Relevance))
	}

	p.printBox("CRAWL DECISIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScores outputs the content-quality scores for the mission.
func (p *Printer) PrintScores(scores *mission.Scores) {
	if scores == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keyword relevance:  %.2f\n", scores.KeywordRelevance))
	sb.WriteString(fmt.Sprintf("Average quality:    %.2f\n", scores.AvgQuality))
	sb.WriteString(fmt.Sprintf("Source diversity:   %.2f\n", scores.Diversity))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Composite:          %.2f", scores.Composite))

	p.printBox("CONTENT SCORES", sb.String())
}

// PrintSummaries outputs the generated summaries with scores and key points.
func (p *Printer) PrintSummaries(summaries []mission.Summary) {
	if len(summaries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d summaries:\n\n", len(summaries)))

	count := min(len(summaries), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := summaries[i]
		title := s.Title
		if title == "" {
			title = s.SourceURL
		}
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("    Score: %.2f  Words: %d\n", s.Score, s.WordCount))
		if len(s.KeyPoints) > 0 {
			point := s.KeyPoints[0]
			if len(point) > 45 {
				point = point[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Key: %s\n", point))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(summaries) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more summaries", len(summaries)-maxItemsToShow))
	}

	p.printBox("GENERATED SUMMARIES", sb.String())
}

// PrintFetchErrors outputs per-URL fetch failures, or a success box when
// every source came back.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFetchErrors(fetchErrors map[string]string) {
	if len(fetchErrors) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL SOURCES FETCHED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	urls := make([]string, 0, len(fetchErrors))
	for url := range fetchErrors {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Failed %d sources:\n\n", len(urls)))

	for i, url := range urls {
		reason := fetchErrors[url]
		if len(reason) > 45 {
			reason = reason[:42] + "..."
		}
		short := url
		if len(short) > 45 {
			short = short[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", short))
		sb.WriteString(fmt.Sprintf("  %s\n", reason))
		if i < len(urls)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("FETCH ERRORS", sb.String())
}

// PrintResult outputs the final mission outcome.
func (p *Printer) PrintResult(result *mission.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:    %s\n", result.Status))
	sb.WriteString(fmt.Sprintf("Mode:      %s\n", result.Mode))
	sb.WriteString(fmt.Sprintf("Duration:  %.2fs\n", result.Duration.Seconds()))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Sources:   %d fetched, %d failed\n", len(result.Pages), len(result.FetchErrors)))
	sb.WriteString(fmt.Sprintf("Documents: %d\n", len(result.Documents)))
	sb.WriteString(fmt.Sprintf("Summaries: %d\n", len(result.Summaries)))
	sb.WriteString(fmt.Sprintf("Composite: %.2f\n", result.Scores.Composite))

	if result.CrawlStats != nil {
		sb.WriteString(fmt.Sprintf("Crawler:   %d fetched, %d failed\n",
			result.CrawlStats.PagesFetched, result.CrawlStats.PagesFailed))
	}

	stored := "no"
	if result.StorageSuccess {
		stored = "yes"
	}
	sb.WriteString(fmt.Sprintf("Stored:    %s\n", stored))

	if result.ErrorMessage != "" {
		msg := result.ErrorMessage
		if len(msg) > 45 {
			msg = msg[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("\n⚠ %s\n", msg))
	}

	p.printBox("MISSION RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
