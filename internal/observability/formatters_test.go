package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mshears713/Research-Body/internal/crawl"
	"github.com/mshears713/Research-Body/internal/mission"
)

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := &mission.Plan{
		MissionID:  "mission_abc123def456",
		Topic:      "quantum computing",
		TargetURLs: []string{"https://example.com/a", "https://example.com/b"},
		Keywords:   []string{"quantum", "computing"},
		Rationale:  "seed sources from search",
	}

	p.PrintPlan(plan)
	output := buf.String()

	assert.Contains(t, output, "MISSION PLAN")
	assert.Contains(t, output, "quantum computing")
	assert.Contains(t, output, "mission_abc123def456")
	assert.Contains(t, output, "https://example.com/a")
	assert.Contains(t, output, "quantum, computing")
}

func TestPrintPlan_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPlan(nil)

	assert.Empty(t, buf.String())
}

func TestPrintPlan_TruncatesURLList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := &mission.Plan{
		MissionID: "mission_abc123def456",
		Topic:     "quantum computing",
		TargetURLs: []string{
			"https://example.com/1", "https://example.com/2", "https://example.com/3",
			"https://example.com/4", "https://example.com/5", "https://example.com/6",
			"https://example.com/7",
		},
	}

	p.PrintPlan(plan)
	output := buf.String()

	assert.Contains(t, output, "Target URLs (7)")
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "https://example.com/6")
}

func TestPrintCrawlSession(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	session := &crawl.Session{
		Pages: []crawl.Page{{URL: "https://example.com/a", Content: "body"}},
		Decisions: []crawl.Decision{
			{URL: "https://example.com/a", Action: crawl.ActionFetch, Reason: "seed url", Relevance: 1.0, Timestamp: time.Now()},
			{URL: "https://example.com/b", Action: crawl.ActionSkip, Reason: "below relevance threshold", Relevance: 0.1, Timestamp: time.Now()},
		},
	}

	p.PrintCrawlSession(session)
	output := buf.String()

	assert.Contains(t, output, "CRAWL DECISIONS")
	assert.Contains(t, output, "Pages fetched: 1")
	assert.Contains(t, output, "fetch")
	assert.Contains(t, output, "skip")
	assert.Contains(t, output, "below relevance threshold")
	assert.Contains(t, output, "(0.10)")
}

func TestPrintCrawlSession_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCrawlSession(&crawl.Session{})

	assert.Empty(t, buf.String())
}

func TestPrintScores(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScores(&mission.Scores{
		KeywordRelevance: 0.8,
		AvgQuality:       0.6,
		Diversity:        1.0,
		Composite:        0.76,
	})
	output := buf.String()

	assert.Contains(t, output, "CONTENT SCORES")
	assert.Contains(t, output, "Keyword relevance:  0.80")
	assert.Contains(t, output, "Composite:          0.76")
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	summaries := []mission.Summary{
		{
			SourceURL: "https://example.com/a",
			Title:     "Quantum Advances",
			Score:     0.85,
			WordCount: 120,
			KeyPoints: []string{"Error correction improved"},
		},
		{
			SourceURL: "https://example.com/b",
			Score:     0.6,
			WordCount: 90,
		},
	}

	p.PrintSummaries(summaries)
	output := buf.String()

	assert.Contains(t, output, "GENERATED SUMMARIES")
	assert.Contains(t, output, "Generated 2 summaries")
	assert.Contains(t, output, "#1  Quantum Advances")
	assert.Contains(t, output, "Score: 0.85")
	assert.Contains(t, output, "Error correction improved")
	// Title falls back to the source URL.
	assert.Contains(t, output, "#2  https://example.com/b")
}

func TestPrintFetchErrors_WithErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFetchErrors(map[string]string{
		"https://example.com/a": "timeout after 30s",
	})
	output := buf.String()

	assert.Contains(t, output, "FETCH ERRORS")
	assert.Contains(t, output, "https://example.com/a")
	assert.Contains(t, output, "timeout after 30s")
}

func TestPrintFetchErrors_NoErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFetchErrors(nil)
	output := buf.String()

	assert.Contains(t, output, "ALL SOURCES FETCHED")
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &mission.Result{
		MissionID: "mission_abc123def456",
		Topic:     "quantum computing",
		Status:    mission.StatusCompleted,
		Mode:      mission.ModeIntelligent,
		Pages:     []mission.Page{{URL: "https://example.com/a"}},
		Documents: []mission.CleanDoc{{URL: "https://example.com/a"}},
		Summaries: []mission.Summary{{SourceURL: "https://example.com/a"}},
		Scores:    mission.Scores{Composite: 0.76},
		CrawlStats: &mission.CrawlStats{
			PagesFetched: 4,
			PagesFailed:  1,
		},
		StorageSuccess: true,
		Duration:       2500 * time.Millisecond,
	}

	p.PrintResult(result)
	output := buf.String()

	assert.Contains(t, output, "MISSION RESULT")
	assert.Contains(t, output, "Status:    completed")
	assert.Contains(t, output, "Duration:  2.50s")
	assert.Contains(t, output, "Sources:   1 fetched, 0 failed")
	assert.Contains(t, output, "Crawler:   4 fetched, 1 failed")
	assert.Contains(t, output, "Stored:    yes")
}

func TestPrintResult_FailedMission(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	result := &mission.Result{
		Status:       mission.StatusFailed,
		Mode:         mission.ModeSimple,
		ErrorMessage: "Failed to fetch any sources",
	}

	p.PrintResult(result)
	output := buf.String()

	assert.Contains(t, output, "Status:    failed")
	assert.Contains(t, output, "Failed to fetch any sources")
	assert.Contains(t, output, "Stored:    no")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := &mission.Plan{
		MissionID: "mission_abc123def456",
		Topic:     "a very long research topic name that should be truncated to fit the box",
	}

	p.PrintPlan(plan)
	output := buf.String()

	// Should contain box characters
	assert.True(t, strings.Contains(output, "┌"))
	assert.True(t, strings.Contains(output, "└"))
	assert.True(t, strings.Contains(output, "│"))
}
