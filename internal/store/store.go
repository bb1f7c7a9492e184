// Package store writes finished mission results to a Notion database.
//
// Storage is a best-effort final stage: the pipeline records whether the
// write succeeded but never fails a mission over it. When no API key or
// database ID is configured the client reports ErrNotConfigured and the
// mission is kept locally only.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mshears713/Research-Body/internal/extraction"
	"github.com/mshears713/Research-Body/internal/mission"
)

const (
	defaultBaseURL = "https://api.notion.com"
	notionVersion  = "2022-06-28"
	defaultTimeout = 15 * time.Second

	// Notion caps rich text content at 2000 characters per span and
	// pages at 100 child blocks per create call.
	maxBlockTextLen  = 2000
	maxBlocksPerPage = 100

	// maxTopicTags caps how many topic keywords become page tags.
	maxTopicTags = 5
)

// ErrNotConfigured is returned when the client has no API key or database ID.
var ErrNotConfigured = errors.New("notion api key or database id not configured")

// WriteResult identifies the created Notion page
type WriteResult struct {
	PageID string `json:"page_id"`
	URL    string `json:"url"`
}

// Options configures the Notion client
type Options struct {
	APIKey     string
	DatabaseID string
	BaseURL    string
	Timeout    time.Duration
}

// Client writes mission results to a Notion database
type Client struct {
	baseURL    string
	apiKey     string
	databaseID string
	httpClient *http.Client
}

// NewClient creates a Notion client. Missing credentials are allowed: the
// client stays in disabled mode and WriteMission returns ErrNotConfigured.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(opts.APIKey),
		databaseID: strings.TrimSpace(opts.DatabaseID),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has credentials to write with
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.databaseID != ""
}

type parentRef struct {
	DatabaseID string `json:"database_id"`
}

type pageRequest struct {
	Parent     parentRef      `json:"parent"`
	Properties map[string]any `json:"properties"`
	Children   []Block        `json:"children"`
}

type pageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WriteMission creates one Notion page for a finished mission: the topic as
// the page title, research/style/topic-keyword tags, and the summaries as
// blocks.
func (c *Client) WriteMission(ctx context.Context, result *mission.Result) (*WriteResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	reqBody := pageRequest{
		Parent: parentRef{DatabaseID: c.databaseID},
		Properties: map[string]any{
			"Name": map[string]any{
				"title": []map[string]any{
					{"text": map[string]any{"content": result.Topic}},
				},
			},
			"Tags": map[string]any{
				"multi_select": missionTags(result),
			},
		},
		Children: MissionBlocks(result),
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notion page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pages", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build notion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion write failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("notion write failed: status %d body %s", resp.StatusCode, string(msg))
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode notion response: %w", err)
	}

	return &WriteResult{PageID: page.ID, URL: page.URL}, nil
}

// missionTags builds the page's multi-select tags: a fixed research tag,
// the summary style, and topic keywords so pages stay filterable by subject
func missionTags(result *mission.Result) []map[string]any {
	tags := []map[string]any{
		{"name": "research"},
		{"name": string(summaryStyle(result))},
	}
	for _, keyword := range extraction.Keywords(result.Topic, maxTopicTags) {
		tags = append(tags, map[string]any{"name": keyword})
	}
	return tags
}

// summaryStyle returns the style shared by the mission's summaries,
// falling back to the technical default for empty missions
func summaryStyle(result *mission.Result) mission.Style {
	if len(result.Summaries) > 0 {
		return result.Summaries[0].Style
	}
	return mission.StyleTechnical
}
