package plan

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// searchResultsPerQuery keeps each search call small. Standard quota is
// fine at this volume.
const searchResultsPerQuery int64 = 5

// SearchDiscoverer finds sources through the Google Custom Search API.
type SearchDiscoverer struct {
	svc *customsearch.Service
	cx  string
}

// NewSearchDiscoverer creates a search-backed discoverer from an API key
// and a search engine ID.
func NewSearchDiscoverer(ctx context.Context, apiKey, cx string) (*SearchDiscoverer, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &SearchDiscoverer{svc: svc, cx: cx}, nil
}

// Discover runs a query per research angle and returns deduplicated result
// links. Individual query failures are skipped; an error is returned only
// when every query failed.
func (d *SearchDiscoverer) Discover(ctx context.Context, topic string, keywords []string, limit int) ([]string, error) {
	queries := []string{topic}
	if len(keywords) > 0 {
		queries = append(queries, strings.Join(keywords, " ")+" research")
	}

	links := make([]string, 0, limit)
	seen := make(map[string]bool)
	failures := 0
	for _, q := range queries {
		resp, err := d.svc.Cse.List().Context(ctx).Cx(d.cx).Q(q).Num(searchResultsPerQuery).Do()
		if err != nil {
			failures++
			continue
		}

		for _, item := range resp.Items {
			if seen[item.Link] {
				continue
			}
			seen[item.Link] = true
			links = append(links, item.Link)
		}

		if len(links) >= limit {
			break
		}
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d search queries failed", failures)
	}

	if len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}
