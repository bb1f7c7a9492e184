package crawl

import "time"

// Action is the kind of decision the crawler made for a URL.
type Action string

const (
	// ActionFetch records a successful page retrieval.
	ActionFetch Action = "fetch"
	// ActionRetry records a failed attempt that will be tried again.
	ActionRetry Action = "retry"
	// ActionFollowLinks records links from a fetched page entering the queue.
	ActionFollowLinks Action = "follow_links"
	// ActionSkip records a URL dropped without fetching.
	ActionSkip Action = "skip"
	// ActionGiveUp records a URL abandoned after its attempts ran out.
	ActionGiveUp Action = "give_up"
)

// Decision is one entry in the crawl audit trail. The crawler appends a
// Decision for every choice it makes and never mutates past entries.
type Decision struct {
	URL       string    `json:"url"`
	Action    Action    `json:"action"`
	Reason    string    `json:"reason"`
	Relevance float64   `json:"relevance"`
	Attempt   int       `json:"attempt,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Page is one successfully fetched page.
type Page struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Session holds the outcome of a single Crawl call. Pages appear in
// completion order; Decisions in the order they were made.
type Session struct {
	Pages     []Page     `json:"pages"`
	Decisions []Decision `json:"decisions"`
}

// DecisionCounts tallies decisions by action.
func (s *Session) DecisionCounts() map[string]int {
	counts := make(map[string]int)
	for _, d := range s.Decisions {
		counts[string(d.Action)]++
	}
	return counts
}

// DecisionsFor returns the decisions recorded for one URL, in order.
func (s *Session) DecisionsFor(url string) []Decision {
	matched := make([]Decision, 0)
	for _, d := range s.Decisions {
		if d.URL == url {
			matched = append(matched, d)
		}
	}
	return matched
}
