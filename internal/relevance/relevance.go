// Package relevance scores URLs for research value before they are fetched.
package relevance

import (
	"net/url"
	"strings"
)

// Default signal weights. Each matched keyword accumulates; the host and
// path signals fire at most once per URL.
const (
	DefaultKeywordURLWeight     = 0.3
	DefaultKeywordAnchorWeight  = 0.1
	DefaultAuthorityWeight      = 0.2
	DefaultReputationBonus      = 0.2
	DefaultReputationPenalty    = 0.3
	DefaultTransactionalPenalty = 0.4
)

// DefaultThreshold is the score below which a link is not worth following.
const DefaultThreshold = 0.3

// defaultAuthorityMarkers flag institutional and research hosts.
var defaultAuthorityMarkers = []string{
	".edu",
	".gov",
	".org",
	"arxiv.org",
	"scholar.google",
	"researchgate",
}

// defaultTransactionalMarkers flag account and commerce pages that never
// carry research content.
var defaultTransactionalMarkers = []string{
	"login",
	"signup",
	"cart",
	"checkout",
}

// ReputationLookup reports how a domain has behaved so far. Delta returns a
// positive value when the domain has more successes than failures, a negative
// value when failures dominate, and zero otherwise.
type ReputationLookup interface {
	Delta(domain string) int
}

// Scorer rates a URL between 0 and 1 from signals available before any
// fetch. All fields have working defaults from NewScorer.
type Scorer struct {
	KeywordURLWeight     float64
	KeywordAnchorWeight  float64
	AuthorityWeight      float64
	ReputationBonus      float64
	ReputationPenalty    float64
	TransactionalPenalty float64

	AuthorityMarkers     []string
	TransactionalMarkers []string

	// Reputation is optional; a nil lookup skips the reputation signal.
	Reputation ReputationLookup
}

// NewScorer returns a Scorer with the default weights and marker sets.
func NewScorer(reputation ReputationLookup) *Scorer {
	return &Scorer{
		KeywordURLWeight:     DefaultKeywordURLWeight,
		KeywordAnchorWeight:  DefaultKeywordAnchorWeight,
		AuthorityWeight:      DefaultAuthorityWeight,
		ReputationBonus:      DefaultReputationBonus,
		ReputationPenalty:    DefaultReputationPenalty,
		TransactionalPenalty: DefaultTransactionalPenalty,
		AuthorityMarkers:     defaultAuthorityMarkers,
		TransactionalMarkers: defaultTransactionalMarkers,
		Reputation:           reputation,
	}
}

// ScoreURL rates a URL with no anchor text, as used for seed URLs.
func (s *Scorer) ScoreURL(rawURL string, keywords []string) float64 {
	return s.score(rawURL, "", keywords)
}

// ScoreLink rates a discovered link together with its anchor text.
func (s *Scorer) ScoreLink(rawURL, anchorText string, keywords []string) float64 {
	return s.score(rawURL, anchorText, keywords)
}

func (s *Scorer) score(rawURL, anchorText string, keywords []string) float64 {
	score := 0.0
	urlLower := strings.ToLower(rawURL)

	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(urlLower, strings.ToLower(keyword)) {
			score += s.KeywordURLWeight
		}
	}

	if anchorText != "" {
		textLower := strings.ToLower(anchorText)
		for _, keyword := range keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(textLower, strings.ToLower(keyword)) {
				score += s.KeywordAnchorWeight
			}
		}
	}

	for _, marker := range s.AuthorityMarkers {
		if strings.Contains(urlLower, marker) {
			score += s.AuthorityWeight
			break
		}
	}

	if s.Reputation != nil {
		if domain := Domain(rawURL); domain != "" {
			switch delta := s.Reputation.Delta(domain); {
			case delta > 0:
				score += s.ReputationBonus
			case delta < 0:
				score -= s.ReputationPenalty
			}
		}
	}

	for _, marker := range s.TransactionalMarkers {
		if strings.Contains(urlLower, marker) {
			score -= s.TransactionalPenalty
			break
		}
	}

	return clamp01(score)
}

// Domain extracts the lowercased hostname of a URL, or "" when the URL does
// not parse. Reputation tables key on this value.
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

func clamp01(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
