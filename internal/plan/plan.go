// Package plan turns a mission request into a prioritized research plan.
// User-provided sources are curated and ranked; without them the planner
// discovers sources itself, through a search backend when one is configured
// and otherwise from per-topic search URL templates.
package plan

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mshears713/Research-Body/internal/mission"
)

// DefaultMaxSources caps the plan when the request does not say otherwise.
const DefaultMaxSources = 5

// Source quality heuristics for user-provided URLs.
const (
	sourceBaseScore     = 0.5
	httpsBonus          = 0.2
	reliableDomainBonus = 0.3
	longURLPenalty      = 0.1
	longURLThreshold    = 200
)

// reliableDomains mark sources worth prioritizing.
var reliableDomains = []string{
	".edu", ".gov", ".org", "arxiv.org", "scholar.google", "ieee.org",
}

// Topic classification indicators. A topic can match several.
var (
	academicIndicators  = []string{"research", "study", "analysis", "theory", "methodology", "paper", "journal"}
	newsIndicators      = []string{"latest", "recent", "current", "news", "update", "2024", "2025", "trend"}
	technicalIndicators = []string{"api", "documentation", "tutorial", "guide", "implementation", "code", "framework"}
)

// topicStopwords are skipped when extracting search keywords from a topic.
var topicStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// maxTopicKeywords bounds the search terms taken from a topic.
const maxTopicKeywords = 5

// Discoverer finds candidate source URLs for a topic. Implementations may
// call external search services; errors make the planner fall back to its
// URL templates.
type Discoverer interface {
	Discover(ctx context.Context, topic string, keywords []string, limit int) ([]string, error)
}

// Planner builds research plans. A nil discoverer means template-only
// source discovery.
type Planner struct {
	discoverer Discoverer
}

// NewPlanner returns a Planner. Pass nil to plan without a search backend.
func NewPlanner(discoverer Discoverer) *Planner {
	return &Planner{discoverer: discoverer}
}

// CreatePlan builds a plan for the request. It always succeeds; a plan with
// no target URLs is the fetching stage's problem to report.
func (p *Planner) CreatePlan(ctx context.Context, req *mission.Request) *mission.Plan {
	maxSources := req.MaxSources
	if maxSources <= 0 {
		maxSources = DefaultMaxSources
	}

	keywords := TopicKeywords(req.Topic)

	var targetURLs []string
	var rationale string
	if len(req.Sources) > 0 {
		targetURLs = prioritizeUserSources(req.Sources, maxSources)
		rationale = fmt.Sprintf(
			"User provided %d source(s). Selected top %d after quality scoring and deduplication.",
			len(req.Sources), len(targetURLs),
		)
	} else {
		targetURLs = p.discoverSources(ctx, req.Topic, keywords, maxSources)
		rationale = discoveryRationale(req.Topic, len(targetURLs))
	}

	targetURLs = applyConstraints(targetURLs, maxSources)

	return &mission.Plan{
		MissionID:  NewMissionID(),
		Topic:      req.Topic,
		TargetURLs: targetURLs,
		Keywords:   keywords,
		Rationale:  rationale,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewMissionID generates a unique mission identifier.
func NewMissionID() string {
	id := uuid.New()
	return "mission_" + hex.EncodeToString(id[:])[:12]
}

// TopicKeywords extracts up to five search terms from a topic, skipping
// stopwords and very short words.
func TopicKeywords(topic string) []string {
	keywords := make([]string, 0, maxTopicKeywords)
	for _, word := range strings.Fields(strings.ToLower(topic)) {
		if len(word) <= 2 {
			continue
		}
		if _, ok := topicStopwords[word]; ok {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == maxTopicKeywords {
			break
		}
	}
	return keywords
}

// prioritizeUserSources dedupes, scores, and ranks user URLs, keeping the
// best maxSources. Equal scores keep the user's order.
func prioritizeUserSources(sources []string, maxSources int) []string {
	unique := dedupeURLs(sources)

	sort.SliceStable(unique, func(i, j int) bool {
		return ScoreSourceQuality(unique[i]) > ScoreSourceQuality(unique[j])
	})

	if len(unique) > maxSources {
		unique = unique[:maxSources]
	}
	return unique
}

// ScoreSourceQuality rates a source URL: HTTPS and reliable domains score
// up, very long URLs score down.
func ScoreSourceQuality(url string) float64 {
	score := sourceBaseScore

	if strings.HasPrefix(url, "https://") {
		score += httpsBonus
	}

	for _, domain := range reliableDomains {
		if strings.Contains(url, domain) {
			score += reliableDomainBonus
			break
		}
	}

	if len(url) > longURLThreshold {
		score -= longURLPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// discoverSources asks the search backend first, then falls back to search
// URL templates chosen by topic type.
func (p *Planner) discoverSources(ctx context.Context, topic string, keywords []string, maxSources int) []string {
	if p.discoverer != nil {
		if urls, err := p.discoverer.Discover(ctx, topic, keywords, maxSources); err == nil && len(urls) > 0 {
			urls = dedupeURLs(urls)
			if len(urls) > maxSources {
				urls = urls[:maxSources]
			}
			return urls
		}
	}

	query := strings.Join(keywords, "+")
	discovered := make([]string, 0, maxSources)

	if isAcademicTopic(topic) {
		discovered = append(discovered, academicURLs(query, maxSources/2)...)
	}
	if isNewsTopic(topic) {
		discovered = append(discovered, newsURLs(query, maxSources/2)...)
	}
	if isTechnicalTopic(topic) {
		discovered = append(discovered, technicalURLs(query, maxSources/2)...)
	}
	if len(discovered) < maxSources {
		discovered = append(discovered, generalURLs(query, maxSources-len(discovered))...)
	}

	discovered = dedupeURLs(discovered)
	if len(discovered) > maxSources {
		discovered = discovered[:maxSources]
	}
	return discovered
}

// TopicType classifies a topic into a research domain. The first matching
// indicator set wins; topics matching none fall back to general.
func TopicType(topic string) string {
	switch {
	case isAcademicTopic(topic):
		return "academic"
	case isNewsTopic(topic):
		return "news"
	case isTechnicalTopic(topic):
		return "technical"
	default:
		return "general"
	}
}

func isAcademicTopic(topic string) bool {
	return containsAny(strings.ToLower(topic), academicIndicators)
}

func isNewsTopic(topic string) bool {
	return containsAny(strings.ToLower(topic), newsIndicators)
}

func isTechnicalTopic(topic string) bool {
	return containsAny(strings.ToLower(topic), technicalIndicators)
}

func containsAny(s string, indicators []string) bool {
	for _, indicator := range indicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

func academicURLs(query string, limit int) []string {
	return capURLs([]string{
		"https://scholar.google.com/scholar?q=" + query,
		"https://arxiv.org/search/?query=" + query,
		"https://www.researchgate.net/search/publication?q=" + query,
	}, limit)
}

func newsURLs(query string, limit int) []string {
	return capURLs([]string{
		"https://news.google.com/search?q=" + query,
		"https://www.reuters.com/site-search/?query=" + query,
		"https://www.bbc.com/search?q=" + query,
	}, limit)
}

func technicalURLs(query string, limit int) []string {
	return capURLs([]string{
		"https://stackoverflow.com/search?q=" + query,
		"https://github.com/search?q=" + query,
		"https://dev.to/search?q=" + query,
	}, limit)
}

func generalURLs(query string, limit int) []string {
	return capURLs([]string{
		"https://www.google.com/search?q=" + query,
		"https://duckduckgo.com/?q=" + query,
		"https://en.wikipedia.org/wiki/Special:Search?search=" + query,
	}, limit)
}

func capURLs(urls []string, limit int) []string {
	if limit < 0 {
		limit = 0
	}
	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls
}

func dedupeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	unique := make([]string, 0, len(urls))
	for _, url := range urls {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		unique = append(unique, url)
	}
	return unique
}

// applyConstraints enforces the source cap and drops anything that is not
// an http(s) URL.
func applyConstraints(urls []string, maxSources int) []string {
	if len(urls) > maxSources {
		urls = urls[:maxSources]
	}

	valid := make([]string, 0, len(urls))
	for _, url := range urls {
		if strings.HasPrefix(url, "http") {
			valid = append(valid, url)
		}
	}
	return valid
}

func discoveryRationale(topic string, selected int) string {
	strategies := make([]string, 0, 3)
	if isAcademicTopic(topic) {
		strategies = append(strategies, "academic research")
	}
	if isNewsTopic(topic) {
		strategies = append(strategies, "news/current events")
	}
	if isTechnicalTopic(topic) {
		strategies = append(strategies, "technical documentation")
	}

	approach := "general web search"
	if len(strategies) > 0 {
		approach = strings.Join(strategies, ", ")
	}

	return fmt.Sprintf(
		"Autonomously discovered sources for topic: %q. Applied multi-strategy approach: %s. Selected %d high-quality sources.",
		topic, approach, selected,
	)
}
