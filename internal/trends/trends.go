// Package trends analyzes patterns across stored mission history: keyword
// movement between time windows, quality drift, topic similarity, and
// per-domain success rates. Pure aggregation over completed missions, no
// side effects.
package trends

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultWindowDays is the comparison window for keyword trend detection
const DefaultWindowDays = 30

// DefaultTopK caps similar-mission lookups when no limit is given
const DefaultTopK = 5

// DefaultMinMentions is the emerging-topic mention threshold
const DefaultMinMentions = 3

// Thresholds for classifying keyword frequency change between windows
const (
	trendingUpThreshold   = 0.2
	trendingDownThreshold = -0.2
	emergingRatio         = 3.0
)

var wordRE = regexp.MustCompile(`\b\w+\b`)

var trendStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "this": {}, "that": {},
	"are": {}, "was": {}, "were": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "about": {}, "into": {},
}

// Mission is one historical mission record as the analyzer consumes it
type Mission struct {
	MissionID   string             `json:"mission_id"`
	Topic       string             `json:"topic"`
	Status      string             `json:"status"`
	Domain      string             `json:"domain,omitempty"`
	Scores      map[string]float64 `json:"scores,omitempty"`
	CompletedAt time.Time          `json:"completed_at"`
}

// KeywordTrend pairs a keyword with its trend value: a change rate for
// trending keywords, a frequency for stable and new ones
type KeywordTrend struct {
	Keyword string  `json:"keyword"`
	Value   float64 `json:"value"`
}

// KeywordTrends classifies keyword movement between two adjacent windows
type KeywordTrends struct {
	TrendingUp   []KeywordTrend `json:"trending_up"`
	TrendingDown []KeywordTrend `json:"trending_down"`
	Stable       []KeywordTrend `json:"stable"`
	New          []KeywordTrend `json:"new"`
}

// QualityStat aggregates mission quality for one month
type QualityStat struct {
	AvgQuality   float64 `json:"avg_quality"`
	MinQuality   float64 `json:"min_quality"`
	MaxQuality   float64 `json:"max_quality"`
	MissionCount int     `json:"mission_count"`
}

// SimilarMission is a historical mission ranked by topic similarity
type SimilarMission struct {
	MissionID   string    `json:"mission_id"`
	Topic       string    `json:"topic"`
	Similarity  float64   `json:"similarity"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

// KeywordCount pairs a keyword with an occurrence count
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// DomainStat aggregates mission outcomes for one research domain
type DomainStat struct {
	MissionCount int            `json:"mission_count"`
	AvgQuality   float64        `json:"avg_quality"`
	SuccessRate  float64        `json:"success_rate"`
	TopKeywords  []KeywordCount `json:"top_keywords"`
}

// Analyzer computes trend insights over a fixed mission history
type Analyzer struct {
	missions []Mission
	now      func() time.Time
}

// NewAnalyzer creates an analyzer over the given mission history
func NewAnalyzer(missions []Mission) *Analyzer {
	return &Analyzer{missions: missions, now: time.Now}
}

// KeywordTrends compares keyword frequency between the most recent window
// and the window before it. Frequencies are normalized per mission so
// windows of different sizes compare fairly.
func (a *Analyzer) KeywordTrends(windowDays int) *KeywordTrends {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	cutoff := a.now().AddDate(0, 0, -windowDays)
	comparison := cutoff.AddDate(0, 0, -windowDays)

	var recent, previous []Mission
	for _, m := range a.missions {
		switch {
		case !m.CompletedAt.Before(cutoff):
			recent = append(recent, m)
		case !m.CompletedAt.Before(comparison):
			previous = append(previous, m)
		}
	}

	recentCounts := countKeywords(recent)
	previousCounts := countKeywords(previous)

	all := make(map[string]struct{})
	for kw := range recentCounts {
		all[kw] = struct{}{}
	}
	for kw := range previousCounts {
		all[kw] = struct{}{}
	}

	trends := &KeywordTrends{}
	for kw := range all {
		var recentFreq, previousFreq float64
		if len(recent) > 0 {
			recentFreq = float64(recentCounts[kw]) / float64(len(recent))
		}
		if len(previous) > 0 {
			previousFreq = float64(previousCounts[kw]) / float64(len(previous))
		}

		switch {
		case previousFreq == 0 && recentFreq > 0:
			trends.New = append(trends.New, KeywordTrend{Keyword: kw, Value: recentFreq})
		case previousFreq > 0:
			change := (recentFreq - previousFreq) / previousFreq
			switch {
			case change > trendingUpThreshold:
				trends.TrendingUp = append(trends.TrendingUp, KeywordTrend{Keyword: kw, Value: change})
			case change < trendingDownThreshold:
				trends.TrendingDown = append(trends.TrendingDown, KeywordTrend{Keyword: kw, Value: change})
			default:
				trends.Stable = append(trends.Stable, KeywordTrend{Keyword: kw, Value: recentFreq})
			}
		}
	}

	sortByMagnitude(trends.TrendingUp)
	sortByMagnitude(trends.TrendingDown)
	sortByMagnitude(trends.Stable)
	sortByMagnitude(trends.New)
	return trends
}

func sortByMagnitude(items []KeywordTrend) {
	sort.SliceStable(items, func(i, j int) bool {
		mi, mj := math.Abs(items[i].Value), math.Abs(items[j].Value)
		if mi != mj {
			return mi > mj
		}
		return items[i].Keyword < items[j].Keyword
	})
}

// QualityTrends aggregates average mission scores by completion month,
// keyed "YYYY-MM"
func (a *Analyzer) QualityTrends() map[string]QualityStat {
	byMonth := make(map[string][]float64)
	for _, m := range a.missions {
		if len(m.Scores) == 0 || m.CompletedAt.IsZero() {
			continue
		}
		key := m.CompletedAt.Format("2006-01")
		byMonth[key] = append(byMonth[key], missionAvgScore(m))
	}

	stats := make(map[string]QualityStat, len(byMonth))
	for month, scores := range byMonth {
		stat := QualityStat{
			MinQuality:   scores[0],
			MaxQuality:   scores[0],
			MissionCount: len(scores),
		}
		var sum float64
		for _, s := range scores {
			sum += s
			stat.MinQuality = math.Min(stat.MinQuality, s)
			stat.MaxQuality = math.Max(stat.MaxQuality, s)
		}
		stat.AvgQuality = sum / float64(len(scores))
		stats[month] = stat
	}
	return stats
}

// SimilarMissions ranks historical missions by Jaccard similarity between
// their topic tokens and the given topic
func (a *Analyzer) SimilarMissions(topic string, topK int) []SimilarMission {
	if topK <= 0 {
		topK = DefaultTopK
	}

	topicTokens := tokenSet(topic)
	if len(topicTokens) == 0 {
		return nil
	}

	var similar []SimilarMission
	for _, m := range a.missions {
		missionTokens := tokenSet(m.Topic)
		if len(missionTokens) == 0 {
			continue
		}

		intersection := 0
		for tok := range topicTokens {
			if _, ok := missionTokens[tok]; ok {
				intersection++
			}
		}
		union := len(topicTokens) + len(missionTokens) - intersection
		if union == 0 {
			continue
		}
		similarity := float64(intersection) / float64(union)
		if similarity > 0 {
			similar = append(similar, SimilarMission{
				MissionID:   m.MissionID,
				Topic:       m.Topic,
				Similarity:  similarity,
				Status:      m.Status,
				CompletedAt: m.CompletedAt,
			})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})

	if len(similar) > topK {
		similar = similar[:topK]
	}
	return similar
}

// DomainPatterns groups missions by domain and aggregates quality, success
// rate, and top topic keywords per domain
func (a *Analyzer) DomainPatterns() map[string]DomainStat {
	type domainAgg struct {
		count     int
		quality   float64
		completed int
		keywords  *keywordCounter
	}

	domains := make(map[string]*domainAgg)
	for _, m := range a.missions {
		domain := m.Domain
		if domain == "" {
			domain = "general"
		}
		agg := domains[domain]
		if agg == nil {
			agg = &domainAgg{keywords: newKeywordCounter()}
			domains[domain] = agg
		}

		agg.count++
		if len(m.Scores) > 0 {
			agg.quality += missionAvgScore(m)
		}
		if m.Status == "completed" {
			agg.completed++
		}
		agg.keywords.addTopic(m.Topic)
	}

	stats := make(map[string]DomainStat, len(domains))
	for domain, agg := range domains {
		stats[domain] = DomainStat{
			MissionCount: agg.count,
			AvgQuality:   agg.quality / float64(agg.count),
			SuccessRate:  float64(agg.completed) / float64(agg.count),
			TopKeywords:  agg.keywords.mostCommon(10),
		}
	}
	return stats
}

// EmergingTopics finds keywords that are frequent in the last thirty days
// but were absent or far less common before
func (a *Analyzer) EmergingTopics(minMentions int) []KeywordCount {
	if minMentions <= 0 {
		minMentions = DefaultMinMentions
	}

	cutoff := a.now().AddDate(0, 0, -DefaultWindowDays)

	var recent, historical []Mission
	for _, m := range a.missions {
		if !m.CompletedAt.Before(cutoff) {
			recent = append(recent, m)
		} else {
			historical = append(historical, m)
		}
	}

	recentCounts := countKeywords(recent)
	historicalCounts := countKeywords(historical)

	var emerging []KeywordCount
	for kw, recentCount := range recentCounts {
		if recentCount < minMentions {
			continue
		}

		historicalCount := historicalCounts[kw]
		if historicalCount == 0 {
			emerging = append(emerging, KeywordCount{Keyword: kw, Count: recentCount})
			continue
		}

		recentRate := float64(recentCount) / float64(len(recent))
		historicalRate := float64(historicalCount) / math.Max(float64(len(historical)), 1)
		if recentRate > emergingRatio*historicalRate {
			emerging = append(emerging, KeywordCount{Keyword: kw, Count: recentCount})
		}
	}

	sort.SliceStable(emerging, func(i, j int) bool {
		if emerging[i].Count != emerging[j].Count {
			return emerging[i].Count > emerging[j].Count
		}
		return emerging[i].Keyword < emerging[j].Keyword
	})
	return emerging
}

// keywordCounter counts keywords preserving first-seen order for ties
type keywordCounter struct {
	counts map[string]int
	order  []string
}

func newKeywordCounter() *keywordCounter {
	return &keywordCounter{counts: make(map[string]int)}
}

func (c *keywordCounter) addTopic(topic string) {
	for _, token := range wordRE.FindAllString(strings.ToLower(topic), -1) {
		if len(token) <= 3 {
			continue
		}
		if _, stop := trendStopwords[token]; stop {
			continue
		}
		if _, seen := c.counts[token]; !seen {
			c.order = append(c.order, token)
		}
		c.counts[token]++
	}
}

func (c *keywordCounter) mostCommon(n int) []KeywordCount {
	out := make([]KeywordCount, 0, len(c.order))
	for _, kw := range c.order {
		out = append(out, KeywordCount{Keyword: kw, Count: c.counts[kw]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func countKeywords(missions []Mission) map[string]int {
	counter := newKeywordCounter()
	for _, m := range missions {
		counter.addTopic(m.Topic)
	}
	return counter.counts
}

func tokenSet(text string) map[string]struct{} {
	tokens := wordRE.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func missionAvgScore(m Mission) float64 {
	if len(m.Scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range m.Scores {
		sum += s
	}
	return sum / float64(len(m.Scores))
}
