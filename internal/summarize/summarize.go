// Package summarize turns cleaned text into styled narrative summaries.
// Sentences are ranked by position, length, title overlap, and data density,
// then formatted to the requested style. Each summary carries a self-assessed
// quality score.
package summarize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Style selects the tone and shape of a summary.
type Style string

const (
	StyleTechnical Style = "technical"
	StyleExecutive Style = "executive"
	StyleCasual    Style = "casual"
)

// styleProfile controls tone, focus, and shape for one summary style.
type styleProfile struct {
	Tone         string
	Focus        string
	MinSentences int
	MaxSentences int
	BulletPoints bool
}

var styleProfiles = map[Style]styleProfile{
	StyleTechnical: {
		Tone:         "formal and precise",
		Focus:        "methodology, data, specifics",
		MinSentences: 5,
		MaxSentences: 10,
		BulletPoints: true,
	},
	StyleExecutive: {
		Tone:         "concise and actionable",
		Focus:        "key insights, implications",
		MinSentences: 3,
		MaxSentences: 5,
		BulletPoints: true,
	},
	StyleCasual: {
		Tone:         "conversational and accessible",
		Focus:        "main ideas, storytelling",
		MinSentences: 4,
		MaxSentences: 8,
		BulletPoints: false,
	},
}

// maxKeyPoints bounds the bullet list; longer points are shortened.
const (
	maxKeyPoints      = 5
	maxKeyPointLength = 150
)

// Metadata describes how a summary relates to its source.
type Metadata struct {
	SourceLength     int     `json:"source_length"`
	SourceSentences  int     `json:"source_sentences"`
	SummarySentences int     `json:"summary_sentences"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// Summary is a generated summary with its self-assessment.
type Summary struct {
	Text      string   `json:"summary"`
	Style     Style    `json:"style"`
	KeyPoints []string `json:"key_points"`
	WordCount int      `json:"word_count"`
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
	Metadata  Metadata `json:"metadata"`
}

// Summarizer generates summaries in a configurable default style.
type Summarizer struct {
	defaultStyle Style
}

// NewSummarizer returns a Summarizer. Unknown default styles fall back to
// the technical style.
func NewSummarizer(defaultStyle Style) *Summarizer {
	if _, ok := styleProfiles[defaultStyle]; !ok {
		defaultStyle = StyleTechnical
	}
	return &Summarizer{defaultStyle: defaultStyle}
}

// Summarize generates a summary of cleanText. The title steers sentence
// ranking and heads the output. A maxLength of zero means unconstrained.
func (s *Summarizer) Summarize(cleanText, title string, style Style, maxLength int) *Summary {
	chosen := style
	if _, ok := styleProfiles[chosen]; !ok {
		chosen = s.defaultStyle
	}
	profile := styleProfiles[chosen]

	sentences := extractSentences(cleanText)
	scored := scoreSentences(sentences, title)
	keySentences := selectKeySentences(scored, profile.MinSentences, profile.MaxSentences)
	keyPoints := extractKeyPoints(keySentences)

	text := formatSummary(keySentences, keyPoints, profile, title)
	if maxLength > 0 && len(text) > maxLength {
		text = truncateSummary(text, maxLength)
	}

	score := scoreSummary(text, cleanText, keyPoints)

	compression := 0.0
	if len(cleanText) > 0 {
		compression = float64(len(text)) / float64(len(cleanText))
	}

	return &Summary{
		Text:      text,
		Style:     chosen,
		KeyPoints: keyPoints,
		WordCount: len(strings.Fields(text)),
		Score:     score,
		Reasoning: explainSummarization(chosen, len(sentences), len(keySentences), score),
		Metadata: Metadata{
			SourceLength:     len(cleanText),
			SourceSentences:  len(sentences),
			SummarySentences: len(keySentences),
			CompressionRatio: compression,
		},
	}
}

var (
	sentenceBoundaryRE = regexp.MustCompile(`[.!?]+\s+`)
	digitRE            = regexp.MustCompile(`\d+`)
	tokenRE            = regexp.MustCompile(`\b\w+\b`)
)

// extractSentences splits text on terminal punctuation, dropping fragments
// of 20 characters or fewer.
func extractSentences(text string) []string {
	parts := sentenceBoundaryRE.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); len(part) > 20 {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

type scoredSentence struct {
	text  string
	score float64
}

// scoreSentences ranks sentences by position, moderate length, title keyword
// overlap, and presence of numbers. Ties keep document order.
func scoreSentences(sentences []string, title string) []scoredSentence {
	if len(sentences) == 0 {
		return nil
	}

	titleKeywords := keywordSet(title)

	scored := make([]scoredSentence, 0, len(sentences))
	for i, sentence := range sentences {
		score := 0.0

		// Earlier sentences carry more weight.
		positionScore := 1.0 - (float64(i)/float64(len(sentences)))*0.5
		score += positionScore * 0.3

		words := len(strings.Fields(sentence))
		if words >= 10 && words <= 30 {
			score += 0.3
		} else if words > 30 {
			score += 0.15
		}

		if len(titleKeywords) > 0 {
			overlap := 0
			for word := range keywordSet(sentence) {
				if _, ok := titleKeywords[word]; ok {
					overlap++
				}
			}
			overlapScore := float64(overlap) * 0.15
			if overlapScore > 0.4 {
				overlapScore = 0.4
			}
			score += overlapScore
		}

		if digitRE.MatchString(sentence) {
			score += 0.1
		}

		scored = append(scored, scoredSentence{text: sentence, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

// selectKeySentences keeps the top sentences within the style's count range,
// dropping weak ones only when enough remain.
func selectKeySentences(scored []scoredSentence, minCount, maxCount int) []string {
	if len(scored) == 0 {
		return nil
	}

	selected := scored
	if len(selected) > maxCount {
		selected = selected[:maxCount]
	}

	if len(selected) > minCount {
		kept := make([]scoredSentence, 0, len(selected))
		for _, s := range selected {
			if s.score >= 0.3 {
				kept = append(kept, s)
			}
		}
		selected = kept
	}

	if len(selected) < minCount {
		selected = scored
		if len(selected) > minCount {
			selected = selected[:minCount]
		}
	}

	sentences := make([]string, len(selected))
	for i, s := range selected {
		sentences[i] = s.text
	}
	return sentences
}

// extractKeyPoints turns the strongest sentences into bullet points,
// shortening any that run long.
func extractKeyPoints(keySentences []string) []string {
	limit := len(keySentences)
	if limit > maxKeyPoints {
		limit = maxKeyPoints
	}

	points := make([]string, 0, limit)
	for _, sentence := range keySentences[:limit] {
		point := strings.TrimSpace(sentence)
		if len(point) > maxKeyPointLength {
			point = point[:maxKeyPointLength-3] + "..."
		}
		points = append(points, point)
	}
	return points
}

func formatSummary(keySentences, keyPoints []string, profile styleProfile, title string) string {
	parts := make([]string, 0, len(keyPoints)+4)

	if title != "" {
		parts = append(parts, "# "+title+"\n")
	}

	if !profile.BulletPoints {
		parts = append(parts, strings.Join(keySentences, " "))
		return strings.Join(parts, "\n")
	}

	parts = append(parts, "## Key Points:\n")
	for _, point := range keyPoints {
		parts = append(parts, "- "+point)
	}

	if len(keySentences) > len(keyPoints) {
		pointSet := make(map[string]struct{}, len(keyPoints))
		for _, point := range keyPoints {
			pointSet[point] = struct{}{}
		}
		remaining := make([]string, 0, len(keySentences))
		for _, sentence := range keySentences {
			if _, ok := pointSet[sentence]; !ok {
				remaining = append(remaining, sentence)
			}
		}
		if len(remaining) > 3 {
			remaining = remaining[:3]
		}
		parts = append(parts, "\n## Details:\n")
		parts = append(parts, strings.Join(remaining, " "))
	}

	return strings.Join(parts, "\n")
}

// truncateSummary cuts at a sentence boundary when one falls late enough,
// otherwise hard-truncates with an ellipsis.
func truncateSummary(summary string, maxLength int) string {
	if len(summary) <= maxLength {
		return summary
	}

	truncated := summary[:maxLength]
	if lastPeriod := strings.LastIndex(truncated, "."); float64(lastPeriod) > float64(maxLength)*0.7 {
		return truncated[:lastPeriod+1]
	}

	cut := maxLength - 3
	if cut < 0 {
		cut = 0
	}
	return truncated[:cut] + "..."
}

// scoreSummary is the summarizer's self-assessment: compression in a healthy
// band, enough key points, and a non-trivial word count.
func scoreSummary(summary, sourceText string, keyPoints []string) float64 {
	score := 0.5

	compression := 0.0
	if len(sourceText) > 0 {
		compression = float64(len(summary)) / float64(len(sourceText))
	}
	if compression >= 0.1 && compression <= 0.3 {
		score += 0.2
	} else if compression < 0.1 {
		score -= 0.1
	}

	if len(keyPoints) >= 3 {
		score += 0.2
	}

	if len(strings.Fields(summary)) >= 30 {
		score += 0.1
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// summaryStopwords are skipped when comparing sentences against the title.
var summaryStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "can": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "it": {}, "its": {},
}

func keywordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range tokenRE.FindAllString(strings.ToLower(text), -1) {
		if len(word) <= 3 {
			continue
		}
		if _, ok := summaryStopwords[word]; ok {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

func explainSummarization(style Style, sourceSentences, summarySentences int, score float64) string {
	profile := styleProfiles[style]
	return fmt.Sprintf(
		"Applied %s style summarization. Analyzed %d source sentences, selected %d key sentences. Used %s tone, focusing on %s. Quality score: %.2f.",
		style, sourceSentences, summarySentences, profile.Tone, profile.Focus, score,
	)
}
