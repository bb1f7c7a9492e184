// Package scoring provides deterministic quality metrics for fetched content
// and generated summaries. Scores are plain calculations so the same input
// always produces the same number.
package scoring

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Composite weights for content scoring. Relevance dominates because a
// well-written page about the wrong topic is still useless.
const (
	relevanceWeight   = 2.0
	qualityWeight     = 1.0
	readabilityWeight = 0.5
)

// Text quality bonuses layered on top of the base score.
const (
	qualityBase          = 0.5
	idealLengthBonus     = 0.15
	longLengthBonus      = 0.10
	casingBonus          = 0.15
	sentenceVarietyBonus = 0.10
	vocabularyBonus      = 0.10
)

// Readability ideals: 15-20 words per sentence, 4-6 letters per word.
const (
	idealSentenceLength = 17.5
	idealWordLength     = 5.0
)

// Breakdown carries the individual metrics behind a composite content score.
type Breakdown struct {
	Relevance   float64 `json:"relevance"`
	Quality     float64 `json:"quality"`
	Readability float64 `json:"readability"`
	Composite   float64 `json:"composite"`
}

// ScoreContent runs the standard metric set over one document.
func ScoreContent(text string, keywords []string) Breakdown {
	breakdown := Breakdown{
		Relevance:   KeywordRelevance(text, keywords),
		Quality:     TextQuality(text),
		Readability: Readability(text),
	}
	breakdown.Composite = Composite(
		[]float64{breakdown.Relevance, breakdown.Quality, breakdown.Readability},
		relevanceWeight, qualityWeight, readabilityWeight,
	)
	return breakdown
}

// KeywordRelevance returns the fraction of keywords present in the text.
func KeywordRelevance(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	textLower := strings.ToLower(text)
	matches := 0
	for _, keyword := range keywords {
		if strings.Contains(textLower, strings.ToLower(keyword)) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}

// TextQuality scores text on length, casing, sentence variety, and
// vocabulary richness. Anything under 20 characters scores zero.
func TextQuality(text string) float64 {
	if len(text) < 20 {
		return 0.0
	}

	score := qualityBase

	if len(text) >= 100 && len(text) <= 5000 {
		score += idealLengthBonus
	} else if len(text) > 5000 {
		score += longLengthBonus
	}

	if uppercaseRatio(text) < 0.3 {
		score += casingBonus
	}

	sentences := splitSentences(text)
	if len(sentences) >= 2 && lengthVariance(sentences) > 100 {
		score += sentenceVarietyBonus
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, word := range words {
			unique[word] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) > 0.5 {
			score += vocabularyBonus
		}
	}

	return math.Min(1.0, score)
}

// Readability approximates reading ease from average sentence and word
// length. Scores run from 0.0 (hard) to 1.0 (easy).
func Readability(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0.0
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0.0
	}

	avgSentenceLength := float64(len(words)) / float64(len(sentences))
	totalLetters := 0
	for _, word := range words {
		totalLetters += len(word)
	}
	avgWordLength := float64(totalLetters) / float64(len(words))

	sentenceScore := 1.0 - math.Min(math.Abs(avgSentenceLength-idealSentenceLength)/50, 1.0)
	wordScore := 1.0 - math.Min(math.Abs(avgWordLength-idealWordLength)/10, 1.0)

	return clamp01((sentenceScore + wordScore) / 2)
}

// Diversity measures how different a set of texts are from each other using
// average pairwise Jaccard distance over word sets. A single text is
// maximally diverse.
func Diversity(texts []string) float64 {
	if len(texts) < 2 {
		return 1.0
	}

	wordSets := make([]map[string]struct{}, len(texts))
	for i, text := range texts {
		set := make(map[string]struct{})
		for _, word := range strings.Fields(strings.ToLower(text)) {
			set[word] = struct{}{}
		}
		wordSets[i] = set
	}

	total := 0.0
	pairs := 0
	for i := 0; i < len(wordSets); i++ {
		for j := i + 1; j < len(wordSets); j++ {
			intersection := 0
			union := len(wordSets[i])
			for word := range wordSets[j] {
				if _, ok := wordSets[i][word]; ok {
					intersection++
				} else {
					union++
				}
			}
			if union > 0 {
				total += 1.0 - float64(intersection)/float64(union)
				pairs++
			}
		}
	}

	if pairs == 0 {
		return 0.0
	}
	return total / float64(pairs)
}

// stopwords are excluded when judging summary coverage.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {},
}

// SummaryCoverage returns the fraction of meaningful source words that
// appear in the summary. Words of three characters or fewer are ignored.
func SummaryCoverage(summary, source string) float64 {
	sourceWords := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(source)) {
		if len(word) <= 3 {
			continue
		}
		if _, ok := stopwords[word]; ok {
			continue
		}
		sourceWords[word] = struct{}{}
	}
	if len(sourceWords) == 0 {
		return 0.0
	}

	summaryLower := strings.ToLower(summary)
	covered := 0
	for word := range sourceWords {
		if strings.Contains(summaryLower, word) {
			covered++
		}
	}

	return math.Min(1.0, float64(covered)/float64(len(sourceWords)))
}

// Composite combines scores into a weighted average. Without weights every
// score weighs equally; a weight list of the wrong length is ignored.
func Composite(scores []float64, weights ...float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	if len(weights) != len(scores) {
		weights = make([]float64, len(scores))
		for i := range weights {
			weights[i] = 1.0
		}
	}

	weightedSum := 0.0
	totalWeight := 0.0
	for i, score := range scores {
		weightedSum += score * weights[i]
		totalWeight += weights[i]
	}

	if totalWeight == 0 {
		return 0.0
	}
	return weightedSum / totalWeight
}

var sentenceSplitRE = regexp.MustCompile(`[.!?]+`)

func splitSentences(text string) []string {
	parts := sentenceSplitRE.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

func uppercaseRatio(text string) float64 {
	upper, total := 0, 0
	for _, r := range text {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(upper) / float64(total)
}

func lengthVariance(sentences []string) float64 {
	total := 0
	for _, sentence := range sentences {
		total += len(sentence)
	}
	mean := float64(total) / float64(len(sentences))

	variance := 0.0
	for _, sentence := range sentences {
		diff := float64(len(sentence)) - mean
		variance += diff * diff
	}
	return variance / float64(len(sentences))
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
