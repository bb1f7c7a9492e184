// Package extraction pulls structured fragments out of free text using
// deterministic pattern matching. The summarizer and planner build on these
// helpers to find what matters in a document.
package extraction

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxKeywords bounds keyword extraction when no limit is given.
const DefaultMaxKeywords = 10

// keywordStopwords are filtered out before frequency counting.
var keywordStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "can": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "it": {}, "its": {}, "they": {}, "them": {}, "their": {},
	"we": {}, "us": {}, "our": {}, "you": {}, "your": {}, "he": {}, "him": {},
	"his": {}, "she": {}, "her": {}, "who": {}, "what": {}, "when": {},
	"where": {}, "why": {}, "how": {}, "all": {}, "each": {}, "every": {},
	"some": {}, "any": {},
}

var (
	wordRE              = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)
	numberRE            = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*(?:\.\d+)?\b`)
	emailRE             = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	capitalizedPhraseRE = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	sentenceBoundaryRE  = regexp.MustCompile(`[.!?]+\s+`)
	urlRE               = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+|www\.[^\s<>"{}|\\^` + "`" + `\[\]]+`)
)

// dateREs cover "Jan 15, 2024", "03/20/2024", and "2024-03-20" shapes.
// Matches are grouped by shape, not by position in the text.
var dateREs = []*regexp.Regexp{
	regexp.MustCompile(`\b[A-Z][a-z]{2,8}\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
}

// Keywords extracts the most frequent non-stopword terms, ordered by count
// with ties broken by first appearance. Words shorter than three letters are
// ignored.
func Keywords(text string, maxKeywords int) []string {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, word := range wordRE.FindAllString(strings.ToLower(text), -1) {
		if _, ok := keywordStopwords[word]; ok {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// Numbers extracts integers and decimals, tolerating thousands separators.
func Numbers(text string) []float64 {
	matches := numberRE.FindAllString(text, -1)
	numbers := make([]float64, 0, len(matches))
	for _, match := range matches {
		value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, value)
	}
	return numbers
}

// Dates extracts date-like strings in common textual and numeric shapes.
func Dates(text string) []string {
	dates := make([]string, 0)
	for _, re := range dateREs {
		dates = append(dates, re.FindAllString(text, -1)...)
	}
	return dates
}

// URLs extracts http, https, and bare www links.
func URLs(text string) []string {
	return urlRE.FindAllString(text, -1)
}

// Emails extracts email addresses.
func Emails(text string) []string {
	return emailRE.FindAllString(text, -1)
}

// CapitalizedPhrases extracts runs of capitalized words as likely named
// entities. Duplicates are dropped, first occurrence kept.
func CapitalizedPhrases(text string, minWords int) []string {
	if minWords <= 0 {
		minWords = 2
	}

	seen := make(map[string]struct{})
	phrases := make([]string, 0)
	for _, phrase := range capitalizedPhraseRE.FindAllString(text, -1) {
		if len(strings.Fields(phrase)) < minWords {
			continue
		}
		if _, ok := seen[phrase]; ok {
			continue
		}
		seen[phrase] = struct{}{}
		phrases = append(phrases, phrase)
	}
	return phrases
}

// Heading is one markdown-style heading with its nesting level.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Headings extracts markdown-style headings, one per "#"-prefixed line.
func Headings(text string) []Heading {
	headings := make([]Heading, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}

		level := 0
		for _, r := range line {
			if r != '#' {
				break
			}
			level++
		}

		if headingText := strings.TrimSpace(line[level:]); headingText != "" {
			headings = append(headings, Heading{Level: level, Text: headingText})
		}
	}
	return headings
}

// SentencesWithKeywords returns the sentences that mention any keyword,
// matched case-insensitively.
func SentencesWithKeywords(text string, keywords []string) []string {
	matches := make([]string, 0)
	if len(keywords) == 0 {
		return matches
	}

	lowered := make([]string, len(keywords))
	for i, keyword := range keywords {
		lowered[i] = strings.ToLower(keyword)
	}

	for _, sentence := range sentenceBoundaryRE.Split(text, -1) {
		sentenceLower := strings.ToLower(sentence)
		for _, keyword := range lowered {
			if strings.Contains(sentenceLower, keyword) {
				matches = append(matches, strings.TrimSpace(sentence))
				break
			}
		}
	}
	return matches
}
