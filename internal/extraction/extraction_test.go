package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywords_OrderedByFrequency(t *testing.T) {
	text := "Transformers process tokens while transformers attend to tokens and context"

	got := Keywords(text, 3)

	assert.Equal(t, []string{"transformers", "tokens", "process"}, got)
}

func TestKeywords_FiltersStopwordsAndShortWords(t *testing.T) {
	assert.Empty(t, Keywords("The AI the THE ai", 10))
}

func TestKeywords_DefaultLimit(t *testing.T) {
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima"

	got := Keywords(text, 0)

	assert.Len(t, got, DefaultMaxKeywords)
	assert.Equal(t, "alpha", got[0])
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{
			name: "commas and decimals",
			text: "Costs $1,234.56 or 789 units",
			want: []float64{1234.56, 789},
		},
		{
			name: "plain decimal",
			text: "Version 2.5 shipped",
			want: []float64{2.5},
		},
		{
			name: "no digits",
			text: "nothing numeric here",
			want: []float64{},
		},
		{
			name: "long digit runs need separators",
			text: "id 12345 is opaque",
			want: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Numbers(tt.text))
		})
	}
}

func TestDates_GroupsByShape(t *testing.T) {
	text := "Meeting on 03/20/2024, retro 2024-03-28, kickoff Jan 15, 2024."

	got := Dates(text)

	assert.Equal(t, []string{"Jan 15, 2024", "03/20/2024", "2024-03-28"}, got)
}

func TestDates_TextualWithoutComma(t *testing.T) {
	assert.Equal(t, []string{"January 5 2030"}, Dates("due January 5 2030 at noon"))
}

func TestURLs(t *testing.T) {
	text := "Visit https://example.com/page?q=1 or www.test.com for details"

	got := URLs(text)

	assert.Equal(t, []string{"https://example.com/page?q=1", "www.test.com"}, got)
}

func TestEmails(t *testing.T) {
	text := "Contact user@example.com or admin@test.org today"

	got := Emails(text)

	assert.Equal(t, []string{"user@example.com", "admin@test.org"}, got)
}

func TestCapitalizedPhrases(t *testing.T) {
	text := "Apple Inc and Microsoft Corporation praised Machine Learning while Machine Learning spread"

	got := CapitalizedPhrases(text, 2)

	assert.Equal(t, []string{"Apple Inc", "Microsoft Corporation", "Machine Learning"}, got)
}

func TestCapitalizedPhrases_MinWords(t *testing.T) {
	text := "Apple Inc released Deep Neural Network Training notes"

	got := CapitalizedPhrases(text, 3)

	assert.Equal(t, []string{"Deep Neural Network Training"}, got)
}

func TestHeadings(t *testing.T) {
	text := "# Title\n## Section\nContent line\n####\n   ### Indented   \n#NoSpace"

	got := Headings(text)

	assert.Equal(t, []Heading{
		{Level: 1, Text: "Title"},
		{Level: 2, Text: "Section"},
		{Level: 3, Text: "Indented"},
		{Level: 1, Text: "NoSpace"},
	}, got)
}

func TestSentencesWithKeywords(t *testing.T) {
	text := "AI is great. Machine learning too. Weather is nice."

	got := SentencesWithKeywords(text, []string{"ai", "learning"})

	assert.Equal(t, []string{"AI is great", "Machine learning too"}, got)
}

func TestSentencesWithKeywords_NoKeywords(t *testing.T) {
	assert.Empty(t, SentencesWithKeywords("Anything at all.", nil))
}
