// Package cleaning digests raw HTML into clean text, a title, and metadata,
// discarding navigation, ads, and other boilerplate.
package cleaning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateTags are elements that never hold article content.
var boilerplateTags = []string{
	"nav", "header", "footer", "aside", "script", "style",
	"noscript", "iframe", "form", "button",
}

// boilerplatePatterns match class or id fragments of ads and page chrome.
var boilerplatePatterns = []string{
	"nav", "menu", "sidebar", "ad", "advertisement", "banner",
	"footer", "header", "social", "share", "comment", "related",
	"cookie", "popup", "modal", "promo",
}

// contentTags are scanned for the largest text block when a page has no
// semantic content landmark.
var contentTags = []string{"article", "main", "section", "div", "p"}

// minContentBlock is the smallest text block considered real content.
const minContentBlock = 100

// CleanError represents a failure to clean an HTML document
type CleanError struct {
	Message string
	Cause   error
}

func (e *CleanError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cleaning error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cleaning error: %s", e.Message)
}

func (e *CleanError) Unwrap() error {
	return e.Cause
}

// Metadata holds page details gathered from meta tags.
type Metadata struct {
	URL           string   `json:"url"`
	Author        string   `json:"author,omitempty"`
	DatePublished string   `json:"date_published,omitempty"`
	Description   string   `json:"description,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
	Image         string   `json:"image,omitempty"`
	SiteName      string   `json:"site_name,omitempty"`
}

// Stats describes one cleaning pass.
type Stats struct {
	RawHTMLLength    int     `json:"raw_html_length"`
	CleanTextLength  int     `json:"clean_text_length"`
	WordCount        int     `json:"word_count"`
	CompressionRatio float64 `json:"compression_ratio"`
	TitleExtracted   bool    `json:"title_extracted"`
	MetadataFields   int     `json:"metadata_fields"`
}

// Document is the output of a cleaning pass.
type Document struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	WordCount int      `json:"word_count"`
	Metadata  Metadata `json:"metadata"`
	Stats     Stats    `json:"stats"`
}

// Clean extracts the readable content of a page. Title and metadata are read
// before boilerplate removal since headers often carry both.
func Clean(rawHTML, url string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &CleanError{Message: "failed to parse HTML", Cause: err}
	}

	title := extractTitle(doc, url)
	metadata := extractMetadata(doc, url)

	removeBoilerplate(doc)
	text := normalizeText(extractMainContent(doc))

	wordCount := len(strings.Fields(text))
	ratio := 0.0
	if len(rawHTML) > 0 {
		ratio = float64(len(text)) / float64(len(rawHTML))
	}

	return &Document{
		URL:       url,
		Title:     title,
		Text:      text,
		WordCount: wordCount,
		Metadata:  metadata,
		Stats: Stats{
			RawHTMLLength:    len(rawHTML),
			CleanTextLength:  len(text),
			WordCount:        wordCount,
			CompressionRatio: ratio,
			TitleExtracted:   title != "" && title != "Untitled",
			MetadataFields:   countMetadataFields(metadata),
		},
	}, nil
}

// extractTitle tries og:title, then <title>, then the first <h1>, and falls
// back to the last URL segment.
func extractTitle(doc *goquery.Document, url string) string {
	if title := metaContent(doc, `meta[property="og:title"]`); title != "" {
		return title
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
		return title
	}

	parts := strings.Split(url, "/")
	if tail := parts[len(parts)-1]; tail != "" {
		return tail
	}
	return "Untitled"
}

// extractMetadata checks Open Graph properties first, then plain meta tags.
func extractMetadata(doc *goquery.Document, url string) Metadata {
	meta := Metadata{URL: url}

	meta.Description = metaContent(doc, `meta[property="og:description"]`)
	meta.Image = metaContent(doc, `meta[property="og:image"]`)
	meta.SiteName = metaContent(doc, `meta[property="og:site_name"]`)
	meta.Author = metaContent(doc, `meta[name="author"]`)

	if meta.Description == "" {
		meta.Description = metaContent(doc, `meta[name="description"]`)
	}

	if keywords := metaContent(doc, `meta[name="keywords"]`); keywords != "" {
		for _, keyword := range strings.Split(keywords, ",") {
			if keyword = strings.TrimSpace(keyword); keyword != "" {
				meta.Keywords = append(meta.Keywords, keyword)
			}
		}
	}

	meta.DatePublished = metaContent(doc, `meta[property="article:published_time"]`)
	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// removeBoilerplate drops boilerplate tags, then any element whose class or
// id contains a boilerplate pattern.
func removeBoilerplate(doc *goquery.Document) {
	doc.Find(strings.Join(boilerplateTags, ", ")).Remove()

	doc.Find("[class], [id]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		haystack := strings.ToLower(class + " " + id)
		for _, pattern := range boilerplatePatterns {
			if strings.Contains(haystack, pattern) {
				s.Remove()
				return
			}
		}
	})
}

// extractMainContent tries semantic landmarks first, then the largest text
// block, then joined paragraphs, and finally the whole document text.
func extractMainContent(doc *goquery.Document) string {
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article.Text()
	}
	if main := doc.Find("main").First(); main.Length() > 0 {
		return main.Text()
	}
	if role := doc.Find(`[role="main"]`).First(); role.Length() > 0 {
		return role.Text()
	}

	best := ""
	for _, tag := range contentTags {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > minContentBlock && len(text) > len(best) {
				best = text
			}
		})
	}
	if best != "" {
		return best
	}

	if paragraphs := doc.Find("p"); paragraphs.Length() > 0 {
		parts := make([]string, 0, paragraphs.Length())
		paragraphs.Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		return strings.Join(parts, " ")
	}

	return doc.Text()
}

var whitespaceRE = regexp.MustCompile(`\s+`)

func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

func countMetadataFields(meta Metadata) int {
	count := 0
	for _, value := range []string{
		meta.URL, meta.Author, meta.DatePublished,
		meta.Description, meta.Image, meta.SiteName,
	} {
		if value != "" {
			count++
		}
	}
	if len(meta.Keywords) > 0 {
		count++
	}
	return count
}
