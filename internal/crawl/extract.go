package crawl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is a hyperlink discovered on a page, carrying the anchor text so
// relevance scoring can weigh what the page says about the target.
type Link struct {
	URL    string
	Anchor string
}

// ExtractLinks extracts all http(s) links from HTML content, resolving
// relative references against the base URL.
func ExtractLinks(htmlContent string, baseURL string) ([]Link, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse base URL",
			Cause:   err,
		}
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, &LinkExtractionError{
			Message: fmt.Sprintf("invalid base URL: %s (must have scheme and host)", baseURL),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, &LinkExtractionError{
			Message: "failed to parse HTML",
			Cause:   err,
		}
	}

	linkSet := make(map[string]bool)
	links := make([]Link, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			// Skip malformed URLs
			return
		}

		absoluteURL := base.ResolveReference(linkURL)

		// The crawler follows research trails across domains, so only the
		// scheme is filtered here; relevance scoring decides the rest.
		if absoluteURL.Scheme != "http" && absoluteURL.Scheme != "https" {
			return
		}

		// Normalize for deduplication
		absoluteURL.Fragment = ""
		urlString := strings.TrimSuffix(absoluteURL.String(), "/")

		if !linkSet[urlString] {
			linkSet[urlString] = true
			links = append(links, Link{
				URL:    urlString,
				Anchor: strings.TrimSpace(s.Text()),
			})
		}
	})

	return links, nil
}
