package scrape

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/logger"
	"github.com/viniciusvds1/rubro-news-pipeline/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	minContentRunes  = 80
)

// Extractor fetches article pages and pulls the body text out of heterogeneous
// source markup by probing a selector fallback chain.
type Extractor struct {
	client    httpclient.Client
	selectors []string
	log       logger.Logger
}

// NewExtractor constructs an extractor with the given HTTP client and selector
// chain. Nil arguments fall back to defaults.
func NewExtractor(client httpclient.Client, selectors []string, log logger.Logger) *Extractor {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	if len(selectors) == 0 {
		selectors = DefaultSelectors()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Extractor{client: client, selectors: selectors, log: log}
}

// FullText retrieves the full article body for the given URL. The second
// return value reports whether usable content was found. Scrape failure is an
// expected outcome and never surfaces as an error.
func (e *Extractor) FullText(ctx context.Context, url string) (string, bool) {
	if e == nil || strings.TrimSpace(url) == "" {
		return "", false
	}

	resp, err := e.client.Get(ctx, url, map[string]string{
		"User-Agent": "Mozilla/5.0 (compatible; rubro-news-pipeline/1.0)",
	})
	if err != nil {
		e.log.WarnObj("article page fetch failed", "scrape_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return "", false
	}
	if resp.StatusCode() != 200 {
		e.log.WarnObj("article page returned non-200", "scrape_error", map[string]any{
			"url":    url,
			"status": resp.StatusCode(),
		})
		return "", false
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	text, ok := ExtractText(body, e.selectors)
	if !ok {
		e.log.DebugObj("no selector matched article body", "scrape_miss", map[string]any{
			"url": url,
		})
	}
	return text, ok
}

// ExtractText probes the selector chain against the parsed document and
// returns the normalized text of the first selector with substantive content.
func ExtractText(body []byte, selectors []string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", false
	}

	doc.Find("script, style, noscript").Remove()

	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := normalizeWhitespace(node.Text())
		if len([]rune(text)) >= minContentRunes {
			return text, true
		}
	}
	return "", false
}

// normalizeWhitespace collapses runs of blanks and keeps paragraph breaks.
func normalizeWhitespace(raw string) string {
	lines := strings.Split(raw, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
