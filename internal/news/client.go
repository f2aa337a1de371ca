package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/viniciusvds1/rubro-news-pipeline/internal/config"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/domain"
	"github.com/viniciusvds1/rubro-news-pipeline/internal/logger"
	"github.com/viniciusvds1/rubro-news-pipeline/pkg/httpclient"
)

// ErrFetch marks failures talking to the news search API. It is the only
// error class that aborts a whole pipeline run.
var ErrFetch = errors.New("news fetch failed")

// Client queries the external news search API for topic-relevant articles.
type Client struct {
	http     httpclient.Client
	endpoint string
	apiKey   string
	topic    string
	language string
	pageSize int
	retries  int
	backoff  time.Duration
	log      logger.Logger
}

// NewClient builds a news client from configuration.
func NewClient(cfg *config.Config, client httpclient.Client, log logger.Logger) *Client {
	if client == nil {
		client = httpclient.NewRestyClient(15 * time.Second)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	retries := cfg.FetchRetries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		http:     client,
		endpoint: cfg.NewsEndpoint,
		apiKey:   cfg.NewsAPIKey,
		topic:    cfg.NewsTopic,
		language: cfg.NewsLanguage,
		pageSize: cfg.NewsPageSize,
		retries:  retries,
		backoff:  cfg.FetchBackoff,
		log:      log,
	}
}

type apiResponse struct {
	Status   string       `json:"status"`
	Articles []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Fetch issues one query for the most recent topic articles. Transport errors,
// non-2xx statuses and malformed bodies all wrap ErrFetch.
func (c *Client) Fetch(ctx context.Context) ([]domain.CandidateArticle, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("%w: client is not initialized", ErrFetch)
	}

	query := url.Values{}
	query.Set("q", c.topic)
	query.Set("language", c.language)
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	query.Set("apiKey", c.apiKey)

	resp, err := c.http.Get(ctx, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d body: %s", ErrFetch, resp.StatusCode(), responseSnippet(resp.Body()))
	}

	var decoded apiResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFetch, err)
	}

	articles := make([]domain.CandidateArticle, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		articles = append(articles, domain.CandidateArticle{
			Title:       title,
			Description: strings.TrimSpace(a.Description),
			URL:         strings.TrimSpace(a.URL),
			ImageURL:    strings.TrimSpace(a.URLToImage),
			PublishedAt: parsePublishedAt(a.PublishedAt),
			SourceName:  strings.TrimSpace(a.Source.Name),
		})
	}
	return articles, nil
}

// FetchWithRetry retries the whole fetch up to the configured attempt count
// with a fixed back-off. Exhaustion degrades to an empty result; callers must
// treat zero articles as a valid terminal state.
func (c *Client) FetchWithRetry(ctx context.Context) ([]domain.CandidateArticle, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		articles, err := c.Fetch(ctx)
		if err == nil {
			return articles, nil
		}
		lastErr = err
		c.log.WarnObj("news fetch attempt failed", "fetch_attempt", map[string]any{
			"attempt": attempt,
			"error":   err.Error(),
		})

		if attempt == c.retries {
			break
		}
		timer := time.NewTimer(c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", ErrFetch, ctx.Err())
		case <-timer.C:
		}
	}

	c.log.ErrorObj("news fetch retries exhausted", "fetch_error", map[string]any{
		"attempts": c.retries,
		"error":    lastErr.Error(),
	})
	return nil, nil
}

func parsePublishedAt(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return t
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
