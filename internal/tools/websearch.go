package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrNoResults is returned when a search yields nothing.
var ErrNoResults = errors.New("no search results")

// WebSearchConfig configures the web search tool.
type WebSearchConfig struct {
	URL        string
	MaxResults int
	Timeout    time.Duration
	CacheSize  int
	CacheTTL   time.Duration
}

type searchEntry struct {
	content  string
	storedAt time.Time
}

// WebSearch queries the DuckDuckGo HTML endpoint and formats the top results
// as "- title: snippet" lines.
type WebSearch struct {
	url        string
	maxResults int
	httpClient *http.Client
	cache      *lru.Cache[string, searchEntry]
	ttl        time.Duration
}

// NewWebSearch creates a web search tool.
func NewWebSearch(cfg WebSearchConfig) *WebSearch {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	ws := &WebSearch{
		url:        cfg.URL,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		ttl:        cfg.CacheTTL,
	}
	if cfg.CacheSize > 0 && cfg.CacheTTL > 0 {
		// lru.New only errors on non-positive size which we guard above.
		ws.cache, _ = lru.New[string, searchEntry](cfg.CacheSize)
	}
	return ws
}

// Search runs a query. It is a tools.Func.
func (w *WebSearch) Search(ctx context.Context, query string) (string, error) {
	key := strings.TrimSpace(query)
	if w.cache != nil {
		if entry, ok := w.cache.Get(key); ok {
			if time.Since(entry.storedAt) < w.ttl {
				return entry.content, nil
			}
			w.cache.Remove(key)
		}
	}

	content, err := w.fetch(ctx, key)
	if err != nil {
		return "", err
	}

	if w.cache != nil {
		w.cache.Add(key, searchEntry{content: content, storedAt: time.Now()})
	}
	return content, nil
}

func (w *WebSearch) fetch(ctx context.Context, query string) (string, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; agentflow/0.1)")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse results: %w", err)
	}

	var lines []string
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := collapse(s.Find(".result__a").First().Text())
		body := collapse(s.Find(".result__snippet").First().Text())
		if title == "" {
			return true
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", title, body))
		return len(lines) < w.maxResults
	})

	if len(lines) == 0 {
		return "", ErrNoResults
	}
	return strings.Join(lines, "\n"), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
