package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// CrawlerProvider fetches configured seed pages directly, as the
// lowest-credibility fallback source. It honors robots.txt and bounds
// body size.
type CrawlerProvider struct {
	httpClient *http.Client
	robots     *RobotsChecker
	userAgent  string
	maxBytes   int64
	seeds      []string
	rps        float64
}

// NewCrawlerProvider creates a crawler over the given seed URLs
func NewCrawlerProvider(seeds []string, timeout time.Duration, userAgent string, maxBytes int64, requestsPerSecond float64) *CrawlerProvider {
	if maxBytes <= 0 {
		maxBytes = 2 * 1024 * 1024
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 0.5
	}
	return &CrawlerProvider{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    NewRobotsChecker(userAgent, timeout),
		userAgent: userAgent,
		maxBytes:  maxBytes,
		seeds:     seeds,
		rps:       requestsPerSecond,
	}
}

// Name returns the crawler's stable source identifier
func (c *CrawlerProvider) Name() string { return "crawler" }

// RateLimit returns the crawler's allowed requests per second
func (c *CrawlerProvider) RateLimit() float64 { return c.rps }

// IsAvailable reports whether the crawler has any seeds to fetch
func (c *CrawlerProvider) IsAvailable(ctx context.Context) bool {
	return len(c.seeds) > 0
}

// Search fetches each seed page whose text mentions the query, up to
// maxResults. Individual page failures skip that page only.
func (c *CrawlerProvider) Search(ctx context.Context, query string, maxResults int, filters Filters) ([]RawResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	var results []RawResult
	queryLower := strings.ToLower(query)

	for _, seed := range c.seeds {
		if len(results) >= maxResults {
			break
		}

		allowed, delay, err := c.robots.CanFetch(ctx, seed)
		if err != nil || !allowed {
			continue
		}
		if delay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(delay):
			}
		}

		text, title, err := c.fetchText(ctx, seed)
		if err != nil {
			continue
		}

		if !strings.Contains(strings.ToLower(text), queryLower) {
			continue
		}

		results = append(results, RawResult{
			Source:  c.Name(),
			Title:   title,
			URL:     seed,
			Snippet: snippetAround(text, queryLower, 600),
		})
	}

	return results, nil
}

// fetchText retrieves a page and reduces it to title plus visible text
func (c *CrawlerProvider) fetchText(ctx context.Context, rawURL string) (text, title string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	return visibleText(doc), pageTitle(doc, rawURL), nil
}

// visibleText extracts text nodes, skipping scripts and styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// pageTitle returns the document title, falling back to a de-slugged
// last URL path segment
func pageTitle(doc *html.Node, rawURL string) string {
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if title != "" {
		return title
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return parsed.Host
	}
	last = strings.ReplaceAll(last, "_", " ")
	return strings.ReplaceAll(last, "-", " ")
}

// snippetAround cuts a window of text centered on the first query match
func snippetAround(text, queryLower string, width int) string {
	idx := strings.Index(strings.ToLower(text), queryLower)
	if idx < 0 {
		if len(text) > width {
			return text[:width]
		}
		return text
	}

	start := idx - width/2
	if start < 0 {
		start = 0
	}
	end := start + width
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
