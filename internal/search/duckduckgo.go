package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/drbn68/ai-medical-imaging-agent/internal/domain"
)

const defaultEndpoint = "https://lite.duckduckgo.com/lite/"

// Chrome UA; the lite endpoint serves an empty page to unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client returns reference snippets for a query. Failures are wrapped in
// *domain.SearchError; callers treat them as recoverable.
type Client interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// DuckDuckGo scrapes the DuckDuckGo lite HTML interface. No API key needed.
type DuckDuckGo struct {
	endpoint   string
	maxResults int
	client     *http.Client
	log        *zap.Logger
}

func NewDuckDuckGo(maxResults int, timeout time.Duration, log *zap.Logger) *DuckDuckGo {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &DuckDuckGo{
		endpoint:   defaultEndpoint,
		maxResults: maxResults,
		client:     &http.Client{Timeout: timeout},
		log:        log,
	}
}

// NewDuckDuckGoWithEndpoint overrides the endpoint and HTTP client. Used in
// tests to point the scraper at a local server.
func NewDuckDuckGoWithEndpoint(endpoint string, maxResults int, client *http.Client, log *zap.Logger) *DuckDuckGo {
	d := NewDuckDuckGo(maxResults, 15*time.Second, log)
	d.endpoint = endpoint
	if client != nil {
		d.client = client
	}
	return d
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.SearchError{Err: errors.New("query is empty")}
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.SearchError{Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &domain.SearchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.SearchError{Err: fmt.Errorf("duckduckgo http %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &domain.SearchError{Err: fmt.Errorf("parse response: %w", err)}
	}

	results := d.parse(doc)

	d.log.Info("Search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}

// parse extracts results from the lite page. Links carry class "result-link",
// snippets sit in the following "result-snippet" cell.
func (d *DuckDuckGo) parse(doc *goquery.Document) []domain.SearchResult {
	var results []domain.SearchResult

	links := doc.Find("a.result-link")
	snippets := doc.Find("td.result-snippet")

	links.EachWithBreak(func(i int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		link := strings.TrimSpace(sel.AttrOr("href", ""))
		if title == "" || link == "" {
			return true
		}

		snippet := ""
		if i < snippets.Length() {
			snippet = strings.Join(strings.Fields(snippets.Eq(i).Text()), " ")
		}

		results = append(results, domain.SearchResult{
			Title:   title,
			Link:    link,
			Snippet: snippet,
		})
		return len(results) < d.maxResults
	})

	return results
}
