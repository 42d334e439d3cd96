package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hellogreencow/burch/pkg/httputil"
)

// SearXNG is the zero-cost metasearch provider. It is the default first
// hop of every fallback chain when a base URL is configured.
type SearXNG struct {
	baseURL string
	engines string
	client  *httputil.Client
}

func NewSearXNG(baseURL, engines string, client *httputil.Client) *SearXNG {
	return &SearXNG{baseURL: baseURL, engines: engines, client: client}
}

func (s *SearXNG) Name() string          { return "searxng" }
func (s *SearXNG) CostPerQuery() float64 { return 0.0 }
func (s *SearXNG) Reliability() float64  { return 0.62 }
func (s *SearXNG) Freshness() float64    { return 0.7 }
func (s *SearXNG) Enabled() bool         { return s.baseURL != "" }

type searxngResponse struct {
	Results []struct {
		Title         string   `json:"title"`
		URL           string   `json:"url"`
		Content       string   `json:"content"`
		Engine        string   `json:"engine"`
		PublishedDate string   `json:"publishedDate"`
		Engines       []string `json:"engines"`
		Score         float64  `json:"score"`
		Category      string   `json:"category"`
	} `json:"results"`
}

func (s *SearXNG) fetch(ctx context.Context, query string, restrictEngines bool) (*searxngResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("pageno", "1")
	params.Set("safesearch", "0")
	if restrictEngines && s.engines != "" {
		params.Set("engines", s.engines)
	}
	endpoint := fmt.Sprintf("%s/search?%s", strings.TrimRight(s.baseURL, "/"), params.Encode())

	var payload searxngResponse
	if err := s.client.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (s *SearXNG) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("searxng: no base url configured")
	}

	payload, err := s.fetch(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("searxng search: %w", err)
	}
	// Engines get rate-limited intermittently. Retry once without the
	// engine restriction so SearXNG can use whatever is healthy.
	if s.engines != "" && len(payload.Results) == 0 {
		payload, err = s.fetch(ctx, query, false)
		if err != nil {
			return nil, fmt.Errorf("searxng unrestricted retry: %w", err)
		}
	}

	results := make([]SearchResult, 0, limit)
	for _, row := range payload.Results {
		if len(results) >= limit {
			break
		}
		title := row.Title
		if title == "" {
			title = "Untitled"
		}
		source := row.Engine
		if source == "" {
			source = "searxng"
		}
		results = append(results, SearchResult{
			Title:         title,
			URL:           row.URL,
			Snippet:       row.Content,
			Source:        source,
			PublishedDate: row.PublishedDate,
			Engines:       row.Engines,
			Score:         row.Score,
			Category:      row.Category,
		})
	}
	return results, nil
}
