// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-engine/internal/httputil"
	"github.com/pdiddy/paper-engine/pkg/types"
)

// ssrnTitleSelector matches paper title links on the SSRN top-downloads page.
var ssrnTitleSelector = ".title a, a.title, td.title a"

// googleGuard is the anti-JSON-hijacking prefix on Google Trends responses.
const googleGuard = ")]}',"

// SSRNSource scrapes the SSRN top-downloads page. Titles earlier on the
// page receive a higher signal.
type SSRNSource struct {
	Client    *http.Client
	URL       string
	UserAgent string
}

// Name returns the source identifier.
func (s *SSRNSource) Name() string { return "ssrn" }

// Kind reports SSRN as a primary source.
func (s *SSRNSource) Kind() types.SourceKind { return types.PrimarySource }

// Candidates fetches the page and returns one candidate per title.
func (s *SSRNSource) Candidates(ctx context.Context) ([]types.Candidate, error) {
	body, err := get(ctx, s.Client, s.URL, s.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("SSRN request: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing SSRN page: %w", err)
	}

	var titles []string
	seen := make(map[string]bool)
	doc.Find(ssrnTitleSelector).Each(func(_ int, sel *goquery.Selection) {
		title := strings.Join(strings.Fields(sel.Text()), " ")
		if title == "" || seen[Normalize(title)] {
			return
		}
		seen[Normalize(title)] = true
		titles = append(titles, title)
	})

	candidates := make([]types.Candidate, len(titles))
	for i, title := range titles {
		candidates[i] = types.Candidate{
			Topic:     types.Topic(title),
			Source:    types.PrimarySource,
			Origin:    s.Name(),
			RawSignal: positionScore(i, len(titles)),
		}
	}
	return candidates, nil
}

// GoogleTrendsSource reads the Google Trends daily feed. The signal is the
// search traffic normalised against the busiest query of the feed.
type GoogleTrendsSource struct {
	Client    *http.Client
	URL       string
	Geo       string
	UserAgent string
}

// Name returns the source identifier.
func (g *GoogleTrendsSource) Name() string { return "google_trends" }

// Kind reports Google Trends as a secondary source.
func (g *GoogleTrendsSource) Kind() types.SourceKind { return types.SecondarySource }

// Candidates fetches the daily feed and returns one candidate per query.
func (g *GoogleTrendsSource) Candidates(ctx context.Context) ([]types.Candidate, error) {
	geo := g.Geo
	if geo == "" {
		geo = "US"
	}
	params := url.Values{
		"hl":  {"en-US"},
		"tz":  {"0"},
		"geo": {geo},
	}
	body, err := get(ctx, g.Client, g.URL+"?"+params.Encode(), g.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("Google Trends request: %w", err)
	}

	body = bytes.TrimSpace(body)
	body = bytes.TrimPrefix(body, []byte(googleGuard))

	var feed dailyTrendsResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing Google Trends response: %w", err)
	}

	type query struct {
		text    string
		traffic float64
	}
	var queries []query
	var max float64
	for _, day := range feed.Default.TrendingSearchesDays {
		for _, ts := range day.TrendingSearches {
			text := strings.TrimSpace(ts.Title.Query)
			if text == "" {
				continue
			}
			traffic := parseTraffic(ts.FormattedTraffic)
			if traffic > max {
				max = traffic
			}
			queries = append(queries, query{text: text, traffic: traffic})
		}
	}

	candidates := make([]types.Candidate, len(queries))
	for i, q := range queries {
		signal := positionScore(i, len(queries))
		if max > 0 {
			signal = q.traffic / max
		}
		candidates[i] = types.Candidate{
			Topic:     types.Topic(q.text),
			Source:    types.SecondarySource,
			Origin:    g.Name(),
			RawSignal: signal,
		}
	}
	return candidates, nil
}

// StaticSource ranks operator-supplied topics with a fixed signal.
type StaticSource struct {
	Topics []string
	Signal float64
}

// Name returns the source identifier.
func (s *StaticSource) Name() string { return "static" }

// Kind reports configured topics as primary.
func (s *StaticSource) Kind() types.SourceKind { return types.PrimarySource }

// Candidates returns the configured topics.
func (s *StaticSource) Candidates(context.Context) ([]types.Candidate, error) {
	signal := s.Signal
	if signal <= 0 {
		signal = 1.0
	}
	out := make([]types.Candidate, 0, len(s.Topics))
	for _, t := range s.Topics {
		out = append(out, types.Candidate{
			Topic:     types.Topic(t),
			Source:    types.PrimarySource,
			Origin:    s.Name(),
			RawSignal: signal,
		})
	}
	return out, nil
}

// NewSources builds the sources enabled by cfg. A source with an empty URL
// is skipped.
func NewSources(cfg types.TrendConfig, client *http.Client) []Source {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	var sources []Source
	if cfg.SSRNURL != "" {
		sources = append(sources, &SSRNSource{Client: client, URL: cfg.SSRNURL, UserAgent: cfg.UserAgent})
	}
	if cfg.GoogleTrendsURL != "" {
		sources = append(sources, &GoogleTrendsSource{Client: client, URL: cfg.GoogleTrendsURL, Geo: cfg.Geo, UserAgent: cfg.UserAgent})
	}
	if len(cfg.StaticTopics) > 0 {
		sources = append(sources, &StaticSource{Topics: cfg.StaticTopics})
	}
	return sources
}

func get(ctx context.Context, client *http.Client, reqURL, userAgent string) ([]byte, error) {
	if reqURL == "" {
		return nil, fmt.Errorf("no URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// positionScore maps position i of n to a signal in [0.1, 1.0].
func positionScore(i, n int) float64 {
	if n <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(n-1)*0.9
}

// parseTraffic converts Google's formatted traffic ("200K+", "2M+") to a number.
func parseTraffic(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'K', 'k':
		mult = 1e3
		s = s[:len(s)-1]
	case 'M', 'm':
		mult = 1e6
		s = s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v * mult
}

// Google Trends daily feed JSON structures.
type dailyTrendsResponse struct {
	Default struct {
		TrendingSearchesDays []trendingDay `json:"trendingSearchesDays"`
	} `json:"default"`
}

type trendingDay struct {
	Date             string            `json:"date"`
	TrendingSearches []trendingSearch `json:"trendingSearches"`
}

type trendingSearch struct {
	Title struct {
		Query string `json:"query"`
	} `json:"title"`
	FormattedTraffic string `json:"formattedTraffic"`
}
