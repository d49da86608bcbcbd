package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

const (
	// DefaultOverpassURL is the public Overpass API interpreter.
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

	// DefaultFetchTimeout is the default HTTP request timeout for
	// walking network fetches.
	DefaultFetchTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts.
	DefaultMaxRetries = 3

	// defaultBaseBackoff is the base delay for exponential backoff.
	defaultBaseBackoff = 500 * time.Millisecond

	// maxResponseBytes limits the response body to 100 MB to prevent OOM
	// on dense urban extracts.
	maxResponseBytes = 100 << 20
)

// FetchOption configures OverpassProvider behavior.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	timeout     time.Duration
	maxRetries  int
	baseBackoff time.Duration
	client      *http.Client
}

func defaultFetchConfig() fetchConfig {
	return fetchConfig{
		timeout:     DefaultFetchTimeout,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: defaultBaseBackoff,
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetchOption {
	return func(c *fetchConfig) {
		c.timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) FetchOption {
	return func(c *fetchConfig) {
		c.maxRetries = n
	}
}

// WithBaseBackoff sets the base delay for exponential backoff between retries.
func WithBaseBackoff(d time.Duration) FetchOption {
	return func(c *fetchConfig) {
		c.baseBackoff = d
	}
}

// WithHTTPClient overrides the default HTTP client (useful for testing).
func WithHTTPClient(client *http.Client) FetchOption {
	return func(c *fetchConfig) {
		c.client = client
	}
}

// OverpassProvider fetches pedestrian street networks from an Overpass
// API endpoint. It retries transient failures with exponential backoff.
type OverpassProvider struct {
	apiURL string
	cfg    fetchConfig
}

// NewOverpassProvider creates a provider against the given interpreter
// URL, or the public instance when empty.
func NewOverpassProvider(apiURL string, opts ...FetchOption) *OverpassProvider {
	if apiURL == "" {
		apiURL = DefaultOverpassURL
	}
	cfg := defaultFetchConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &OverpassProvider{apiURL: apiURL, cfg: cfg}
}

// walkableQuery selects ways a pedestrian can traverse around a center
// point. Motorways and their links are excluded.
func walkableQuery(center orb.Point, radiusMeters float64) string {
	return fmt.Sprintf(`[out:json][timeout:%d];
way(around:%.0f,%.6f,%.6f)["highway"]["highway"!~"motorway|motorway_link|trunk|trunk_link"]["foot"!~"no"];
(._;>;);
out body;`, int(DefaultFetchTimeout.Seconds()), radiusMeters, center[1], center[0])
}

// FetchWalkingGraph fetches the walking network covering the disc of
// radiusMeters around center. Failures are wrapped in *NetworkError so
// callers can identify the region.
func (p *OverpassProvider) FetchWalkingGraph(ctx context.Context, center orb.Point, radiusMeters float64) (*Graph, error) {
	if !ValidLocation(center) {
		return nil, &NetworkError{Center: center, RadiusMeters: radiusMeters,
			Err: fmt.Errorf("invalid center coordinates")}
	}

	client := p.cfg.client
	if client == nil {
		client = &http.Client{Timeout: p.cfg.timeout}
	}

	query := walkableQuery(center, radiusMeters)

	var lastErr error
	for attempt := range p.cfg.maxRetries {
		if attempt > 0 {
			backoff := p.cfg.baseBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return nil, &NetworkError{Center: center, RadiusMeters: radiusMeters, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		body, err := p.doQuery(ctx, client, query)
		if err != nil {
			lastErr = err
			continue
		}

		g, err := parseOverpassGraph(body)
		if err != nil {
			// Parse errors are not transient; do not retry.
			return nil, &NetworkError{Center: center, RadiusMeters: radiusMeters, Err: err}
		}
		log.Printf("[network] fetched walking graph around (%.5f, %.5f) r=%.0fm: %d nodes",
			center[1], center[0], radiusMeters, g.NodeCount())
		return g, nil
	}

	return nil, &NetworkError{Center: center, RadiusMeters: radiusMeters,
		Err: fmt.Errorf("all %d attempts failed: %w", p.cfg.maxRetries, lastErr)}
}

// doQuery performs a single Overpass POST and returns the response body bytes.
func (p *OverpassProvider) doQuery(ctx context.Context, client *http.Client, query string) ([]byte, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP POST %s: %w", p.apiURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP POST %s: status %d", p.apiURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", p.apiURL, err)
	}

	return body, nil
}

type overpassElement struct {
	Type  string  `json:"type"`
	ID    int64   `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Nodes []int64 `json:"nodes"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// parseOverpassGraph builds an undirected graph from an Overpass JSON
// response. Way segments become edges weighted by haversine length.
func parseOverpassGraph(body []byte) (*Graph, error) {
	var resp overpassResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing overpass JSON: %w", err)
	}

	g := NewGraph()
	for _, el := range resp.Elements {
		if el.Type == "node" {
			g.AddNode(el.ID, orb.Point{el.Lon, el.Lat})
		}
	}
	for _, el := range resp.Elements {
		if el.Type != "way" {
			continue
		}
		for i := 1; i < len(el.Nodes); i++ {
			a, b := el.Nodes[i-1], el.Nodes[i]
			locA, okA := g.NodeLocation(a)
			locB, okB := g.NodeLocation(b)
			if !okA || !okB {
				continue
			}
			g.AddEdge(a, b, HaversineMeters(locA, locB))
		}
	}

	if g.NodeCount() == 0 {
		return nil, fmt.Errorf("overpass response contains no walkable nodes")
	}
	return g, nil
}
