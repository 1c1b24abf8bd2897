package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/pharmacy-api/internal/model"
	"github.com/jwalitptl/pharmacy-api/pkg/circuitbreaker"
	"github.com/jwalitptl/pharmacy-api/pkg/logger"
)

// ScoredItem is one fuzzy-search hit with the service's relevance score.
// Results arrive pre-sorted best first.
type ScoredItem struct {
	Item  model.CatalogItem `json:"item"`
	Score float64           `json:"score"`
}

// SearchOptions tune one fuzzy-search call.
type SearchOptions struct {
	MinScore float64
	Limit    int
}

// Searcher is the catalog fuzzy-search service.
type Searcher interface {
	Search(ctx context.Context, term string, opts SearchOptions) ([]ScoredItem, error)
}

type ClientConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:  5 * time.Second,
		CacheTTL: 30 * time.Second,
	}
}

// Client calls the external catalog search service. Responses are cached for
// a short TTL because the matcher's variant cascade and the manual search box
// frequently repeat identical terms within one session.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *gocache.Cache
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultClientConfig().CacheTTL
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		cache:   gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "catalog-search",
			MaxFailures: 5,
			Timeout:     15 * time.Second,
		}),
		logger: log.WithComponent("catalog-client"),
	}
}

type searchResponse struct {
	Success bool         `json:"success"`
	Data    []ScoredItem `json:"data"`
	Message string       `json:"message,omitempty"`
}

func (c *Client) Search(ctx context.Context, term string, opts SearchOptions) ([]ScoredItem, error) {
	key := fmt.Sprintf("%s|%g|%d", term, opts.MinScore, opts.Limit)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]ScoredItem), nil
	}

	var results []ScoredItem
	err := c.breaker.Execute(func() error {
		q := url.Values{}
		q.Set("q", term)
		q.Set("min_score", fmt.Sprintf("%g", opts.MinScore))
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/api/v1/medicines/search?"+q.Encode(), nil)
		if err != nil {
			return fmt.Errorf("failed to build search request: %w", err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("search request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("search service returned status %d", resp.StatusCode)
		}

		var body searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode search response: %w", err)
		}
		if !body.Success {
			return fmt.Errorf("search service error: %s", body.Message)
		}

		results = body.Data
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, results, gocache.DefaultExpiration)
	return results, nil
}
