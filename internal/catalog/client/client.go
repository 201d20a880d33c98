package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/croptivize/catalog/internal/catalog/domain"
	"github.com/croptivize/catalog/pkg/logger"
)

// Client is an HTTP client for the catalog service. It implements Fetcher so
// a FilterController can drive it directly.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog service client
func NewClient(baseURL string) *Client {
	logger.Logger.Info().
		Str("base_url", baseURL).
		Msg("Catalog client initialized")

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// envelope mirrors the service's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// queryString encodes a filter, omitting parameters at their default so URLs
// stay short and cache keys stay stable.
func queryString(f domain.Filter) string {
	q := url.Values{}

	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 && f.Limit != domain.DefaultLimit {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" && f.Category != domain.CategoryAll {
		q.Set("category", f.Category)
	}
	if f.Sort != "" && f.Sort != domain.SortNewest {
		q.Set("sort", f.Sort)
	}
	if f.MinPrice != nil {
		q.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.MinRating > 0 {
		q.Set("minRating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.Featured {
		q.Set("featured", "true")
	}

	return q.Encode()
}

// ListProducts fetches one page of products matching the filter.
func (c *Client) ListProducts(ctx context.Context, f domain.Filter) (*domain.PageEnvelope, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := c.baseURL + "/api/products"
	if qs := queryString(f); qs != "" {
		endpoint += "?" + qs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, fmt.Errorf("catalog service error (%d): %s", resp.StatusCode, env.Error)
	}

	var page domain.PageEnvelope
	if err := json.Unmarshal(env.Data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode page: %w", err)
	}
	return &page, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/products/%d", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, fmt.Errorf("catalog service error (%d): %s", resp.StatusCode, env.Error)
	}

	var product domain.Product
	if err := json.Unmarshal(env.Data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return &product, nil
}
