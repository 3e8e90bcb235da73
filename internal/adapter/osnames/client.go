// Package osnames implements domain.Geocoder on the Ordnance Survey Names API.
package osnames

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/observability"
)

// DefaultBaseURL is the OS Names find endpoint.
const DefaultBaseURL = "https://api.os.uk/search/names/v1/find"

// Client implements domain.Geocoder using the OS Names API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OS Names client. An empty baseURL selects DefaultBaseURL.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Find searches the gazetteer for query.
func (c *Client) Find(ctx context.Context, query string) ([]domain.GazetteerEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty place query: %w", domain.ErrInvalidInput)
	}

	params := url.Values{
		"query": {query},
		"key":   {c.apiKey},
	}

	start := time.Now()
	entries, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		c.logger.Warn("os names request failed", "query", query, "error", err)
		return nil, err
	case len(entries) == 0:
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return entries, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.GazetteerEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("os names request: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("os names rejected query: %s: %w", body, domain.ErrInvalidInput)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("os names API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrUpstreamUnavailable)
	}

	var namesResp response
	if err := json.NewDecoder(resp.Body).Decode(&namesResp); err != nil {
		return nil, fmt.Errorf("decode response: %v: %w", err, domain.ErrUpstreamUnavailable)
	}

	entries := make([]domain.GazetteerEntry, 0, len(namesResp.Results))
	for _, r := range namesResp.Results {
		if r.Entry == nil {
			continue
		}
		entries = append(entries, r.Entry.toDomain())
	}
	return entries, nil
}

// OS Names API response types.

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Entry *gazetteerEntry `json:"GAZETTEER_ENTRY"`
}

type gazetteerEntry struct {
	ID              string  `json:"ID"`
	Name1           string  `json:"NAME1"`
	Type            string  `json:"TYPE"`
	LocalType       string  `json:"LOCAL_TYPE"`
	GeometryX       float64 `json:"GEOMETRY_X"`
	GeometryY       float64 `json:"GEOMETRY_Y"`
	PopulatedPlace  string  `json:"POPULATED_PLACE"`
	DistrictBorough string  `json:"DISTRICT_BOROUGH"`
	Region          string  `json:"REGION"`
}

func (g gazetteerEntry) toDomain() domain.GazetteerEntry {
	return domain.GazetteerEntry{
		ID:             g.ID,
		Name:           g.Name1,
		Type:           g.Type,
		LocalType:      g.LocalType,
		Easting:        g.GeometryX,
		Northing:       g.GeometryY,
		PopulatedPlace: g.PopulatedPlace,
		District:       g.DistrictBorough,
		Region:         g.Region,
	}
}
