// Package floodmonitoring implements domain.FloodAreaSource on the
// Environment Agency flood-monitoring API.
package floodmonitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/geo"
	"github.com/couchcryptid/flood-area-service/internal/observability"
	geojson "github.com/paulmach/go.geojson"
)

// DefaultBaseURL is the root of the flood-monitoring API.
const DefaultBaseURL = "https://environment.data.gov.uk/flood-monitoring"

// maxPolygonBytes bounds a single polygon download. Large coastal areas run
// to a few megabytes.
const maxPolygonBytes = 32 << 20

// Client implements domain.FloodAreaSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a flood-monitoring client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// AreasNear lists the flood areas within radiusKm of p.
func (c *Client) AreasNear(ctx context.Context, p geo.Point, radiusKm float64) ([]domain.FloodArea, error) {
	params := url.Values{
		"lat":  {strconv.FormatFloat(p.Lat, 'f', 6, 64)},
		"long": {strconv.FormatFloat(p.Lon, 'f', 6, 64)},
		"dist": {strconv.FormatFloat(radiusKm, 'f', -1, 64)},
	}

	body, err := c.get(ctx, c.baseURL+"/id/floodAreas?"+params.Encode(), 0)
	if err != nil {
		c.metrics.FloodAreaRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	var areasResp areasResponse
	if err := json.Unmarshal(body, &areasResp); err != nil {
		c.metrics.FloodAreaRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode flood areas: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	c.metrics.FloodAreaRequests.WithLabelValues("success").Inc()

	areas := make([]domain.FloodArea, 0, len(areasResp.Items))
	for _, item := range areasResp.Items {
		if item.Notation == "" {
			c.logger.Warn("skipping flood area without notation", "label", item.Label)
			continue
		}
		areas = append(areas, domain.FloodArea{
			Notation:    item.Notation,
			Label:       item.Label,
			Description: item.Description,
			PolygonURL:  item.Polygon,
		})
	}
	return areas, nil
}

// FetchGeometry downloads the polygon at polygonURL. Plain http URLs are
// upgraded to https. Unusable coordinates are skipped during normalization;
// only transport failures and undecodable bodies are errors.
func (c *Client) FetchGeometry(ctx context.Context, polygonURL string) (geo.Geometry, error) {
	if polygonURL == "" {
		return geo.Geometry{}, fmt.Errorf("missing polygon url: %w", domain.ErrInvalidInput)
	}

	start := time.Now()
	body, err := c.get(ctx, Secure(polygonURL), maxPolygonBytes)
	c.metrics.PolygonFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return geo.Geometry{}, err
	}

	g, err := decodeGeometry(body)
	if err != nil {
		return geo.Geometry{}, fmt.Errorf("polygon %s: %v: %w", polygonURL, err, domain.ErrUpstreamUnavailable)
	}
	return g, nil
}

func (c *Client) get(ctx context.Context, fullURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flood-monitoring request: %w", upstreamError{err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("flood-monitoring API error: status %d: %s: %w", resp.StatusCode, body, domain.ErrUpstreamUnavailable)
	}

	var r io.Reader = resp.Body
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", upstreamError{err})
	}
	return body, nil
}

// upstreamError marks a transport failure as ErrUpstreamUnavailable while
// keeping the cause (for example context.DeadlineExceeded) reachable.
type upstreamError struct{ cause error }

func (e upstreamError) Error() string { return e.cause.Error() }

func (e upstreamError) Unwrap() []error {
	return []error{e.cause, domain.ErrUpstreamUnavailable}
}

// Secure upgrades an http URL to https.
func Secure(rawURL string) string {
	if len(rawURL) >= 7 && strings.EqualFold(rawURL[:7], "http://") {
		return "https://" + rawURL[7:]
	}
	return rawURL
}

// decodeGeometry prefers a strict GeoJSON decode and falls back to the
// lenient normalizer when the payload does not fit the GeoJSON types.
func decodeGeometry(body []byte) (geo.Geometry, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(body); err == nil && len(fc.Features) > 0 {
		return geo.FromFeatureCollection(fc), nil
	}

	var payload lenientPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return geo.Geometry{}, err
	}

	var g geo.Geometry
	for _, f := range payload.Features {
		if f.Geometry != nil {
			g.Merge(geo.Normalize(*f.Geometry))
		}
	}
	if payload.Geometry != nil {
		g.Merge(geo.Normalize(*payload.Geometry))
	}
	if payload.Coordinates != nil {
		g.Merge(geo.Normalize(geo.RawGeometry{Type: payload.Type, Coordinates: *payload.Coordinates}))
	}
	return g, nil
}

// Flood-monitoring API response types.

type areasResponse struct {
	Items []areaItem `json:"items"`
}

type areaItem struct {
	Notation    string `json:"notation"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Polygon     string `json:"polygon"`
}

// lenientPayload accepts a FeatureCollection, a single Feature or a bare
// geometry object.
type lenientPayload struct {
	Type        string           `json:"type"`
	Coordinates *geo.Node        `json:"coordinates"`
	Geometry    *geo.RawGeometry `json:"geometry"`
	Features    []struct {
		Geometry *geo.RawGeometry `json:"geometry"`
	} `json:"features"`
}
