package osnames

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Find_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SW1A 1AA", r.URL.Query().Get("query"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))

		resp := response{Results: []result{
			{Entry: &gazetteerEntry{
				ID:              "SW1A1AA",
				Name1:           "SW1A 1AA",
				Type:            "other",
				LocalType:       "Postcode",
				GeometryX:       529090,
				GeometryY:       179645,
				PopulatedPlace:  "London",
				DistrictBorough: "City of Westminster",
				Region:          "London",
			}},
			{},
		}}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	entries, err := c.Find(context.Background(), "  SW1A 1AA ")
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, domain.GazetteerEntry{
		ID:             "SW1A1AA",
		Name:           "SW1A 1AA",
		Type:           "other",
		LocalType:      "Postcode",
		Easting:        529090,
		Northing:       179645,
		PopulatedPlace: "London",
		District:       "City of Westminster",
		Region:         "London",
	}, entries[0])
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("success")), 0)
}

func TestClient_Find_DecodesRawPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"header": {"totalresults": 1},
			"results": [{"GAZETTEER_ENTRY": {
				"ID": "osgb4000000074553633",
				"NAME1": "Godalming",
				"TYPE": "populatedPlace",
				"LOCAL_TYPE": "Town",
				"GEOMETRY_X": 497168.0,
				"GEOMETRY_Y": 143933.0,
				"DISTRICT_BOROUGH": "Waverley",
				"REGION": "South East"
			}}]
		}`))
	}))
	defer srv.Close()

	entries, err := testClient(srv.URL).Find(context.Background(), "Godalming")
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "Godalming", entries[0].Name)
	assert.Equal(t, "populatedPlace", entries[0].Type)
	assert.Equal(t, 497168.0, entries[0].Easting)
	assert.Empty(t, entries[0].PopulatedPlace)
}

func TestClient_Find_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"header": {"totalresults": 0}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	entries, err := c.Find(context.Background(), "XYZNONEXISTENT99")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("empty")), 0)
}

func TestClient_Find_EmptyQuery(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Find(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, called)
}

func TestClient_Find_BadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Requested query is invalid"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Find(context.Background(), "%%%")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Find_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"fault":{"faultstring":"Invalid ApiKey"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Find(context.Background(), "Godalming")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("error")), 0)
}

func TestClient_Find_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Find(context.Background(), "Godalming")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_Find_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.Find(context.Background(), "Godalming")
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("k", "", time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
