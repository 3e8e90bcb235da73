// Command floodcheck resolves a place and prints the flood warning and alert
// areas around it as JSON, using the same configuration and pipeline as the
// service.
//
// Usage:
//
//	OS_API_KEY=... go run ./cmd/floodcheck -query "Godalming"
//	OS_API_KEY=... go run ./cmd/floodcheck -query "GU7 1AA" -radius 3
//	OS_API_KEY=... go run ./cmd/floodcheck -query "Farncombe" -place osgb4000000074559876
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flood-area-service/internal/adapter/floodmonitoring"
	"github.com/couchcryptid/flood-area-service/internal/adapter/osnames"
	"github.com/couchcryptid/flood-area-service/internal/config"
	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/observability"
	"github.com/couchcryptid/flood-area-service/internal/pipeline"
	"github.com/couchcryptid/flood-area-service/internal/session"
)

type areaReport struct {
	Notation string   `json:"notation"`
	Summary  string   `json:"summary"`
	Distance *float64 `json:"distance_miles"`
	Directly bool     `json:"affects_place_directly"`
}

type report struct {
	Query        string               `json:"query"`
	Profile      string               `json:"profile"`
	Place        domain.Place         `json:"place"`
	Alternatives []domain.Place       `json:"alternatives"`
	CutoffMiles  float64              `json:"cutoff_miles,omitempty"`
	Warnings     []areaReport         `json:"warning_areas"`
	Alerts       []areaReport         `json:"alert_areas"`
	Failed       []domain.AreaFailure `json:"failed,omitempty"`
}

func main() {
	query := flag.String("query", "", "place name or postcode to resolve")
	placeID := flag.String("place", "", "pick this place id instead of the best match")
	radius := flag.Float64("radius", 0, "search radius in miles; overrides the profile radius and cutoff")
	verbose := flag.Bool("v", false, "log progress to stderr")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "floodcheck: -query is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*query, *placeID, *radius, *verbose, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "floodcheck:", err)
		os.Exit(1)
	}
}

func run(query, placeID string, radius float64, verbose bool, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(
		osnames.NewClient(cfg.OSAPIKey, cfg.OSNamesURL, cfg.GeocodeTimeout, metrics, logger),
		floodmonitoring.NewClient(cfg.FloodAPIURL, cfg.FloodAPITimeout, metrics, logger),
		session.NewMemoryStore(cfg.SessionTTL, nil),
		nil,
		pipeline.Config{
			Policy:       cfg.Policy,
			FetchTimeout: cfg.PolygonFetchTimeout,
			Concurrency:  cfg.PolygonFetchConcurrency,
		},
		logger, metrics,
	)

	sess, err := p.CreateSession(ctx)
	if err != nil {
		return err
	}
	search, err := p.ResolvePlace(ctx, sess, query)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", query, err)
	}
	if placeID == "" {
		placeID = search.Best.ID
	}
	sel, err := p.SelectPlace(ctx, sess, placeID, radius)
	if err != nil {
		return fmt.Errorf("select %s: %w", placeID, err)
	}

	r := report{
		Query:        query,
		Profile:      cfg.Policy.Name,
		Place:        sel.Place,
		Alternatives: search.Alternatives,
		CutoffMiles:  sel.CutoffMiles,
		Warnings:     areaReports(sel.Classification.Warnings, sel),
		Alerts:       areaReports(sel.Classification.Alerts, sel),
		Failed:       sel.Classification.Failed,
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func areaReports(areas []domain.FloodArea, sel session.Selection) []areaReport {
	out := make([]areaReport, 0, len(areas))
	for _, a := range areas {
		out = append(out, areaReport{
			Notation: a.Notation,
			Summary:  a.Summary(sel.Place.Name, sel.CutoffMiles),
			Distance: a.Distance,
			Directly: a.AffectsPlaceDirectly,
		})
	}
	return out
}
