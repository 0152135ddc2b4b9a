package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/filter"
	"github.com/centresolea/solea-events/internal/logger"
)

const (
	EventsURL  = "https://isbitelecom.com/evenements"
	CoursesURL = "https://isbitelecom.com/prix-cours"
)

// Options tunes one extraction call.
type Options struct {
	IncludePast     bool
	Kind            event.Kind // empty keeps every kind
	Enrich          bool
	EnrichPageLimit int            // 0 means DefaultEnrichPageLimit
	Filter          *filter.Filter // applied last, may be nil
}

// Scraper extracts events and course information from the Centre Soléa site.
// It holds no state between calls.
type Scraper struct {
	fetcher    Fetcher
	enricher   *Enricher
	eventsURL  string
	coursesURL string
	loc        *time.Location
	metrics    *logger.Metrics

	// Now returns the reference instant; tests pin it.
	Now func() time.Time
}

// Config wires a Scraper. Zero values fall back to the live site and defaults.
type Config struct {
	Fetcher    Fetcher
	EventsURL  string
	CoursesURL string
	Location   *time.Location
	EnrichRate float64 // detail pages per second, 0 = unpaced
	Metrics    *logger.Metrics
}

// New creates a Scraper.
func New(cfg Config) *Scraper {
	if cfg.Fetcher == nil {
		cfg.Fetcher = NewClient(ClientOptions{Metrics: cfg.Metrics})
	}
	if cfg.EventsURL == "" {
		cfg.EventsURL = EventsURL
	}
	if cfg.CoursesURL == "" {
		cfg.CoursesURL = CoursesURL
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Metrics == nil {
		cfg.Metrics = logger.DefaultMetrics()
	}

	return &Scraper{
		fetcher:    cfg.Fetcher,
		enricher:   NewEnricher(cfg.Fetcher, cfg.EnrichRate, cfg.Metrics),
		eventsURL:  cfg.EventsURL,
		coursesURL: cfg.CoursesURL,
		loc:        cfg.Location,
		metrics:    cfg.Metrics,
		Now:        time.Now,
	}
}

// Location returns the reference time zone.
func (s *Scraper) Location() *time.Location {
	return s.loc
}

// Events fetches the events page and returns its events: detected, deduplicated,
// dated in the reference zone, past ones dropped unless opts.IncludePast, sorted,
// filtered by kind, optionally enriched with detail-page times, then filtered.
// Only a failure of the events page itself is an error (*FetchError).
func (s *Scraper) Events(ctx context.Context, opts Options) ([]*event.Event, error) {
	doc, err := s.fetcher.FetchDocument(ctx, s.eventsURL)
	if err != nil {
		logger.C(ctx).Error("events page fetch failed", logger.Fields{
			"url":     s.eventsURL,
			"timeout": IsTimeout(err),
		}, err)
		return nil, err
	}
	return s.Extract(ctx, doc, opts), nil
}

// Extract runs the pipeline on an already fetched events page.
func (s *Scraper) Extract(ctx context.Context, doc *goquery.Document, opts Options) []*event.Event {
	candidates := DetectEvents(doc)

	events := make([]*event.Event, 0, len(candidates))
	for _, c := range candidates {
		events = append(events, c.Event())
	}

	now := s.Now()
	events = event.Dedup(events)
	events = event.Upcoming(events, now, s.loc, opts.IncludePast)
	events = event.FilterKind(events, opts.Kind)

	if opts.Enrich {
		limit := opts.EnrichPageLimit
		if limit <= 0 {
			limit = DefaultEnrichPageLimit
		}
		s.enricher.Enrich(ctx, events, TablaoLinks(doc, limit), limit)
	}

	if !opts.Filter.IsEmpty() {
		f := opts.Filter.Clone()
		if f.Now.IsZero() {
			f.Now = now
		}
		if f.Location == nil {
			f.Location = s.loc
		}
		events = f.Apply(events)
	}

	for _, k := range []event.Kind{event.KindPerformance, event.KindGeneric} {
		s.metrics.AddEvents(string(k), len(event.FilterKind(events, k)))
	}
	logger.C(ctx).Info("events extracted", logger.Fields{
		"candidates": len(candidates),
		"events":     len(events),
		"enrich":     opts.Enrich,
	})
	return events
}

// Courses fetches the course page and returns its course information lines.
func (s *Scraper) Courses(ctx context.Context) ([]string, error) {
	doc, err := s.coursesDocument(ctx)
	if err != nil {
		return nil, err
	}
	return CourseInfo(doc), nil
}

// Tariffs fetches the course page and returns its priced lines.
func (s *Scraper) Tariffs(ctx context.Context) ([]Tariff, error) {
	doc, err := s.coursesDocument(ctx)
	if err != nil {
		return nil, err
	}
	return Tariffs(CourseInfo(doc)), nil
}

// Membership fetches the course page and returns the membership fee, if stated.
func (s *Scraper) Membership(ctx context.Context) (string, bool, error) {
	doc, err := s.coursesDocument(ctx)
	if err != nil {
		return "", false, err
	}
	fee, ok := MembershipFee(PageText(doc))
	return fee, ok, nil
}

func (s *Scraper) coursesDocument(ctx context.Context) (*goquery.Document, error) {
	doc, err := s.fetcher.FetchDocument(ctx, s.coursesURL)
	if err != nil {
		logger.C(ctx).Error("courses page fetch failed", logger.Fields{"url": s.coursesURL}, err)
		return nil, fmt.Errorf("courses page: %w", err)
	}
	return doc, nil
}
