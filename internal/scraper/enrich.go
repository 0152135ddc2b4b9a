package scraper

import (
	"context"
	"math"

	"golang.org/x/time/rate"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/logger"
)

// DefaultEnrichPageLimit bounds both the events enriched and the pages visited per event.
const DefaultEnrichPageLimit = 4

// Enrichment results, used as the metrics label.
const (
	EnrichSameDay  = "same_day"
	EnrichFallback = "fallback"
	EnrichMiss     = "miss"
)

// Enricher fills missing performance times from detail pages.
type Enricher struct {
	fetcher Fetcher
	limiter *rate.Limiter
	metrics *logger.Metrics
}

// NewEnricher creates an Enricher that fetches at most perSecond pages per second.
// A non-positive rate disables pacing.
func NewEnricher(f Fetcher, perSecond float64, metrics *logger.Metrics) *Enricher {
	limit := rate.Inf
	if perSecond > 0 && !math.IsInf(perSecond, 1) {
		limit = rate.Limit(perSecond)
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	return &Enricher{
		fetcher: f,
		limiter: rate.NewLimiter(limit, 1),
		metrics: metrics,
	}
}

// pageFacts is what one detail page tells about dates and times.
type pageFacts struct {
	dates []event.Date
	times []string
}

// Enrich sets Time on the first limit performance events that have none. For each,
// the event's own detail page and then links are visited; a page naming exactly one
// date equal to the event's supplies its first time. Failing that, a single
// distinct time across the visited pages is used. Pages are fetched at most once
// per call and fetch errors only mean the page contributes nothing. Dates are
// never modified.
func (en *Enricher) Enrich(ctx context.Context, events []*event.Event, links []string, limit int) {
	if limit <= 0 {
		limit = DefaultEnrichPageLimit
	}
	if len(links) > limit {
		links = links[:limit]
	}

	visited := make(map[string]*pageFacts)
	enriched := 0
	for _, evt := range events {
		if enriched >= limit {
			return
		}
		if evt.Kind != event.KindPerformance || evt.Time != "" {
			continue
		}
		enriched++

		result := en.enrichOne(ctx, evt, pagesFor(evt, links, limit), visited)
		en.metrics.IncEnrichment(result)
		logger.C(ctx).Debug("event enrichment", logger.Fields{
			"title":  evt.Title,
			"date":   evt.Date.Format(),
			"result": result,
			"time":   evt.Time,
		})
	}
}

func (en *Enricher) enrichOne(ctx context.Context, evt *event.Event, pages []string, visited map[string]*pageFacts) string {
	var times []string
	seen := make(map[string]bool)

	for _, u := range pages {
		facts := en.facts(ctx, u, visited)
		if facts == nil {
			continue
		}
		if len(facts.dates) == 1 && facts.dates[0].SameDay(evt.Date) && len(facts.times) > 0 {
			evt.Time = facts.times[0]
			return EnrichSameDay
		}
		for _, t := range facts.times {
			if !seen[t] {
				seen[t] = true
				times = append(times, t)
			}
		}
	}

	if len(times) == 1 {
		evt.Time = times[0]
		return EnrichFallback
	}
	return EnrichMiss
}

// facts fetches u once per call. Failed fetches are remembered as nil.
func (en *Enricher) facts(ctx context.Context, u string, visited map[string]*pageFacts) *pageFacts {
	if f, ok := visited[u]; ok {
		return f
	}

	if err := en.limiter.Wait(ctx); err != nil {
		logger.C(ctx).Debug("enrichment page skipped", logger.Fields{"url": u, "error": err.Error()})
		return nil
	}
	text, err := FetchText(ctx, en.fetcher, u)
	if err != nil {
		logger.C(ctx).Debug("enrichment page unavailable", logger.Fields{
			"url":     u,
			"error":   err.Error(),
			"timeout": IsTimeout(err),
		})
		visited[u] = nil
		return nil
	}

	f := &pageFacts{dates: event.DistinctDates(text), times: event.FindTimes(text)}
	visited[u] = f
	return f
}

// pagesFor lists the event's own detail page first, then the shared links, at most
// limit pages in all.
func pagesFor(evt *event.Event, links []string, limit int) []string {
	pages := make([]string, 0, limit)
	if evt.DetailURL != "" {
		pages = append(pages, evt.DetailURL)
	}
	for _, l := range links {
		if len(pages) >= limit {
			break
		}
		if l != evt.DetailURL {
			pages = append(pages, l)
		}
	}
	return pages
}
