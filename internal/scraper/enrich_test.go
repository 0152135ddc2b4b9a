package scraper

import (
	"context"
	"errors"
	"io"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/logger"
)

// stubFetcher serves canned pages and counts fetches per URL.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *stubFetcher) FetchDocument(_ context.Context, rawURL string) (*goquery.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[rawURL]++

	if err, ok := f.errs[rawURL]; ok {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, &FetchError{URL: rawURL, StatusCode: 404}
	}
	return DocumentFromString(body, rawURL)
}

func tablaoWithoutTime(day int) *event.Event {
	return &event.Event{
		Title: "Tablao",
		Actor: "Tablao",
		Date:  event.Date{Year: 2025, Month: time.October, Day: day},
		Kind:  event.KindPerformance,
	}
}

func TestEnrich(t *testing.T) {
	const (
		pageA = "http://solea.test/tablao-a"
		pageB = "http://solea.test/tablao-b"
	)

	tests := []struct {
		name     string
		pages    map[string]string
		errs     map[string]error
		links    []string
		wantTime string
	}{
		{
			name:     "page with the same single date supplies its time",
			pages:    map[string]string{pageA: `<p>Tablao le 12/10/2025 à 20h30</p>`},
			links:    []string{pageA},
			wantTime: "20h30",
		},
		{
			name: "matching page wins over an earlier page",
			pages: map[string]string{
				pageA: `<p>Tablao du 15/11/2025 à 21h</p>`,
				pageB: `<p>Samedi 12 octobre 2025, 20h, ouverture 19h30</p>`,
			},
			links:    []string{pageA, pageB},
			wantTime: "20h",
		},
		{
			name:     "single distinct time is the fallback",
			pages:    map[string]string{pageA: `<p>Prochain tablao le 15/11/2025 à 21h</p>`},
			links:    []string{pageA},
			wantTime: "21h",
		},
		{
			name:     "year missing on the page still matches",
			pages:    map[string]string{pageA: `<p>Tablao 12/10 - 20h30 et 22h</p>`},
			links:    []string{pageA},
			wantTime: "20h30",
		},
		{
			name: "several distinct times and no matching date",
			pages: map[string]string{
				pageA: `<p>15/11/2025 à 21h</p>`,
				pageB: `<p>22/11/2025 à 20h30</p>`,
			},
			links:    []string{pageA, pageB},
			wantTime: "",
		},
		{
			name:     "page with two dates is not a match",
			pages:    map[string]string{pageA: `<p>12/10/2025 à 20h30, 13/10/2025 à 21h</p>`},
			links:    []string{pageA},
			wantTime: "",
		},
		{
			name:     "timeout leaves the time empty",
			errs:     map[string]error{pageA: context.DeadlineExceeded},
			links:    []string{pageA},
			wantTime: "",
		},
		{
			name:     "failed page contributes nothing but others still count",
			pages:    map[string]string{pageB: `<p>Tablao le 12/10/2025 à 20h30</p>`},
			errs:     map[string]error{pageA: errors.New("connection reset")},
			links:    []string{pageA, pageB},
			wantTime: "20h30",
		},
		{
			name:     "no links",
			wantTime: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStubFetcher()
			for u, body := range tt.pages {
				f.pages[u] = body
			}
			for u, err := range tt.errs {
				f.errs[u] = err
			}

			evt := tablaoWithoutTime(12)
			NewEnricher(f, 0, logger.NewMetrics()).Enrich(context.Background(), []*event.Event{evt}, tt.links, 4)

			if evt.Time != tt.wantTime {
				t.Errorf("Time = %q, want %q", evt.Time, tt.wantTime)
			}
			if evt.Date != (event.Date{Year: 2025, Month: time.October, Day: 12}) {
				t.Errorf("enrichment changed the date to %v", evt.Date)
			}
		})
	}
}

func TestEnrich_OnlyEmptyPerformanceTimes(t *testing.T) {
	const page = "http://solea.test/tablao"
	f := newStubFetcher()
	f.pages[page] = `<p>Tablao le 12/10/2025 à 20h30</p>`

	timed := tablaoWithoutTime(12)
	timed.Time = "19h"
	generic := &event.Event{Title: "Stage", Date: event.Date{Year: 2025, Month: 10, Day: 12}, Kind: event.KindGeneric}

	NewEnricher(f, 0, logger.NewMetrics()).Enrich(context.Background(), []*event.Event{timed, generic}, []string{page}, 4)

	if timed.Time != "19h" {
		t.Errorf("existing time overwritten: %q", timed.Time)
	}
	if generic.Time != "" {
		t.Errorf("generic event enriched: %q", generic.Time)
	}
	if f.calls[page] != 0 {
		t.Errorf("page fetched %d times, want 0", f.calls[page])
	}
}

func TestEnrich_FetchesEachPageOnce(t *testing.T) {
	const (
		detail = "http://solea.test/event-details/tablao-12"
		shared = "http://solea.test/tablao"
	)
	f := newStubFetcher()
	f.pages[detail] = `<p>Tablao le 12/10/2025 à 20h30</p>`
	f.errs[shared] = context.DeadlineExceeded

	first := tablaoWithoutTime(12)
	first.DetailURL = detail
	second := tablaoWithoutTime(13)
	third := tablaoWithoutTime(14)

	metrics := logger.NewMetrics()
	NewEnricher(f, 0, metrics).Enrich(context.Background(), []*event.Event{first, second, third}, []string{shared, detail}, 4)

	if first.Time != "20h30" {
		t.Errorf("own detail page should be used first, Time = %q", first.Time)
	}
	// the shared links only hold 20h30 across pages, so it is the fallback
	if second.Time != "20h30" || third.Time != "20h30" {
		t.Errorf("fallback times = %q, %q; want 20h30", second.Time, third.Time)
	}
	for u, n := range f.calls {
		if n != 1 {
			t.Errorf("%s fetched %d times, want 1", u, n)
		}
	}
}

func TestEnrich_Limit(t *testing.T) {
	const page = "http://solea.test/tablao"
	f := newStubFetcher()
	f.pages[page] = `<p>Tous les tablaos commencent à 21h</p>`

	events := []*event.Event{tablaoWithoutTime(1), tablaoWithoutTime(2), tablaoWithoutTime(3)}
	NewEnricher(f, 0, logger.NewMetrics()).Enrich(context.Background(), events, []string{page}, 2)

	if events[0].Time != "21h" || events[1].Time != "21h" {
		t.Errorf("first two events should be enriched: %q, %q", events[0].Time, events[1].Time)
	}
	if events[2].Time != "" {
		t.Errorf("third event beyond the limit was enriched: %q", events[2].Time)
	}
}

func TestEnrich_OwnPageCountsTowardsLimit(t *testing.T) {
	const (
		detail = "http://solea.test/event-details/tablao-12"
		first  = "http://solea.test/tablao-a"
		second = "http://solea.test/tablao-b"
	)
	f := newStubFetcher()
	f.pages[detail] = `<p>Tablao au Centre Soléa</p>`
	f.pages[first] = `<p>Tablao à 21h</p>`
	f.pages[second] = `<p>Tablao à 22h</p>`

	evt := tablaoWithoutTime(12)
	evt.DetailURL = detail
	NewEnricher(f, 0, logger.NewMetrics()).Enrich(context.Background(), []*event.Event{evt}, []string{first, second}, 2)

	if f.calls[second] != 0 {
		t.Errorf("%s fetched %d times, want 0 beyond the page limit", second, f.calls[second])
	}
	if evt.Time != "21h" {
		t.Errorf("Time = %q, want 21h from the only shared page read", evt.Time)
	}
}

func TestPagesFor(t *testing.T) {
	links := []string{"http://solea.test/a", "http://solea.test/own", "http://solea.test/b"}

	tests := []struct {
		name   string
		detail string
		limit  int
		want   []string
	}{
		{"shared links only", "", 2, []string{"http://solea.test/a", "http://solea.test/own"}},
		{"own page first and deduplicated", "http://solea.test/own", 3, []string{"http://solea.test/own", "http://solea.test/a", "http://solea.test/b"}},
		{"own page counts towards the limit", "http://solea.test/own", 2, []string{"http://solea.test/own", "http://solea.test/a"}},
		{"limit of one", "http://solea.test/own", 1, []string{"http://solea.test/own"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := tablaoWithoutTime(12)
			evt.DetailURL = tt.detail
			if got := pagesFor(evt, links, tt.limit); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("pagesFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnrich_CancelledContext(t *testing.T) {
	const page = "http://solea.test/tablao"
	f := newStubFetcher()
	f.pages[page] = `<p>12/10/2025 à 20h30</p>`

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evt := tablaoWithoutTime(12)
	NewEnricher(f, 1, logger.NewMetrics()).Enrich(ctx, []*event.Event{evt}, []string{page}, 4)

	if evt.Time != "" {
		t.Errorf("Time = %q, want empty when the limiter cannot wait", evt.Time)
	}
}

func TestMain(m *testing.M) {
	logger.SetDefault(logger.New(logger.LevelError, io.Discard))
	os.Exit(m.Run())
}
