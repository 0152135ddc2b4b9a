package event

import (
	"strings"

	"github.com/centresolea/solea-events/internal/textnorm"
)

// Kind is the closed set of event types published to the assistant.
type Kind string

const (
	KindPerformance Kind = "tablao"
	KindGeneric     Kind = "evenement"
)

// ParseKind accepts the published values plus a few French and English synonyms.
func ParseKind(s string) (Kind, bool) {
	switch textnorm.Fold(strings.TrimSpace(s)) {
	case "tablao", "tablaos", "spectacle", "performance":
		return KindPerformance, true
	case "evenement", "evenements", "generic", "autre":
		return KindGeneric, true
	default:
		return "", false
	}
}

// Event is one dated entry extracted from the website
type Event struct {
	Title     string `json:"titre"`
	Actor     string `json:"artiste"`
	Venue     string `json:"lieu"`
	Date      Date   `json:"date"`
	Time      string `json:"heure"`
	Kind      Kind   `json:"type"`
	DetailURL string `json:"-"` // event page, when the listing links one
}

// New builds an Event from a detected title, its surrounding text, a date and a
// time token (possibly empty). Kind, actor and venue are derived here.
func New(title, context string, date Date, clock string) *Event {
	title = CleanTitle(title)
	kind := Classify(title, context)

	actor := ExtractActor(title, context)
	if actor == "" && kind == KindPerformance {
		actor = title
	}

	return &Event{
		Title: title,
		Actor: actor,
		Venue: ExtractVenue(title, context),
		Date:  date,
		Time:  clock,
		Kind:  kind,
	}
}

// Key is the identity used for deduplication: date, time, title, kind, actor, venue.
func (e *Event) Key() string {
	return strings.Join([]string{
		e.Date.Format(),
		e.Time,
		e.Title,
		string(e.Kind),
		e.Actor,
		e.Venue,
	}, "\x1f")
}

// SpokenEvent is the voice projection of an Event.
type SpokenEvent struct {
	Event
	HeureVocal string `json:"heure_vocal,omitempty"`
}

// Spoken adds the speech-ready rendering of the event time.
func Spoken(e *Event) SpokenEvent {
	return SpokenEvent{Event: *e, HeureVocal: SpokenTime(e.Time)}
}

// SpokenAll maps Spoken over events.
func SpokenAll(events []*Event) []SpokenEvent {
	out := make([]SpokenEvent, 0, len(events))
	for _, e := range events {
		out = append(out, Spoken(e))
	}
	return out
}

// FilterKind keeps the events of kind k; an empty k keeps everything.
func FilterKind(events []*Event, k Kind) []*Event {
	if k == "" {
		return events
	}
	out := make([]*Event, 0, len(events))
	for _, e := range events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
