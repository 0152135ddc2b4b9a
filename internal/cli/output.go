package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// ParseFormat validates a --format value; ics is accepted only when allowICS.
func ParseFormat(s string, allowICS bool) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch {
	case format == FormatText || format == FormatJSON:
		return format, nil
	case format == FormatICS && allowICS:
		return format, nil
	case allowICS:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", s)
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt  time.Time           `json:"verifie_le"`
	Filter     string              `json:"filtre,omitempty"`
	Events     []event.SpokenEvent `json:"evenements"`
	EventCount int                 `json:"nombre"`
}

// NewOutputResult projects events; spoken adds the heure_vocal rendering.
func NewOutputResult(events []*event.Event, checkedAt time.Time, spoken bool) *OutputResult {
	result := &OutputResult{
		CheckedAt:  checkedAt,
		Events:     make([]event.SpokenEvent, 0, len(events)),
		EventCount: len(events),
	}
	for _, e := range events {
		if spoken {
			result.Events = append(result.Events, event.Spoken(e))
		} else {
			result.Events = append(result.Events, event.SpokenEvent{Event: *e})
		}
	}
	return result
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Filter != "" {
		fmt.Fprintf(w, "Filtre : %s\n", result.Filter)
	}
	if result.EventCount == 0 {
		fmt.Fprintln(w, "Aucun événement trouvé.")
		return nil
	}

	for _, evt := range result.Events {
		when := evt.Date.Format()
		if evt.Time != "" {
			when += " " + evt.Time
		}
		line := fmt.Sprintf("%s | %s", when, evt.Title)
		if evt.Venue != "" {
			line += " | " + evt.Venue
		}
		fmt.Fprintf(w, "%s (%s)\n", line, evt.Kind)

		if evt.HeureVocal != "" {
			fmt.Fprintf(w, "     Heure : %s\n", evt.HeureVocal)
		}
		if verbose {
			if evt.Actor != "" {
				fmt.Fprintf(w, "     Artiste : %s\n", evt.Actor)
			}
			if evt.DetailURL != "" {
				fmt.Fprintf(w, "     Lien : %s\n", evt.DetailURL)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal : %d événement(s)\n", result.EventCount)
	return nil
}

// writeLines outputs course information, one line each.
func writeLines(w io.Writer, lines []string, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, map[string][]string{"informations": lines})
	}
	if len(lines) == 0 {
		fmt.Fprintln(w, "Aucune information trouvée.")
		return nil
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

// writeTariffs outputs tariffs as "label : price" lines.
func writeTariffs(w io.Writer, tariffs []scraper.Tariff, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, map[string][]scraper.Tariff{"tarifs": tariffs})
	}
	if len(tariffs) == 0 {
		fmt.Fprintln(w, "Aucun tarif trouvé.")
		return nil
	}
	for _, t := range tariffs {
		fmt.Fprintf(w, "%s : %s\n", t.Label, t.Price)
	}
	return nil
}
