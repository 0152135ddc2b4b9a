package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/centresolea/solea-events/internal/calendar"
	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/filter"
	"github.com/centresolea/solea-events/internal/scraper"
)

type eventsFlags struct {
	passes   bool
	kind     string
	enrichir bool
	vocal    bool
	periode  string
	weekend  bool
	lieu     string
	titre    string
	sort     string
}

func newEventsCmd(a *app) *cobra.Command {
	var f eventsFlags

	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"evenements"},
		Short:   "List upcoming events",
		Long: `List the events announced on the Centre Soléa events page.

Past events are dropped unless --passes is given. With --enrichir, tablao
events without a time are looked up on their detail pages.`,
		Example: `  solea-events events --type tablao --enrichir
  solea-events events --periode "du 12 octobre au 3 novembre" --weekend
  solea-events events --format ics > solea.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEvents(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.passes, "passes", false, "Include past events")
	flags.StringVar(&f.kind, "type", "", "Keep only one kind: tablao or evenement")
	flags.BoolVar(&f.enrichir, "enrichir", false, "Look up missing tablao times on detail pages")
	flags.Int("pages", 4, "Maximum events enriched and detail pages visited")
	flags.BoolVar(&f.vocal, "vocal", false, "Add the spoken rendering of times")
	flags.StringVar(&f.periode, "periode", "", `Date range, e.g. "12/10 - 20/10", "octobre", "ce week-end"`)
	flags.BoolVar(&f.weekend, "weekend", false, "Keep only Saturday and Sunday events")
	flags.StringVar(&f.lieu, "lieu", "", "Keep events whose venue contains this text")
	flags.StringVar(&f.titre, "titre", "", "Keep events whose title contains this text")
	flags.StringVar(&f.sort, "sort", "date", "Sort order: date, titre or lieu")

	_ = a.v.BindPFlag("enrich.page_limit", flags.Lookup("pages"))
	return cmd
}

func (a *app) runEvents(cmd *cobra.Command, f eventsFlags) error {
	format, err := ParseFormat(a.format, true)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(f.sort)
	if err != nil {
		return err
	}

	now := a.now()
	loc := a.cfg.Location()
	opts := scraper.Options{
		IncludePast:     f.passes,
		Enrich:          f.enrichir,
		EnrichPageLimit: a.cfg.Enrich.PageLimit,
	}
	if f.kind != "" {
		kind, ok := event.ParseKind(f.kind)
		if !ok {
			return fmt.Errorf("invalid type: %s (must be 'tablao' or 'evenement')", f.kind)
		}
		opts.Kind = kind
	}

	flt := filter.New(now, loc)
	if f.periode != "" {
		if flt.DateFrom, flt.DateTo, err = filter.ParseDateRange(f.periode, now, loc); err != nil {
			return fmt.Errorf("invalid --periode: %w", err)
		}
	}
	flt.WeekendsOnly = f.weekend
	if f.lieu != "" {
		flt.Venues = []string{f.lieu}
	}
	if f.titre != "" {
		flt.Titles = []string{f.titre}
	}
	if !flt.IsEmpty() {
		opts.Filter = flt
	}

	events, err := a.scraper().Events(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("fetching events: %w", err)
	}
	sortEvents(events, order)

	if format == FormatICS {
		_, err := io.WriteString(a.out, calendar.GenerateICS(events, now, loc))
		return err
	}

	result := NewOutputResult(events, now, f.vocal)
	if opts.Filter != nil {
		result.Filter = opts.Filter.String()
	}
	if err := WriteOutput(a.out, result, format, a.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
