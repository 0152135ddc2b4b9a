package api

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/filter"
	"github.com/centresolea/solea-events/internal/scraper"
)

// eventsQuery is the query string of /evenements and /evenements.ics.
type eventsQuery struct {
	Passes   bool   `query:"passes"`
	Type     string `query:"type" validate:"omitempty,max=32"`
	Enrichir bool   `query:"enrichir"`
	Pages    int    `query:"pages" validate:"min=0,max=20"`
	Vocal    bool   `query:"vocal"`
	Periode  string `query:"periode" validate:"omitempty,max=80"`
	Weekend  bool   `query:"weekend"`
	Lieu     string `query:"lieu" validate:"omitempty,max=120"`
	Titre    string `query:"titre" validate:"omitempty,max=120"`
}

// validation holds the validator and its French translator.
type validation struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newValidation() *validation {
	locale := fr.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("fr")

	v := validator.New(validator.WithRequiredStructEnabled())
	// messages name the query parameter, not the Go field
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("query")
	})
	_ = fr_translations.RegisterDefaultTranslations(v, trans)

	return &validation{validate: v, trans: trans}
}

// check validates s and joins the translated messages.
func (val *validation) check(s any) error {
	err := val.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &badRequest{msg: err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(val.trans))
	}
	return &badRequest{msg: strings.Join(msgs, "; ")}
}

// parseEventsQuery reads and validates the query string.
func (val *validation) parseEventsQuery(values url.Values) (eventsQuery, error) {
	var q eventsQuery
	var err error

	flags := []struct {
		name string
		dst  *bool
	}{
		{"passes", &q.Passes},
		{"enrichir", &q.Enrichir},
		{"vocal", &q.Vocal},
		{"weekend", &q.Weekend},
	}
	for _, f := range flags {
		if *f.dst, err = parseFlag(values.Get(f.name)); err != nil {
			return q, &badRequest{msg: "paramètre " + f.name + " invalide : " + err.Error()}
		}
	}

	if raw := values.Get("pages"); raw != "" {
		if q.Pages, err = strconv.Atoi(raw); err != nil {
			return q, &badRequest{msg: "paramètre pages invalide : nombre entier attendu"}
		}
	}
	q.Type = strings.TrimSpace(values.Get("type"))
	q.Periode = strings.TrimSpace(values.Get("periode"))
	q.Lieu = strings.TrimSpace(values.Get("lieu"))
	q.Titre = strings.TrimSpace(values.Get("titre"))

	return q, val.check(q)
}

// options turns the query into extraction options. The date range is parsed
// against now in loc.
func (q eventsQuery) options(now time.Time, loc *time.Location, defaultPages int) (scraper.Options, error) {
	opts := scraper.Options{
		IncludePast:     q.Passes,
		Enrich:          q.Enrichir,
		EnrichPageLimit: q.Pages,
	}
	if opts.EnrichPageLimit == 0 {
		opts.EnrichPageLimit = defaultPages
	}

	if q.Type != "" {
		kind, ok := event.ParseKind(q.Type)
		if !ok {
			return opts, &badRequest{msg: "paramètre type invalide : tablao ou evenement attendu"}
		}
		opts.Kind = kind
	}

	f := filter.New(now, loc)
	if q.Periode != "" {
		from, to, err := filter.ParseDateRange(q.Periode, now, loc)
		if err != nil {
			return opts, &badRequest{msg: "paramètre periode invalide : " + err.Error()}
		}
		f.DateFrom, f.DateTo = from, to
	}
	f.WeekendsOnly = q.Weekend
	if q.Lieu != "" {
		f.Venues = []string{q.Lieu}
	}
	if q.Titre != "" {
		f.Titles = []string{q.Titre}
	}
	if !f.IsEmpty() {
		opts.Filter = f
	}
	return opts, nil
}

// parseFlag accepts the usual spellings of a boolean; empty means false.
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "non", "no", "off":
		return false, nil
	case "1", "true", "oui", "yes", "on":
		return true, nil
	default:
		return false, &badRequest{msg: "valeur booléenne attendue (1 ou 0)"}
	}
}
