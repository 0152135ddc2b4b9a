package event

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/centresolea/solea-events/internal/textnorm"
)

// PerformanceKeyword marks an event as a show in titles and surrounding text.
const PerformanceKeyword = "tablao"

const (
	maxTitleRunes  = 220
	maxEntityRunes = 120
)

var (
	performanceWord = regexp.MustCompile(`\b` + PerformanceKeyword + `s?\b`)

	actorLead = regexp.MustCompile(`(?i)\bavec\s+`)
	venueLead = regexp.MustCompile(`(?i)(?:^|[\s(,])(?:à|au|aux|chez)\s+`)

	actorStop = regexp.MustCompile(`(?i)[,;:()\[\]\n|]|\s-\s|\s(?:à|a|dès|de)\s+\d|\s(?:à|au|aux|chez)\s`)
	venueStop = regexp.MustCompile(`(?i)[,;:()\[\]\n|]|\s-\s|\s(?:à|a|dès|de)\s+\d|\s\d{1,2}\s*[h:]|\savec\s`)

	// leading words that follow "à" without naming a place
	venueNoise = regexp.MustCompile(`^(?:partir|venir|bientot|nouveau|tous|toutes|tout)\b`)
)

const titleCutset = " -:,;|.·•*\"'"

// Classify returns KindPerformance when the keyword appears as a whole word,
// in any case and with or without accents, in the title or its context.
func Classify(title, context string) Kind {
	if performanceWord.MatchString(textnorm.Fold(title)) || performanceWord.MatchString(textnorm.Fold(context)) {
		return KindPerformance
	}
	return KindGeneric
}

// ExtractActor finds "avec <name>" in the title, then in the context.
func ExtractActor(title, context string) string {
	for _, src := range []string{title, context} {
		if cs := clauses(src, actorLead, actorStop); len(cs) > 0 {
			return cs[0]
		}
	}
	return ""
}

// ExtractVenue finds "à|au|aux|chez <place>" in the title, then in the context.
// Time-shaped captures ("à 20h") are skipped and the search moves on.
func ExtractVenue(title, context string) string {
	for _, src := range []string{title, context} {
		for _, c := range clauses(src, venueLead, venueStop) {
			if LooksLikeTime(c) || venueNoise.MatchString(textnorm.Fold(c)) {
				continue
			}
			return c
		}
	}
	return ""
}

// clauses returns, for every lead match in s, the text after it up to the next stop.
func clauses(s string, lead, stop *regexp.Regexp) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, idx := range lead.FindAllStringIndex(s, -1) {
		rest := s[idx[1]:]
		if loc := stop.FindStringIndex(rest); loc != nil {
			rest = rest[:loc[0]]
		}
		if c := truncateRunes(strings.Trim(rest, titleCutset), maxEntityRunes); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// CleanTitle trims surrounding punctuation and bounds the length of a title.
func CleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, titleCutset)
	return strings.TrimRight(truncateRunes(s, maxTitleRunes), titleCutset)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
