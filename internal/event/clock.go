package event

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// timePattern matches "20h30", "20 h 30", "20h", "20 heures", "8:05", "18 : 30".
// After ":" two minute digits are required so "Niveau 1 : Débutants" is no time.
var timePattern = regexp.MustCompile(`(?i)\b([01]?\d|2[0-3])(?:\s*(h)(?:eures?)?(?:\s*([0-5]?\d))?|\s*(:)\s*([0-5]\d))`)

var (
	timeShaped   = regexp.MustCompile(`(?i)^(?:[àa]\s+|d[èe]s\s+)?\d{1,2}\s*(?:h|:)`)
	rangeDash    = regexp.MustCompile(`\s*[\x{2013}\x{2014}]\s*|\s+-\s*|\s*-\s+`)
	spokenRange  = regexp.MustCompile(`(heure(?: \d{1,2})?)-(\d)`)
	repeatSpaces = regexp.MustCompile(` {2,}`)

	timeConnector = regexp.MustCompile(`(?i)^(?:à|a|de|dès|des)\s+`)
	rangeEnd      = regexp.MustCompile(`(?i)^\s*(?:-|à|a|jusqu'à)\s*([01]?\d|2[0-3])\s*(?:h|:)(?:\s*[0-5]\d)?`)
)

type timeMatch struct {
	hour    int
	minutes string
	start   int
	end     int
}

// Token renders the canonical form: "18h", "18h30", "18h00".
func (m timeMatch) Token() string {
	return strconv.Itoa(m.hour) + "h" + m.minutes
}

// Spoken renders "18 heure", "18 heure 30"; zero minutes are not spoken.
func (m timeMatch) Spoken() string {
	out := strconv.Itoa(m.hour) + " heure"
	if m.minutes == "" {
		return out
	}
	mins, _ := strconv.Atoi(m.minutes)
	if mins == 0 {
		return out
	}
	return out + " " + strconv.Itoa(mins)
}

func findTimeMatches(text string) []timeMatch {
	var out []timeMatch
	for pos := 0; pos < len(text); {
		idx := timePattern.FindStringSubmatchIndex(text[pos:])
		if idx == nil {
			break
		}
		for i := range idx {
			if idx[i] >= 0 {
				idx[i] += pos
			}
		}
		// a match glued to a following word is rejected; scanning resumes after its hour
		// so "1 : 18h30" still yields 18h30
		if r, _ := utf8.DecodeRuneInString(text[idx[1]:]); idx[1] < len(text) && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			pos = idx[3]
			continue
		}
		// \b does not see the bytes before pos
		if idx[0] > 0 && isWordByte(text[idx[0]-1]) {
			pos = idx[3]
			continue
		}
		pos = idx[1]

		hour, _ := strconv.Atoi(text[idx[2]:idx[3]])
		m := timeMatch{hour: hour, start: idx[0], end: idx[1]}
		switch {
		case idx[6] >= 0:
			m.minutes = text[idx[6]:idx[7]]
		case idx[10] >= 0:
			m.minutes = text[idx[10]:idx[11]]
		}
		out = append(out, m)
	}
	return out
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// ParseTime returns the canonical token of the first time in span.
func ParseTime(span string) (string, bool) {
	ms := findTimeMatches(span)
	if len(ms) == 0 {
		return "", false
	}
	return ms[0].Token(), true
}

// FindTimes returns every distinct time token in text, in first-seen order.
func FindTimes(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range findTimeMatches(text) {
		tok := m.Token()
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// CutLeadingTime splits a time found at the very start of s, after an optional
// connector ("à 20h", "dès 19h30"), from the text that follows it. The end of a
// range ("20h - 23h") is consumed with it.
func CutLeadingTime(s string) (clock, rest string, ok bool) {
	t := strings.TrimLeft(s, " ")
	if loc := timeConnector.FindStringIndex(t); loc != nil {
		t = t[loc[1]:]
	}
	ms := findTimeMatches(t)
	if len(ms) == 0 || ms[0].start != 0 {
		return "", s, false
	}
	rest = t[ms[0].end:]
	if loc := rangeEnd.FindStringIndex(rest); loc != nil {
		if r, _ := utf8.DecodeRuneInString(rest[loc[1]:]); loc[1] == len(rest) || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			rest = rest[loc[1]:]
		}
	}
	return ms[0].Token(), rest, true
}

// LooksLikeTime reports whether s starts with a time such as "20h30" or "à 20h".
func LooksLikeTime(s string) bool {
	return timeShaped.MatchString(strings.TrimSpace(s))
}

// SpokenTime rewrites every time in text for speech synthesis
// ("18h30" -> "18 heure 30", "18h00" -> "18 heure") and spaces out range dashes.
func SpokenTime(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	last := 0
	for _, m := range findTimeMatches(text) {
		b.WriteString(text[last:m.start])
		b.WriteString(m.Spoken())
		last = m.end
	}
	b.WriteString(text[last:])

	out := rangeDash.ReplaceAllString(b.String(), " - ")
	out = spokenRange.ReplaceAllString(out, "$1 - $2")
	out = repeatSpaces.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
