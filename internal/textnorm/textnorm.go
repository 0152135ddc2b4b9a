// Package textnorm cleans text scraped from the Centre Soléa website.
//
// Normalize produces the canonical line-preserving form that every extraction
// stage works on. Fold produces a lower-case, accent-free form used only for
// matching keywords, weekdays and month names; it is never shown to users.
package textnorm

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRun   = regexp.MustCompile(`[ \x{2009}\x{200A}\x{2002}\x{2003}]+`)
	edgeSpaces = regexp.MustCompile(` *\n *`)
	blankRun   = regexp.MustCompile(`\n{3,}`)

	charReplacer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\t", " ",
		"\u00a0", " ",
		"\u202f", " ",
		"\u2007", " ",
		"\u2012", "-",
		"\u2013", "-",
		"\u2014", "-",
		"\u2015", "-",
		"\u2212", "-",
	)
)

// Normalize returns s with unified whitespace and dashes.
// Paragraph breaks survive as at most one blank line. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFC.String(strings.ToValidUTF8(s, ""))
	s = charReplacer.Replace(s)
	s = spaceRun.ReplaceAllString(s, " ")
	s = edgeSpaces.ReplaceAllString(s, "\n")
	s = blankRun.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// CollapseLine normalizes s and flattens it to a single line.
func CollapseLine(s string) string {
	return strings.Join(strings.Fields(Normalize(s)), " ")
}

// pool of fold chains; transform chains keep state and are not safe for concurrent use
var foldPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		)
	},
}

// Fold lower-cases s and strips diacritics ("Févr." -> "fevr.").
func Fold(s string) string {
	if s == "" {
		return ""
	}

	tr := foldPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)
	if err != nil {
		out = s
	}

	return strings.ToLower(out)
}
