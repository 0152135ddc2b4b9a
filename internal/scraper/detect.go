package scraper

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/textnorm"
)

// contextRadius is how many bytes around a date are kept for classification.
const contextRadius = 140

// structuralLookahead bounds how many nodes after a title anchor are inspected.
const structuralLookahead = 8

// Candidate is a detected but not yet built event.
type Candidate struct {
	Title     string
	Context   string
	Date      event.Date
	Time      string
	Venue     string // explicit venue line, structural strategy only
	DetailURL string
}

// Event builds the event for c. An explicit venue line wins over one found in the text.
func (c Candidate) Event() *event.Event {
	evt := event.New(c.Title, c.Context, c.Date, c.Time)
	if c.Venue != "" {
		evt.Venue = event.CleanTitle(c.Venue)
	}
	evt.DetailURL = c.DetailURL
	return evt
}

var (
	// words left dangling before a date: "Tablao le 12/10", "Stage du 3 au ..."
	danglingLead = regexp.MustCompile(`(?i)(?:^|\s)(?:le|les|du|au|ce|dès le|à partir du)\s*$`)
	titleLead    = regexp.MustCompile(`^[\s\-:,;|.·•*]+`)
	// tails that only join two dates: "12/10 et 13/10"
	fillerTail = regexp.MustCompile(`(?i)^(?:et|ou|&|au|puis|jusqu'au)$`)
)

// DetectText finds events in normalized page text. Every date on a line yields
// one candidate; the text after it, up to the next date on the same line, is read
// as [connector] [time] [separator] title.
//
// A date without a title of its own takes the text before it on the line, then the
// last line without a date. That line stays the title across consecutive date-only
// lines, so "Tablao\n12/10 20h\n13/10 20h" gives two tablaos. The title may be empty.
func DetectText(text string) []Candidate {
	var out []Candidate
	carried := "" // last non-empty line without a date
	offset := 0

	for _, line := range strings.Split(text, "\n") {
		lineStart := offset
		offset += len(line) + 1

		if strings.TrimSpace(line) == "" {
			continue
		}

		matches := event.FindDates(line)
		if len(matches) == 0 {
			carried = strings.TrimSpace(line)
			continue
		}

		head := leadingTitle(line[:matches[0].Start])
		ownTitle := head != ""
		for i, m := range matches {
			tailEnd := len(line)
			if i+1 < len(matches) {
				tailEnd = matches[i+1].Start
			}
			clock, title := splitTail(line[m.End:tailEnd])
			if title != "" {
				ownTitle = true
			} else if head != "" {
				title = head
			} else {
				title = carried
			}

			out = append(out, Candidate{
				Title:   title,
				Context: window(text, lineStart+m.Start, lineStart+m.End, contextRadius),
				Date:    m.Date,
				Time:    clock,
			})
		}

		// a dated line that names its own event ends the carried title
		if ownTitle {
			carried = ""
		}
	}
	return out
}

// splitTail reads the text after a date.
func splitTail(tail string) (clock, title string) {
	if c, rest, ok := event.CutLeadingTime(tail); ok {
		clock, tail = c, rest
	}
	title = event.CleanTitle(titleLead.ReplaceAllString(tail, ""))
	if fillerTail.MatchString(title) {
		title = ""
	}
	return clock, title
}

func leadingTitle(head string) string {
	head = danglingLead.ReplaceAllString(strings.TrimSpace(head), "")
	return event.CleanTitle(head)
}

// window returns text[start-radius : end+radius] widened or narrowed to rune boundaries.
func window(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

// section headings announcing the upcoming events list, folded
var upcomingHeadings = []string{"prochains evenements", "evenements a venir", "a venir"}

// link labels that point to details but do not name an event, folded
var moreInfoLabels = []string{"plus d'infos", "plus d'info", "en savoir plus", "more info", "infos", "info", "reserver", "details"}

var eventPathMarkers = []string{"event-details", "evenement", "event"}

type itemKind int

const (
	itemText itemKind = iota
	itemTitle
	itemMoreInfo
)

// sectionItem is one visible unit of the events section in document order.
type sectionItem struct {
	kind itemKind
	text string
	href string
}

// DetectDocument finds events listed under an "upcoming events" heading. Each
// event-detail anchor is a title; the next lines give its date and venue.
func DetectDocument(doc *goquery.Document) []Candidate {
	heading := upcomingHeading(doc)
	if heading == nil {
		return nil
	}

	items := sectionItems(heading)
	var out []Candidate
	for i, it := range items {
		if it.kind != itemTitle {
			continue
		}
		c, ok := readListing(it, items[i+1:])
		if !ok {
			continue
		}
		c.DetailURL = resolveURL(doc.Url, it.href)
		out = append(out, c)
	}
	return out
}

// DetectEvents prefers the structural strategy and falls back to scanning the
// rendered text when the page has no recognizable events section.
func DetectEvents(doc *goquery.Document) []Candidate {
	if cs := DetectDocument(doc); len(cs) > 0 {
		return cs
	}
	return DetectText(PageText(doc))
}

func upcomingHeading(doc *goquery.Document) *html.Node {
	var found *html.Node
	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		folded := textnorm.Fold(textnorm.CollapseLine(sel.Text()))
		for _, h := range upcomingHeadings {
			if strings.Contains(folded, h) {
				found = sel.Nodes[0]
				return false
			}
		}
		return true
	})
	return found
}

// sectionItems flattens the nodes after heading, in document order, up to the next
// heading of the same or a higher level.
func sectionItems(heading *html.Node) []sectionItem {
	level := headingLevel(heading)
	var items []sectionItem
	stop := false

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if stop {
			return
		}
		switch n.Type {
		case html.TextNode:
			if t := textnorm.CollapseLine(n.Data); t != "" {
				items = append(items, sectionItem{kind: itemText, text: t})
			}
			return
		case html.ElementNode:
		default:
			return
		}

		if skippedAtoms[n.DataAtom] {
			return
		}
		if l := headingLevel(n); l > 0 && l <= level && !insideAnchor(n) {
			stop = true
			return
		}
		if n.DataAtom == atom.A {
			items = append(items, anchorItem(n))
			return
		}
		if leafBlock(n) {
			if t := textnorm.CollapseLine(nodeText(n)); t != "" {
				items = append(items, sectionItem{kind: itemText, text: t})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}

	// everything after the heading: its following siblings, then those of each ancestor
	for n := heading; n != nil && !stop; n = n.Parent {
		for s := n.NextSibling; s != nil && !stop; s = s.NextSibling {
			visit(s)
		}
	}
	return items
}

func anchorItem(n *html.Node) sectionItem {
	href := attr(n, "href")
	text := textnorm.CollapseLine(nodeText(n))
	switch {
	case isMoreInfo(text):
		return sectionItem{kind: itemMoreInfo, text: text, href: href}
	case text != "" && isEventPath(href):
		return sectionItem{kind: itemTitle, text: text, href: href}
	default:
		return sectionItem{kind: itemText, text: text}
	}
}

// readListing reads the date line and venue line that follow a title anchor.
func readListing(title sectionItem, next []sectionItem) (Candidate, bool) {
	if len(next) > structuralLookahead {
		next = next[:structuralLookahead]
	}

	c := Candidate{Title: title.text}
	var dateLine string
	found := false
	for _, it := range next {
		if it.kind != itemText {
			break
		}
		if it.text == "" {
			continue
		}
		if !found {
			d, ok := event.ParseDate(it.text)
			if !ok {
				continue
			}
			c.Date, dateLine, found = d, it.text, true
			c.Time, _ = event.ParseTime(it.text)
			continue
		}
		if event.LooksLikeTime(it.text) {
			if c.Time == "" {
				c.Time, _ = event.ParseTime(it.text)
			}
			continue
		}
		c.Venue = it.text
		break
	}
	if !found {
		return Candidate{}, false
	}

	c.Context = strings.TrimSpace(strings.Join([]string{title.text, dateLine, c.Venue}, "\n"))
	return c, true
}

// TablaoLinks collects the resolved URLs of anchors whose text or target mentions
// the performance keyword, deduplicated in document order and capped at limit.
func TablaoLinks(doc *goquery.Document, limit int) []string {
	var out []string
	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		href, _ := sel.Attr("href")
		if !strings.Contains(textnorm.Fold(sel.Text()), event.PerformanceKeyword) &&
			!strings.Contains(strings.ToLower(href), event.PerformanceKeyword) {
			return true
		}
		u := resolveURL(doc.Url, href)
		if u == "" || seen[u] {
			return true
		}
		seen[u] = true
		out = append(out, u)
		return true
	})
	return out
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") ||
		strings.HasPrefix(strings.ToLower(href), "mailto:") || strings.HasPrefix(strings.ToLower(href), "tel:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	ref.Fragment, ref.RawFragment = "", ""
	if !ref.IsAbs() {
		return ""
	}
	return ref.String()
}

func isMoreInfo(text string) bool {
	folded := strings.Trim(textnorm.Fold(text), " .!>»›→")
	folded = strings.ReplaceAll(folded, "’", "'")
	for _, label := range moreInfoLabels {
		if folded == label {
			return true
		}
	}
	return false
}

func isEventPath(href string) bool {
	h := strings.ToLower(href)
	for _, m := range eventPathMarkers {
		if strings.Contains(h, m) {
			return true
		}
	}
	return false
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

func insideAnchor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == atom.A {
			return true
		}
	}
	return false
}

// leafBlock reports whether n has no anchor, heading or block element below it,
// so its whole text reads as one line.
func leafBlock(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.A || blockAtoms[c.DataAtom] || headingLevel(c) > 0 || !leafBlock(c) {
			return false
		}
	}
	return true
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && skippedAtoms[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
