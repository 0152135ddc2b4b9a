package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/centresolea/solea-events/internal/textnorm"
)

// courseKeywords select the lines of the course page worth publishing, folded.
var courseKeywords = []string{
	"horaire", "cours", "debutant", "intermediaire", "avance", "stage", "tablao", "tarif",
}

var (
	pricePattern      = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{1,2})?)\s*(?:€|euros?\b)`)
	membershipPattern = regexp.MustCompile(`adhesion[^\n€]{0,80}?(\d+(?:[.,]\d{1,2})?)\s*(?:€|euros?\b)`)
	labelCutset       = " :-–=/|•·*,;"
)

// Tariff is one priced offer of the course page.
type Tariff struct {
	Label string `json:"libelle"`
	Price string `json:"prix"`
}

// CourseInfo returns the text of every heading, paragraph and list item that
// mentions schedules, levels, workshops, shows or prices. Lines are collapsed to
// one line each and deduplicated in page order.
func CourseInfo(doc *goquery.Document) []string {
	infos := []string{}
	seen := make(map[string]bool)

	doc.Find("h1, h2, h3, p, li").Each(func(_ int, sel *goquery.Selection) {
		text := textnorm.CollapseLine(sel.Text())
		if text == "" || seen[text] {
			return
		}
		folded := textnorm.Fold(text)
		for _, kw := range courseKeywords {
			if strings.Contains(folded, kw) {
				seen[text] = true
				infos = append(infos, text)
				return
			}
		}
	})
	return infos
}

// Tariffs extracts "<label> <amount> €" pairs. A line with several prices yields
// one tariff per price, each labeled by the text since the previous price.
func Tariffs(lines []string) []Tariff {
	tariffs := []Tariff{}
	seen := make(map[Tariff]bool)

	for _, line := range lines {
		last := 0
		for _, idx := range pricePattern.FindAllStringSubmatchIndex(line, -1) {
			label := strings.Trim(line[last:idx[0]], labelCutset)
			last = idx[1]
			if label == "" {
				label = strings.Trim(line, labelCutset)
			}
			t := Tariff{Label: label, Price: formatPrice(line[idx[2]:idx[3]])}
			if !seen[t] {
				seen[t] = true
				tariffs = append(tariffs, t)
			}
		}
	}
	return tariffs
}

// MembershipFee finds the yearly membership fee ("Adhésion annuelle : 30 €").
func MembershipFee(text string) (string, bool) {
	m := membershipPattern.FindStringSubmatch(textnorm.Fold(text))
	if m == nil {
		return "", false
	}
	return formatPrice(m[1]), true
}

func formatPrice(amount string) string {
	return strings.ReplaceAll(amount, ".", ",") + " €"
}
