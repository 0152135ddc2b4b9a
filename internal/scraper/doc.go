// Package scraper fetches the Centre Soléa pages and extracts their schedule data.
//
// Events come from the events page. When the page has an "upcoming events"
// section, each event-detail link is read together with the date and venue lines
// that follow it; otherwise the rendered page text is scanned line by line for
// dates, with the time and title that follow them. Performances (tablaos)
// without a time can be enriched from their detail pages.
//
// The course page yields course lines, tariffs and the membership fee.
package scraper
