// Package api serves the extracted schedule as JSON over HTTP.
//
// Routes:
//
//	GET /                 welcome message
//	GET /infos-cours      {"informations": [...]}
//	GET /tarifs           {"tarifs": [{"libelle", "prix"}]}
//	GET /adhesion         {"adhesion": "30 €"}
//	GET /evenements       {"evenements": [...]}
//	GET /evenements.ics   text/calendar
//	GET /health           {"status": "ok"}
//	GET /metrics          prometheus exposition
//
// Every page is fetched again on each request. Failures are reported as
// {"erreur": "...", "code": "..."} with 504 for upstream timeouts, 502 for other
// upstream failures and 400 for invalid query parameters.
package api
