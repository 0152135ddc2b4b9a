package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/centresolea/solea-events/internal/logger"
	"github.com/centresolea/solea-events/internal/scraper"
)

// Error codes carried in the "code" field.
const (
	CodeTimeout    = "timeout"
	CodeUpstream   = "upstream"
	CodeBadRequest = "bad_request"
	CodeNotFound   = "not_found"
)

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Error string `json:"erreur"`
	Code  string `json:"code"`
}

// badRequest marks errors caused by the query string.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

// writeJSON writes v as application/json with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError maps err to a status and an error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.C(r.Context()).Error("request failed", logger.Fields{
			"path": r.URL.Path,
			"code": body.Code,
		}, err)
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, ErrorBody) {
	var br *badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest, ErrorBody{Error: br.msg, Code: CodeBadRequest}
	case scraper.IsTimeout(err):
		return http.StatusGatewayTimeout, ErrorBody{
			Error: "Le site du Centre Soléa n'a pas répondu à temps",
			Code:  CodeTimeout,
		}
	default:
		return http.StatusBadGateway, ErrorBody{
			Error: "Impossible de récupérer les informations du Centre Soléa : " + err.Error(),
			Code:  CodeUpstream,
		}
	}
}
