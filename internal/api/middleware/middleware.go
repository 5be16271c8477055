// Package middleware provides container-wide filters and the error
// envelope shared by all endpoints.
package middleware

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/paperbase/ragd/internal/errdefs"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Logger logs one line per request with method, path, status and
// duration.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)
	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request handled")
}

// RecoverPanic turns handler panics into a 500 response instead of
// killing the connection.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", req.Request.URL.Path).
				Msg("Recovered from panic in handler")
			HandleError(resp, nil, http.StatusInternalServerError)
		}
	}()
	chain.ProcessFilter(req, resp)
}

// HandleError writes the error envelope with an explicit status code.
func HandleError(resp *restful.Response, err error, status int) {
	body := ErrorResponse{
		Status:  "error",
		Message: http.StatusText(status),
	}
	if err != nil {
		body.Message = err.Error()
		body.Error = string(errdefs.KindOf(err))
	}
	_ = resp.WriteHeaderAndEntity(status, body)
}

// WriteError maps the error's kind to an HTTP status and writes the
// envelope. Caller mistakes are 4xx, upstream model and store failures
// surface as 502/503 so clients can tell them apart from bugs.
func WriteError(resp *restful.Response, err error) {
	HandleError(resp, err, statusForKind(errdefs.KindOf(err)))
}

func statusForKind(kind errdefs.Kind) int {
	switch kind {
	case errdefs.KindParse:
		return http.StatusBadRequest
	case errdefs.KindEmbedding, errdefs.KindGeneration:
		return http.StatusBadGateway
	case errdefs.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
