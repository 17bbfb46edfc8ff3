package web

// errors.go maps service errors onto HTTP responses. All API errors share
// one JSON shape so clients only need a single decoder.

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/statboard/statboard/internal/auth"
	"github.com/statboard/statboard/internal/core"
	"github.com/statboard/statboard/internal/logging"
	"github.com/statboard/statboard/internal/store"
)

// ErrResponse is the JSON body for every API error.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrInvalidRequest reports a malformed or failed-validation request body.
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "invalid request",
		ErrorText:      err.Error(),
	}
}

// renderServiceError translates a service-layer error into the right status.
func (s *Server) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var resp *ErrResponse

	switch {
	case errors.Is(err, store.ErrNotFound):
		resp = &ErrResponse{Err: err, HTTPStatusCode: http.StatusNotFound,
			StatusText: "not found", ErrorText: err.Error()}

	case errors.Is(err, auth.ErrInvalidCredentials):
		resp = &ErrResponse{Err: err, HTTPStatusCode: http.StatusUnauthorized,
			StatusText: "unauthorized", ErrorText: "invalid credentials"}

	case errors.Is(err, core.ErrExtensionNotAllowed):
		resp = &ErrResponse{Err: err, HTTPStatusCode: http.StatusBadRequest,
			StatusText: "invalid request", ErrorText: err.Error()}

	case errors.Is(err, core.ErrFileTooLarge):
		resp = &ErrResponse{Err: err, HTTPStatusCode: http.StatusRequestEntityTooLarge,
			StatusText: "payload too large", ErrorText: err.Error()}

	case errors.Is(err, core.ErrTooManyUploads):
		resp = &ErrResponse{Err: err, HTTPStatusCode: http.StatusTooManyRequests,
			StatusText: "too many uploads", ErrorText: err.Error()}

	case errors.Is(err, core.ErrRunnerUnavailable):
		resp = &ErrResponse{Err: err, HTTPStatusCode: http.StatusServiceUnavailable,
			StatusText: "unavailable", ErrorText: err.Error()}

	default:
		// Internal details stay in the log, not the response.
		logging.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path, "error", err)
		resp = &ErrResponse{Err: err, HTTPStatusCode: http.StatusInternalServerError,
			StatusText: "internal error"}
	}

	render.Render(w, r, resp)
}
