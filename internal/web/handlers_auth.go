package web

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/statboard/statboard/internal/auth"
	"github.com/statboard/statboard/internal/logging"
)

type loginRequest struct {
	User   string `json:"user" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

// handleLogin exchanges credentials for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	userID, err := s.verifier.Verify(r.Context(), req.User, req.Secret)
	if err != nil {
		logging.FromContext(r.Context()).Warn("login rejected",
			"user", req.User, "ip", r.RemoteAddr)
		s.renderServiceError(w, r, err)
		return
	}

	sess := s.sessions.Issue(userID)
	logging.FromContext(r.Context()).Info("session issued", "user", userID)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sess)
}

// handleLogout revokes the caller's session token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerToken(r)
	s.sessions.Revoke(token)
	render.NoContent(w, r)
}

// handleHealth reports liveness plus the current ingest load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":  "ok",
		"uploads": s.service.UploadLimiterStatus(),
	})
}
