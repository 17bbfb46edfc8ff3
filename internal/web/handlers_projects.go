package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/statboard/statboard/internal/auth"
	"github.com/statboard/statboard/internal/store"
)

type createProjectRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// currentUser returns the authenticated user ID. Auth middleware guarantees
// it is present on every route that reaches a handler.
func currentUser(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return id
}

// pathUUID parses a UUID route parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	p, err := s.service.CreateProject(r.Context(), currentUser(r), req.Name)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.service.ListProjects(r.Context(), currentUser(r))
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []store.Project{}
	}
	render.JSON(w, r, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "projectID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	p, err := s.service.GetProject(r.Context(), currentUser(r), id)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "projectID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := s.service.DeleteProject(r.Context(), currentUser(r), id); err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}
