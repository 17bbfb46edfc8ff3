package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"github.com/statboard/statboard/internal/core"
	"github.com/statboard/statboard/internal/filestore"
	"github.com/statboard/statboard/internal/store"
)

// handleUploadDataset ingests a multipart file upload into a project.
// The form field is "file"; an optional "name" field overrides the display
// name.
func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "projectID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	// Cap the request body before parsing the form. Some slack over the
	// file-size limit covers multipart framing and the name field.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.renderServiceError(w, r, core.ErrFileTooLarge)
			return
		}
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("missing file field: %w", err)))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("read upload: %w", err)))
		return
	}

	result, err := s.service.IngestDataset(r.Context(), core.IngestInput{
		OwnerID:   currentUser(r),
		ProjectID: projectID,
		Name:      r.FormValue("name"),
		FileName:  header.Filename,
		Data:      data,
	})
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathUUID(r, "projectID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	datasets, err := s.service.ListDatasets(r.Context(), currentUser(r), projectID)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	if datasets == nil {
		datasets = []store.Dataset{}
	}
	render.JSON(w, r, datasets)
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "datasetID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	d, err := s.service.GetDataset(r.Context(), currentUser(r), id)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, d)
}

func (s *Server) handlePreviewDataset(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "datasetID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	preview, err := s.service.PreviewDataset(r.Context(), currentUser(r), id)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, preview)
}

// handleDownloadDataset redirects to a presigned URL when the storage
// backend supports one, otherwise streams the raw payload directly.
func (s *Server) handleDownloadDataset(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "datasetID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	url, err := s.service.DownloadURL(r.Context(), currentUser(r), id)
	switch {
	case err == nil:
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	case errors.Is(err, filestore.ErrSignedURLUnsupported):
		// Fall through to streaming.
	default:
		s.renderServiceError(w, r, err)
		return
	}

	data, fileName, err := s.service.DownloadContent(r.Context(), currentUser(r), id)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Write(data)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "datasetID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := s.service.DeleteDataset(r.Context(), currentUser(r), id); err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	render.NoContent(w, r)
}

type runCommandRequest struct {
	Command string            `json:"command" validate:"required,max=100"`
	Args    map[string]string `json:"args"`
}

// handleRunCommand forwards a dataset to the configured command runner.
func (s *Server) handleRunCommand(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "datasetID")
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	var req runCommandRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	ref, err := s.service.RunCommand(r.Context(), currentUser(r), id, req.Command, req.Args)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, ref)
}
