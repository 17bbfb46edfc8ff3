package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/statboard/statboard/internal/config"
	"github.com/statboard/statboard/internal/filestore"
	"github.com/statboard/statboard/internal/logging"
	"github.com/statboard/statboard/internal/store"
)

// Service orchestrates dataset ingestion: validation, parsing, metadata
// persistence, and raw payload storage. One instance serves all requests.
type Service struct {
	store   Persistence
	files   filestore.Store
	limiter *UploadLimiter
	runner  CommandRunner
	cfg     *config.Config
}

// NewService wires the service dependencies.
// Pass NewUnconfiguredRunner() when no command runner is deployed.
func NewService(st Persistence, files filestore.Store, runner CommandRunner, cfg *config.Config) (*Service, error) {
	if st == nil {
		return nil, errors.New("core: persistence is required")
	}
	if files == nil {
		return nil, errors.New("core: filestore is required")
	}
	if runner == nil {
		runner = NewUnconfiguredRunner()
	}
	if cfg == nil {
		return nil, errors.New("core: config is required")
	}

	return &Service{
		store:   st,
		files:   files,
		limiter: NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		runner:  runner,
		cfg:     cfg,
	}, nil
}

// UploadLimiterStatus exposes the limiter snapshot for monitoring and
// shutdown coordination.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight ingests finish or ctx expires.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// CreateProject creates a project owned by ownerID.
func (s *Service) CreateProject(ctx context.Context, ownerID, name string) (store.Project, error) {
	p, err := s.store.CreateProject(ctx, ownerID, name)
	if err != nil {
		return store.Project{}, err
	}
	logging.FromContext(ctx).Info("project created", "project_id", p.ID, "owner", ownerID)
	return p, nil
}

// GetProject returns one project owned by ownerID.
func (s *Service) GetProject(ctx context.Context, ownerID string, id uuid.UUID) (store.Project, error) {
	return s.store.GetProject(ctx, ownerID, id)
}

// ListProjects returns all projects owned by ownerID.
func (s *Service) ListProjects(ctx context.Context, ownerID string) ([]store.Project, error) {
	return s.store.ListProjects(ctx, ownerID)
}

// DeleteProject removes a project, its datasets, and their stored payloads.
// Object deletion is best effort: metadata is the source of truth, and an
// orphaned object is preferable to a dataset pointing at nothing.
func (s *Service) DeleteProject(ctx context.Context, ownerID string, id uuid.UUID) error {
	keys, err := s.store.DeleteProject(ctx, ownerID, id)
	if err != nil {
		return err
	}

	log := logging.FromContext(ctx)
	for _, key := range keys {
		if err := s.files.Delete(ctx, key); err != nil && !errors.Is(err, filestore.ErrNotFound) {
			log.Warn("failed to delete stored payload", "key", key, "error", err)
		}
	}
	log.Info("project deleted", "project_id", id, "datasets_removed", len(keys))
	return nil
}

// GetDataset returns dataset metadata.
func (s *Service) GetDataset(ctx context.Context, ownerID string, id uuid.UUID) (store.Dataset, error) {
	return s.store.GetDataset(ctx, ownerID, id)
}

// ListDatasets returns the datasets in a project.
func (s *Service) ListDatasets(ctx context.Context, ownerID string, projectID uuid.UUID) ([]store.Dataset, error) {
	return s.store.ListDatasets(ctx, ownerID, projectID)
}

// PreviewDataset returns the first configured number of parsed rows.
func (s *Service) PreviewDataset(ctx context.Context, ownerID string, id uuid.UUID) (*Preview, error) {
	d, err := s.store.GetDataset(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.GetDatasetRows(ctx, ownerID, id, s.cfg.Upload.PreviewRows, 0)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Columns: d.Columns,
		Rows:    rows,
		Total:   d.RowCount,
	}, nil
}

// DownloadURL returns a presigned URL for the raw payload when the storage
// backend supports it, or filestore.ErrSignedURLUnsupported so the caller
// can stream the content instead.
func (s *Service) DownloadURL(ctx context.Context, ownerID string, id uuid.UUID) (string, error) {
	d, err := s.store.GetDataset(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	return s.files.SignedURL(ctx, d.StorageKey, s.cfg.Storage.DownloadURLTTL)
}

// DownloadContent returns the raw payload bytes and original file name.
// Fallback path for backends without presigned URLs.
func (s *Service) DownloadContent(ctx context.Context, ownerID string, id uuid.UUID) ([]byte, string, error) {
	d, err := s.store.GetDataset(ctx, ownerID, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.files.Get(ctx, d.StorageKey)
	if err != nil {
		return nil, "", fmt.Errorf("fetch payload: %w", err)
	}
	return data, d.FileName, nil
}

// DeleteDataset removes a dataset and its stored payload.
func (s *Service) DeleteDataset(ctx context.Context, ownerID string, id uuid.UUID) error {
	d, err := s.store.DeleteDataset(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, d.StorageKey); err != nil && !errors.Is(err, filestore.ErrNotFound) {
		logging.FromContext(ctx).Warn("failed to delete stored payload",
			"key", d.StorageKey, "error", err)
	}
	logging.FromContext(ctx).Info("dataset deleted", "dataset_id", id)
	return nil
}

// RunCommand hands a dataset to the command-runner collaborator.
// The dataset must exist and belong to ownerID.
func (s *Service) RunCommand(ctx context.Context, ownerID string, id uuid.UUID, command string, args map[string]string) (ArtifactRef, error) {
	if _, err := s.store.GetDataset(ctx, ownerID, id); err != nil {
		return ArtifactRef{}, err
	}

	start := time.Now()
	ref, err := s.runner.Run(ctx, id, command, args)
	if err != nil {
		return ArtifactRef{}, fmt.Errorf("run command %q: %w", command, err)
	}

	logging.FromContext(ctx).Info("command completed",
		slog.String("dataset_id", id.String()),
		slog.String("command", command),
		slog.Duration("duration", time.Since(start)),
	)
	return ref, nil
}
