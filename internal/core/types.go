// Package core provides the business logic for dataset ingestion.
// This package has no HTTP dependencies and can be driven by any frontend.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/statboard/statboard/internal/store"
)

// ErrExtensionNotAllowed is returned when the uploaded file's extension is
// not on the configured allow-list.
var ErrExtensionNotAllowed = errors.New("file extension not allowed")

// ErrFileTooLarge is returned when the upload exceeds the configured size
// ceiling. The parser itself never bounds its input; this is the gate.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// Persistence is the metadata store the service depends on.
// Satisfied by *store.Store; narrowed to an interface for tests.
type Persistence interface {
	CreateProject(ctx context.Context, ownerID, name string) (store.Project, error)
	GetProject(ctx context.Context, ownerID string, id uuid.UUID) (store.Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]store.Project, error)
	DeleteProject(ctx context.Context, ownerID string, id uuid.UUID) ([]string, error)

	CreateDataset(ctx context.Context, d store.Dataset, rows []map[string]string) error
	GetDataset(ctx context.Context, ownerID string, id uuid.UUID) (store.Dataset, error)
	ListDatasets(ctx context.Context, ownerID string, projectID uuid.UUID) ([]store.Dataset, error)
	GetDatasetRows(ctx context.Context, ownerID string, datasetID uuid.UUID, limit, offset int) ([]map[string]string, error)
	DeleteDataset(ctx context.Context, ownerID string, id uuid.UUID) (store.Dataset, error)
}

// IngestInput describes one dataset upload.
type IngestInput struct {
	OwnerID   string
	ProjectID uuid.UUID
	Name      string // display name; defaults to FileName when empty
	FileName  string // original file name, used for the extension check
	Data      []byte // full payload, already read from the request
}

// IngestResult is the outcome of a successful ingest.
type IngestResult struct {
	Dataset  store.Dataset `json:"dataset"`
	RowCount int           `json:"row_count"`
	Columns  []string      `json:"columns"`

	// MalformedWarning is set when the parser detected an unterminated
	// quote. The dataset is stored anyway; the caller decides whether to
	// surface the warning.
	MalformedWarning bool `json:"malformed_warning"`

	Duration time.Duration `json:"-"`
}

// Preview is a bounded slice of parsed rows for display.
type Preview struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	Total   int                 `json:"total"`
}
