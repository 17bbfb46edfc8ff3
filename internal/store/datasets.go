package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Dataset is one parsed upload: metadata plus a pointer to the raw payload
// in object storage. The parsed rows live in dataset_rows.
type Dataset struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	FileName   string    `json:"file_name"`
	StorageKey string    `json:"-"`
	Delimiter  string    `json:"delimiter"`
	Columns    []string  `json:"columns"`
	RowCount   int       `json:"row_count"`

	// UnterminatedQuote records the parser's malformed-input signal so the
	// UI can surface a warning next to the dataset.
	UnterminatedQuote bool `json:"unterminated_quote"`

	CreatedAt time.Time `json:"created_at"`
}

// CreateDataset inserts the dataset and its rows in one transaction.
// Rows are bulk-loaded with the COPY protocol.
func (s *Store) CreateDataset(ctx context.Context, d Dataset, rows []map[string]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO datasets
		   (id, project_id, owner_id, name, file_name, storage_key, delimiter,
		    columns, row_count, unterminated_quote, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		d.ID, d.ProjectID, d.OwnerID, d.Name, d.FileName, d.StorageKey,
		d.Delimiter, d.Columns, d.RowCount, d.UnterminatedQuote, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	if len(rows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"dataset_rows"},
			[]string{"dataset_id", "row_index", "fields"},
			pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
				return []any{d.ID, i, rows[i]}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetDataset returns the dataset if it exists and belongs to ownerID.
func (s *Store) GetDataset(ctx context.Context, ownerID string, id uuid.UUID) (Dataset, error) {
	var d Dataset
	err := s.pool.QueryRow(ctx,
		`SELECT id, project_id, owner_id, name, file_name, storage_key, delimiter,
		        columns, row_count, unterminated_quote, created_at
		 FROM datasets WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&d.ID, &d.ProjectID, &d.OwnerID, &d.Name, &d.FileName, &d.StorageKey,
		&d.Delimiter, &d.Columns, &d.RowCount, &d.UnterminatedQuote, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dataset{}, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
		}
		return Dataset{}, fmt.Errorf("get dataset: %w", err)
	}
	return d, nil
}

// ListDatasets returns the datasets in a project, newest first.
func (s *Store) ListDatasets(ctx context.Context, ownerID string, projectID uuid.UUID) ([]Dataset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, owner_id, name, file_name, storage_key, delimiter,
		        columns, row_count, unterminated_quote, created_at
		 FROM datasets WHERE project_id = $1 AND owner_id = $2
		 ORDER BY created_at DESC`,
		projectID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.OwnerID, &d.Name, &d.FileName,
			&d.StorageKey, &d.Delimiter, &d.Columns, &d.RowCount,
			&d.UnterminatedQuote, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		datasets = append(datasets, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return datasets, nil
}

// GetDatasetRows returns parsed rows in original order, starting at offset.
func (s *Store) GetDatasetRows(ctx context.Context, ownerID string, datasetID uuid.UUID, limit, offset int) ([]map[string]string, error) {
	// Ownership check rides on the join.
	rows, err := s.pool.Query(ctx,
		`SELECT r.fields
		 FROM dataset_rows r
		 JOIN datasets d ON d.id = r.dataset_id
		 WHERE r.dataset_id = $1 AND d.owner_id = $2
		 ORDER BY r.row_index
		 LIMIT $3 OFFSET $4`,
		datasetID, ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("get dataset rows: %w", err)
	}
	defer rows.Close()

	var result []map[string]string
	for rows.Next() {
		var fields map[string]string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, fields)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get dataset rows: %w", err)
	}
	return result, nil
}

// DeleteDataset removes the dataset (rows cascade) and returns its metadata
// so the caller can delete the raw payload from object storage.
func (s *Store) DeleteDataset(ctx context.Context, ownerID string, id uuid.UUID) (Dataset, error) {
	d, err := s.GetDataset(ctx, ownerID, id)
	if err != nil {
		return Dataset{}, err
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM datasets WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return Dataset{}, fmt.Errorf("delete dataset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Dataset{}, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	return d, nil
}
