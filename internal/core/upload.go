package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/statboard/statboard/internal/filestore"
	"github.com/statboard/statboard/internal/logging"
	"github.com/statboard/statboard/internal/parse"
	"github.com/statboard/statboard/internal/store"
)

// IngestDataset validates, parses, and stores one uploaded file.
//
// The pipeline: acquire an ingest slot, verify project ownership, parse the
// payload, write the raw bytes to object storage, then persist metadata and
// rows in one transaction. If the database write fails the stored object is
// removed on a best-effort basis.
func (s *Service) IngestDataset(ctx context.Context, in IngestInput) (*IngestResult, error) {
	if err := s.validateUpload(in); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Upload.Timeout)
	defer cancel()

	start := time.Now()
	log := logging.FromContext(ctx)

	// Ownership check before any expensive work.
	if _, err := s.store.GetProject(ctx, in.OwnerID, in.ProjectID); err != nil {
		return nil, err
	}

	table := parse.Parse(sanitizeUTF8(string(in.Data)))
	if table.UnterminatedQuote {
		log.Warn("unterminated quote in upload",
			"file", in.FileName, "project_id", in.ProjectID)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.FileName
	}

	d := store.Dataset{
		ID:                uuid.New(),
		ProjectID:         in.ProjectID,
		OwnerID:           in.OwnerID,
		Name:              name,
		FileName:          in.FileName,
		StorageKey:        "datasets/" + uuid.NewString(),
		Delimiter:         delimiterName(table.Delimiter),
		Columns:           table.Columns,
		RowCount:          len(table.Rows),
		UnterminatedQuote: table.UnterminatedQuote,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.files.Put(ctx, d.StorageKey, in.Data, contentTypeFor(in.FileName)); err != nil {
		return nil, fmt.Errorf("store payload: %w", err)
	}

	rows := make([]map[string]string, len(table.Rows))
	for i, r := range table.Rows {
		rows[i] = r
	}

	if err := s.store.CreateDataset(ctx, d, rows); err != nil {
		if delErr := s.files.Delete(ctx, d.StorageKey); delErr != nil && !errors.Is(delErr, filestore.ErrNotFound) {
			log.Warn("failed to clean up payload after insert failure",
				"key", d.StorageKey, "error", delErr)
		}
		return nil, fmt.Errorf("persist dataset: %w", err)
	}

	log.Info("dataset ingested",
		"dataset_id", d.ID,
		"project_id", d.ProjectID,
		"rows", d.RowCount,
		"columns", len(d.Columns),
		"delimiter", d.Delimiter,
		"duration", time.Since(start),
	)

	return &IngestResult{
		Dataset:          d,
		RowCount:         d.RowCount,
		Columns:          d.Columns,
		MalformedWarning: table.UnterminatedQuote,
		Duration:         time.Since(start),
	}, nil
}

// validateUpload enforces the extension allow-list and the size ceiling.
func (s *Service) validateUpload(in IngestInput) error {
	if in.FileName == "" {
		return errors.New("file name is required")
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	allowed := false
	for _, a := range s.cfg.Upload.AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrExtensionNotAllowed, ext)
	}

	if int64(len(in.Data)) > s.cfg.Upload.MaxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)",
			ErrFileTooLarge, len(in.Data), s.cfg.Upload.MaxFileSize)
	}
	return nil
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// downstream JSON encoding never fails on the stored fields.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError {
			b.WriteRune('�')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// delimiterName maps the detected delimiter rune to its stored label.
func delimiterName(d rune) string {
	switch d {
	case parse.DelimiterTab:
		return "tab"
	case parse.DelimiterSemicolon:
		return "semicolon"
	default:
		return "comma"
	}
}

func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	default:
		return "text/plain"
	}
}
