package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/statboard/statboard/internal/config"
	"github.com/statboard/statboard/internal/filestore"
	"github.com/statboard/statboard/internal/store"
)

// fakeStore is an in-memory Persistence for service tests.
type fakeStore struct {
	projects map[uuid.UUID]store.Project
	datasets map[uuid.UUID]store.Dataset
	rows     map[uuid.UUID][]map[string]string

	createDatasetErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[uuid.UUID]store.Project),
		datasets: make(map[uuid.UUID]store.Dataset),
		rows:     make(map[uuid.UUID][]map[string]string),
	}
}

func (f *fakeStore) CreateProject(_ context.Context, ownerID, name string) (store.Project, error) {
	p := store.Project{ID: uuid.New(), OwnerID: ownerID, Name: name, CreatedAt: time.Now().UTC()}
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetProject(_ context.Context, ownerID string, id uuid.UUID) (store.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return store.Project{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ListProjects(_ context.Context, ownerID string) ([]store.Project, error) {
	var out []store.Project
	for _, p := range f.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteProject(_ context.Context, ownerID string, id uuid.UUID) ([]string, error) {
	p, ok := f.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	delete(f.projects, id)

	var keys []string
	for did, d := range f.datasets {
		if d.ProjectID == id {
			keys = append(keys, d.StorageKey)
			delete(f.datasets, did)
			delete(f.rows, did)
		}
	}
	return keys, nil
}

func (f *fakeStore) CreateDataset(_ context.Context, d store.Dataset, rows []map[string]string) error {
	if f.createDatasetErr != nil {
		return f.createDatasetErr
	}
	f.datasets[d.ID] = d
	f.rows[d.ID] = rows
	return nil
}

func (f *fakeStore) GetDataset(_ context.Context, ownerID string, id uuid.UUID) (store.Dataset, error) {
	d, ok := f.datasets[id]
	if !ok || d.OwnerID != ownerID {
		return store.Dataset{}, store.ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) ListDatasets(_ context.Context, ownerID string, projectID uuid.UUID) ([]store.Dataset, error) {
	var out []store.Dataset
	for _, d := range f.datasets {
		if d.OwnerID == ownerID && d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) GetDatasetRows(_ context.Context, ownerID string, datasetID uuid.UUID, limit, offset int) ([]map[string]string, error) {
	d, ok := f.datasets[datasetID]
	if !ok || d.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	rows := f.rows[datasetID]
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) DeleteDataset(_ context.Context, ownerID string, id uuid.UUID) (store.Dataset, error) {
	d, ok := f.datasets[id]
	if !ok || d.OwnerID != ownerID {
		return store.Dataset{}, store.ErrNotFound
	}
	delete(f.datasets, id)
	delete(f.rows, id)
	return d, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:       1024,
			AllowedExtensions: []string{".csv", ".tsv", ".txt"},
			MaxConcurrent:     2,
			MaxWaitTime:       time.Second,
			Timeout:           5 * time.Second,
			PreviewRows:       2,
		},
		Storage: config.StorageConfig{
			Backend:        "memory",
			DownloadURLTTL: 15 * time.Minute,
		},
	}
}

func newTestService(t *testing.T, fs *fakeStore) (*Service, *filestore.Memory) {
	t.Helper()
	files := filestore.NewMemory()
	svc, err := NewService(fs, files, nil, testConfig())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, files
}

func TestIngestDataset(t *testing.T) {
	fs := newFakeStore()
	svc, files := newTestService(t, fs)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "alice", "sales")
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	data := "name,amount\nwidget,10\ngadget,20\n"
	res, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		FileName:  "sales.csv",
		Data:      []byte(data),
	})
	if err != nil {
		t.Fatalf("IngestDataset() error = %v", err)
	}

	if res.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", res.RowCount)
	}
	if got, want := strings.Join(res.Columns, "|"), "name|amount"; got != want {
		t.Errorf("Columns = %q, want %q", got, want)
	}
	if res.Dataset.Delimiter != "comma" {
		t.Errorf("Delimiter = %q, want %q", res.Dataset.Delimiter, "comma")
	}
	if res.MalformedWarning {
		t.Error("MalformedWarning = true, want false")
	}
	if res.Dataset.Name != "sales.csv" {
		t.Errorf("Name = %q, want file name fallback", res.Dataset.Name)
	}

	// Raw payload must be in the filestore under the dataset's key.
	stored, err := files.Get(ctx, res.Dataset.StorageKey)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", res.Dataset.StorageKey, err)
	}
	if string(stored) != data {
		t.Errorf("stored payload = %q, want original upload", stored)
	}
}

func TestIngestDatasetValidation(t *testing.T) {
	fs := newFakeStore()
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")

	tests := []struct {
		name    string
		input   IngestInput
		wantErr error
	}{
		{
			name: "disallowed extension",
			input: IngestInput{
				OwnerID: "alice", ProjectID: p.ID,
				FileName: "report.xlsx", Data: []byte("a,b\n1,2\n"),
			},
			wantErr: ErrExtensionNotAllowed,
		},
		{
			name: "oversized payload",
			input: IngestInput{
				OwnerID: "alice", ProjectID: p.ID,
				FileName: "big.csv", Data: []byte(strings.Repeat("x", 2048)),
			},
			wantErr: ErrFileTooLarge,
		},
		{
			name: "project not owned",
			input: IngestInput{
				OwnerID: "mallory", ProjectID: p.ID,
				FileName: "sales.csv", Data: []byte("a,b\n1,2\n"),
			},
			wantErr: store.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.IngestDataset(ctx, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("IngestDataset() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIngestDatasetMalformedWarning(t *testing.T) {
	fs := newFakeStore()
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")

	res, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		FileName:  "broken.csv",
		Data:      []byte("name,notes\nwidget,\"no closing quote\n"),
	})
	if err != nil {
		t.Fatalf("IngestDataset() error = %v", err)
	}
	if !res.MalformedWarning {
		t.Error("MalformedWarning = false, want true")
	}
	if !res.Dataset.UnterminatedQuote {
		t.Error("Dataset.UnterminatedQuote = false, want true")
	}
}

func TestIngestDatasetCleansUpOnInsertFailure(t *testing.T) {
	fs := newFakeStore()
	fs.createDatasetErr = errors.New("db down")
	svc, files := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")

	_, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		FileName:  "sales.csv",
		Data:      []byte("a,b\n1,2\n"),
	})
	if err == nil {
		t.Fatal("IngestDataset() error = nil, want insert failure")
	}
	if files.Len() != 0 {
		t.Errorf("filestore has %d objects after failed ingest, want 0", files.Len())
	}
}

func TestPreviewDataset(t *testing.T) {
	fs := newFakeStore()
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")
	res, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		FileName:  "sales.csv",
		Data:      []byte("name,amount\na,1\nb,2\nc,3\nd,4\n"),
	})
	if err != nil {
		t.Fatalf("IngestDataset() error = %v", err)
	}

	preview, err := svc.PreviewDataset(ctx, "alice", res.Dataset.ID)
	if err != nil {
		t.Fatalf("PreviewDataset() error = %v", err)
	}
	if len(preview.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2 (preview limit)", len(preview.Rows))
	}
	if preview.Total != 4 {
		t.Errorf("Total = %d, want 4", preview.Total)
	}
	if preview.Rows[0]["name"] != "a" {
		t.Errorf("Rows[0][name] = %q, want %q", preview.Rows[0]["name"], "a")
	}
}

func TestDeleteDatasetRemovesPayload(t *testing.T) {
	fs := newFakeStore()
	svc, files := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")
	res, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		FileName:  "sales.csv",
		Data:      []byte("a,b\n1,2\n"),
	})
	if err != nil {
		t.Fatalf("IngestDataset() error = %v", err)
	}

	if err := svc.DeleteDataset(ctx, "alice", res.Dataset.ID); err != nil {
		t.Fatalf("DeleteDataset() error = %v", err)
	}
	if files.Len() != 0 {
		t.Errorf("filestore has %d objects after delete, want 0", files.Len())
	}
	if _, err := svc.GetDataset(ctx, "alice", res.Dataset.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetDataset() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProjectRemovesDatasetPayloads(t *testing.T) {
	fs := newFakeStore()
	svc, files := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")
	for _, name := range []string{"q1.csv", "q2.csv"} {
		if _, err := svc.IngestDataset(ctx, IngestInput{
			OwnerID:   "alice",
			ProjectID: p.ID,
			FileName:  name,
			Data:      []byte("a,b\n1,2\n"),
		}); err != nil {
			t.Fatalf("IngestDataset(%s) error = %v", name, err)
		}
	}

	if err := svc.DeleteProject(ctx, "alice", p.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if files.Len() != 0 {
		t.Errorf("filestore has %d objects after project delete, want 0", files.Len())
	}
}

func TestDownloadContent(t *testing.T) {
	fs := newFakeStore()
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")
	data := "a\tb\n1\t2\n"
	res, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		Name:      "tabs",
		FileName:  "tabs.tsv",
		Data:      []byte(data),
	})
	if err != nil {
		t.Fatalf("IngestDataset() error = %v", err)
	}
	if res.Dataset.Delimiter != "tab" {
		t.Errorf("Delimiter = %q, want %q", res.Dataset.Delimiter, "tab")
	}

	got, fileName, err := svc.DownloadContent(ctx, "alice", res.Dataset.ID)
	if err != nil {
		t.Fatalf("DownloadContent() error = %v", err)
	}
	if string(got) != data {
		t.Errorf("DownloadContent() = %q, want original payload", got)
	}
	if fileName != "tabs.tsv" {
		t.Errorf("fileName = %q, want %q", fileName, "tabs.tsv")
	}
}

func TestDownloadURLUnsupportedBackend(t *testing.T) {
	fs := newFakeStore()
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")
	res, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		FileName:  "sales.csv",
		Data:      []byte("a,b\n1,2\n"),
	})
	if err != nil {
		t.Fatalf("IngestDataset() error = %v", err)
	}

	_, err = svc.DownloadURL(ctx, "alice", res.Dataset.ID)
	if !errors.Is(err, filestore.ErrSignedURLUnsupported) {
		t.Errorf("DownloadURL() error = %v, want ErrSignedURLUnsupported", err)
	}
}

func TestRunCommandUnconfigured(t *testing.T) {
	fs := newFakeStore()
	svc, _ := newTestService(t, fs)
	ctx := context.Background()

	p, _ := svc.CreateProject(ctx, "alice", "sales")
	res, err := svc.IngestDataset(ctx, IngestInput{
		OwnerID:   "alice",
		ProjectID: p.ID,
		FileName:  "sales.csv",
		Data:      []byte("a,b\n1,2\n"),
	})
	if err != nil {
		t.Fatalf("IngestDataset() error = %v", err)
	}

	_, err = svc.RunCommand(ctx, "alice", res.Dataset.ID, "summarize", nil)
	if !errors.Is(err, ErrRunnerUnavailable) {
		t.Errorf("RunCommand() error = %v, want ErrRunnerUnavailable", err)
	}
}
