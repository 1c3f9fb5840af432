package admin

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"wanderfolio/app/internal/content"
)

type fakeRepository struct {
	created   map[string]content.Row
	updated   map[string]content.Row
	deleted   []string
	listRows  []content.Row
	err       error
	callCount int
}

func (f *fakeRepository) Create(ctx context.Context, table string, data content.Row) (content.Row, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	if f.created == nil {
		f.created = make(map[string]content.Row)
	}
	row := content.Row{"id": "generated-id", "created_at": "2026-01-01T00:00:00Z"}
	for k, v := range data {
		row[k] = v
	}
	f.created[table] = row
	return row, nil
}

func (f *fakeRepository) Update(ctx context.Context, table, id string, data content.Row) (content.Row, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	if f.updated == nil {
		f.updated = make(map[string]content.Row)
	}
	row := content.Row{"id": id}
	for k, v := range data {
		row[k] = v
	}
	f.updated[table] = row
	return row, nil
}

func (f *fakeRepository) Delete(ctx context.Context, table, id string) error {
	f.callCount++
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, table+"/"+id)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, table string) ([]content.Row, error) {
	f.callCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.listRows, nil
}

type fakeUploader struct {
	key         string
	contentType string
	data        []byte
	err         error
	calls       int
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.key = key
	f.contentType = contentType
	f.data = data
	return "https://media.example.com/" + key, nil
}

type fakeCategorizer struct {
	keywords []string
	err      error
	calls    int
}

func (f *fakeCategorizer) Categorize(ctx context.Context, keywords []string) error {
	f.calls++
	f.keywords = keywords
	return f.err
}

func newTestGateway(t *testing.T, repo *fakeRepository, uploader *fakeUploader, categorizer Categorizer) *Gateway {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gateway, err := NewGateway(Options{
		Passcode:    "letmein",
		Repository:  repo,
		Uploader:    uploader,
		Categorizer: categorizer,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("NewGateway returned error: %v", err)
	}

	return gateway
}

func TestNewGatewayRequiresPasscode(t *testing.T) {
	t.Parallel()

	_, err := NewGateway(Options{Repository: &fakeRepository{}, Uploader: &fakeUploader{}})
	if err == nil {
		t.Fatalf("expected error when passcode is missing")
	}
}

func TestExecuteRejectsWrongPasscodeBeforeStoreAccess(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	gateway := newTestGateway(t, repo, &fakeUploader{}, nil)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "wrong",
		Action:   ActionList,
		Table:    "projects",
	})

	if !eris.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if repo.callCount != 0 {
		t.Fatalf("expected no repository access, got %d calls", repo.callCount)
	}
}

func TestExecuteRejectsUnknownTableBeforeStoreAccess(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	gateway := newTestGateway(t, repo, &fakeUploader{}, nil)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionList,
		Table:    "users",
	})

	if !eris.Is(err, ErrInvalidTable) {
		t.Fatalf("expected ErrInvalidTable, got %v", err)
	}

	if repo.callCount != 0 {
		t.Fatalf("expected no repository access, got %d calls", repo.callCount)
	}
}

func TestExecuteRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, nil)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   "truncate",
		Table:    "projects",
	})

	if !eris.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestExecuteCreateRequiresData(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, nil)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionCreate,
		Table:    "projects",
	})

	if !eris.Is(err, ErrMissingData) {
		t.Fatalf("expected ErrMissingData, got %v", err)
	}
}

func TestExecuteUpdateRequiresID(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, nil)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionUpdate,
		Table:    "projects",
		Data:     content.Row{"title": "X"},
	})

	if !eris.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestExecuteCreateReturnsRowAndTriggersCategorization(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	categorizer := &fakeCategorizer{}
	gateway := newTestGateway(t, repo, &fakeUploader{}, categorizer)

	result, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionCreate,
		Table:    "projects",
		Data:     content.Row{"title": "X", "tech_stack": []any{"Zig", "Go"}},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	gateway.Wait()

	row, ok := result.(content.Row)
	if !ok {
		t.Fatalf("expected row result, got %T", result)
	}
	if row["id"] != "generated-id" {
		t.Fatalf("expected generated id in row, got %v", row["id"])
	}

	if categorizer.calls != 1 {
		t.Fatalf("expected one categorization, got %d", categorizer.calls)
	}

	if len(categorizer.keywords) != 2 || categorizer.keywords[0] != "Zig" {
		t.Fatalf("unexpected keywords: %v", categorizer.keywords)
	}
}

func TestExecuteCreateSkipsCategorizationForOtherTables(t *testing.T) {
	t.Parallel()

	categorizer := &fakeCategorizer{}
	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, categorizer)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionCreate,
		Table:    "poems",
		Data:     content.Row{"title": "Heron"},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	gateway.Wait()

	if categorizer.calls != 0 {
		t.Fatalf("expected no categorization for poems, got %d", categorizer.calls)
	}
}

func TestExecuteCategorizerFailureDoesNotAffectResponse(t *testing.T) {
	t.Parallel()

	categorizer := &fakeCategorizer{err: eris.New("model unavailable")}
	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, categorizer)

	result, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionUpdate,
		Table:    "experiences",
		ID:       "exp-1",
		Data:     content.Row{"tech_stack": []any{"Rust"}},
	})
	if err != nil {
		t.Fatalf("Execute returned error despite advisory categorizer failure: %v", err)
	}

	gateway.Wait()

	if result == nil {
		t.Fatalf("expected updated row result")
	}

	if categorizer.calls != 1 {
		t.Fatalf("expected categorizer to run, got %d calls", categorizer.calls)
	}
}

func TestExecuteWorksWithNilCategorizer(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, nil)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionCreate,
		Table:    "projects",
		Data:     content.Row{"title": "X", "tech_stack": []any{"Zig"}},
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	gateway.Wait()
}

func TestExecuteDeleteReturnsAcknowledgment(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{}
	gateway := newTestGateway(t, repo, &fakeUploader{}, nil)

	result, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionDelete,
		Table:    "honors",
		ID:       "honor-1",
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	ack, ok := result.(map[string]any)
	if !ok || ack["success"] != true {
		t.Fatalf("expected success acknowledgment, got %v", result)
	}

	if len(repo.deleted) != 1 || repo.deleted[0] != "honors/honor-1" {
		t.Fatalf("unexpected delete calls: %v", repo.deleted)
	}
}

func TestExecutePropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	repo := &fakeRepository{err: eris.New("no row matched")}
	gateway := newTestGateway(t, repo, &fakeUploader{}, nil)

	_, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionDelete,
		Table:    "honors",
		ID:       "missing",
	})

	if err == nil || IsBadRequest(err) || eris.Is(err, ErrUnauthorized) {
		t.Fatalf("expected upstream error passthrough, got %v", err)
	}
}

func TestExecuteListReturnsEmptySliceNotNil(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, nil)

	result, err := gateway.Execute(context.Background(), CRUDRequest{
		Passcode: "letmein",
		Action:   ActionList,
		Table:    "projects",
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	rows, ok := result.([]content.Row)
	if !ok {
		t.Fatalf("expected row slice, got %T", result)
	}
	if rows == nil {
		t.Fatalf("expected empty slice, got nil")
	}
}

func TestUploadRejectsWrongPasscodeBeforeInspectingFile(t *testing.T) {
	t.Parallel()

	uploader := &fakeUploader{}
	gateway := newTestGateway(t, &fakeRepository{}, uploader, nil)

	_, err := gateway.Upload(context.Background(), UploadRequest{
		Passcode: "wrong",
		FileName: "photo.png",
		Data:     []byte("bytes"),
	})

	if !eris.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if uploader.calls != 0 {
		t.Fatalf("expected no storage access, got %d calls", uploader.calls)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	t.Parallel()

	gateway := newTestGateway(t, &fakeRepository{}, &fakeUploader{}, nil)

	_, err := gateway.Upload(context.Background(), UploadRequest{Passcode: "letmein"})

	if !eris.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestUploadStoresFileUnderDerivedKey(t *testing.T) {
	t.Parallel()

	uploader := &fakeUploader{}
	gateway := newTestGateway(t, &fakeRepository{}, uploader, nil)

	result, err := gateway.Upload(context.Background(), UploadRequest{
		Passcode:    "letmein",
		Folder:      "gallery",
		FileName:    "heron.png",
		ContentType: "image/png",
		Data:        []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if !strings.HasPrefix(result.Path, "gallery/") || !strings.HasSuffix(result.Path, ".png") {
		t.Fatalf("unexpected storage key: %q", result.Path)
	}

	if result.URL != "https://media.example.com/"+result.Path {
		t.Fatalf("unexpected public URL: %q", result.URL)
	}

	if uploader.contentType != "image/png" {
		t.Fatalf("expected content type to be forwarded, got %q", uploader.contentType)
	}
}

func TestUploadProducesDistinctKeysForSameFilename(t *testing.T) {
	t.Parallel()

	uploader := &fakeUploader{}
	gateway := newTestGateway(t, &fakeRepository{}, uploader, nil)

	first, err := gateway.Upload(context.Background(), UploadRequest{
		Passcode: "letmein",
		FileName: "resume.pdf",
		Data:     []byte("v1"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	second, err := gateway.Upload(context.Background(), UploadRequest{
		Passcode: "letmein",
		FileName: "resume.pdf",
		Data:     []byte("v2"),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if first.Path == second.Path {
		t.Fatalf("expected distinct keys for identical filenames, got %q twice", first.Path)
	}
}
