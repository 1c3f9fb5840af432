package admin

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"wanderfolio/app/internal/content"
	"wanderfolio/app/internal/storage"
)

// Action names accepted by the JSON CRUD envelope.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionList   = "list"
)

// Tables whose create/update payloads trigger skill categorization.
const (
	tableProjects    = "projects"
	tableExperiences = "experiences"
)

// Categorizer classifies technology keywords into skill categories. The
// gateway treats the whole call as advisory.
type Categorizer interface {
	Categorize(ctx context.Context, keywords []string) error
}

// Options configures the admin gateway.
type Options struct {
	Passcode          string
	Repository        content.Repository
	Uploader          storage.Uploader
	Categorizer       Categorizer
	CategorizeTimeout time.Duration
	Logger            *logrus.Logger
	SentryHub         *sentry.Hub
}

// Gateway is the single authenticated entry point for mutating content and
// uploading binary assets. Every request carries the shared passcode; there
// is no per-user identity.
type Gateway struct {
	passcode          []byte
	repo              content.Repository
	uploader          storage.Uploader
	categorizer       Categorizer
	categorizeTimeout time.Duration
	logger            *logrus.Logger
	sentryHub         *sentry.Hub
	tasks             sync.WaitGroup
}

const defaultCategorizeTimeout = 30 * time.Second

// NewGateway constructs the admin gateway. A nil Categorizer disables the
// categorization side effect entirely.
func NewGateway(opts Options) (*Gateway, error) {
	if opts.Passcode == "" {
		return nil, eris.New("admin passcode is required")
	}
	if opts.Repository == nil {
		return nil, eris.New("content repository is required")
	}
	if opts.Uploader == nil {
		return nil, eris.New("storage uploader is required")
	}

	timeout := opts.CategorizeTimeout
	if timeout <= 0 {
		timeout = defaultCategorizeTimeout
	}

	return &Gateway{
		passcode:          []byte(opts.Passcode),
		repo:              opts.Repository,
		uploader:          opts.Uploader,
		categorizer:       opts.Categorizer,
		categorizeTimeout: timeout,
		logger:            opts.Logger,
		sentryHub:         opts.SentryHub,
	}, nil
}

// CRUDRequest is the JSON envelope accepted by the gateway.
type CRUDRequest struct {
	Passcode string      `json:"passcode"`
	Action   string      `json:"action"`
	Table    string      `json:"table"`
	Data     content.Row `json:"data,omitempty"`
	ID       string      `json:"id,omitempty"`
}

// Execute validates the envelope and dispatches the CRUD action. The returned
// value is the created/updated row, a success acknowledgment for delete, or
// the full row list.
func (g *Gateway) Execute(ctx context.Context, req CRUDRequest) (any, error) {
	if !g.authorized(req.Passcode) {
		return nil, ErrUnauthorized
	}

	if !content.IsAllowedTable(req.Table) {
		return nil, ErrInvalidTable
	}

	switch req.Action {
	case ActionCreate:
		if len(req.Data) == 0 {
			return nil, ErrMissingData
		}
		row, err := g.repo.Create(ctx, req.Table, req.Data)
		if err != nil {
			return nil, err
		}
		g.maybeCategorize(req.Table, req.Data)
		return row, nil

	case ActionUpdate:
		if req.ID == "" {
			return nil, ErrMissingID
		}
		if len(req.Data) == 0 {
			return nil, ErrMissingData
		}
		row, err := g.repo.Update(ctx, req.Table, req.ID, req.Data)
		if err != nil {
			return nil, err
		}
		g.maybeCategorize(req.Table, req.Data)
		return row, nil

	case ActionDelete:
		if req.ID == "" {
			return nil, ErrMissingID
		}
		if err := g.repo.Delete(ctx, req.Table, req.ID); err != nil {
			return nil, err
		}
		return map[string]any{"success": true}, nil

	case ActionList:
		rows, err := g.repo.List(ctx, req.Table)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []content.Row{}
		}
		return rows, nil

	default:
		return nil, ErrInvalidAction
	}
}

// UploadRequest carries a multipart upload after transport decoding.
type UploadRequest struct {
	Passcode    string
	Folder      string
	FileName    string
	ContentType string
	Data        []byte
}

// UploadResult reports the stored object's public URL and storage key.
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Upload validates the passcode, derives a fresh storage key and stores the
// file bytes. The passcode is checked before the file is inspected.
func (g *Gateway) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if !g.authorized(req.Passcode) {
		return nil, ErrUnauthorized
	}

	if len(req.Data) == 0 {
		return nil, ErrMissingFile
	}

	key, err := storage.NewObjectKey(req.Folder, req.FileName)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := g.uploader.Upload(ctx, key, contentType, req.Data)
	if err != nil {
		return nil, err
	}

	if g.logger != nil {
		g.logger.WithFields(logrus.Fields{"key": key, "bytes": len(req.Data)}).Info("stored upload")
	}

	return &UploadResult{URL: url, Path: key}, nil
}

// Wait blocks until in-flight categorization tasks finish. Called during
// shutdown and from tests.
func (g *Gateway) Wait() {
	g.tasks.Wait()
}

func (g *Gateway) authorized(passcode string) bool {
	return subtle.ConstantTimeCompare([]byte(passcode), g.passcode) == 1
}

// maybeCategorize launches skill categorization as a detached background
// task. Its outcome never reaches the response for the triggering request;
// failures are logged and reported to Sentry only.
func (g *Gateway) maybeCategorize(table string, data content.Row) {
	if g.categorizer == nil {
		return
	}

	if table != tableProjects && table != tableExperiences {
		return
	}

	keywords := techStackKeywords(data)
	if len(keywords) == 0 {
		return
	}

	g.tasks.Add(1)
	go func() {
		defer g.tasks.Done()

		ctx, cancel := context.WithTimeout(context.Background(), g.categorizeTimeout)
		defer cancel()

		if err := g.categorizer.Categorize(ctx, keywords); err != nil {
			g.recordError(logrus.Fields{"table": table}, err, "skill categorization failed")
		}
	}()
}

func techStackKeywords(data content.Row) []string {
	raw, ok := data["tech_stack"]
	if !ok {
		return nil
	}

	switch values := raw.(type) {
	case []string:
		return values
	case []any:
		keywords := make([]string, 0, len(values))
		for _, value := range values {
			if s, ok := value.(string); ok {
				keywords = append(keywords, s)
			}
		}
		return keywords
	default:
		return nil
	}
}

func (g *Gateway) recordError(fields logrus.Fields, err error, message string) {
	if g.logger != nil {
		entry := g.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if g.sentryHub != nil {
		g.sentryHub.CaptureException(err)
	}
}
