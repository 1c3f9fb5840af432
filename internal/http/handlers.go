package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	stdhttp "net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"wanderfolio/app/internal/admin"
	"wanderfolio/app/internal/content"
	"wanderfolio/app/internal/db"
)

const (
	jsonContentType   = "application/json; charset=utf-8"
	maxUploadMemory   = 32 << 20
	errorFallbackBody = `{"error":"internal server error"}`
)

type jsonResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type adminInput struct {
	ContentType string `header:"Content-Type"`
	RawBody     []byte
}

type contentInput struct {
	Table string `path:"table"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
}

func (s *Server) registerAdminRoute() {
	huma.Post(s.api, "/api/admin", s.adminHandler, jsonOperation(
		"Admin CRUD and upload gateway",
		stdhttp.StatusUnauthorized,
		stdhttp.StatusBadRequest,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerContentRoute() {
	huma.Get(s.api, "/api/content/{table}", s.contentHandler, jsonOperation(
		"List public content rows",
		stdhttp.StatusBadRequest,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

// adminHandler dispatches on the request content type: multipart bodies are
// uploads, everything else is treated as the JSON CRUD envelope.
func (s *Server) adminHandler(ctx context.Context, input *adminInput) (*jsonResponse, error) {
	mediaType, params, _ := mime.ParseMediaType(input.ContentType)
	if mediaType == "multipart/form-data" {
		return s.handleUpload(ctx, params["boundary"], input.RawBody), nil
	}

	return s.handleCRUD(ctx, input.RawBody), nil
}

func (s *Server) handleCRUD(ctx context.Context, body []byte) *jsonResponse {
	var req admin.CRUDRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return newErrorResponse(stdhttp.StatusBadRequest, "Invalid JSON body")
	}

	result, err := s.gateway.Execute(ctx, req)
	if err != nil {
		return s.errorResponse(ctx, err, logrus.Fields{"action": req.Action, "table": req.Table})
	}

	return s.jsonResult(ctx, stdhttp.StatusOK, result)
}

func (s *Server) handleUpload(ctx context.Context, boundary string, body []byte) *jsonResponse {
	if boundary == "" {
		return newErrorResponse(stdhttp.StatusBadRequest, "Invalid multipart body")
	}

	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxUploadMemory)
	if err != nil {
		return newErrorResponse(stdhttp.StatusBadRequest, "Invalid multipart body")
	}
	defer func() { _ = form.RemoveAll() }()

	req := admin.UploadRequest{
		Passcode: formValue(form, "passcode"),
		Folder:   formValue(form, "folder"),
	}

	if files := form.File["file"]; len(files) > 0 {
		header := files[0]
		file, openErr := header.Open()
		if openErr != nil {
			return newErrorResponse(stdhttp.StatusBadRequest, "Invalid multipart body")
		}
		data, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			return newErrorResponse(stdhttp.StatusBadRequest, "Invalid multipart body")
		}

		req.FileName = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
		req.Data = data
	}

	result, err := s.gateway.Upload(ctx, req)
	if err != nil {
		return s.errorResponse(ctx, err, logrus.Fields{"folder": req.Folder})
	}

	return s.jsonResult(ctx, stdhttp.StatusOK, result)
}

// contentHandler serves the public read path. It shares the table allow-list
// with the gateway but requires no passcode.
func (s *Server) contentHandler(ctx context.Context, input *contentInput) (*jsonResponse, error) {
	if !content.IsAllowedTable(input.Table) {
		return newErrorResponse(stdhttp.StatusBadRequest, "Invalid table"), nil
	}

	rows, err := s.repository.List(ctx, input.Table)
	if err != nil {
		return s.errorResponse(ctx, err, logrus.Fields{"table": input.Table}), nil
	}

	if rows == nil {
		rows = []content.Row{}
	}

	return s.jsonResult(ctx, stdhttp.StatusOK, rows), nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"

	if err := db.Ping(ctx, s.db); err != nil {
		s.recordError(ctx, err, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

func (s *Server) jsonResult(ctx context.Context, status int, result any) *jsonResponse {
	body, err := json.Marshal(result)
	if err != nil {
		s.recordError(ctx, err, "encoding response body", nil)
		return &jsonResponse{
			Status:      stdhttp.StatusInternalServerError,
			ContentType: jsonContentType,
			Body:        []byte(errorFallbackBody),
		}
	}

	return &jsonResponse{Status: status, ContentType: jsonContentType, Body: body}
}

// errorResponse maps gateway errors onto the wire taxonomy: 401 for a bad
// passcode, 400 for request defects, 500 with the raw message for anything
// upstream. Raw passthrough is deliberate for this single-admin tool.
func (s *Server) errorResponse(ctx context.Context, err error, fields logrus.Fields) *jsonResponse {
	status := stdhttp.StatusInternalServerError
	message := err.Error()

	switch {
	case eris.Is(err, admin.ErrUnauthorized):
		status = stdhttp.StatusUnauthorized
		message = eris.Cause(err).Error()
	case admin.IsBadRequest(err):
		status = stdhttp.StatusBadRequest
		message = eris.Cause(err).Error()
	}

	if status == stdhttp.StatusInternalServerError {
		s.recordError(ctx, err, "admin request failed", fields)
	}

	return newErrorResponse(status, message)
}

func newErrorResponse(status int, message string) *jsonResponse {
	body, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		body = []byte(errorFallbackBody)
	}

	return &jsonResponse{Status: status, ContentType: jsonContentType, Body: body}
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func jsonOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					jsonContentType: {
						Schema: &huma.Schema{Type: "object"},
					},
				},
			}
		}
	}
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
