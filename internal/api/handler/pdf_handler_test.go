package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

type stubPDFService struct {
	processFn func(ctx context.Context, files []*multipart.FileHeader) ([]domain.ProcessingResult, error)
}

func (s *stubPDFService) ProcessFiles(ctx context.Context, files []*multipart.FileHeader) ([]domain.ProcessingResult, error) {
	return s.processFn(ctx, files)
}

type stubFileRegistry struct {
	entries map[string]domain.ProcessedFile
	cleared bool
}

func (r *stubFileRegistry) Add(f domain.ProcessedFile) {
	if r.entries == nil {
		r.entries = make(map[string]domain.ProcessedFile)
	}
	r.entries[f.ID] = f
}

func (r *stubFileRegistry) Get(id string) (domain.ProcessedFile, bool) {
	f, ok := r.entries[id]
	return f, ok
}

func (r *stubFileRegistry) List() []domain.ProcessedFile {
	out := make([]domain.ProcessedFile, 0, len(r.entries))
	for _, f := range r.entries {
		out = append(out, f)
	}
	return out
}

func (r *stubFileRegistry) Clear() {
	r.entries = nil
	r.cleared = true
}

func multipartRequest(t *testing.T, fileNames ...string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range fileNames {
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.7")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/process", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestPDFHandler_Process_MixedResults(t *testing.T) {
	e := newTestEcho()
	svc := &stubPDFService{
		processFn: func(_ context.Context, files []*multipart.FileHeader) ([]domain.ProcessingResult, error) {
			if len(files) != 2 {
				t.Fatalf("expected 2 file headers, got %d", len(files))
			}
			return []domain.ProcessingResult{
				{ID: "1", FileName: files[0].Filename, Success: true},
				{ID: "2", FileName: files[1].Filename, Success: false, Error: "model unavailable"},
			}, nil
		},
	}
	handler := NewPDFHandler(svc, &stubFileRegistry{})

	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, "a.pdf", "b.pdf"), rec)

	if err := handler.Process(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("mixed batches still answer 200, got %d", rec.Code)
	}

	var resp struct {
		Message string                    `json:"message"`
		Results []domain.ProcessingResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Processed 1 files successfully, 1 files failed" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
}

func TestPDFHandler_Process_EmptyBatch(t *testing.T) {
	e := newTestEcho()
	svc := &stubPDFService{
		processFn: func(_ context.Context, files []*multipart.FileHeader) ([]domain.ProcessingResult, error) {
			if len(files) != 0 {
				t.Fatalf("expected no file headers")
			}
			return nil, domain.ErrEmptyBatch
		},
	}
	handler := NewPDFHandler(svc, &stubFileRegistry{})

	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t), rec)

	if err := handler.Process(c); !errors.Is(err, domain.ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
}

func TestPDFHandler_Process_NotMultipart(t *testing.T) {
	e := newTestEcho()
	handler := NewPDFHandler(&stubPDFService{}, &stubFileRegistry{})

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/process", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Process(c)
	if code := httpStatus(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestPDFHandler_Processed(t *testing.T) {
	e := newTestEcho()
	registry := &stubFileRegistry{}
	registry.Add(domain.ProcessedFile{ID: "a", FileName: "a.pdf", ProcessedTime: time.Now()})
	registry.Add(domain.ProcessedFile{ID: "b", FileName: "b.pdf", ProcessedTime: time.Now()})
	handler := NewPDFHandler(&stubPDFService{}, registry)

	req := httptest.NewRequest(http.MethodGet, "/api/pdf/processed", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Processed(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var files []domain.ProcessedFile
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
}

func TestPDFHandler_File_Found(t *testing.T) {
	e := newTestEcho()
	path := filepath.Join(t.TempDir(), "a.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7 body"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	registry := &stubFileRegistry{}
	registry.Add(domain.ProcessedFile{ID: "a", FileName: "report.pdf", FilePath: path})
	handler := NewPDFHandler(&stubPDFService{}, registry)

	req := httptest.NewRequest(http.MethodGet, "/api/pdf/file/a", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("a")

	if err := handler.File(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "%PDF-1.7 body" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestPDFHandler_File_UnknownID(t *testing.T) {
	e := newTestEcho()
	handler := NewPDFHandler(&stubPDFService{}, &stubFileRegistry{})

	req := httptest.NewRequest(http.MethodGet, "/api/pdf/file/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := handler.File(c); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestPDFHandler_File_SweptFromDisk(t *testing.T) {
	e := newTestEcho()
	registry := &stubFileRegistry{}
	registry.Add(domain.ProcessedFile{ID: "a", FileName: "report.pdf", FilePath: "/nonexistent/a.pdf"})
	handler := NewPDFHandler(&stubPDFService{}, registry)

	req := httptest.NewRequest(http.MethodGet, "/api/pdf/file/a", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("a")

	if err := handler.File(c); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestPDFHandler_Clear(t *testing.T) {
	e := newTestEcho()
	registry := &stubFileRegistry{}
	registry.Add(domain.ProcessedFile{ID: "a"})
	handler := NewPDFHandler(&stubPDFService{}, registry)

	req := httptest.NewRequest(http.MethodDelete, "/api/pdf/clear", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Clear(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !registry.cleared {
		t.Fatalf("registry must be cleared")
	}
	if len(registry.List()) != 0 {
		t.Fatalf("expected empty registry")
	}
}
