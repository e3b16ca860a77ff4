package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"docsummary/internal/config"
	"docsummary/internal/database"
	"docsummary/internal/server"
)

type stubSummarizer struct {
	summary string
	err     error
	calls   int
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	s.calls++

	return s.summary, s.err
}

func testServer(t *testing.T, summ server.Summarizer) *server.Server {
	t.Helper()

	log := slog.New(slog.DiscardHandler)
	dir := t.TempDir()

	cfg := config.Config{
		ChunkSize:     4000,
		ChunkOverlap:  200,
		MaxBatchSize:  10,
		DBPath:        filepath.Join(dir, "test.sqlite"),
		UploadDir:     dir,
		MaxFileSizeMB: 1,
		MaxPages:      100,
	}

	db, err := database.New(context.Background(), cfg.DBPath, log)
	if err != nil {
		t.Fatalf("failed to initialize test db: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("failed to close test db: %v", closeErr)
		}
	})

	return server.New(cfg, db, summ, log)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err = io.WriteString(part, content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err = writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

func TestUploadSummarizesAndPersists(t *testing.T) {
	summ := &stubSummarizer{summary: "# Summary\n\nThe key points."}
	srv := testServer(t, summ)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "notes.txt", "Some document text."))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID       int64  `json:"id"`
		Filename string `json:"filename"`
		Summary  string `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Filename != "notes.txt" {
		t.Errorf("unexpected filename: %q", resp.Filename)
	}
	if resp.Summary != summ.summary {
		t.Errorf("unexpected summary: %q", resp.Summary)
	}
	if summ.calls != 1 {
		t.Errorf("expected 1 summarize call, got %d", summ.calls)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from history, got %d", rec.Code)
	}

	var history struct {
		Documents []struct {
			Filename string `json:"filename"`
			Summary  string `json:"summary"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}

	if len(history.Documents) != 1 {
		t.Fatalf("expected 1 document in history, got %d", len(history.Documents))
	}
	if history.Documents[0].Filename != "notes.txt" {
		t.Errorf("unexpected filename in history: %q", history.Documents[0].Filename)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	summ := &stubSummarizer{summary: "unused"}
	srv := testServer(t, summ)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "binary.exe", "MZ"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if summ.calls != 0 {
		t.Errorf("expected no summarize calls, got %d", summ.calls)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	summ := &stubSummarizer{summary: "unused"}
	srv := testServer(t, summ)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "big.txt", strings.Repeat("a", 2*1024*1024)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if summ.calls != 0 {
		t.Errorf("expected no summarize calls, got %d", summ.calls)
	}
}

func TestUploadReportsSummarizationFailure(t *testing.T) {
	summ := &stubSummarizer{err: errors.New("provider is down")}
	srv := testServer(t, summ)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "notes.txt", "Some document text."))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))

	var history struct {
		Documents []json.RawMessage `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history.Documents) != 0 {
		t.Errorf("expected failed run to persist nothing, got %d documents", len(history.Documents))
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	srv := testServer(t, &stubSummarizer{summary: "unused"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestGetDocumentRejectsBadID(t *testing.T) {
	srv := testServer(t, &stubSummarizer{summary: "unused"})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/abc", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
