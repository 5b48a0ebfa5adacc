package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docslice/internal/batch"
)

type staticProgress batch.Progress

func (s staticProgress) Progress() batch.Progress { return batch.Progress(s) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_Health(t *testing.T) {
	s := NewServer(nil, quietLogger())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Progress(t *testing.T) {
	src := staticProgress{
		RunID:          "run-7",
		FilesTotal:     3,
		FilesDone:      2,
		Current:        "c.docx",
		ParagraphsRead: 41,
		Counts:         batch.Result{Succeeded: 1, Unsupported: 1},
	}
	s := NewServer(src, quietLogger())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/progress", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got batch.Progress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-7", got.RunID)
	assert.Equal(t, 2, got.FilesDone)
	assert.Equal(t, "c.docx", got.Current)
	assert.Equal(t, int64(41), got.ParagraphsRead)
	assert.Equal(t, 1, got.Counts.Unsupported)
	assert.False(t, got.Finished)
}

func TestServer_ProgressWithoutRun(t *testing.T) {
	s := NewServer(nil, quietLogger())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/progress", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"no run in progress"}`, rec.Body.String())
}

func TestServer_UnknownRoute(t *testing.T) {
	s := NewServer(nil, quietLogger())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/progress", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(staticProgress{RunID: "live"}, quietLogger())
	addr, err := s.Start(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/api/progress")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}
