package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/trackdash/pkg/cache"
	"github.com/matzehuels/trackdash/pkg/errors"
	"github.com/matzehuels/trackdash/pkg/pipeline"
)

const samplePath = "../dataset/testdata/spotify_songs_sample.csv"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, nil)
	s, err := New(context.Background(), runner, pipeline.Options{Source: samplePath})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		target      string
		status      int
		contentType string
		contains    string
	}{
		{"/", http.StatusOK, "text/html", "Dataset Overview"},
		{"/?tab=seasons", http.StatusOK, "text/html", `src="/tabs/seasons"`},
		{"/?tab=audio&genres=pop,rock", http.StatusOK, "text/html", "genres=pop&amp;genres=rock"},
		{"/?tab=nope", http.StatusNotFound, "application/json", "TAB_NOT_FOUND"},
		{"/tabs/overview", http.StatusOK, "text/html", "echarts"},
		{"/tabs/seasons?color=subgenre", http.StatusOK, "text/html", "echarts"},
		{"/tabs/genres?genre=rock", http.StatusOK, "text/html", "echarts"},
		{"/tabs/genres?genre=polka", http.StatusBadRequest, "application/json", "INVALID_GENRE"},
		{"/tabs/seasons?color=artist", http.StatusBadRequest, "application/json", "INVALID_INPUT"},
		{"/tabs/missing", http.StatusNotFound, "application/json", "TAB_NOT_FOUND"},
		{"/api/charts/decades", http.StatusOK, "application/json", "series"},
		{"/api/charts/pie", http.StatusBadRequest, "application/json", "INVALID_CHART"},
		{"/api/positions", http.StatusOK, "application/json", `"positions"`},
		{"/api/kpis", http.StatusOK, "application/json", "total_songs"},
		{"/healthz", http.StatusOK, "application/json", `"status":"ok"`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, h, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := get(t, h, "/healthz")
	id := rec.Header().Get(HeaderRequestID)
	if len(id) != 36 {
		t.Errorf("generated request id = %q", id)
	}

	const given = "0b6f2a56-1c1e-4f4e-9d8a-3f0d2c8b7a11"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, given)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != given {
		t.Errorf("request id = %q, want %q", got, given)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got == "not-a-uuid" {
		t.Error("invalid request id should be replaced")
	}
}

func TestErrorBody(t *testing.T) {
	rec := get(t, newTestServer(t).Handler(), "/api/charts/pie")
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != errors.ErrCodeInvalidChart || body.RequestID == "" || body.Error == "" {
		t.Errorf("error body = %+v", body)
	}
}

func TestPositionsCached(t *testing.T) {
	h := newTestServer(t).Handler()
	if got := get(t, h, "/api/positions").Header().Get(HeaderCache); got != "miss" {
		t.Errorf("first X-Cache = %q, want miss", got)
	}
	if got := get(t, h, "/api/positions").Header().Get(HeaderCache); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
}

func TestKPIs(t *testing.T) {
	s := newTestServer(t)
	rec := get(t, s.Handler(), "/api/kpis")
	var got pipeline.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.KPIs.Songs != s.data.Len() || got.DatasetHash != s.data.Hash() {
		t.Errorf("kpis = %+v", got)
	}
}

func TestNewMissingDataset(t *testing.T) {
	_, err := New(context.Background(), pipeline.NewRunner(nil, nil, nil), pipeline.Options{Source: "nope.csv"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
