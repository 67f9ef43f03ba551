package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tderrors "github.com/matzehuels/trackdash/pkg/errors"
)

var errFlaky = errors.New("flaky")

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	if err := Retry(ctx, 3, time.Millisecond, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := Retry(ctx, 3, time.Millisecond, func() error { calls++; return errFlaky })
	if err != errFlaky || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return Retryable(errFlaky)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry then succeed: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error { calls++; return Retryable(errFlaky) })
	if !errors.Is(err, errFlaky) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}

	calls = 0
	_ = Retry(ctx, 0, time.Millisecond, func() error { calls++; return Retryable(errFlaky) })
	if calls != 1 {
		t.Errorf("attempts<1 should run once, ran %d", calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error { return Retryable(errFlaky) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryHonoursRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), 2, time.Hour, func() error {
		calls++
		if calls == 1 {
			return RetryAfter(errFlaky, time.Millisecond)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
	if time.Since(start) > time.Minute {
		t.Error("Retry-After hint ignored")
	}
}

func TestRetryAfterHeader(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := retryAfterHeader(h); got != tt.want {
			t.Errorf("retryAfterHeader(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	if !IsRetryable(Retryable(errFlaky)) {
		t.Error("wrapped error should be retryable")
	}
	if IsRetryable(errFlaky) {
		t.Error("plain error should not be retryable")
	}
}

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	ttl  time.Duration
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.ttl = ttl
	return nil
}

func TestClientFetchCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasPrefix(r.UserAgent(), "trackdash/") {
			t.Errorf("User-Agent = %q", r.UserAgent())
		}
		w.Write([]byte("track_id,track_popularity\n"))
	}))
	defer srv.Close()

	store := newMemStore()
	c := NewClient(store, time.Hour)
	ctx := context.Background()

	data, cached, err := c.Fetch(ctx, srv.URL+"/songs.csv")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if cached || string(data) != "track_id,track_popularity\n" {
		t.Errorf("first fetch: cached=%v data=%q", cached, data)
	}
	if store.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", store.ttl)
	}
	if _, ok := store.data["http:csv:"+srv.URL+"/songs.csv"]; !ok {
		t.Errorf("body not stored under default key: %v", store.data)
	}

	_, cached, err = c.Fetch(ctx, srv.URL+"/songs.csv")
	if err != nil || !cached {
		t.Errorf("second fetch: cached=%v err=%v", cached, err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1", hits.Load())
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(nil, 0, WithRetry(3, time.Millisecond))
	data, _, err := c.Fetch(context.Background(), srv.URL)
	if err != nil || string(data) != "ok" {
		t.Fatalf("Fetch() = %q, %v", data, err)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3", hits.Load())
	}
}

func TestClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(nil, 0, WithRetry(2, time.Millisecond))
	tests := []struct {
		url  string
		code tderrors.Code
	}{
		{srv.URL + "/missing", tderrors.ErrCodeNotFound},
		{srv.URL + "/forbidden", tderrors.ErrCodeNetwork},
		{srv.URL + "/boom", tderrors.ErrCodeNetwork},
		{"ftp://example.com/x.csv", tderrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		_, _, err := c.Fetch(context.Background(), tt.url)
		if got := tderrors.GetCode(err); got != tt.code {
			t.Errorf("Fetch(%s) code = %q, want %q (err %v)", tt.url, got, tt.code, err)
		}
	}
}

func TestClientKeyFunc(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	store := newMemStore()
	c := NewClient(store, 0, WithKeyFunc(func(u string) string { return "k" }))
	if _, _, err := c.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.data["k"]; !ok {
		t.Errorf("custom key not used: %v", store.data)
	}
}
