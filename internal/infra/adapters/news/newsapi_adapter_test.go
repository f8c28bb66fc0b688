// File: internal/infra/adapters/news/newsapi_adapter_test.go
package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const sampleBody = `{
  "status": "ok",
  "totalResults": 3,
  "articles": [
    {"source": {"name": "Wire"}, "title": "Bitcoin hits record", "description": "up again", "url": "https://example.com/1", "publishedAt": "2026-08-29T10:00:00Z"},
    {"source": {"name": "Desk"}, "title": "", "description": "no title, must be skipped", "url": "https://example.com/2"},
    {"source": {"name": "Desk"}, "title": "Miners expand", "url": "https://example.com/3", "publishedAt": "2026-08-29T09:00:00Z"}
  ]
}`

func newTestServer(t *testing.T, hits *int32, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/v2/everything" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("apiKey = %q", r.URL.Query().Get("apiKey"))
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchEverythingParsesResponse(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, sampleBody, http.StatusOK)
	defer srv.Close()

	a, err := NewNewsAPIAdapter("test-key", srv.URL, time.Minute)
	if err != nil {
		t.Fatalf("NewNewsAPIAdapter: %v", err)
	}

	arts, err := a.FetchEverything(context.Background(), "bitcoin", 5)
	if err != nil {
		t.Fatalf("FetchEverything: %v", err)
	}
	if len(arts) != 2 {
		t.Fatalf("articles = %d, want 2 (empty title skipped)", len(arts))
	}
	if arts[0].Title != "Bitcoin hits record" || arts[0].Source != "Wire" {
		t.Fatalf("first article = %+v", arts[0])
	}
	if arts[0].PublishedAt.IsZero() {
		t.Fatal("publishedAt not parsed")
	}
}

func TestFetchEverythingCachesWithinTTL(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, sampleBody, http.StatusOK)
	defer srv.Close()

	a, err := NewNewsAPIAdapter("test-key", srv.URL, time.Minute)
	if err != nil {
		t.Fatalf("NewNewsAPIAdapter: %v", err)
	}

	now := time.Now()
	a.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := a.FetchEverything(context.Background(), "Bitcoin", 5); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("upstream hits = %d, want 1 (cached)", got)
	}

	// Past the TTL a fresh fetch goes upstream again.
	now = now.Add(2 * time.Minute)
	if _, err := a.FetchEverything(context.Background(), "bitcoin", 5); err != nil {
		t.Fatalf("fetch after ttl: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("upstream hits = %d, want 2", got)
	}
}

func TestFetchEverythingDistinctLimitsNotShared(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, sampleBody, http.StatusOK)
	defer srv.Close()

	a, err := NewNewsAPIAdapter("test-key", srv.URL, time.Minute)
	if err != nil {
		t.Fatalf("NewNewsAPIAdapter: %v", err)
	}

	if _, err := a.FetchEverything(context.Background(), "bitcoin", 5); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := a.FetchEverything(context.Background(), "bitcoin", 10); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("upstream hits = %d, want 2 (different limits)", got)
	}
}

func TestFetchEverythingHTTPError(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, `{"status":"error"}`, http.StatusUnauthorized)
	defer srv.Close()

	a, err := NewNewsAPIAdapter("test-key", srv.URL, time.Minute)
	if err != nil {
		t.Fatalf("NewNewsAPIAdapter: %v", err)
	}
	if _, err := a.FetchEverything(context.Background(), "bitcoin", 5); err == nil {
		t.Fatal("expected error on http 401")
	}
}

func TestFetchEverythingBadStatusField(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits, `{"status":"error","articles":[]}`, http.StatusOK)
	defer srv.Close()

	a, err := NewNewsAPIAdapter("test-key", srv.URL, time.Minute)
	if err != nil {
		t.Fatalf("NewNewsAPIAdapter: %v", err)
	}
	if _, err := a.FetchEverything(context.Background(), "bitcoin", 5); err == nil {
		t.Fatal(`expected error on status != "ok"`)
	}
}

func TestFetchEverythingEmptyQuery(t *testing.T) {
	a, err := NewNewsAPIAdapter("test-key", "https://newsapi.org", time.Minute)
	if err != nil {
		t.Fatalf("NewNewsAPIAdapter: %v", err)
	}
	if _, err := a.FetchEverything(context.Background(), "  ", 5); err == nil {
		t.Fatal("expected error on empty query")
	}
}
