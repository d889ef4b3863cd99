package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/kv"
)

func newKeyedRequest(path, body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
}

func TestRouteMatches(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		ok     bool
	}{
		{"checkout", http.MethodPost, "/api/v1/cart/checkout", true},
		{"add item", http.MethodPost, "/api/v1/cart/items", true},
		{"review", http.MethodPost, "/api/v1/reviews/Rose Perfume", true},
		{"toggle", http.MethodPost, "/api/v1/wishlist/toggle", false},
		{"read cart", http.MethodGet, "/api/v1/cart/checkout", false},
		{"empty", http.MethodPost, "", false},
	}

	for _, tt := range tests {
		if ok := routeMatches(tt.method, tt.path); ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
	}
}

func TestIdempotencyMiddlewarePassesThroughWithoutHeader(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "", time.Hour, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for range 2 {
		req := newKeyedRequest("/api/v1/cart/checkout", `{"payment_method":"card"}`)
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected both requests to reach the handler, got %d", calls)
	}
	if len(store.Keys()) != 0 {
		t.Fatalf("expected nothing recorded, got %v", store.Keys())
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "", time.Hour, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := newKeyedRequest("/api/v1/cart/checkout", `{"payment_method":"card"}`)
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", resp.Code)
	}

	replay := newKeyedRequest("/api/v1/cart/checkout", `{"payment_method":"card"}`)
	replay.Header.Set("Idempotency-Key", "abc")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" || rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay headers, got %v", rec.Header())
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("expected stored body got %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "", time.Hour, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := newKeyedRequest("/api/v1/cart/items", `{"name":"a"}`)
	req.Header.Set("Idempotency-Key", "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := newKeyedRequest("/api/v1/cart/items", `{"name":"b"}`)
	replay.Header.Set("Idempotency-Key", "xyz")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeIdempotency, payload.Error.Code)
	}
}

func TestIdempotencyMiddlewareExpiredRecordRunsAgain(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "", 20*time.Millisecond, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for range 2 {
		req := newKeyedRequest("/api/v1/cart/items", `{}`)
		req.Header.Set("Idempotency-Key", "old")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
		time.Sleep(40 * time.Millisecond)
	}
	if calls != 2 {
		t.Fatalf("expected expired record to be ignored, got %d calls", calls)
	}
	if dropped, err := store.DeleteExpired(context.Background()); err != nil || dropped != 1 {
		t.Fatalf("expected the expired record to be swept, got %d err=%v", dropped, err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected no records after sweep, got %d", store.Len())
	}
}

func TestIdempotencyMiddlewareRejectsConcurrentDuplicate(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "", time.Hour, nil)
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		close(entered)
		<-release
		w.WriteHeader(http.StatusCreated)
	})

	first := httptest.NewRecorder()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := newKeyedRequest("/api/v1/cart/checkout", `{"payment_method":"card"}`)
		req.Header.Set("Idempotency-Key", "dup")
		mw(handler).ServeHTTP(first, req)
	}()
	<-entered

	dup := newKeyedRequest("/api/v1/cart/checkout", `{"payment_method":"card"}`)
	dup.Header.Set("Idempotency-Key", "dup")
	second := httptest.NewRecorder()
	mw(handler).ServeHTTP(second, dup)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 while the first request runs, got %d", second.Code)
	}

	close(release)
	wg.Wait()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}

	replay := newKeyedRequest("/api/v1/cart/checkout", `{"payment_method":"card"}`)
	replay.Header.Set("Idempotency-Key", "dup")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)
	if rec.Code != http.StatusCreated || rec.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay after completion, got %d %v", rec.Code, rec.Header())
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("handler executed %d times, expected 1", n)
	}
}

func TestIdempotencyMiddlewareNamespacesHashedKeys(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "shop", time.Hour, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	longKey := strings.Repeat("k", maxIdempotencyKeyLength)
	req := newKeyedRequest("/api/v1/cart/items", `{}`)
	req.Header.Set("Idempotency-Key", longKey)
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	keys := store.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one record, got %v", keys)
	}
	if !strings.HasPrefix(keys[0], "shop:idempotency:") || strings.Contains(keys[0], longKey) {
		t.Fatalf("expected a namespaced hashed key, got %q", keys[0])
	}
	if len(keys[0]) > 255 {
		t.Fatalf("stored key exceeds the column width: %d", len(keys[0]))
	}
}

func TestIdempotencyMiddlewareRejectsOversizedKey(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "", time.Hour, nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	req := newKeyedRequest("/api/v1/cart/items", `{}`)
	req.Header.Set("Idempotency-Key", strings.Repeat("k", maxIdempotencyKeyLength+1))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if calls != 0 || store.Len() != 0 {
		t.Fatalf("oversized key must not reach the handler or the store")
	}
}

func TestIdempotencyMiddlewareSkipsServerErrors(t *testing.T) {
	store := kv.NewMemory()
	mw := Idempotency(store, "", time.Hour, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	req := newKeyedRequest("/api/v1/cart/checkout", `{}`)
	req.Header.Set("Idempotency-Key", "retry-me")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	if len(store.Keys()) != 0 {
		t.Fatalf("server errors must not be recorded, got %v", store.Keys())
	}
}
