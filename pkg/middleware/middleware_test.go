package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"condobook/pkg/logger"
	"condobook/pkg/model"
)

type stubParser struct {
	identities map[string]model.Identity
}

func (p stubParser) Parse(token string) (model.Identity, error) {
	if id, ok := p.identities[token]; ok {
		return id, nil
	}
	return model.Identity{}, errors.New("bad token")
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	parser := stubParser{identities: map[string]model.Identity{
		"good": {ID: "user-1", Role: model.RoleResident},
	}}

	var seen model.Identity
	handler := Authenticate(parser, logger.Nop(), "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantID     string
	}{
		{"valid token", "/api/v1/bookings", "Bearer good", http.StatusOK, "user-1"},
		{"missing header", "/api/v1/bookings", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/v1/bookings", "Basic good", http.StatusUnauthorized, ""},
		{"unknown token", "/api/v1/bookings", "Bearer bad", http.StatusUnauthorized, ""},
		{"public path", "/health", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = model.Identity{}
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen.ID != tt.wantID {
				t.Errorf("identity = %q, want %q", seen.ID, tt.wantID)
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, nil, logger.Nop())
	defer rl.Stop()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("user:a") || !rl.Allow("user:a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("user:a") {
		t.Error("third request inside the window should be limited")
	}
	if !rl.Allow("user:b") {
		t.Error("another caller must have its own bucket")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("user:a") {
		t.Error("request after the window should pass")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, nil, logger.Nop())
	defer rl.Stop()

	handler := RateLimit(rl)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), model.Identity{ID: "user-1", Role: model.RoleResident}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestIdempotency_ScopedPerUser(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, strings.Repeat("x", int(n)))
	}))

	send := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "abc")
		req = req.WithContext(WithIdentity(req.Context(), model.Identity{ID: user, Role: model.RoleResident}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send("user-1")
	replay := send("user-1")
	other := send("user-2")

	if calls.Load() != 2 {
		t.Errorf("handler called %d times, want 2", calls.Load())
	}
	if replay.Code != http.StatusCreated || replay.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %q, want %d %q", replay.Code, replay.Body.String(), first.Code, first.Body.String())
	}
	if replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("replayed response not marked")
	}
	if other.Body.String() == first.Body.String() {
		t.Error("second user received the first user's cached response")
	}
}

func TestIdempotency_FailuresNotCached(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set("Idempotency-Key", "k")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("handler called %d times, want 2", calls.Load())
	}
}

func TestIdempotency_ConcurrentDuplicateRejected(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	entered := make(chan struct{})
	release := make(chan struct{})
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusCreated)
	}))

	newRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(IdempotencyHeader, "dup")
		return req
	}

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(first, newRequest())
	}()
	<-entered

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, newRequest())
	if second.Code != http.StatusConflict {
		t.Errorf("concurrent duplicate status = %d, want 409", second.Code)
	}

	close(release)
	<-done
	if first.Code != http.StatusCreated {
		t.Errorf("first status = %d, want 201", first.Code)
	}

	third := httptest.NewRecorder()
	handler.ServeHTTP(third, newRequest())
	if third.Code != http.StatusCreated || third.Header().Get(ReplayedHeader) != "true" {
		t.Errorf("after completion = %d replayed=%q, want cached 201", third.Code, third.Header().Get(ReplayedHeader))
	}
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set("a", &CachedResponse{StatusCode: http.StatusCreated})
	store.Set("b", &CachedResponse{StatusCode: http.StatusCreated})
	if _, ok := store.Get("a"); !ok {
		t.Fatal("fresh entry missing")
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get("a"); ok {
		t.Error("entry served after its ttl")
	}
	store.sweep()
	if len(store.entries) != 0 {
		t.Errorf("sweep left %d entries", len(store.entries))
	}
}

func TestIdempotency_SafeMethodsBypass(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	handler := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("handler called %d times, want 2", calls.Load())
	}
}

func TestContentTypeValidation(t *testing.T) {
	handler := ContentTypeValidation(logger.Nop())(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{"json post", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"text post", http.MethodPost, `{}`, "text/plain", http.StatusUnsupportedMediaType},
		{"empty post", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	handler := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	if rec.Code != http.StatusOK {
		t.Errorf("small body status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large a body")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d, want 413", rec.Code)
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRequestTimeout(t *testing.T) {
	handler := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-123" || rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("request id = %q / %q, want req-123", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 32 {
		t.Errorf("generated request id = %q, want 32 hex chars", seen)
	}
}
