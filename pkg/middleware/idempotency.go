package middleware

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"
)

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	ExpiresAt  time.Time
}

// InMemoryIdempotencyStore keeps replayable responses for one process.
// Expired entries are dropped on read and by a periodic sweep.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]*CachedResponse
	ttl     time.Duration
	now     func() time.Time
	done    chan struct{}
	stop    sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*CachedResponse),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go s.sweepEvery(sweepInterval(ttl))
	return s
}

func sweepInterval(ttl time.Duration) time.Duration {
	switch {
	case ttl < time.Minute:
		return time.Minute
	case ttl > time.Hour:
		return time.Hour
	default:
		return ttl
	}
}

func (s *InMemoryIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.ExpiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return entry, true
}

func (s *InMemoryIdempotencyStore) Set(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.ExpiresAt = s.now().Add(s.ttl)
	s.entries[key] = response
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *InMemoryIdempotencyStore) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stop.Do(func() { close(s.done) })
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key. Keys are scoped to the caller and route, so two users
// cannot collide on the same key. A duplicate that arrives while the first
// request is still running gets 409.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyHeader
	}
	var inflight sync.Map

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := idempotencyKey(r, headerName)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if cached, found := store.Get(key); found {
				replay(w, cached)
				return
			}
			if _, busy := inflight.LoadOrStore(key, struct{}{}); busy {
				writeJSONError(w, http.StatusConflict, "CONFLICT", "A request with this idempotency key is still in progress")
				return
			}
			defer inflight.Delete(key)

			// The first request may have finished between the lookup and the claim.
			if cached, found := store.Get(key); found {
				replay(w, cached)
				return
			}

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				store.Set(key, &CachedResponse{
					StatusCode: rec.status,
					Headers:    w.Header().Clone(),
					Body:       rec.body.Bytes(),
				})
			}
		})
	}
}

func idempotencyKey(r *http.Request, headerName string) (string, bool) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "", false
	}
	key := strings.TrimSpace(r.Header.Get(headerName))
	if key == "" {
		return "", false
	}

	owner := "anonymous"
	if identity, ok := IdentityFromContext(r.Context()); ok {
		owner = identity.ID
	}
	return strings.Join([]string{owner, r.Method, r.URL.Path, key}, "|"), true
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	header := w.Header()
	for name, values := range cached.Headers {
		header[name] = append([]string(nil), values...)
	}
	header.Set(ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	if !rw.wroteHeader {
		rw.status = status
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
