// Package fakebackend serves a canned stand-in for the hand validation / IK
// service. Tests mount it on httptest servers and cmd/fakebackend runs it
// locally so robotviz can be driven without the real solver.
package fakebackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Recorded captures one request seen by the backend.
type Recorded struct {
	Method  string
	Path    string
	Header  http.Header
	Body    []byte
	Created time.Time
}

// Backend holds the canned behaviour. Zero values give a healthy service that
// accepts every hand and streams a generated waving motion forever.
type Backend struct {
	// HealthCode and HealthBody override the /health reply.
	HealthCode int
	HealthBody string

	// ValidateCode and ValidateBody override the /validate reply. An empty
	// body answers hand requests with every hand valid and pose requests with
	// the posted pose echoed back.
	ValidateCode int
	ValidateBody string
	// ValidateDelay holds the /validate reply back.
	ValidateDelay time.Duration

	// StreamEvents are sent verbatim as `data:` payloads. When empty the
	// stream generates poses until the client leaves.
	StreamEvents []string
	// StreamRaw, when set, is written as the whole stream body instead.
	StreamRaw string
	// StreamInterval spaces generated and canned events.
	StreamInterval time.Duration
	// StreamHold keeps the connection open after canned events are sent.
	StreamHold bool
	// StreamCode overrides the /stream_motion status code.
	StreamCode int

	mu       sync.Mutex
	requests []Recorded
}

// Handler returns the chi router serving the backend endpoints.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)

	r.Get("/health", b.health)
	r.Post("/validate", b.validate)
	r.Get("/stream_motion", b.stream)
	return r
}

// Requests returns a copy of every recorded request.
func (b *Backend) Requests() []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Recorded, len(b.requests))
	copy(out, b.requests)
	return out
}

// Last returns the most recent request for path.
func (b *Backend) Last(path string) (Recorded, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Path == path {
			return b.requests[i], true
		}
	}
	return Recorded{}, false
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			_ = r.Body.Close()
		}
		b.mu.Lock()
		b.requests = append(b.requests, Recorded{
			Method:  r.Method,
			Path:    r.URL.Path,
			Header:  r.Header.Clone(),
			Body:    body,
			Created: time.Now(),
		})
		b.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) health(w http.ResponseWriter, r *http.Request) {
	code := b.HealthCode
	if code == 0 {
		code = http.StatusOK
	}
	body := b.HealthBody
	if body == "" {
		body = `{"status":"healthy"}`
	}
	writeRaw(w, code, body)
}

func (b *Backend) validate(w http.ResponseWriter, r *http.Request) {
	if b.ValidateDelay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(b.ValidateDelay):
		}
	}
	code := b.ValidateCode
	if code == 0 {
		code = http.StatusOK
	}
	if b.ValidateBody != "" {
		writeRaw(w, code, b.ValidateBody)
		return
	}

	var payload struct {
		Hands map[string]json.RawMessage `json:"hands"`
		Pose  json.RawMessage            `json:"pose"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Request must be JSON"})
		return
	}
	if len(payload.Pose) > 0 {
		writeJSON(w, code, map[string]json.RawMessage{"pose": payload.Pose})
		return
	}
	results := make(map[string]any, len(payload.Hands))
	for label := range payload.Hands {
		results[label] = map[string]any{"is_valid": true, "violations": []string{}}
	}
	writeJSON(w, code, map[string]any{
		"validation_results": results,
		"overall_valid":      true,
	})
}

func (b *Backend) stream(w http.ResponseWriter, r *http.Request) {
	if b.StreamCode != 0 && b.StreamCode != http.StatusOK {
		http.Error(w, "stream unavailable", b.StreamCode)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if b.StreamRaw != "" {
		_, _ = io.WriteString(w, b.StreamRaw)
		flusher.Flush()
		b.holdOrReturn(r)
		return
	}

	interval := b.StreamInterval
	if len(b.StreamEvents) > 0 {
		for _, event := range b.StreamEvents {
			if !sleepCtx(r, interval) {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
		b.holdOrReturn(r)
		return
	}

	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	started := time.Now()
	for {
		if !sleepCtx(r, interval) {
			return
		}
		_, _ = fmt.Fprintf(w, "data: %s\n\n", wavePose(time.Since(started)))
		flusher.Flush()
	}
}

func (b *Backend) holdOrReturn(r *http.Request) {
	if b.StreamHold {
		<-r.Context().Done()
	}
}

// wavePose swings both arms and nods the head.
func wavePose(elapsed time.Duration) string {
	t := elapsed.Seconds()
	swing := 45 * math.Sin(t*2)
	nod := 15 * math.Sin(t*3)
	return fmt.Sprintf(`{"pose":{"leftArm":{"z":%.2f},"rightArm":{"z":%.2f},"head":{"x":%.2f},"leftLeg":{"x":%.2f},"rightLeg":{"x":%.2f}}}`,
		-45+swing, 45-swing, nod, swing/3, -swing/3)
}

func sleepCtx(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return r.Context().Err() == nil
	}
	select {
	case <-r.Context().Done():
		return false
	case <-time.After(d):
		return true
	}
}

func writeRaw(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
