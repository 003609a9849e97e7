package app

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/five82/handik/internal/fakebackend"
	"github.com/five82/handik/internal/handik"
	"github.com/five82/handik/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type stubChecker struct {
	mu      sync.Mutex
	healthy bool
	err     error
	calls   int
}

func (s *stubChecker) CheckHealth(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.healthy, s.err
}

func TestRefresh_RecordsHealthResult(t *testing.T) {
	store := &state.Store{}
	checker := &stubChecker{healthy: true}

	refresh(context.Background(), store, checker, zap.NewNop())
	if got := store.Snapshot().Label(); got != "ONLINE" {
		t.Fatalf("Label = %q, want ONLINE", got)
	}

	checker.err = errors.New("connection refused")
	refresh(context.Background(), store, checker, zap.NewNop())
	refresh(context.Background(), store, checker, zap.NewNop())
	snap := store.Snapshot()
	if snap.ConsecutiveFailures != 2 || snap.Label() != "OFFLINE" {
		t.Fatalf("snapshot = %+v, want OFFLINE after two failures", snap)
	}
}

func TestStartPoller_ChecksImmediately(t *testing.T) {
	srv := httptest.NewServer((&fakebackend.Backend{}).Handler())
	defer srv.Close()

	client, err := handik.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := &state.Store{}
	StartPoller(ctx, store, client, time.Hour, nil)

	deadline := time.Now().Add(2 * time.Second)
	for !store.Snapshot().HasHealth {
		if time.Now().After(deadline) {
			t.Fatalf("poller never recorded health")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !store.Snapshot().Healthy {
		t.Fatalf("snapshot = %+v, want healthy", store.Snapshot())
	}
}

func TestMetricsRouter_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	handik.NewMetrics(reg).Requests.WithLabelValues("/health").Inc()

	srv := httptest.NewServer(MetricsRouter(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `handik_client_requests_total{endpoint="/health"} 1`) {
		t.Fatalf("metrics body missing counter:\n%s", body)
	}
}
