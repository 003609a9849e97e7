package urdf

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsURL(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"http://robots.local/arm.urdf", true},
		{"HTTPS://robots.local/arm.urdf", true},
		{"  https://robots.local/arm.urdf", true},
		{"/robots/arm.urdf", false},
		{"ftp://robots.local/arm.urdf", false},
		{"httpdocs/arm.urdf", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.source); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestLoad_FetchesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/arm.urdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(armURDF))
	}))
	defer srv.Close()

	r, err := Load(context.Background(), srv.URL+"/arm.urdf")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if r.Name() != "arm" {
		t.Fatalf("Name = %q, want arm", r.Name())
	}

	_, err = LoadURL(context.Background(), srv.Client(), srv.URL+"/missing.urdf")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("LoadURL(missing) error = %v, want 404", err)
	}
}

func TestLoadURL_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(armURDF))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadURL(ctx, srv.Client(), srv.URL); err == nil {
		t.Fatalf("LoadURL with cancelled context returned nil error")
	}
}
