package urdf

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// maxDocumentSize caps a URDF fetched over HTTP.
const maxDocumentSize = 16 << 20

// IsURL reports whether source names an http or https document.
func IsURL(source string) bool {
	s := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads a URDF from a file path or an http(s) URL.
func Load(ctx context.Context, source string) (*Robot, error) {
	if IsURL(source) {
		return LoadURL(ctx, http.DefaultClient, strings.TrimSpace(source))
	}
	return LoadFile(source)
}

// LoadFile parses the URDF document at path.
func LoadFile(path string) (*Robot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// LoadURL fetches and parses the URDF document at rawURL. Any status other
// than 200 is an error.
func LoadURL(ctx context.Context, client *http.Client, rawURL string) (*Robot, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch urdf: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch urdf: %s", resp.Status)
	}
	return Parse(io.LimitReader(resp.Body, maxDocumentSize))
}
