package handik

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validator defines the calls made against the validation service.
// This interface is implemented by *Client and can be used for testing.
type Validator interface {
	CheckHealth(ctx context.Context) (bool, error)
	Validate(ctx context.Context, snapshot HandSnapshot, source string) (*ValidationReport, error)
}

// Ensure Client implements Validator at compile time.
var _ Validator = (*Client)(nil)

// Client talks to the hand validation HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
	metrics   *Metrics
}

const (
	// DefaultBaseURL is the validation service the mobile client ships with.
	DefaultBaseURL = "http://192.168.154.196:5001"

	defaultUserAgent = "handik/0.1"

	// FirstByteTimeout bounds the wait for response headers.
	FirstByteTimeout = 30 * time.Second
	// TransferTimeout bounds the whole exchange; the backend may run a solver.
	TransferTimeout = 300 * time.Second

	maxErrorBody = 64 << 10

	// SourceHeader carries the free-text provenance label.
	SourceHeader    = "X-Source-File"
	requestIDHeader = "X-Request-ID"
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger for per-request debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a Client for baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := ParseBaseURL(baseURL, DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      newHTTPClient(),
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   FirstByteTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: FirstByteTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   TransferTimeout,
	}
}

// BaseURL returns the normalised service address.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL.String()
}

// CheckHealth queries /health. It returns false with a nil error when the
// service answered but did not report "healthy"; an unreachable service or a
// malformed answer is an error.
func (c *Client) CheckHealth(ctx context.Context) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("client is nil")
	}
	var payload healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &payload); err != nil {
		return false, err
	}
	return payload.Status == "healthy", nil
}

// Validate posts snapshot to /validate. source, when non-empty, is sent as
// the provenance header.
func (c *Client) Validate(ctx context.Context, snapshot HandSnapshot, source string) (*ValidationReport, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	header := http.Header{}
	if source = strings.TrimSpace(source); source != "" {
		header.Set(SourceHeader, source)
	}
	var report ValidationReport
	if err := c.do(ctx, http.MethodPost, "/validate", newValidateRequest(snapshot), header, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ValidateHand validates a single hand sent under DefaultHandLabel.
func (c *Client) ValidateHand(ctx context.Context, points []JointSample, source string) (*ValidationReport, error) {
	return c.Validate(ctx, HandSnapshot{DefaultHandLabel: points}, source)
}

func (c *Client) do(ctx context.Context, method, path string, body any, header http.Header, dest any) (err error) {
	started := time.Now()
	requestID := uuid.NewString()
	defer func() {
		c.metrics.observe(path, started, err)
		if err != nil {
			c.logger.Debug("request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.String("request_id", requestID),
				zap.Duration("elapsed", time.Since(started)),
				zap.Error(err))
			return
		}
		c.logger.Debug("request completed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(started)))
	}()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return StatusErrorFrom(path, resp.StatusCode, data)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// ParseBaseURL normalises a service address: the scheme defaults to http and
// path, query and fragment are dropped. An empty raw uses fallback.
func ParseBaseURL(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
