package motion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/handik/internal/handik"
	"github.com/five82/handik/internal/scene"
)

const (
	// DefaultBaseURL is the pose backend the visualizer ships with.
	DefaultBaseURL = "http://192.168.154.196:5005"

	// SourceLabel identifies visualizer requests in the provenance header.
	SourceLabel = "web-visualizer"

	headerTimeout   = 30 * time.Second
	validateTimeout = 300 * time.Second
	maxErrorBody    = 64 << 10
)

// Client talks to the pose backend.
type Client struct {
	baseURL *url.URL
	// http has a whole-exchange timeout; stream does not, event streams are
	// open ended.
	http   *http.Client
	stream *http.Client
	logger *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient uses hc for both validation and streaming.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
			c.stream = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a Client for baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := handik.ParseBaseURL(baseURL, DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   headerTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: headerTimeout,
		IdleConnTimeout:       90 * time.Second,
	}
	c := &Client{
		baseURL: base,
		http:    &http.Client{Transport: transport, Timeout: validateTimeout},
		stream:  &http.Client{Transport: transport},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised backend address.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// examplePose is the fixed request body of a one-shot validation.
func examplePose() scene.PoseUpdate {
	return scene.PoseUpdate{
		scene.PartLeftArm:  scene.Euler(0, 0, -45),
		scene.PartRightArm: scene.Euler(0, 0, 45),
	}
}

type poseEnvelope struct {
	Pose scene.PoseUpdate `json:"pose"`
}

// ValidatePose posts the example pose and returns the backend's answer. A
// reply without a pose yields a nil update, which callers apply as the
// resting pose.
func (c *Client) ValidatePose(ctx context.Context) (scene.PoseUpdate, error) {
	body, err := json.Marshal(poseEnvelope{Pose: examplePose()})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/validate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(handik.SourceHeader, SourceLabel)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("pose validation failed", zap.Error(err))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("/validate", resp)
	}
	var reply poseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug("pose validated",
		zap.Int("joints", len(reply.Pose)),
		zap.Duration("elapsed", time.Since(started)))
	return reply.Pose, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func statusError(endpoint string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return handik.StatusErrorFrom(endpoint, resp.StatusCode, data)
}
