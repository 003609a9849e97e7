package motion

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/handik/internal/scene"
)

// ErrStreamEnded is reported when the backend closes the event stream.
var ErrStreamEnded = errors.New("motion stream ended by server")

const maxEventSize = 1 << 20

// Event is one pose message from the stream.
type Event struct {
	Pose scene.PoseUpdate
}

// Stream is an open /stream_motion subscription. Events closes when the
// stream ends; Err then reports why. There is no reconnect.
type Stream struct {
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc
	logger *zap.Logger

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

// Subscribe opens the event stream. It returns once the backend has
// answered; events are then read in the background until ctx is cancelled,
// Close is called, or the stream fails.
func (c *Client) Subscribe(ctx context.Context) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	req, err := c.newRequest(ctx, http.MethodGet, "/stream_motion", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		serr := statusError("/stream_motion", resp)
		_ = resp.Body.Close()
		cancel()
		return nil, serr
	}

	s := &Stream{
		events: make(chan Event, 16),
		done:   make(chan struct{}),
		cancel: cancel,
		logger: c.logger,
	}
	go s.read(ctx, resp.Body)
	c.logger.Debug("motion stream opened", zap.String("base_url", c.BaseURL()))
	return s, nil
}

// Events delivers poses in arrival order.
func (s *Stream) Events() <-chan Event { return s.events }

// Done closes when the reader has stopped.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Err returns the error that ended the stream, or nil when it was closed by
// the caller or is still running.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the stream and waits for the reader to exit. Calling it again
// is a no-op.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
	return nil
}

func (s *Stream) read(ctx context.Context, body io.ReadCloser) {
	defer close(s.done)
	defer close(s.events)
	defer func() { _ = body.Close() }()

	err := parseEvents(body, func(data string) error {
		var env poseEnvelope
		if err := json.Unmarshal([]byte(data), &env); err != nil {
			s.logger.Warn("skipping malformed motion event", zap.Error(err))
			return nil
		}
		if env.Pose == nil {
			return nil
		}
		select {
		case s.events <- Event{Pose: env.Pose}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		err = ErrStreamEnded
	}
	s.logger.Debug("motion stream failed", zap.Error(err))
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// parseEvents reads text/event-stream framing and calls dispatch with the
// data of each complete event. Data lines of one event are joined with
// newlines. Comments and non-data fields are skipped, as are blank payloads.
// An event cut off by the end of input is dropped. It returns nil at end of
// input.
func parseEvents(r io.Reader, dispatch func(data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxEventSize)

	var data strings.Builder
	hasData := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if hasData && strings.TrimSpace(data.String()) != "" {
				if err := dispatch(data.String()); err != nil {
					return err
				}
			}
			data.Reset()
			hasData = false
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		if field != "data" {
			continue
		}
		if hasData {
			data.WriteByte('\n')
		}
		data.WriteString(value)
		hasData = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
