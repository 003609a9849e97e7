// Command fakebackend serves canned /health, /validate and /stream_motion
// endpoints for driving robotviz and handik without the real solver.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/five82/handik/internal/fakebackend"
	"github.com/five82/handik/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:5005", "listen address")
	interval := flag.Duration("interval", 50*time.Millisecond, "spacing of streamed poses")
	delay := flag.Duration("delay", 0, "hold /validate replies back")
	flag.Parse()

	logger, err := logging.New(logging.Options{Format: logging.FormatConsole})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fakebackend: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	backend := &fakebackend.Backend{StreamInterval: *interval, ValidateDelay: *delay}
	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake backend listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", zap.Error(err))
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelShutdown()
		_ = srv.Shutdown(shutdownCtx)
		logger.Info("fake backend stopped")
	}
	return 0
}
