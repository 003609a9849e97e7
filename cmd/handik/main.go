package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/five82/handik/internal/config"
	"github.com/five82/handik/internal/handik"
	"github.com/five82/handik/internal/logging"
)

// samplePoints is the wrist-to-tip thumb chain of a tracked left hand.
var samplePoints = []handik.JointSample{
	{ID: 0, Name: "handWrist", X: 0.1, Y: 0.2, Z: 0.3},
	{ID: 1, Name: "handThumbKnuckle", X: 0.15, Y: 0.25, Z: 0.35},
	{ID: 2, Name: "handThumbIntermediateBase", X: 0.2, Y: 0.3, Z: 0.4},
	{ID: 3, Name: "handThumbIntermediateTip", X: 0.25, Y: 0.35, Z: 0.45},
	{ID: 4, Name: "handThumbTip", X: 0.3, Y: 0.4, Z: 0.5},
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override handik config path (optional)")
	baseURL := flag.String("base", "", "validation service URL (defaults to config validation_url)")
	source := flag.String("source", "example.json", "provenance label sent with the request")
	timeout := flag.Duration("timeout", handik.TransferTimeout, "overall deadline for both requests")
	verbose := flag.Bool("v", false, "log requests to stderr")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: logging.FormatConsole})
	if err != nil {
		fmt.Fprintf(os.Stderr, "handik: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", zap.Error(err))
		return 1
	}
	if *baseURL != "" {
		cfg.ValidationURL = *baseURL
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	client, err := handik.NewClient(cfg.ValidationURL, handik.WithLogger(logger))
	if err != nil {
		fmt.Println("Error:", err)
		return 1
	}

	started := time.Now()
	healthy, err := client.CheckHealth(ctx)
	if err != nil {
		fmt.Println("Error:", err)
		return 1
	}
	printHealth(os.Stdout, healthy)

	report, err := client.ValidateHand(ctx, samplePoints, *source)
	if err != nil {
		fmt.Println("Error:", err)
		return 1
	}
	printReport(os.Stdout, report)
	logger.Debug("example finished", zap.Duration("elapsed", time.Since(started)))
	return 0
}

func printHealth(w io.Writer, healthy bool) {
	status := "Unhealthy"
	if healthy {
		status = "Healthy"
	}
	fmt.Fprintln(w, "Server health:", status)
}

func printReport(w io.Writer, report *handik.ValidationReport) {
	fmt.Fprintln(w, "\nValidation Results:")
	fmt.Fprintln(w, "Overall valid:", report.OverallValid)

	left, ok := report.Outcome(handik.DefaultHandLabel)
	if !ok {
		return
	}
	fmt.Fprintln(w, "\nLeft Hand:")
	fmt.Fprintln(w, "Valid:", left.IsValid)
	fmt.Fprintf(w, "Violations: %q\n", left.Violations)

	if left.IKResult == nil {
		return
	}
	fmt.Fprintln(w, "\nIK Results:")
	if left.IKResult.Thumb != nil {
		fmt.Fprintln(w, "Thumb angles:", left.IKResult.Thumb)
	}
	if left.IKResult.PlotPath != nil {
		fmt.Fprintln(w, "Plot saved to:", *left.IKResult.PlotPath)
	}
}
