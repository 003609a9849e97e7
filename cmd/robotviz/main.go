package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/handik/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override handik config path (optional)")
	baseURL := flag.String("base", "", "visualizer backend URL (defaults to config visualizer_url)")
	modelPath := flag.String("model", "", "URDF file to load at start (optional)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		BaseURL:    *baseURL,
		ModelPath:  *modelPath,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "robotviz: %v\n", err)
		return 1
	}
	return 0
}
