package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the endpoints and local paths the handik tools use.
type Config struct {
	ValidationURL string
	VisualizerURL string
	LogPath       string
	LogLevel      string
	HealthPoll    time.Duration
	// MetricsAddr enables a Prometheus /metrics listener when non-empty.
	MetricsAddr string
}

const (
	defaultConfigPath     = "~/.config/handik/config.toml"
	defaultValidationURL  = "http://192.168.154.196:5001"
	defaultVisualizerURL  = "http://192.168.154.196:5005"
	defaultLogPath        = "~/.local/share/handik/robotviz.log"
	defaultLogLevel       = "info"
	defaultHealthPollSecs = 5
)

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		ValidationURL: defaultValidationURL,
		VisualizerURL: defaultVisualizerURL,
		LogPath:       mustExpand(defaultLogPath),
		LogLevel:      defaultLogLevel,
		HealthPoll:    defaultHealthPollSecs * time.Second,
	}
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields Default().
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ValidationURL     string `toml:"validation_url"`
		VisualizerURL     string `toml:"visualizer_url"`
		LogPath           string `toml:"log_path"`
		LogLevel          string `toml:"log_level"`
		HealthPollSeconds int    `toml:"health_poll_seconds"`
		MetricsAddr       string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ValidationURL); v != "" {
		cfg.ValidationURL = v
	}
	if v := strings.TrimSpace(raw.VisualizerURL); v != "" {
		cfg.VisualizerURL = v
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.HealthPollSeconds > 0 {
		cfg.HealthPoll = time.Duration(raw.HealthPollSeconds) * time.Second
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
