// Package app is the composition root for robotviz.
//
// Run loads ~/.config/handik/config.toml and the user's prefs. It then builds
// a JSON zap logger writing to the configured log file, since the terminal
// belongs to the UI. Next it creates a handik.Client for health checks and a
// motion.Client for validation and streaming, starts the health poller, and
// blocks in ui.Run.
//
// The poller checks /health right away and then on the configured interval.
// Consecutive failures double the wait up to 30 seconds. Two failures in a
// row mark the backend OFFLINE in the header.
//
// When metrics_addr is set, a chi router serves the Prometheus registry on
// /metrics until the context is cancelled.
package app
