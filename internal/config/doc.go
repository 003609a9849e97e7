// Package config loads the optional handik configuration file.
//
// # Configuration Discovery
//
// Load resolves the file in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/handik/config.toml
//  3. If the file doesn't exist, fall back to compiled-in defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # Default Values
//
//   - validation_url: http://192.168.154.196:5001
//   - visualizer_url: http://192.168.154.196:5005
//   - log_path: ~/.local/share/handik/robotviz.log
//   - log_level: info
//   - health_poll_seconds: 5
//   - metrics_addr: empty (no metrics listener)
//
// # TOML Format
//
//	validation_url = "http://10.0.0.2:5001"
//	visualizer_url = "http://10.0.0.2:5005"
//	log_path = "~/robotviz.log"
//	health_poll_seconds = 10
//	metrics_addr = "127.0.0.1:9464"
//
// Tilde expansion is performed for the config location and log_path.
//
// Missing config files are NOT an error. Invalid TOML is, and the error
// mentions "parse config".
package config
