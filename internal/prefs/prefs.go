// Package prefs persists the visualizer's per-user choices between runs:
// the colour theme, whether the log pane is open, and the URDF sources the
// user has loaded recently. The file lives at ~/.config/handik/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// MaxRecentModels bounds the recent model list.
const MaxRecentModels = 8

// Prefs holds visualizer preferences.
type Prefs struct {
	Theme    string `toml:"theme"`
	ShowLogs bool   `toml:"show_logs"`
	// RecentModels lists URDF paths or URLs, most recent first.
	RecentModels []string `toml:"recent_models,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/handik/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

// LastModel returns the most recently loaded source, or "".
func (p Prefs) LastModel() string {
	if len(p.RecentModels) == 0 {
		return ""
	}
	return p.RecentModels[0]
}

// Remember moves source to the front of the recent list.
func (p *Prefs) Remember(source string) {
	source = strings.TrimSpace(source)
	if source == "" {
		return
	}
	recent := make([]string, 0, len(p.RecentModels)+1)
	recent = append(recent, source)
	for _, s := range p.RecentModels {
		if s != source {
			recent = append(recent, s)
		}
	}
	p.RecentModels = recent
	p.normalize()
}

// normalize trims entries, drops blanks and duplicates, and caps the list.
func (p *Prefs) normalize() {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	recent := p.RecentModels[:0]
	for _, s := range p.RecentModels {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(recent, s) {
			continue
		}
		recent = append(recent, s)
	}
	if len(recent) > MaxRecentModels {
		recent = recent[:MaxRecentModels]
	}
	if len(recent) == 0 {
		recent = nil
	}
	p.RecentModels = recent
}

// Load reads preferences from path. A missing, unreadable or malformed file
// yields Defaults; preferences never block start-up.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults(), nil
	}
	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), nil
	}
	p.normalize()
	return p, nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	p.RecentModels = slices.Clone(p.RecentModels)
	p.normalize()

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(trimmed, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, rest)
	}
	return filepath.Abs(trimmed)
}
