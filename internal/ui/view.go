package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/handik/internal/scene"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	parts := []string{
		m.renderHeader(),
		m.renderStatus(),
		m.renderCanvas(),
	}
	if m.showLogs {
		parts = append(parts, m.renderLogs())
	}
	if m.prompting {
		parts = append(parts, m.renderPrompt())
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader shows the title, backend health, model source, and stream
// badge.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	health := m.snapshot.Label()
	healthColor := m.theme.Muted
	switch health {
	case "ONLINE":
		healthColor = m.theme.Success
	case "UNHEALTHY":
		healthColor = m.theme.Warning
	case "OFFLINE":
		healthColor = m.theme.Danger
	}

	parts := []string{
		styles.Logo.Render("robotviz"),
		styles.BadgeStyle(healthColor).Render(health),
		styles.MutedText.Render(m.modelLabel()),
	}
	if m.streaming {
		parts = append(parts, styles.BadgeStyle(m.theme.Info).Render("LIVE"))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) modelLabel() string {
	switch m.scene.State() {
	case scene.Loading:
		return "loading " + truncateMiddle(m.scene.PendingSource(), 40)
	case scene.ModelActive:
		name := m.scene.Model().Name()
		if name == "" {
			name = truncateMiddle(m.scene.Source(), 40)
		}
		return fmt.Sprintf("%s (%d joints)", name, len(m.scene.Model().JointNames()))
	default:
		return "default figure"
	}
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	style := styles.MutedText
	switch m.statusLevel {
	case levelOK:
		style = styles.SuccessText
	case levelError:
		style = styles.DangerText
	}
	text := m.status
	if text == "" {
		text = "Ready"
	}
	return lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(style.Render(text))
}

// renderCanvas draws the scene frame, styling runs of cells that share a
// layer together.
func (m Model) renderCanvas() string {
	styles := m.theme.Styles()
	frame := m.scene.Render()
	rows := make([]string, frame.Height)
	var b strings.Builder
	for y := 0; y < frame.Height; y++ {
		b.Reset()
		run := make([]rune, 0, frame.Width)
		layer := frame.At(0, y).Layer
		flush := func() {
			if len(run) > 0 {
				b.WriteString(styles.LayerStyle(layer).Render(string(run)))
				run = run[:0]
			}
		}
		for x := 0; x < frame.Width; x++ {
			c := frame.At(x, y)
			if c.Layer != layer {
				flush()
				layer = c.Layer
			}
			run = append(run, c.Rune)
		}
		flush()
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderPrompt() string {
	return m.theme.Styles().SurfaceAlt.Width(m.width).Render(m.input.View())
}

func (m Model) renderFooter() string {
	return m.theme.Styles().Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// modelLoadedText is the status line after a successful load.
func modelLoadedText(msg modelLoadedMsg) string {
	joints := len(msg.model.JointNames())
	if msg.size > 0 {
		return fmt.Sprintf("%s (%s, %d joints)", statusModelLoaded, humanize.Bytes(uint64(msg.size)), joints)
	}
	return fmt.Sprintf("%s (%d joints)", statusModelLoaded, joints)
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{title: "Backend", bindings: m.keys.FullHelp()[0]},
		{title: "Scene", bindings: m.keys.FullHelp()[1]},
		{title: "Camera", bindings: m.keys.FullHelp()[2]},
		{title: "General", bindings: m.keys.FullHelp()[3]},
	}

	var b strings.Builder

	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(40)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title    string
	bindings []key.Binding
}
