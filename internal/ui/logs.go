package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/handik/internal/logtail"
)

type logTailMsg struct {
	lines []string
	err   error
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logTailMsg{}
		}
		lines, err := logtail.Read(path, logFetchLimit)
		return logTailMsg{lines: lines, err: err}
	}
}

// handleLogTail renders fetched log lines into the pane, staying pinned to
// the bottom when the user has not scrolled up.
func (m *Model) handleLogTail(msg logTailMsg) {
	m.logErr = msg.err
	if msg.err != nil {
		return
	}
	atBottom := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.logViewport.SetContent(m.formatLogLines(msg.lines))
	if atBottom {
		m.logViewport.GotoBottom()
	}
}

func (m Model) formatLogLines(lines []string) string {
	styles := m.theme.Styles()
	out := make([]string, 0, len(lines))
	for _, e := range logtail.ParseLines(lines) {
		text := logtail.Format(e)
		switch strings.ToUpper(e.Level) {
		case "ERROR", "DPANIC", "PANIC", "FATAL":
			text = styles.DangerText.Render(text)
		case "WARN":
			text = styles.WarningText.Render(text)
		case "DEBUG":
			text = styles.FaintText.Render(text)
		default:
			text = styles.Text.Render(text)
		}
		out = append(out, text)
	}
	return strings.Join(out, "\n")
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Logs")
	if m.logPath != "" {
		title += "  " + styles.FaintText.Render(truncateMiddle(m.logPath, max(m.width-10, 10)))
	}
	body := m.logViewport.View()
	switch {
	case m.logPath == "":
		body = styles.MutedText.Render("No log file configured")
	case m.logErr != nil:
		body = styles.DangerText.Render(m.logErr.Error())
	case m.logViewport.TotalLineCount() == 0:
		body = styles.MutedText.Render("No log lines yet")
	}
	return styles.SurfaceAlt.Width(m.width).Height(logPaneHeight).Render(title + "\n" + body)
}

// truncateMiddle shortens s to limit runes by replacing its middle with an
// ellipsis.
func truncateMiddle(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit || limit < 5 {
		return s
	}
	keep := limit - 1
	head := keep / 2
	tail := keep - head
	return string(r[:head]) + "…" + string(r[len(r)-tail:])
}
