package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/handik/internal/motion"
	"github.com/five82/handik/internal/scene"
)

type streamOpenedMsg struct {
	gen    int
	stream *motion.Stream
	err    error
}

type streamEventMsg struct {
	gen  int
	pose scene.PoseUpdate
}

type streamEndedMsg struct {
	gen int
	err error
}

// startMotionStream replaces any running subscription with a new one.
func (m *Model) startMotionStream() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	m.closeStream()
	m.streamGen++
	m.streaming = true
	m.keys.setStreaming(true)
	m.setStatus(levelInfo, statusStreaming)
	m.logger.Info("motion stream starting", zap.Int("generation", m.streamGen))
	return subscribeCmd(m.ctx, m.backend, m.streamGen)
}

// stopMotionStream ends the subscription and returns to the resting pose.
// It does nothing when no stream is running.
func (m *Model) stopMotionStream() {
	if !m.streaming {
		return
	}
	m.streamGen++
	m.closeStream()
	m.scene.ApplyPose(nil)
	m.setStatus(levelInfo, statusStreamStopped)
	m.logger.Info("motion stream stopped")
}

func (m *Model) closeStream() {
	if m.stream != nil {
		_ = m.stream.Close()
		m.stream = nil
	}
	m.streaming = false
	m.keys.setStreaming(false)
}

func (m Model) handleStreamOpened(msg streamOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.streamGen {
		if msg.stream != nil {
			_ = msg.stream.Close()
		}
		return m, nil
	}
	if msg.err != nil {
		return m.streamFailed(msg.err)
	}
	m.stream = msg.stream
	return m, waitEventCmd(msg.stream, msg.gen)
}

func (m Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.streamGen || m.stream == nil {
		return m, nil
	}
	m.scene.ApplyPose(msg.pose)
	return m, waitEventCmd(m.stream, msg.gen)
}

func (m Model) handleStreamEnded(msg streamEndedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.streamGen {
		return m, nil
	}
	return m.streamFailed(msg.err)
}

// streamFailed drops an errored subscription and rests the figure.
func (m Model) streamFailed(err error) (tea.Model, tea.Cmd) {
	m.closeStream()
	m.scene.ApplyPose(nil)
	m.setStatus(levelError, statusStreamError)
	if err != nil {
		m.logger.Warn("motion stream error", zap.Error(err))
	}
	return m, nil
}

func subscribeCmd(ctx context.Context, backend Backend, gen int) tea.Cmd {
	return func() tea.Msg {
		s, err := backend.Subscribe(ctx)
		return streamOpenedMsg{gen: gen, stream: s, err: err}
	}
}

// waitEventCmd blocks for the next event. A closed channel ends the stream.
func waitEventCmd(s *motion.Stream, gen int) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return streamEndedMsg{gen: gen, err: s.Err()}
		}
		return streamEventMsg{gen: gen, pose: ev.Pose}
	}
}
