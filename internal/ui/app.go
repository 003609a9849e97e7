package ui

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/handik/internal/motion"
	"github.com/five82/handik/internal/prefs"
	"github.com/five82/handik/internal/scene"
	"github.com/five82/handik/internal/state"
	"github.com/five82/handik/internal/urdf"
)

// Backend is the pose service the visualizer talks to.
// This interface is implemented by *motion.Client.
type Backend interface {
	Subscribe(ctx context.Context) (*motion.Stream, error)
	ValidatePose(ctx context.Context) (scene.PoseUpdate, error)
}

var _ Backend = (*motion.Client)(nil)

// ModelLoader reads a rigged model from a file path or URL.
type ModelLoader func(source string) (scene.RiggedModel, error)

// modelFetchTimeout bounds a URDF download.
const modelFetchTimeout = 30 * time.Second

// LoadURDF is the default ModelLoader. Sources starting with http:// or
// https:// are downloaded; anything else is read from disk.
func LoadURDF(source string) (scene.RiggedModel, error) {
	ctx, cancel := context.WithTimeout(context.Background(), modelFetchTimeout)
	defer cancel()
	robot, err := urdf.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return robot, nil
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   Backend
	Store     *state.Store
	Logger    *zap.Logger
	LoadModel ModelLoader
	// ModelPath is loaded at start when set.
	ModelPath string
	LogPath   string
	Prefs     prefs.Prefs
	PrefsPath string
}

const (
	frameInterval  = time.Second / 60
	healthInterval = time.Second
	logFetchLimit  = 200

	headerHeight  = 2
	footerHeight  = 1
	logPaneHeight = 10
	promptHeight  = 1

	orbitStep = 0.4
	tiltStep  = 0.25
	zoomStep  = 2.0
)

// Status line texts.
const (
	statusValidating     = "Validating..."
	statusPoseUpdated    = "Pose updated"
	statusStreaming      = "Streaming motion data..."
	statusStreamError    = "Streaming error - check backend connection"
	statusStreamStopped  = "Streaming stopped"
	statusLoadingModel   = "Loading URDF..."
	statusModelLoaded    = "URDF loaded successfully"
	statusModelLoadError = "Error loading URDF"
	statusPoseReset      = "Pose reset"
)

type statusLevel int

const (
	levelInfo statusLevel = iota
	levelOK
	levelError
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	backend   Backend
	store     *state.Store
	logger    *zap.Logger
	loadModel ModelLoader
	logPath   string
	prefs     prefs.Prefs
	prefsPath string

	// UI state
	scene  *scene.Scene
	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	snapshot    state.Snapshot
	status      string
	statusLevel statusLevel

	// Stream state. streamGen increases on every start and stop so messages
	// from a superseded subscription are dropped.
	stream    *motion.Stream
	streaming bool
	streamGen int

	// Load prompt
	prompting bool
	input     textinput.Model

	showHelp    bool
	showLogs    bool
	logViewport viewport.Model
	logErr      error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	load := opts.LoadModel
	if load == nil {
		load = LoadURDF
	}

	input := textinput.New()
	input.Prompt = "URDF path: "
	input.Placeholder = "/path/to/robot.urdf or https://..."
	input.CharLimit = 1024

	m := Model{
		ctx:       ctx,
		backend:   opts.Backend,
		store:     opts.Store,
		logger:    logger,
		loadModel: load,
		logPath:   opts.LogPath,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		scene:     scene.New(),
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		input:     input,
		showLogs:  opts.Prefs.ShowLogs,

		logViewport: viewport.New(0, 0),
	}

	if path := strings.TrimSpace(opts.ModelPath); path != "" {
		m.input.SetValue(path)
		if err := m.scene.BeginLoad(path); err == nil {
			m.setStatus(levelInfo, statusLoadingModel)
		}
	} else if last := m.prefs.LastModel(); last != "" {
		m.input.SetValue(last)
	}
	return m
}

// Scene exposes the scene for inspection.
func (m Model) Scene() *scene.Scene { return m.scene }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		frameCmd(),
		healthTickCmd(),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.scene.State() == scene.Loading {
		cmds = append(cmds, loadModelCmd(m.loadModel, m.scene.PendingSource()))
	}
	if m.showLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case frameMsg:
		m.scene.Tick()
		return m, frameCmd()

	case healthTickMsg:
		cmds := []tea.Cmd{healthTickCmd()}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		if m.showLogs {
			cmds = append(cmds, readLogsCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case logTailMsg:
		m.handleLogTail(msg)
		return m, nil

	case validateResultMsg:
		return m.handleValidateResult(msg)

	case modelLoadedMsg:
		return m.handleModelLoaded(msg)

	case streamOpenedMsg:
		return m.handleStreamOpened(msg)

	case streamEventMsg:
		return m.handleStreamEvent(msg)

	case streamEndedMsg:
		return m.handleStreamEnded(msg)
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		return m.handlePromptKey(msg)
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	cam := m.scene.Camera()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeStream()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		m.prefs.ShowLogs = m.showLogs
		m.savePrefs()
		m.layout()
		if m.showLogs {
			return m, readLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.Stream):
		if m.streaming {
			m.stopMotionStream()
			return m, nil
		}
		return m, m.startMotionStream()

	case key.Matches(msg, m.keys.Validate):
		return m, m.requestSinglePoseValidation()

	case key.Matches(msg, m.keys.LoadModel):
		if m.scene.State() == scene.Loading {
			return m, nil
		}
		m.prompting = true
		m.input.CursorEnd()
		m.layout()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Rest):
		m.scene.ApplyPose(nil)
		m.setStatus(levelInfo, statusPoseReset)
		return m, nil

	case key.Matches(msg, m.keys.OrbitLeft):
		cam.Orbit(-orbitStep, 0)
	case key.Matches(msg, m.keys.OrbitRight):
		cam.Orbit(orbitStep, 0)
	case key.Matches(msg, m.keys.OrbitUp):
		cam.Orbit(0, -tiltStep)
	case key.Matches(msg, m.keys.OrbitDown):
		cam.Orbit(0, tiltStep)
	case key.Matches(msg, m.keys.ZoomIn):
		cam.Zoom(zoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		cam.Zoom(-zoomStep)

	default:
		if m.showLogs {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.closeStream()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.prompting = false
		m.input.Blur()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		m.prompting = false
		m.input.Blur()
		m.layout()
		if err := m.scene.BeginLoad(path); err != nil {
			m.setStatus(levelError, statusModelLoadError+": "+err.Error())
			return m, nil
		}
		m.setStatus(levelInfo, statusLoadingModel)
		m.logger.Info("loading model", zap.String("source", path))
		return m, loadModelCmd(m.loadModel, path)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setStatus(level statusLevel, text string) {
	m.status = text
	m.statusLevel = level
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", zap.Error(err))
	}
}

// layout sizes the scene canvas to the space the chrome leaves.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	h := m.height - headerHeight - footerHeight
	if m.showLogs {
		h -= logPaneHeight
		m.logViewport.Width = m.width
		m.logViewport.Height = logPaneHeight - 1
	}
	if m.prompting {
		h -= promptHeight
		m.input.Width = m.width - len(m.input.Prompt) - 2
	}
	m.scene.Resize(m.width, max(h, 1))
}

// requestSinglePoseValidation posts the example pose once. The reply is
// applied whenever it arrives, even if stream updates landed meanwhile.
func (m *Model) requestSinglePoseValidation() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	m.setStatus(levelInfo, statusValidating)
	return validateCmd(m.ctx, m.backend)
}

func (m Model) handleValidateResult(msg validateResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.scene.ApplyPose(nil)
		m.setStatus(levelError, "Error: "+msg.err.Error())
		m.logger.Warn("pose validation failed", zap.Error(msg.err))
		return m, nil
	}
	applied := m.scene.ApplyPose(msg.pose)
	m.setStatus(levelOK, statusPoseUpdated)
	m.logger.Info("pose validated", zap.Int("applied", applied))
	return m, nil
}

func (m Model) handleModelLoaded(msg modelLoadedMsg) (tea.Model, tea.Cmd) {
	if err := m.scene.FinishLoad(msg.model, msg.err); err != nil {
		m.setStatus(levelError, statusModelLoadError+": "+err.Error())
		m.logger.Error("model load failed", zap.String("source", msg.source), zap.Error(err))
		return m, nil
	}
	m.setStatus(levelOK, modelLoadedText(msg))
	m.logger.Info("model loaded",
		zap.String("source", msg.source),
		zap.Int("joints", len(msg.model.JointNames())),
		zap.Int64("bytes", msg.size))
	m.prefs.Remember(msg.source)
	m.savePrefs()
	return m, nil
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.closeStream()
	}
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}

// Messages

type frameMsg time.Time

type healthTickMsg time.Time

type snapshotMsg state.Snapshot

type validateResultMsg struct {
	pose scene.PoseUpdate
	err  error
}

type modelLoadedMsg struct {
	source string
	model  scene.RiggedModel
	size   int64
	err    error
}

// Commands

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func healthTickCmd() tea.Cmd {
	return tea.Tick(healthInterval, func(t time.Time) tea.Msg {
		return healthTickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func validateCmd(ctx context.Context, backend Backend) tea.Cmd {
	return func() tea.Msg {
		pose, err := backend.ValidatePose(ctx)
		return validateResultMsg{pose: pose, err: err}
	}
}

func loadModelCmd(load ModelLoader, path string) tea.Cmd {
	return func() tea.Msg {
		msg := modelLoadedMsg{source: path}
		if !urdf.IsURL(path) {
			if info, err := os.Stat(path); err == nil {
				msg.size = info.Size()
			}
		}
		msg.model, msg.err = load(path)
		return msg
	}
}
