package ui

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/handik/internal/fakebackend"
	"github.com/five82/handik/internal/motion"
	"github.com/five82/handik/internal/prefs"
	"github.com/five82/handik/internal/scene"
)

const armURDF = `<robot name="arm">
  <link name="base"/>
  <link name="forearm"/>
  <joint name="shoulder" type="continuous">
    <parent link="base"/>
    <child link="forearm"/>
    <origin xyz="0 0 1"/>
    <axis xyz="0 0 1"/>
  </joint>
</robot>`

func newTestModel(t *testing.T, backend *fakebackend.Backend) Model {
	t.Helper()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client, err := motion.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	m := New(Options{
		Context:   context.Background(),
		Backend:   client,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command, got nil")
	}
	updated, next := m.Update(cmd())
	return updated.(Model), next
}

func armZ(t *testing.T, m Model, part string) float64 {
	t.Helper()
	p, ok := m.Scene().Figure().Part(part)
	if !ok {
		t.Fatalf("figure has no part %q", part)
	}
	return p.Rotation.Z
}

func TestValidate_AppliesReturnedPose(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})

	m, cmd := press(t, m, "v")
	if m.Status() != statusValidating {
		t.Fatalf("Status = %q, want %q", m.Status(), statusValidating)
	}
	m, _ = run(t, m, cmd)

	if m.Status() != statusPoseUpdated {
		t.Fatalf("Status = %q, want %q", m.Status(), statusPoseUpdated)
	}
	if got := armZ(t, m, scene.PartLeftArm); math.Abs(got+math.Pi/4) > 1e-9 {
		t.Fatalf("leftArm z = %v, want -pi/4", got)
	}
	if got := armZ(t, m, scene.PartRightArm); math.Abs(got-math.Pi/4) > 1e-9 {
		t.Fatalf("rightArm z = %v, want pi/4", got)
	}
}

func TestValidate_ErrorResetsPose(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{
		ValidateCode: 500,
		ValidateBody: `{"error":"solver crashed"}`,
	})
	rest := armZ(t, m, scene.PartLeftArm)
	m.Scene().ApplyPose(scene.PoseUpdate{scene.PartLeftArm: scene.Euler(0, 0, 80)})

	m, cmd := press(t, m, "v")
	m, _ = run(t, m, cmd)

	if m.Status() != "Error: solver crashed" {
		t.Fatalf("Status = %q, want %q", m.Status(), "Error: solver crashed")
	}
	if got := armZ(t, m, scene.PartLeftArm); got != rest {
		t.Fatalf("leftArm z = %v, want resting %v", got, rest)
	}
}

func TestStream_AppliesEventsInOrder(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{
		StreamEvents: []string{
			`{"pose":{"leftArm":{"z":-10}}}`,
			`{"pose":{"leftArm":{"z":-20}}}`,
		},
		StreamHold: true,
	})
	t.Cleanup(func() { m.closeStream() })

	m, cmd := press(t, m, "s")
	if !m.streaming || m.Status() != statusStreaming {
		t.Fatalf("streaming = %v status = %q, want streaming", m.streaming, m.Status())
	}
	if h := m.keys.Stream.Help().Desc; h != stopStreamLabel {
		t.Fatalf("stream help = %q, want %q", h, stopStreamLabel)
	}

	m, cmd = run(t, m, cmd) // opened
	m, cmd = run(t, m, cmd) // first event
	if got := armZ(t, m, scene.PartLeftArm); math.Abs(got+10*math.Pi/180) > 1e-9 {
		t.Fatalf("leftArm z after first event = %v, want -10deg", got)
	}
	m, _ = run(t, m, cmd)
	if got := armZ(t, m, scene.PartLeftArm); math.Abs(got+20*math.Pi/180) > 1e-9 {
		t.Fatalf("leftArm z after second event = %v, want -20deg", got)
	}

	rest := armZ(t, New(Options{}), scene.PartLeftArm)
	m, _ = press(t, m, "s")
	if m.streaming || m.Status() != statusStreamStopped {
		t.Fatalf("streaming = %v status = %q, want stopped", m.streaming, m.Status())
	}
	if got := armZ(t, m, scene.PartLeftArm); got != rest {
		t.Fatalf("leftArm z after stop = %v, want resting %v", got, rest)
	}
	if h := m.keys.Stream.Help().Desc; h != startStreamLabel {
		t.Fatalf("stream help = %q, want %q", h, startStreamLabel)
	}
}

func TestStream_StaleSubscriptionIgnored(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{
		StreamEvents: []string{`{"pose":{"leftArm":{"z":-70}}}`},
		StreamHold:   true,
	})
	rest := armZ(t, m, scene.PartLeftArm)

	m, subscribe := press(t, m, "s")
	opened := subscribe()
	m, _ = press(t, m, "s") // stopped before the subscription answered

	updated, cmd := m.Update(opened)
	m = updated.(Model)
	if cmd != nil {
		t.Fatalf("stale subscription returned a command")
	}
	if m.stream != nil || m.streaming {
		t.Fatalf("stale subscription was adopted")
	}
	if s := opened.(streamOpenedMsg).stream; s != nil {
		select {
		case <-s.Done():
		default:
			t.Fatalf("stale stream was not closed")
		}
	}
	if got := armZ(t, m, scene.PartLeftArm); got != rest {
		t.Fatalf("leftArm z = %v, want resting", got)
	}
}

func TestStream_EndReportsErrorAndRests(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{
		StreamEvents: []string{`{"pose":{"leftArm":{"z":-30}}}`},
	})
	rest := armZ(t, m, scene.PartLeftArm)

	m, cmd := press(t, m, "s")
	m, cmd = run(t, m, cmd) // opened
	m, cmd = run(t, m, cmd) // event
	if got := armZ(t, m, scene.PartLeftArm); got == rest {
		t.Fatalf("leftArm z = %v, want event applied", got)
	}
	m, _ = run(t, m, cmd) // server closed the stream

	if m.streaming || m.stream != nil {
		t.Fatalf("stream still marked active after end")
	}
	if m.Status() != statusStreamError {
		t.Fatalf("Status = %q, want %q", m.Status(), statusStreamError)
	}
	if got := armZ(t, m, scene.PartLeftArm); got != rest {
		t.Fatalf("leftArm z after stream error = %v, want resting %v", got, rest)
	}
}

func TestStream_SubscribeFailure(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{StreamCode: 503})
	rest := armZ(t, m, scene.PartLeftArm)
	m.Scene().ApplyPose(scene.PoseUpdate{scene.PartLeftArm: scene.Euler(0, 0, 45)})

	m, cmd := press(t, m, "s")
	m, _ = run(t, m, cmd)
	if m.streaming || m.Status() != statusStreamError {
		t.Fatalf("streaming = %v status = %q, want stream error", m.streaming, m.Status())
	}
	if got := armZ(t, m, scene.PartLeftArm); got != rest {
		t.Fatalf("leftArm z = %v, want resting %v", got, rest)
	}
}

func TestStop_WithoutStreamIsNoop(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})
	m.stopMotionStream()
	if m.Status() != "" || m.streamGen != 0 {
		t.Fatalf("stop without stream changed state: status=%q gen=%d", m.Status(), m.streamGen)
	}
}

func TestStop_TwiceIsNoop(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{
		StreamEvents: []string{`{"pose":{"leftArm":{"z":-10}}}`},
		StreamHold:   true,
	})
	t.Cleanup(func() { m.closeStream() })

	m, cmd := press(t, m, "s")
	m, _ = run(t, m, cmd) // opened
	if m.stream == nil {
		t.Fatalf("stream not adopted after open")
	}

	m.stopMotionStream()
	if m.streaming || m.streamGen != 2 || m.Status() != statusStreamStopped {
		t.Fatalf("after first stop: streaming=%v gen=%d status=%q", m.streaming, m.streamGen, m.Status())
	}

	m.stopMotionStream()
	if m.streamGen != 2 {
		t.Fatalf("second stop bumped gen to %d, want 2", m.streamGen)
	}
	if m.Status() != statusStreamStopped || m.stream != nil {
		t.Fatalf("second stop changed state: status=%q stream=%v", m.Status(), m.stream)
	}
}

func TestLoadModel_FromPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.urdf")
	if err := os.WriteFile(path, []byte(armURDF), 0o644); err != nil {
		t.Fatalf("write urdf: %v", err)
	}
	m := newTestModel(t, &fakebackend.Backend{})

	m, _ = press(t, m, "o")
	if !m.prompting {
		t.Fatalf("prompt not opened")
	}
	m, _ = press(t, m, path)
	m, cmd := press(t, m, "enter")
	if m.prompting || m.Scene().State() != scene.Loading {
		t.Fatalf("prompting = %v state = %v, want loading", m.prompting, m.Scene().State())
	}
	if m.Status() != statusLoadingModel {
		t.Fatalf("Status = %q, want %q", m.Status(), statusLoadingModel)
	}

	m, _ = run(t, m, cmd)
	if m.Scene().State() != scene.ModelActive {
		t.Fatalf("State = %v, want model active", m.Scene().State())
	}
	if !strings.HasPrefix(m.Status(), statusModelLoaded) || !strings.Contains(m.Status(), "1 joints") {
		t.Fatalf("Status = %q, want loaded with 1 joint", m.Status())
	}

	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if saved.LastModel() != path {
		t.Fatalf("LastModel = %q, want %q", saved.LastModel(), path)
	}
}

func TestLoadModel_FromURL(t *testing.T) {
	robots := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(armURDF))
	}))
	defer robots.Close()

	m := newTestModel(t, &fakebackend.Backend{})
	source := robots.URL + "/arm.urdf"

	m, _ = press(t, m, "o")
	m.input.SetValue(source)
	m, cmd := press(t, m, "enter")
	m, _ = run(t, m, cmd)

	if m.Scene().State() != scene.ModelActive {
		t.Fatalf("State = %v, want model active (status %q)", m.Scene().State(), m.Status())
	}
	if want := statusModelLoaded + " (1 joints)"; m.Status() != want {
		t.Fatalf("Status = %q, want %q", m.Status(), want)
	}

	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if saved.LastModel() != source {
		t.Fatalf("LastModel = %q, want %q", saved.LastModel(), source)
	}
}

func TestLoadModel_FailureKeepsFigure(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})

	m, _ = press(t, m, "o")
	m, _ = press(t, m, filepath.Join(t.TempDir(), "missing.urdf"))
	m, cmd := press(t, m, "enter")
	m, _ = run(t, m, cmd)

	if !m.Scene().DefaultVisible() {
		t.Fatalf("State = %v, want default figure", m.Scene().State())
	}
	if !strings.HasPrefix(m.Status(), statusModelLoadError) {
		t.Fatalf("Status = %q, want load error", m.Status())
	}
}

func TestPrompt_CancelAndQuitKeyTyped(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})

	m, _ = press(t, m, "o")
	m, _ = press(t, m, "q")
	if m.input.Value() != "q" {
		t.Fatalf("input = %q, want q", m.input.Value())
	}
	m, _ = press(t, m, "esc")
	if m.prompting {
		t.Fatalf("esc did not close the prompt")
	}
	if m.Scene().State() != scene.DefaultActive {
		t.Fatalf("State = %v, want default", m.Scene().State())
	}
}

func TestStartupModelPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.urdf")
	if err := os.WriteFile(path, []byte(armURDF), 0o644); err != nil {
		t.Fatalf("write urdf: %v", err)
	}
	m := New(Options{ModelPath: path, PrefsPath: filepath.Join(t.TempDir(), "prefs.toml")})
	if m.Scene().State() != scene.Loading {
		t.Fatalf("State = %v, want loading", m.Scene().State())
	}
	updated, _ := m.Update(loadModelCmd(m.loadModel, path)())
	if got := updated.(Model).Scene().State(); got != scene.ModelActive {
		t.Fatalf("State = %v, want model active", got)
	}
}

func TestHelp_AnyKeyCloses(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})
	m, _ = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m, cmd := press(t, m, "v")
	if m.showHelp {
		t.Fatalf("help still shown")
	}
	if cmd != nil {
		t.Fatalf("closing key also triggered an action")
	}
}

func TestCycleTheme_SavesPrefs(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})
	m, _ = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if saved.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", saved.Theme)
	}
}

func TestToggleLogs_PersistsAcrossRuns(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})
	m, _ = press(t, m, "L")
	if !m.showLogs {
		t.Fatalf("showLogs = false after toggle")
	}

	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load returned error: %v", err)
	}
	if !saved.ShowLogs {
		t.Fatalf("saved ShowLogs = false, want true")
	}

	restored := New(Options{Prefs: saved, PrefsPath: m.prefsPath})
	if !restored.showLogs {
		t.Fatalf("restored model has log pane closed")
	}
}

func TestNew_PrefillsMostRecentModel(t *testing.T) {
	m := New(Options{
		Prefs:     prefs.Prefs{RecentModels: []string{"/robots/b.urdf", "/robots/a.urdf"}},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	if got := m.input.Value(); got != "/robots/b.urdf" {
		t.Fatalf("prompt value = %q, want /robots/b.urdf", got)
	}
}

func TestView_Layout(t *testing.T) {
	m := newTestModel(t, &fakebackend.Backend{})
	view := m.View()
	for _, want := range []string{"robotviz", "UNKNOWN", "default figure", "Ready"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
	w, h := m.Scene().Size()
	if w != 80 || h != 30-headerHeight-footerHeight {
		t.Fatalf("canvas = %dx%d, want 80x%d", w, h, 30-headerHeight-footerHeight)
	}

	m, _ = press(t, m, "L")
	_, h = m.Scene().Size()
	if h != 30-headerHeight-footerHeight-logPaneHeight {
		t.Fatalf("canvas height with logs = %d", h)
	}
}
