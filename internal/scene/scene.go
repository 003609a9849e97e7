package scene

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// RiggedModel is a loaded articulated model with named, independently
// settable joints.
type RiggedModel interface {
	Name() string
	HasJoint(name string) bool
	// SetJointValue sets a joint in radians and reports whether it moved.
	SetJointValue(name string, radians float64) bool
	JointNames() []string
	// Segments returns the model's skeleton in world space.
	Segments() []Segment
}

// Segment is a world-space bone from From to To.
type Segment struct {
	From, To r3.Vec
}

// ModelState tracks which representation the scene draws.
type ModelState int

const (
	// DefaultActive draws the procedural figure.
	DefaultActive ModelState = iota
	// Loading is waiting for a rigged model.
	Loading
	// ModelActive draws the loaded rigged model.
	ModelActive
)

func (s ModelState) String() string {
	switch s {
	case DefaultActive:
		return "default"
	case Loading:
		return "loading"
	case ModelActive:
		return "model"
	default:
		return fmt.Sprintf("ModelState(%d)", int(s))
	}
}

// ErrLoadInProgress is returned when a load is started while another one is
// pending.
var ErrLoadInProgress = errors.New("model load already in progress")

// ErrNotLoading is returned by FinishLoad without a matching BeginLoad.
var ErrNotLoading = errors.New("no model load in progress")

// Scene owns the figure, the optional rigged model, and the camera. Its
// model state changes only through ApplyPose, BeginLoad and FinishLoad.
// Scene is not safe for concurrent use; callers drive it from one goroutine.
type Scene struct {
	figure *Figure
	model  RiggedModel
	state  ModelState
	// resume is where a failed load returns to.
	resume ModelState

	source  string
	pending string

	camera *Camera
	width  int
	height int
}

// New builds a scene showing the default figure in its resting pose.
func New() *Scene {
	s := &Scene{
		figure: NewFigure(),
		state:  DefaultActive,
		camera: NewCamera(),
	}
	s.Resize(80, 24)
	s.ApplyPose(nil)
	return s
}

// State reports the active representation.
func (s *Scene) State() ModelState { return s.state }

// DefaultVisible reports whether the procedural figure is drawn.
func (s *Scene) DefaultVisible() bool { return s.state == DefaultActive }

// Figure exposes the procedural figure for inspection.
func (s *Scene) Figure() *Figure { return s.figure }

// Model returns the loaded model, nil until a load succeeds.
func (s *Scene) Model() RiggedModel { return s.model }

// Source returns where the active model came from.
func (s *Scene) Source() string { return s.source }

// PendingSource returns the source of an in-flight load.
func (s *Scene) PendingSource() string { return s.pending }

// Camera returns the orbit camera.
func (s *Scene) Camera() *Camera { return s.camera }

// BeginLoad enters the Loading state; the default figure is hidden until the
// load finishes.
func (s *Scene) BeginLoad(source string) error {
	if s.state == Loading {
		return ErrLoadInProgress
	}
	s.resume = s.state
	s.state = Loading
	s.pending = source
	return nil
}

// FinishLoad completes a load. On success the model becomes active for the
// rest of the session. On failure the scene returns to what it showed before:
// the default figure, or the previously loaded model.
func (s *Scene) FinishLoad(model RiggedModel, loadErr error) error {
	if s.state != Loading {
		return ErrNotLoading
	}
	source := s.pending
	s.pending = ""
	if loadErr != nil || model == nil {
		s.state = s.resume
		if loadErr == nil {
			loadErr = errors.New("model loader returned no model")
		}
		return fmt.Errorf("load model %q: %w", source, loadErr)
	}
	s.model = model
	s.source = source
	s.state = ModelActive
	return nil
}

// ApplyPose updates the active representation and returns how many named
// entries took effect. A nil update restores the resting pose. With a model
// loaded only scalar entries naming its joints apply; otherwise entries set
// the matching figure parts. Unknown names are ignored.
func (s *Scene) ApplyPose(update PoseUpdate) int {
	if update == nil {
		s.rest()
		return 0
	}
	if s.model == nil {
		return s.figure.apply(update)
	}
	applied := 0
	for _, name := range sortedNames(update) {
		value := update[name]
		if !value.IsScalar() || !s.model.HasJoint(name) {
			continue
		}
		if s.model.SetJointValue(name, degToRad(*value.Scalar)) {
			applied++
		}
	}
	return applied
}

func (s *Scene) rest() {
	s.figure.rest()
	if s.model == nil {
		return
	}
	for _, name := range s.model.JointNames() {
		s.model.SetJointValue(name, 0)
	}
}

// Resize sets the canvas size in cells and updates the projection.
func (s *Scene) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s.width, s.height = width, height
	s.camera.SetAspect(float64(width) * cellAspect / float64(height))
}

// Size returns the canvas size in cells.
func (s *Scene) Size() (width, height int) { return s.width, s.height }

// Tick advances per-frame state (orbit damping).
func (s *Scene) Tick() { s.camera.Update() }

func sortedNames(update PoseUpdate) []string {
	names := make([]string, 0, len(update))
	for name := range update {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
