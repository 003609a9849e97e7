package urdf

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/five82/handik/internal/scene"
)

// Joint types understood by the loader. Anything else moves like Fixed.
const (
	Revolute   = "revolute"
	Continuous = "continuous"
	Prismatic  = "prismatic"
	Fixed      = "fixed"
)

// Joint connects a parent link to a child link.
type Joint struct {
	Name   string
	Type   string
	Parent string
	Child  string
	Origin scene.Transform
	Axis   r3.Vec

	Lower, Upper float64
	Limited      bool

	value float64
}

// Movable reports whether SetJointValue affects the joint.
func (j *Joint) Movable() bool {
	switch j.Type {
	case Revolute, Continuous, Prismatic:
		return true
	}
	return false
}

// Value is the current joint position in radians (metres for prismatic).
func (j *Joint) Value() float64 { return j.value }

func (j *Joint) local() scene.Transform {
	switch j.Type {
	case Revolute, Continuous:
		motion := r3.NewRotation(j.value, j.Axis)
		return scene.Transform{Rot: scene.Compose(j.Origin.Rot, motion), Pos: j.Origin.Pos}
	case Prismatic:
		return scene.Transform{Rot: j.Origin.Rot, Pos: j.Origin.Apply(r3.Scale(j.value, j.Axis))}
	default:
		return j.Origin
	}
}

// Robot is a parsed kinematic tree.
type Robot struct {
	name     string
	root     string
	links    []string
	joints   []*Joint
	byName   map[string]*Joint
	children map[string][]*Joint
	// offset centres the robot on x/z.
	offset r3.Vec
}

var _ scene.RiggedModel = (*Robot)(nil)

// ErrNoRoot is returned when every link has a parent.
var ErrNoRoot = errors.New("urdf: no root link")

// Parse reads a URDF document and centres the result on x/z with its base
// on the ground.
func Parse(r io.Reader) (*Robot, error) {
	var doc xmlRobot
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode urdf: %w", err)
	}
	robot, err := build(doc)
	if err != nil {
		return nil, err
	}
	robot.center()
	return robot, nil
}

func build(doc xmlRobot) (*Robot, error) {
	if len(doc.Links) == 0 {
		return nil, errors.New("urdf: robot has no links")
	}
	r := &Robot{
		name:     doc.Name,
		byName:   make(map[string]*Joint, len(doc.Joints)),
		children: make(map[string][]*Joint),
	}
	known := make(map[string]bool, len(doc.Links))
	for _, l := range doc.Links {
		if l.Name == "" {
			return nil, errors.New("urdf: link without a name")
		}
		if known[l.Name] {
			return nil, fmt.Errorf("urdf: duplicate link %q", l.Name)
		}
		known[l.Name] = true
		r.links = append(r.links, l.Name)
	}

	hasParent := make(map[string]bool, len(doc.Joints))
	for _, xj := range doc.Joints {
		j, err := newJoint(xj)
		if err != nil {
			return nil, err
		}
		if _, dup := r.byName[j.Name]; dup {
			return nil, fmt.Errorf("urdf: duplicate joint %q", j.Name)
		}
		if !known[j.Parent] || !known[j.Child] {
			return nil, fmt.Errorf("urdf: joint %q links %q -> %q: unknown link", j.Name, j.Parent, j.Child)
		}
		if hasParent[j.Child] {
			return nil, fmt.Errorf("urdf: link %q has more than one parent", j.Child)
		}
		hasParent[j.Child] = true
		r.byName[j.Name] = j
		r.joints = append(r.joints, j)
		r.children[j.Parent] = append(r.children[j.Parent], j)
	}

	for _, name := range r.links {
		if hasParent[name] {
			continue
		}
		if r.root != "" {
			return nil, fmt.Errorf("urdf: multiple root links %q and %q", r.root, name)
		}
		r.root = name
	}
	if r.root == "" {
		return nil, ErrNoRoot
	}
	reached := r.forward()
	for _, name := range r.links {
		if _, ok := reached[name]; !ok {
			return nil, fmt.Errorf("urdf: link %q is not connected to root %q", name, r.root)
		}
	}
	return r, nil
}

func newJoint(xj xmlJoint) (*Joint, error) {
	if xj.Name == "" {
		return nil, errors.New("urdf: joint without a name")
	}
	j := &Joint{
		Name:   xj.Name,
		Type:   xj.Type,
		Parent: xj.Parent.Link,
		Child:  xj.Child.Link,
		Origin: scene.IdentityTransform,
		Axis:   r3.Vec{X: 1},
	}
	if xj.Origin != nil {
		xyz, err := parseVec(xj.Origin.XYZ)
		if err != nil {
			return nil, fmt.Errorf("urdf: joint %q origin xyz: %w", j.Name, err)
		}
		rpy, err := parseVec(xj.Origin.RPY)
		if err != nil {
			return nil, fmt.Errorf("urdf: joint %q origin rpy: %w", j.Name, err)
		}
		j.Origin = scene.Transform{Rot: rollPitchYaw(rpy), Pos: xyz}
	}
	if xj.Axis != nil {
		axis, err := parseVec(xj.Axis.XYZ)
		if err != nil {
			return nil, fmt.Errorf("urdf: joint %q axis: %w", j.Name, err)
		}
		if r3.Norm(axis) > 0 {
			j.Axis = r3.Unit(axis)
		}
	}
	if xj.Limit != nil && (j.Type == Revolute || j.Type == Prismatic) {
		lower, err := parseFloat(xj.Limit.Lower)
		if err != nil {
			return nil, fmt.Errorf("urdf: joint %q lower limit: %w", j.Name, err)
		}
		upper, err := parseFloat(xj.Limit.Upper)
		if err != nil {
			return nil, fmt.Errorf("urdf: joint %q upper limit: %w", j.Name, err)
		}
		if lower > upper {
			lower, upper = upper, lower
		}
		j.Lower, j.Upper, j.Limited = lower, upper, true
	}
	return j, nil
}

// rollPitchYaw is the fixed-axis rotation Rz(yaw)*Ry(pitch)*Rx(roll).
func rollPitchYaw(rpy r3.Vec) r3.Rotation {
	rot := scene.Identity
	if rpy.Z != 0 {
		rot = scene.Compose(rot, r3.NewRotation(rpy.Z, r3.Vec{Z: 1}))
	}
	if rpy.Y != 0 {
		rot = scene.Compose(rot, r3.NewRotation(rpy.Y, r3.Vec{Y: 1}))
	}
	if rpy.X != 0 {
		rot = scene.Compose(rot, r3.NewRotation(rpy.X, r3.Vec{X: 1}))
	}
	return rot
}

// Name returns the robot's name attribute.
func (r *Robot) Name() string { return r.name }

// Root returns the root link name.
func (r *Robot) Root() string { return r.root }

// Links lists link names in document order.
func (r *Robot) Links() []string {
	out := make([]string, len(r.links))
	copy(out, r.links)
	return out
}

// Joint returns the named joint.
func (r *Robot) Joint(name string) (*Joint, bool) {
	j, ok := r.byName[name]
	return j, ok
}

// HasJoint reports whether name is a movable joint.
func (r *Robot) HasJoint(name string) bool {
	j, ok := r.byName[name]
	return ok && j.Movable()
}

// JointNames lists movable joints, sorted.
func (r *Robot) JointNames() []string {
	var names []string
	for _, j := range r.joints {
		if j.Movable() {
			names = append(names, j.Name)
		}
	}
	sort.Strings(names)
	return names
}

// SetJointValue moves a joint, clamping revolute and prismatic joints to
// their limits. Unknown and fixed joints are rejected.
func (r *Robot) SetJointValue(name string, value float64) bool {
	j, ok := r.byName[name]
	if !ok || !j.Movable() || math.IsNaN(value) {
		return false
	}
	if j.Limited {
		value = math.Max(j.Lower, math.Min(j.Upper, value))
	}
	j.value = value
	return true
}

// LinkPositions runs forward kinematics and returns each link's world
// origin, centring offset included.
func (r *Robot) LinkPositions() map[string]r3.Vec {
	world := r.forward()
	out := make(map[string]r3.Vec, len(world))
	for name, t := range world {
		out[name] = t.Pos
	}
	return out
}

// Segments returns one bone per joint from the parent link origin to the
// child link origin.
func (r *Robot) Segments() []scene.Segment {
	world := r.forward()
	segs := make([]scene.Segment, 0, len(r.joints))
	for _, j := range r.joints {
		from, okFrom := world[j.Parent]
		to, okTo := world[j.Child]
		if !okFrom || !okTo {
			continue
		}
		segs = append(segs, scene.Segment{From: from.Pos, To: to.Pos})
	}
	return segs
}

func (r *Robot) forward() map[string]scene.Transform {
	world := make(map[string]scene.Transform, len(r.links))
	var walk func(link string, t scene.Transform)
	walk = func(link string, t scene.Transform) {
		world[link] = t
		for _, j := range r.children[link] {
			walk(j.Child, t.Then(j.local()))
		}
	}
	walk(r.root, scene.Transform{Rot: scene.Identity, Pos: r.offset})
	return world
}

// center shifts the robot so the bounding box of its link origins is
// centred on x/z. The vertical offset stays zero.
func (r *Robot) center() {
	r.offset = r3.Vec{}
	lo := r3.Vec{X: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range r.LinkPositions() {
		lo.X, hi.X = math.Min(lo.X, p.X), math.Max(hi.X, p.X)
		lo.Z, hi.Z = math.Min(lo.Z, p.Z), math.Max(hi.Z, p.Z)
	}
	r.offset = r3.Vec{X: -(lo.X + hi.X) / 2, Z: -(lo.Z + hi.Z) / 2}
}
