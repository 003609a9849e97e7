package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Shape is the primitive a figure part is drawn with.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeSphere
)

// Default figure part names. Pose updates address parts by these names.
const (
	PartTorso    = "torso"
	PartHead     = "head"
	PartLeftEye  = "leftEye"
	PartRightEye = "rightEye"
	PartLeftArm  = "leftArm"
	PartRightArm = "rightArm"
	PartLeftLeg  = "leftLeg"
	PartRightLeg = "rightLeg"
)

const (
	// restingLift puts the feet on the ground plane.
	restingLift = 11
	// restingArmBend is how far the arms splay outward at rest.
	restingArmBend = math.Pi * 0.1
)

// Part is a rigid piece of the procedural figure.
type Part struct {
	Name   string
	Shape  Shape
	Size   r3.Vec // box extents; spheres use Size.X as radius
	Offset r3.Vec // position relative to the parent part
	Layer  Layer

	// Rotation holds Euler XYZ radians relative to the parent.
	Rotation r3.Vec

	children []*Part
}

func (p *Part) local() Transform {
	return Transform{
		Rot: EulerXYZ(p.Rotation.X, p.Rotation.Y, p.Rotation.Z),
		Pos: p.Offset,
	}
}

// Figure is the built-in articulated placeholder: a torso root carrying a
// head (with eyes), two arms, and two legs.
type Figure struct {
	Position r3.Vec
	root     *Part
	parts    map[string]*Part
	order    []string
}

// NewFigure builds the default figure in its unposed state.
func NewFigure() *Figure {
	f := &Figure{parts: make(map[string]*Part)}

	torso := f.add(nil, &Part{Name: PartTorso, Shape: ShapeBox, Size: r3.Vec{X: 8, Y: 12, Z: 4}, Layer: LayerFigure})
	head := f.add(torso, &Part{Name: PartHead, Shape: ShapeSphere, Size: r3.Vec{X: 2.5}, Offset: r3.Vec{Y: 8}, Layer: LayerFigure})
	f.add(head, &Part{Name: PartLeftEye, Shape: ShapeSphere, Size: r3.Vec{X: 0.5}, Offset: r3.Vec{X: 1, Y: 0.5, Z: 2}, Layer: LayerEye})
	f.add(head, &Part{Name: PartRightEye, Shape: ShapeSphere, Size: r3.Vec{X: 0.5}, Offset: r3.Vec{X: -1, Y: 0.5, Z: 2}, Layer: LayerEye})

	arm := r3.Vec{X: 2, Y: 8, Z: 2}
	f.add(torso, &Part{Name: PartLeftArm, Shape: ShapeBox, Size: arm, Offset: r3.Vec{X: 5}, Layer: LayerFigure})
	f.add(torso, &Part{Name: PartRightArm, Shape: ShapeBox, Size: arm, Offset: r3.Vec{X: -5}, Layer: LayerFigure})

	leg := r3.Vec{X: 3, Y: 10, Z: 3}
	f.add(torso, &Part{Name: PartLeftLeg, Shape: ShapeBox, Size: leg, Offset: r3.Vec{X: 2.5, Y: -11}, Layer: LayerFigure})
	f.add(torso, &Part{Name: PartRightLeg, Shape: ShapeBox, Size: leg, Offset: r3.Vec{X: -2.5, Y: -11}, Layer: LayerFigure})

	return f
}

func (f *Figure) add(parent *Part, p *Part) *Part {
	if parent == nil {
		f.root = p
	} else {
		parent.children = append(parent.children, p)
	}
	f.parts[p.Name] = p
	f.order = append(f.order, p.Name)
	return p
}

// Part returns the named part.
func (f *Figure) Part(name string) (*Part, bool) {
	p, ok := f.parts[name]
	return p, ok
}

// Names lists part names in build order.
func (f *Figure) Names() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// rest zeroes every rotation, lifts the figure onto the ground, and splays
// the arms.
func (f *Figure) rest() {
	for _, p := range f.parts {
		p.Rotation = r3.Vec{}
	}
	f.Position = r3.Vec{Y: restingLift}
	f.parts[PartLeftArm].Rotation.Z = -restingArmBend
	f.parts[PartRightArm].Rotation.Z = restingArmBend
}

// apply sets part rotations from update. Axes missing from an entry are
// zero for this update. It returns how many parts changed.
func (f *Figure) apply(update PoseUpdate) int {
	applied := 0
	for name, value := range update {
		p, ok := f.parts[name]
		if !ok {
			continue
		}
		x, y, z := value.radians()
		p.Rotation = r3.Vec{X: x, Y: y, Z: z}
		applied++
	}
	return applied
}

// placedPart is a part with its world placement resolved.
type placedPart struct {
	part  *Part
	world Transform
}

// placed walks the part tree and resolves world placements.
func (f *Figure) placed() []placedPart {
	out := make([]placedPart, 0, len(f.parts))
	base := Transform{Rot: Identity, Pos: f.Position}
	var walk func(p *Part, parent Transform)
	walk = func(p *Part, parent Transform) {
		world := parent.Then(p.local())
		out = append(out, placedPart{part: p, world: world})
		for _, c := range p.children {
			walk(c, world)
		}
	}
	if f.root != nil {
		walk(f.root, base)
	}
	return out
}
