package scene

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Layer tags what a drawn cell belongs to so the host can colour it.
type Layer uint8

const (
	LayerEmpty Layer = iota
	LayerGrid
	LayerFigure
	LayerEye
	LayerBone
	LayerJoint
)

// Cell is one character of a rendered frame.
type Cell struct {
	Rune  rune
	Layer Layer
}

// Frame is a rendered character canvas, row-major.
type Frame struct {
	Width  int
	Height int
	Cells  []Cell
}

// At returns the cell at column x, row y.
func (f Frame) At(x, y int) Cell {
	return f.Cells[y*f.Width+x]
}

// Count returns how many cells were drawn on layer.
func (f Frame) Count(layer Layer) int {
	n := 0
	for _, c := range f.Cells {
		if c.Layer == layer {
			n++
		}
	}
	return n
}

// String returns the frame as plain text lines.
func (f Frame) String() string {
	var b strings.Builder
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			b.WriteRune(f.At(x, y).Rune)
		}
		if y < f.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const (
	gridSize      = 100
	gridDivisions = 10
	sphereSteps   = 24
	maxLineSteps  = 600
)

var layerGlyph = map[Layer]rune{
	LayerGrid:   '·',
	LayerFigure: '#',
	LayerEye:    'o',
	LayerBone:   '*',
	LayerJoint:  '@',
}

type canvas struct {
	frame Frame
	depth []float64
	view  view
}

// Render draws the grid and whichever representation is active.
func (s *Scene) Render() Frame {
	c := newCanvas(s.width, s.height, s.camera.view())
	c.grid()
	switch {
	case s.state == DefaultActive:
		for _, pp := range s.figure.placed() {
			c.part(pp)
		}
	case s.model != nil && s.state != Loading:
		for _, seg := range s.model.Segments() {
			c.line(seg.From, seg.To, LayerBone)
			c.point(seg.To, LayerJoint)
		}
	}
	return c.frame
}

func newCanvas(w, h int, v view) *canvas {
	c := &canvas{
		frame: Frame{Width: w, Height: h, Cells: make([]Cell, w*h)},
		depth: make([]float64, w*h),
		view:  v,
	}
	for i := range c.frame.Cells {
		c.frame.Cells[i] = Cell{Rune: ' '}
		c.depth[i] = math.Inf(1)
	}
	return c
}

func (c *canvas) grid() {
	half := float64(gridSize) / 2
	step := float64(gridSize) / gridDivisions
	for i := 0; i <= gridDivisions; i++ {
		at := -half + float64(i)*step
		c.line(r3.Vec{X: -half, Z: at}, r3.Vec{X: half, Z: at}, LayerGrid)
		c.line(r3.Vec{X: at, Z: -half}, r3.Vec{X: at, Z: half}, LayerGrid)
	}
}

var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0},
	{4, 5}, {5, 7}, {7, 6}, {6, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func (c *canvas) part(pp placedPart) {
	p := pp.part
	switch p.Shape {
	case ShapeSphere:
		r := p.Size.X
		for _, axes := range [3][2]r3.Vec{
			{{X: 1}, {Y: 1}},
			{{Y: 1}, {Z: 1}},
			{{X: 1}, {Z: 1}},
		} {
			prev := pp.world.Apply(r3.Scale(r, axes[0]))
			for i := 1; i <= sphereSteps; i++ {
				a := 2 * math.Pi * float64(i) / sphereSteps
				local := r3.Add(r3.Scale(r*math.Cos(a), axes[0]), r3.Scale(r*math.Sin(a), axes[1]))
				next := pp.world.Apply(local)
				c.line(prev, next, p.Layer)
				prev = next
			}
		}
	default:
		h := r3.Scale(0.5, p.Size)
		var corners [8]r3.Vec
		for i := range corners {
			local := r3.Vec{X: -h.X, Y: -h.Y, Z: -h.Z}
			if i&1 != 0 {
				local.X = h.X
			}
			if i&2 != 0 {
				local.Y = h.Y
			}
			if i&4 != 0 {
				local.Z = h.Z
			}
			corners[i] = pp.world.Apply(local)
		}
		for _, e := range boxEdges {
			c.line(corners[e[0]], corners[e[1]], p.Layer)
		}
	}
}

// line samples the segment in world space so each sample is depth tested and
// clipped on its own.
func (c *canvas) line(a, b r3.Vec, layer Layer) {
	steps := c.steps(a, b)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.point(r3.Add(a, r3.Scale(t, r3.Sub(b, a))), layer)
	}
}

func (c *canvas) steps(a, b r3.Vec) int {
	ax, ay, _, okA := c.view.project(a)
	bx, by, _, okB := c.view.project(b)
	if !okA || !okB {
		return maxLineSteps / 4
	}
	dx := (bx - ax) * float64(c.frame.Width) / 2
	dy := (by - ay) * float64(c.frame.Height) / 2
	n := int(math.Ceil(math.Hypot(dx, dy) * 1.5))
	if n < 1 {
		return 1
	}
	if n > maxLineSteps {
		return maxLineSteps
	}
	return n
}

func (c *canvas) point(p r3.Vec, layer Layer) {
	x, y, depth, ok := c.view.project(p)
	if !ok {
		return
	}
	col := int(math.Floor((x + 1) / 2 * float64(c.frame.Width)))
	row := int(math.Floor((1 - y) / 2 * float64(c.frame.Height)))
	if col < 0 || col >= c.frame.Width || row < 0 || row >= c.frame.Height {
		return
	}
	idx := row*c.frame.Width + col
	// The grid never hides geometry standing on it.
	if layer == LayerGrid && c.frame.Cells[idx].Layer != LayerEmpty {
		return
	}
	if depth > c.depth[idx] && c.frame.Cells[idx].Layer != LayerGrid {
		return
	}
	c.depth[idx] = depth
	c.frame.Cells[idx] = Cell{Rune: layerGlyph[layer], Layer: layer}
}
