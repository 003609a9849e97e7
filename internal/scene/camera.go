package scene

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultFOV    = 75 * math.Pi / 180
	defaultNear   = 0.1
	defaultFar    = 1000
	dampingFactor = 0.05
	minPolar      = 0.01
	maxPolar      = math.Pi - 0.01
	minDistance   = 5
	maxDistance   = 400
	settleEpsilon = 1e-5
)

// cellAspect is the width of a terminal cell relative to its height.
const cellAspect = 0.5

// Camera is a perspective camera orbiting a target with damped controls.
type Camera struct {
	Target r3.Vec

	FOV    float64
	Near   float64
	Far    float64
	aspect float64

	azimuth  float64
	polar    float64
	distance float64

	// Pending input, consumed gradually by Update.
	deltaAzimuth float64
	deltaPolar   float64
	deltaZoom    float64
}

// NewCamera places the camera at (0, 30, 50) looking at the origin.
func NewCamera() *Camera {
	c := &Camera{
		FOV:    defaultFOV,
		Near:   defaultNear,
		Far:    defaultFar,
		aspect: 1,
	}
	c.lookFrom(r3.Vec{Y: 30, Z: 50})
	return c
}

func (c *Camera) lookFrom(pos r3.Vec) {
	offset := r3.Sub(pos, c.Target)
	c.distance = r3.Norm(offset)
	c.azimuth = math.Atan2(offset.X, offset.Z)
	c.polar = math.Acos(clamp(offset.Y/c.distance, -1, 1))
}

// SetAspect updates the projection aspect ratio (width / height).
func (c *Camera) SetAspect(aspect float64) {
	if aspect <= 0 || math.IsNaN(aspect) {
		aspect = 1
	}
	c.aspect = aspect
}

// Aspect returns the projection aspect ratio.
func (c *Camera) Aspect() float64 { return c.aspect }

// Orbit queues a rotation around the target in radians.
func (c *Camera) Orbit(dAzimuth, dPolar float64) {
	c.deltaAzimuth += dAzimuth
	c.deltaPolar += dPolar
}

// Zoom queues a dolly; positive steps move closer.
func (c *Camera) Zoom(steps float64) {
	c.deltaZoom += steps
}

// Update consumes a damped share of the pending input. It runs once per
// frame and reports whether the camera is still moving.
func (c *Camera) Update() bool {
	c.azimuth += c.deltaAzimuth * dampingFactor
	c.polar = clamp(c.polar+c.deltaPolar*dampingFactor, minPolar, maxPolar)
	c.distance = clamp(c.distance*math.Pow(0.9, c.deltaZoom*dampingFactor), minDistance, maxDistance)

	c.deltaAzimuth *= 1 - dampingFactor
	c.deltaPolar *= 1 - dampingFactor
	c.deltaZoom *= 1 - dampingFactor

	moving := false
	for _, d := range []*float64{&c.deltaAzimuth, &c.deltaPolar, &c.deltaZoom} {
		if math.Abs(*d) < settleEpsilon {
			*d = 0
			continue
		}
		moving = true
	}
	return moving
}

// Position returns the camera's world position.
func (c *Camera) Position() r3.Vec {
	sinPolar := math.Sin(c.polar)
	return r3.Add(c.Target, r3.Vec{
		X: c.distance * sinPolar * math.Sin(c.azimuth),
		Y: c.distance * math.Cos(c.polar),
		Z: c.distance * sinPolar * math.Cos(c.azimuth),
	})
}

// Distance returns the current distance to the target.
func (c *Camera) Distance() float64 { return c.distance }

// view is the camera basis for one frame.
type view struct {
	eye, right, up, forward r3.Vec
	tanHalf                 float64
	aspect                  float64
	near, far               float64
}

func (c *Camera) view() view {
	eye := c.Position()
	forward := r3.Unit(r3.Sub(c.Target, eye))
	worldUp := r3.Vec{Y: 1}
	right := r3.Cross(forward, worldUp)
	if r3.Norm(right) < 1e-9 {
		right = r3.Vec{X: 1}
	}
	right = r3.Unit(right)
	up := r3.Cross(right, forward)
	return view{
		eye:     eye,
		right:   right,
		up:      up,
		forward: forward,
		tanHalf: math.Tan(c.FOV / 2),
		aspect:  c.aspect,
		near:    c.Near,
		far:     c.Far,
	}
}

// project maps a world point to normalised device coordinates and depth.
// ok is false outside the near/far range.
func (v view) project(p r3.Vec) (x, y, depth float64, ok bool) {
	rel := r3.Sub(p, v.eye)
	depth = r3.Dot(rel, v.forward)
	if depth < v.near || depth > v.far {
		return 0, 0, depth, false
	}
	x = r3.Dot(rel, v.right) / (depth * v.tanHalf * v.aspect)
	y = r3.Dot(rel, v.up) / (depth * v.tanHalf)
	return x, y, depth, true
}
