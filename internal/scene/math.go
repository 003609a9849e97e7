package scene

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Identity is the no-op rotation. The zero r3.Rotation is not a rotation.
var Identity = r3.Rotation{Real: 1}

// Compose returns the rotation that applies b first and then a.
func Compose(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}

// EulerXYZ builds a rotation from intrinsic X, Y, Z angles in radians, the
// matrix product Rx*Ry*Rz.
func EulerXYZ(x, y, z float64) r3.Rotation {
	rot := Identity
	if x != 0 {
		rot = Compose(rot, r3.NewRotation(x, r3.Vec{X: 1}))
	}
	if y != 0 {
		rot = Compose(rot, r3.NewRotation(y, r3.Vec{Y: 1}))
	}
	if z != 0 {
		rot = Compose(rot, r3.NewRotation(z, r3.Vec{Z: 1}))
	}
	return rot
}

// Transform is a rigid placement: rotate, then translate.
type Transform struct {
	Rot r3.Rotation
	Pos r3.Vec
}

// IdentityTransform places a node at the origin unrotated.
var IdentityTransform = Transform{Rot: Identity}

// Apply maps a point from local space into the parent space.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.Pos, t.Rot.Rotate(p))
}

// Then returns the placement of a child with local placement c.
func (t Transform) Then(c Transform) Transform {
	return Transform{
		Rot: Compose(t.Rot, c.Rot),
		Pos: t.Apply(c.Pos),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
