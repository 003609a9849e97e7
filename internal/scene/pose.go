package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// PoseValue is one entry of a pose update: either a scalar angle in degrees
// for a rigged joint, or a per-axis Euler rotation in degrees for a figure
// part. Each axis is optional.
type PoseValue struct {
	Scalar  *float64
	X, Y, Z *float64
}

// Degrees builds a scalar joint value.
func Degrees(deg float64) PoseValue {
	return PoseValue{Scalar: &deg}
}

// Euler builds a three-axis rotation.
func Euler(x, y, z float64) PoseValue {
	return PoseValue{X: &x, Y: &y, Z: &z}
}

// IsScalar reports whether the value targets a rigged joint.
func (v PoseValue) IsScalar() bool {
	return v.Scalar != nil
}

// radians returns the per-axis rotation with missing axes at zero.
func (v PoseValue) radians() (x, y, z float64) {
	return degToRad(deref(v.X)), degToRad(deref(v.Y)), degToRad(deref(v.Z))
}

type eulerWire struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`
}

// UnmarshalJSON accepts a number or an {x,y,z} object.
func (v *PoseValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*v = PoseValue{}
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var wire eulerWire
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return fmt.Errorf("pose rotation: %w", err)
		}
		v.X, v.Y, v.Z = wire.X, wire.Y, wire.Z
		return nil
	}
	var deg float64
	if err := json.Unmarshal(trimmed, &deg); err != nil {
		return fmt.Errorf("pose value must be a number or an {x,y,z} object, got %s", trimmed)
	}
	v.Scalar = &deg
	return nil
}

// MarshalJSON writes the scalar or object form.
func (v PoseValue) MarshalJSON() ([]byte, error) {
	if v.Scalar != nil {
		return json.Marshal(*v.Scalar)
	}
	return json.Marshal(eulerWire{X: v.X, Y: v.Y, Z: v.Z})
}

// PoseUpdate maps joint or part names to rotations. A nil update means
// "return to the resting pose".
type PoseUpdate map[string]PoseValue

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
