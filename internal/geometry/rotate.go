package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/units"
)

// rotatePoint turns p about an axis-parallel line through origin. Only
// multiples of 90 degrees keep axis-aligned geometry axis aligned, so
// anything else is rejected.
func rotatePoint(p field.Point, axis units.Axis, angleDeg float64, origin field.Point) (field.Point, error) {
	if math.Mod(angleDeg, 90) != 0 {
		return field.Point{}, fmt.Errorf("rotation angle %g is not a multiple of 90 degrees", angleDeg)
	}

	var dir r3.Vec
	switch axis {
	case units.X:
		dir = r3.Vec{X: 1}
	case units.Y:
		dir = r3.Vec{Y: 1}
	case units.Z:
		dir = r3.Vec{Z: 1}
	default:
		return field.Point{}, fmt.Errorf("invalid rotation axis %d", axis)
	}

	rot := r3.NewRotation(angleDeg*math.Pi/180, dir)
	v := rot.Rotate(r3.Vec{
		X: p[0] - origin[0],
		Y: p[1] - origin[1],
		Z: p[2] - origin[2],
	})

	// Snap the absolute coordinate, not the relative vector: rounding before
	// adding the origin back would reintroduce sin/cos residue and let
	// repeated rotations drift.
	out := field.Point{
		roundResidue(origin[0] + v.X),
		roundResidue(origin[1] + v.Y),
		roundResidue(origin[2] + v.Z),
	}
	return out, nil
}

func roundResidue(x float64) float64 {
	const scale = 1e12
	return math.Round(x*scale) / scale
}
