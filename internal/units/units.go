// Package units provides shared physical constants and discretisation
// helpers for the electromagnetic solver.
package units

import "math"

// Physical constants (SI).
const (
	// C0 is the speed of light in vacuum (m/s).
	C0 = 299792458.0
	// Mu0 is the permeability of free space (H/m).
	Mu0 = 4e-7 * math.Pi
)

// Eps0 is the permittivity of free space (F/m), derived from C0 and Mu0.
var Eps0 = 1.0 / (Mu0 * C0 * C0)

// Z0 is the impedance of free space (ohms).
var Z0 = math.Sqrt(Mu0 / Eps0)

// CFLTimeStep returns the largest stable time step for a 3D Yee grid with
// the given cell sizes (the Courant limit).
func CFLTimeStep(dx, dy, dz float64) float64 {
	return 1.0 / (C0 * math.Sqrt(1.0/(dx*dx)+1.0/(dy*dy)+1.0/(dz*dz)))
}

// Axis identifies one of the three spatial axes. It is used wherever a
// direction must be reported back to the user (bounds errors, thickness
// checks) or selects a stride.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// AxisNames lists the user-facing axis labels in index order.
var AxisNames = []string{"x", "y", "z"}

// String returns the user-facing label for the axis.
func (a Axis) String() string {
	if a < X || a > Z {
		return "?"
	}
	return AxisNames[a]
}

// ParseAxis maps a user-supplied axis label to an Axis.
func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "x":
		return X, true
	case "y":
		return Y, true
	case "z":
		return Z, true
	}
	return 0, false
}
