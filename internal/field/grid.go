// Package field implements the FDTD grid variants (main, decomposed, sub)
// and the multi-resolution coupling between them.
package field

import (
	"fmt"

	"github.com/banshee-data/emfield/internal/units"
)

// Component identifies one of the six field components stored on a grid.
type Component int

const (
	CompEx Component = iota
	CompEy
	CompEz
	CompHx
	CompHy
	CompHz
	numComponents
)

var componentNames = []string{"Ex", "Ey", "Ez", "Hx", "Hy", "Hz"}

func (c Component) String() string {
	if c < CompEx || c >= numComponents {
		return "?"
	}
	return componentNames[c]
}

// IsElectric reports whether the component belongs to the electric field.
func (c Component) IsElectric() bool { return c <= CompEz }

// Index is a discrete grid index (i, j, k).
type Index [3]int

// Point is a continuous physical coordinate in metres.
type Point [3]float64

// MaterialID indexes the per-material update coefficient tables.
type MaterialID uint16

// Grid owns the field arrays, material lookup, and coordinate system for one
// rectilinear FDTD mesh. Field arrays are flat []float64 indexed
// (i*(Ny+1)+j)*(Nz+1)+k; all six share the same extent.
type Grid struct {
	Name       string
	Nx, Ny, Nz int
	Dx, Dy, Dz float64
	Dt         float64

	Ex, Ey, Ez []float64
	Hx, Hy, Hz []float64

	// ID holds one material index per component per node, component-major.
	ID []MaterialID

	// CoeffsE and CoeffsH hold one row per material:
	// [c0, cx, cy, cz, csrc] where cx..cz are the curl coefficients for
	// neighbour differences along each axis and csrc scales source terms.
	CoeffsE [][5]float64
	CoeffsH [][5]float64

	materials []Material

	// PMLThickness is the number of absorbing boundary cells on each side.
	// Placement checks warn when sources or receivers land inside it.
	PMLThickness int
}

// NewGrid allocates a grid with the given extent and discretisation. The
// grid starts with a single free-space material at ID 0. dt must already
// satisfy the caller's stability bound; it is stored, not checked.
func NewGrid(name string, nx, ny, nz int, dx, dy, dz, dt float64) (*Grid, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("grid %q: extents must be positive, got (%d, %d, %d)", name, nx, ny, nz)
	}
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return nil, fmt.Errorf("grid %q: cell sizes must be positive, got (%g, %g, %g)", name, dx, dy, dz)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("grid %q: dt must be positive, got %g", name, dt)
	}

	n := (nx + 1) * (ny + 1) * (nz + 1)
	g := &Grid{
		Name: name,
		Nx:   nx, Ny: ny, Nz: nz,
		Dx: dx, Dy: dy, Dz: dz,
		Dt: dt,
		Ex: make([]float64, n), Ey: make([]float64, n), Ez: make([]float64, n),
		Hx: make([]float64, n), Hy: make([]float64, n), Hz: make([]float64, n),
		ID: make([]MaterialID, int(numComponents)*n),
	}
	if _, err := g.AddMaterial(FreeSpace()); err != nil {
		return nil, err
	}
	return g, nil
}

// nodes returns the per-component node count.
func (g *Grid) nodes() int { return (g.Nx + 1) * (g.Ny + 1) * (g.Nz + 1) }

// Idx converts (i, j, k) to a flat field-array index.
func (g *Grid) Idx(i, j, k int) int {
	return (i*(g.Ny+1)+j)*(g.Nz+1) + k
}

// Field returns the array backing the given component.
func (g *Grid) Field(c Component) []float64 {
	switch c {
	case CompEx:
		return g.Ex
	case CompEy:
		return g.Ey
	case CompEz:
		return g.Ez
	case CompHx:
		return g.Hx
	case CompHy:
		return g.Hy
	case CompHz:
		return g.Hz
	}
	return nil
}

// MaterialAt returns the material at a node for one component.
func (g *Grid) MaterialAt(c Component, i, j, k int) MaterialID {
	return g.ID[int(c)*g.nodes()+g.Idx(i, j, k)]
}

// SetMaterialAt assigns the material at a node for one component.
func (g *Grid) SetMaterialAt(c Component, i, j, k int, m MaterialID) {
	g.ID[int(c)*g.nodes()+g.Idx(i, j, k)] = m
}

// SetCellMaterial assigns all six component nodes of one cell, the common
// case for solid geometry rasterization.
func (g *Grid) SetCellMaterial(i, j, k int, m MaterialID) {
	for c := CompEx; c < numComponents; c++ {
		g.SetMaterialAt(c, i, j, k, m)
	}
}

// Size returns the grid extent in cells.
func (g *Grid) Size() Index { return Index{g.Nx, g.Ny, g.Nz} }

// Spacing returns the cell sizes per axis.
func (g *Grid) Spacing() [3]float64 { return [3]float64{g.Dx, g.Dy, g.Dz} }

// CheckBounds reports whether the index lies within [0, extent] on every
// axis. On failure it returns the first offending axis.
func (g *Grid) CheckBounds(p Index) (units.Axis, bool) {
	size := g.Size()
	for a := units.X; a <= units.Z; a++ {
		if p[a] < 0 || p[a] > size[a] {
			return a, false
		}
	}
	return 0, true
}

// WithinPML reports whether the index falls inside the absorbing boundary
// region on any axis.
func (g *Grid) WithinPML(p Index) bool {
	if g.PMLThickness <= 0 {
		return false
	}
	size := g.Size()
	for a := units.X; a <= units.Z; a++ {
		if p[a] < g.PMLThickness || p[a] > size[a]-g.PMLThickness {
			return true
		}
	}
	return false
}

// Zero clears all six field arrays. Material assignments are kept.
func (g *Grid) Zero() {
	for _, f := range [][]float64{g.Ex, g.Ey, g.Ez, g.Hx, g.Hy, g.Hz} {
		for i := range f {
			f[i] = 0
		}
	}
}
