package field

import (
	"fmt"
)

// SubGridSpec describes an embedded fine grid in main-grid index space.
type SubGridSpec struct {
	Name string

	// Working region bounds, inclusive lower / exclusive upper, in
	// main-grid cells.
	I0, J0, K0 int
	I1, J1, K1 int

	// Ratio is the number of subgrid cells per main-grid cell per axis.
	// It must be odd so fine nodes align with coarse nodes.
	Ratio int

	// ISOSSep is the main-grid cell separation between the Inner Surface
	// and the Outer Surface. Zero selects the default of 3.
	ISOSSep int

	// PMLThickness is the subgrid's own absorbing layer depth in subgrid
	// cells. Zero selects the default of 6.
	PMLThickness int

	// PMLSeparation is the subgrid-cell gap between the Outer Surface and
	// the absorbing layer. Zero selects the default of Ratio/2 + 2.
	PMLSeparation int
}

// SubGrid is an embedded finer grid sharing the main grid's physical domain.
// Its total extent per axis is the working region scaled by Ratio plus
// NBoundaryCells of padding on each side; the Inner Surface sits at index
// NBoundaryCells and the Outer Surface Ratio*ISOSSep fine cells outside it.
type SubGrid struct {
	Grid

	// Main is the owning grid. The subgrid reads its boundary layer during
	// precursor capture and writes only its OS boundary cells; the main
	// grid's interior is never touched from here.
	Main *Grid

	Ratio   int
	ISOSSep int

	// Working region in main-grid index space.
	I0, J0, K0 int
	I1, J1, K1 int

	// NWx, NWy, NWz are the working region extents in subgrid cells.
	NWx, NWy, NWz int

	// NBoundaryCells is the padding between the subgrid's edge and the
	// working region: PML + PML separation + IS/OS gap, in subgrid cells.
	NBoundaryCells int

	// PMLSeparation is the fine-cell gap between the OS and the PML.
	PMLSeparation int
}

// NewSubGrid validates the spec against the owning grid and allocates the
// subgrid. All geometry errors surface here, before time stepping starts.
func NewSubGrid(main *Grid, spec SubGridSpec) (*SubGrid, error) {
	if main == nil {
		return nil, fmt.Errorf("subgrid %q: nil main grid", spec.Name)
	}
	if spec.Ratio < 1 {
		return nil, fmt.Errorf("subgrid %q: ratio must be >= 1, got %d", spec.Name, spec.Ratio)
	}
	if spec.Ratio%2 == 0 {
		return nil, fmt.Errorf("subgrid %q: ratio must be odd, got %d", spec.Name, spec.Ratio)
	}
	isOSSep := spec.ISOSSep
	if isOSSep == 0 {
		isOSSep = 3
	}
	if isOSSep < 1 {
		return nil, fmt.Errorf("subgrid %q: IS/OS separation must be >= 1, got %d", spec.Name, spec.ISOSSep)
	}
	pml := spec.PMLThickness
	if pml == 0 {
		pml = 6
	}
	if pml < 0 {
		return nil, fmt.Errorf("subgrid %q: PML thickness must be non-negative, got %d", spec.Name, spec.PMLThickness)
	}
	pmlSep := spec.PMLSeparation
	if pmlSep == 0 {
		pmlSep = spec.Ratio/2 + 2
	}
	if pmlSep < 1 {
		return nil, fmt.Errorf("subgrid %q: PML separation must be >= 1, got %d", spec.Name, spec.PMLSeparation)
	}

	lower := Index{spec.I0, spec.J0, spec.K0}
	upper := Index{spec.I1, spec.J1, spec.K1}
	mainSize := main.Size()
	for a := 0; a < 3; a++ {
		if lower[a] >= upper[a] {
			return nil, fmt.Errorf("subgrid %q: working region inverted or empty on %s (%d >= %d)",
				spec.Name, []string{"x", "y", "z"}[a], lower[a], upper[a])
		}
		// The OS must sit strictly inside the main grid so its update
		// stencils have neighbours on both sides.
		if lower[a]-isOSSep < 1 || upper[a]+isOSSep > mainSize[a]-1 {
			return nil, fmt.Errorf("subgrid %q: working region [%d, %d] plus IS/OS separation %d leaves no room inside the main grid on %s",
				spec.Name, lower[a], upper[a], isOSSep, []string{"x", "y", "z"}[a])
		}
	}

	nbc := spec.Ratio*isOSSep + pmlSep + pml
	nwx := (spec.I1 - spec.I0) * spec.Ratio
	nwy := (spec.J1 - spec.J0) * spec.Ratio
	nwz := (spec.K1 - spec.K0) * spec.Ratio

	g, err := NewGrid(spec.Name,
		nwx+2*nbc, nwy+2*nbc, nwz+2*nbc,
		main.Dx/float64(spec.Ratio), main.Dy/float64(spec.Ratio), main.Dz/float64(spec.Ratio),
		main.Dt/float64(spec.Ratio))
	if err != nil {
		return nil, err
	}
	g.PMLThickness = pml

	return &SubGrid{
		Grid:           *g,
		Main:           main,
		Ratio:          spec.Ratio,
		ISOSSep:        isOSSep,
		I0:             spec.I0,
		J0:             spec.J0,
		K0:             spec.K0,
		I1:             spec.I1,
		J1:             spec.J1,
		K1:             spec.K1,
		NWx:            nwx,
		NWy:            nwy,
		NWz:            nwz,
		NBoundaryCells: nbc,
		PMLSeparation:  pmlSep,
	}, nil
}

// InnerBound returns the subgrid index of the working region origin.
func (s *SubGrid) InnerBound() Index {
	return Index{s.NBoundaryCells, s.NBoundaryCells, s.NBoundaryCells}
}

// OuterBound returns the subgrid index of the working region's upper corner.
func (s *SubGrid) OuterBound() Index {
	return Index{s.NBoundaryCells + s.NWx, s.NBoundaryCells + s.NWy, s.NBoundaryCells + s.NWz}
}

// osPlane returns the subgrid index of the Outer Surface on the lower side.
func (s *SubGrid) osPlane() int {
	return s.NBoundaryCells - s.Ratio*s.ISOSSep
}

// WorkingCells returns the working region extent in subgrid cells.
func (s *SubGrid) WorkingCells() Index { return Index{s.NWx, s.NWy, s.NWz} }
