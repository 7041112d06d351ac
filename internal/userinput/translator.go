// Package userinput resolves user-supplied physical coordinates into grid
// indices, with bounds validation appropriate to each grid variant. Geometry
// construction goes through a Translator so the same building code works on
// a whole-domain grid, one rank's slice of a decomposed domain, or a
// subgrid's local index space.
package userinput

import (
	"fmt"
	"math"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/monitoring"
	"github.com/banshee-data/emfield/internal/units"
)

// OutOfBoundsError reports a user coordinate that resolves outside the
// addressed grid, naming the offending axis and the physical value.
type OutOfBoundsError struct {
	Axis    units.Axis
	Context string
	Coord   float64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: coordinate %g m is outside the grid on the %s axis", e.Context, e.Coord, e.Axis)
}

// Translator converts continuous physical points to discrete grid indices
// and back, with validation. One concrete type exists per grid variant.
type Translator interface {
	// Discretise performs nearest-index rounding with no bounds check.
	Discretise(p field.Point) field.Index

	// RoundToGrid snaps a point onto the grid lattice. It is idempotent.
	RoundToGrid(p field.Point) field.Point

	// CheckPoint discretises and validates bounds. The context string
	// names the calling construction step for error reporting.
	CheckPoint(p field.Point, context string) (field.Index, error)

	// CheckSrcRxPoint is CheckPoint plus a non-fatal warning when the
	// point lands inside an absorbing boundary region.
	CheckSrcRxPoint(p field.Point, context string) (field.Index, error)

	// CheckBoxPoints validates both corners and their ordering. The
	// returned indices are clipped to the local extent where the variant
	// clips; visible reports whether any portion remains addressable.
	CheckBoxPoints(p1, p2 field.Point, context string) (lo, hi field.Index, visible bool, err error)

	// CheckTrianglePoints validates the three vertices.
	CheckTrianglePoints(p1, p2, p3 field.Point, context string) ([3]field.Index, error)

	// CheckThickness validates a layer of the given thickness starting at
	// lower on one axis, clipping to the visible portion. It returns the
	// possibly clipped extent and whether anything remains visible.
	CheckThickness(axis units.Axis, lower, thickness float64, context string) (clippedLower, clippedThickness float64, visible bool, err error)
}

func roundIndex(p field.Point, spacing [3]float64) field.Index {
	var idx field.Index
	for a := 0; a < 3; a++ {
		idx[a] = int(math.Round(p[a] / spacing[a]))
	}
	return idx
}

func snap(p field.Point, spacing [3]float64) field.Point {
	idx := roundIndex(p, spacing)
	return field.Point{
		float64(idx[0]) * spacing[0],
		float64(idx[1]) * spacing[1],
		float64(idx[2]) * spacing[2],
	}
}

// checkBoxOrdering rejects inverted boxes on any axis and fully degenerate
// ones (all three axes equal). Equality on one or two axes is allowed so
// plates and edges remain expressible.
func checkBoxOrdering(lo, hi field.Index, p1, p2 field.Point, context string) error {
	equal := 0
	for a := units.X; a <= units.Z; a++ {
		if lo[a] > hi[a] {
			return fmt.Errorf("%s: lower corner exceeds upper corner on the %s axis (%g > %g)",
				context, a, p1[a], p2[a])
		}
		if lo[a] == hi[a] {
			equal++
		}
	}
	if equal == 3 {
		return fmt.Errorf("%s: box corners are identical at (%g, %g, %g)", context, p1[0], p1[1], p1[2])
	}
	return nil
}

// MainGridInput translates coordinates for a whole-domain grid: the identity
// mapping beyond the common contract.
type MainGridInput struct {
	G *field.Grid
}

var _ Translator = (*MainGridInput)(nil)

func NewMainGridInput(g *field.Grid) *MainGridInput { return &MainGridInput{G: g} }

func (t *MainGridInput) Discretise(p field.Point) field.Index {
	return roundIndex(p, t.G.Spacing())
}

func (t *MainGridInput) RoundToGrid(p field.Point) field.Point {
	return snap(p, t.G.Spacing())
}

func (t *MainGridInput) CheckPoint(p field.Point, context string) (field.Index, error) {
	idx := t.Discretise(p)
	if axis, ok := t.G.CheckBounds(idx); !ok {
		return field.Index{}, &OutOfBoundsError{Axis: axis, Context: context, Coord: p[axis]}
	}
	return idx, nil
}

func (t *MainGridInput) CheckSrcRxPoint(p field.Point, context string) (field.Index, error) {
	idx, err := t.CheckPoint(p, context)
	if err != nil {
		return field.Index{}, err
	}
	if t.G.WithinPML(idx) {
		monitoring.Warnf("%s: point (%g, %g, %g) m sits inside the absorbing boundary", context, p[0], p[1], p[2])
	}
	return idx, nil
}

func (t *MainGridInput) CheckBoxPoints(p1, p2 field.Point, context string) (field.Index, field.Index, bool, error) {
	lo, err := t.CheckPoint(p1, context)
	if err != nil {
		return field.Index{}, field.Index{}, false, err
	}
	hi, err := t.CheckPoint(p2, context)
	if err != nil {
		return field.Index{}, field.Index{}, false, err
	}
	if err := checkBoxOrdering(lo, hi, p1, p2, context); err != nil {
		return field.Index{}, field.Index{}, false, err
	}
	return lo, hi, true, nil
}

func (t *MainGridInput) CheckTrianglePoints(p1, p2, p3 field.Point, context string) ([3]field.Index, error) {
	var out [3]field.Index
	for i, p := range []field.Point{p1, p2, p3} {
		idx, err := t.CheckPoint(p, context)
		if err != nil {
			return out, err
		}
		out[i] = idx
	}
	return out, nil
}

// CheckThickness validates a layer's extent along one axis. The lower and
// upper extents are discretised to cell indices before clipping, which
// avoids float accumulation deciding whether a layer just touches the
// boundary. A layer entirely outside a whole-domain grid is a
// configuration error.
func (t *MainGridInput) CheckThickness(axis units.Axis, lower, thickness float64, context string) (float64, float64, bool, error) {
	if thickness < 0 {
		return 0, 0, false, fmt.Errorf("%s: thickness must be non-negative, got %g", context, thickness)
	}
	if lower < 0 {
		return 0, 0, false, fmt.Errorf("%s: lower extent must be non-negative, got %g", context, lower)
	}

	spacing := t.G.Spacing()[axis]
	size := t.G.Size()[axis]
	lowerCell := int(math.Round(lower / spacing))
	upperCell := int(math.Round((lower + thickness) / spacing))

	if lowerCell >= size || upperCell <= 0 {
		return 0, 0, false, &OutOfBoundsError{Axis: axis, Context: context, Coord: lower}
	}
	if upperCell > size {
		upperCell = size
		monitoring.Warnf("%s: layer clipped to the grid extent on the %s axis", context, axis)
	}
	return float64(lowerCell) * spacing, float64(upperCell-lowerCell) * spacing, true, nil
}
