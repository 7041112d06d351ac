package userinput

import (
	"fmt"
	"math"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/monitoring"
	"github.com/banshee-data/emfield/internal/units"
)

// SubGridInput translates coordinates for an embedded fine grid. User points
// are expressed relative to the working-region origin; discretisation maps
// them into the subgrid's full local index space, which carries
// NBoundaryCells of padding below the working region on every axis.
type SubGridInput struct {
	S *field.SubGrid
}

var _ Translator = (*SubGridInput)(nil)

func NewSubGridInput(s *field.SubGrid) *SubGridInput { return &SubGridInput{S: s} }

func (t *SubGridInput) Discretise(p field.Point) field.Index {
	idx := roundIndex(p, t.S.Spacing())
	nbc := t.S.NBoundaryCells
	return field.Index{idx[0] + nbc, idx[1] + nbc, idx[2] + nbc}
}

// RoundToGrid snaps to the fine lattice. The result stays in working-region
// coordinates, matching what Discretise consumes.
func (t *SubGridInput) RoundToGrid(p field.Point) field.Point {
	return snap(p, t.S.Spacing())
}

// CheckPoint validates against the full subgrid extent. Points beyond the
// working region but still inside the subgrid cross the Outer Surface; that
// is an advanced placement, accepted with a warning.
func (t *SubGridInput) CheckPoint(p field.Point, context string) (field.Index, error) {
	idx := t.Discretise(p)
	if axis, ok := t.S.CheckBounds(idx); !ok {
		return field.Index{}, &OutOfBoundsError{Axis: axis, Context: context, Coord: p[axis]}
	}
	if t.outsideWorkingRegion(idx) {
		monitoring.Warnf("%s: point (%g, %g, %g) m lies outside the subgrid working region and traverses the outer surface", context, p[0], p[1], p[2])
	}
	return idx, nil
}

func (t *SubGridInput) outsideWorkingRegion(idx field.Index) bool {
	lo := t.S.InnerBound()
	hi := t.S.OuterBound()
	for a := 0; a < 3; a++ {
		if idx[a] < lo[a] || idx[a] > hi[a] {
			return true
		}
	}
	return false
}

func (t *SubGridInput) CheckSrcRxPoint(p field.Point, context string) (field.Index, error) {
	idx, err := t.CheckPoint(p, context)
	if err != nil {
		return field.Index{}, err
	}
	if t.S.WithinPML(idx) {
		monitoring.Warnf("%s: point (%g, %g, %g) m sits inside the subgrid absorbing boundary", context, p[0], p[1], p[2])
	}
	return idx, nil
}

func (t *SubGridInput) CheckBoxPoints(p1, p2 field.Point, context string) (field.Index, field.Index, bool, error) {
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

func (t *SubGridInput) CheckTrianglePoints(p1, p2, p3 field.Point, context string) ([3]field.Index, error) {
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

// CheckThickness clips against the working region rather than the padded
// subgrid extent; layers are user geometry and belong inside it.
func (t *SubGridInput) CheckThickness(axis units.Axis, lower, thickness float64, context string) (float64, float64, bool, error) {
	if thickness < 0 {
		return 0, 0, false, fmt.Errorf("%s: thickness must be non-negative, got %g", context, thickness)
	}
	if lower < 0 {
		return 0, 0, false, fmt.Errorf("%s: lower extent must be non-negative, got %g", context, lower)
	}
	// Clip in discretised fine cells, not continuous coordinates, so float
	// accumulation cannot decide boundary contact.
	spacing := t.S.Spacing()[axis]
	size := t.S.WorkingCells()[axis]
	lowerCell := int(math.Round(lower / spacing))
	upperCell := int(math.Round((lower + thickness) / spacing))
	if lowerCell >= size || upperCell <= 0 {
		return 0, 0, false, &OutOfBoundsError{Axis: axis, Context: context, Coord: lower}
	}
	if upperCell > size {
		upperCell = size
		monitoring.Warnf("%s: layer clipped to the subgrid working region on the %s axis", context, axis)
	}
	return float64(lowerCell) * spacing, float64(upperCell-lowerCell) * spacing, true, nil
}
