package userinput

import (
	"fmt"
	"math"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/monitoring"
	"github.com/banshee-data/emfield/internal/units"
)

// DecomposedGridInput translates global physical coordinates into one rank's
// local index space. Objects that straddle the partition boundary are
// clipped to the local slice; objects entirely outside it are reported as
// invisible rather than failing, since another rank owns them.
type DecomposedGridInput struct {
	G *field.DecomposedGrid
}

var _ Translator = (*DecomposedGridInput)(nil)

func NewDecomposedGridInput(g *field.DecomposedGrid) *DecomposedGridInput {
	return &DecomposedGridInput{G: g}
}

func (t *DecomposedGridInput) Discretise(p field.Point) field.Index {
	global := roundIndex(p, t.G.Spacing())
	return t.G.GlobalToLocal(global)
}

func (t *DecomposedGridInput) RoundToGrid(p field.Point) field.Point {
	return snap(p, t.G.Spacing())
}

func (t *DecomposedGridInput) CheckPoint(p field.Point, context string) (field.Index, error) {
	idx := t.Discretise(p)
	if axis, ok := t.G.CheckBounds(idx); !ok {
		return field.Index{}, &OutOfBoundsError{Axis: axis, Context: context, Coord: p[axis]}
	}
	return idx, nil
}

func (t *DecomposedGridInput) CheckSrcRxPoint(p field.Point, context string) (field.Index, error) {
	idx, err := t.CheckPoint(p, context)
	if err != nil {
		return field.Index{}, err
	}
	if t.G.WithinPML(idx) {
		monitoring.Warnf("%s: point (%g, %g, %g) m sits inside the absorbing boundary", context, p[0], p[1], p[2])
	}
	return idx, nil
}

// CheckBoxPoints validates ordering in global space, then clips the box to
// this rank's slice. Visibility means any portion is local, not the whole
// box.
func (t *DecomposedGridInput) CheckBoxPoints(p1, p2 field.Point, context string) (field.Index, field.Index, bool, error) {
	lo := t.Discretise(p1)
	hi := t.Discretise(p2)
	if err := checkBoxOrdering(lo, hi, p1, p2, context); err != nil {
		return field.Index{}, field.Index{}, false, err
	}

	size := t.G.Size()
	visible := true
	for a := units.X; a <= units.Z; a++ {
		if hi[a] < 0 || lo[a] > size[a] {
			visible = false
		}
		if lo[a] < 0 {
			lo[a] = 0
		}
		if hi[a] > size[a] {
			hi[a] = size[a]
		}
	}
	if !visible {
		return field.Index{}, field.Index{}, false, nil
	}
	return lo, hi, true, nil
}

func (t *DecomposedGridInput) CheckTrianglePoints(p1, p2, p3 field.Point, context string) ([3]field.Index, error) {
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

// CheckThickness translates the global layer extent into local coordinates
// before clipping. A layer entirely on another rank is invisible, not an
// error.
func (t *DecomposedGridInput) CheckThickness(axis units.Axis, lower, thickness float64, context string) (float64, float64, bool, error) {
	if thickness < 0 {
		return 0, 0, false, fmt.Errorf("%s: thickness must be non-negative, got %g", context, thickness)
	}
	if lower < 0 {
		return 0, 0, false, fmt.Errorf("%s: lower extent must be non-negative, got %g", context, lower)
	}

	// Discretise the global extents first, then translate and clip in cell
	// indices so float accumulation cannot move the partition boundary.
	spacing := t.G.Spacing()[axis]
	size := t.G.Size()[axis]
	lowerCell := int(math.Round(lower/spacing)) - t.G.Offset[axis]
	upperCell := int(math.Round((lower+thickness)/spacing)) - t.G.Offset[axis]

	if lowerCell >= size || upperCell <= 0 {
		return 0, 0, false, nil
	}
	if lowerCell < 0 {
		lowerCell = 0
	}
	if upperCell > size {
		upperCell = size
	}
	return float64(lowerCell) * spacing, float64(upperCell-lowerCell) * spacing, true, nil
}
