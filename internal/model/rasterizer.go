package model

import (
	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/geometry"
	"github.com/banshee-data/emfield/internal/units"
)

// GridRasterizer writes material assignments straight into a grid's material
// arrays. Index ranges arriving here have already been validated and clipped
// by a coordinate translator.
type GridRasterizer struct {
	G *field.Grid
}

var _ geometry.Rasterizer = (*GridRasterizer)(nil)

func (r *GridRasterizer) FillBox(lo, hi field.Index, m field.MaterialID) {
	for i := lo[0]; i < hi[0]; i++ {
		for j := lo[1]; j < hi[1]; j++ {
			for k := lo[2]; k < hi[2]; k++ {
				r.G.SetCellMaterial(i, j, k, m)
			}
		}
	}
}

// FillPlate assigns the cell layer adjacent to the plate plane.
func (r *GridRasterizer) FillPlate(lo, hi field.Index, normal units.Axis, m field.MaterialID) {
	plane := lo[normal]
	if plane >= r.G.Size()[normal] {
		plane--
	}
	var idx field.Index
	idx[normal] = plane
	t1, t2 := tangentials(normal)
	for a := lo[t1]; a < max(hi[t1], lo[t1]+1); a++ {
		for b := lo[t2]; b < max(hi[t2], lo[t2]+1); b++ {
			idx[t1] = a
			idx[t2] = b
			r.G.SetCellMaterial(idx[0], idx[1], idx[2], m)
		}
	}
}

// FillTriangle rasterizes by barycentric containment over the triangle's
// bounding rectangle, extruded thicknessCells along the normal.
func (r *GridRasterizer) FillTriangle(v [3]field.Index, normal units.Axis, thicknessCells int, m field.MaterialID) {
	t1, t2 := tangentials(normal)
	lo1, hi1 := minmax3(v[0][t1], v[1][t1], v[2][t1])
	lo2, hi2 := minmax3(v[0][t2], v[1][t2], v[2][t2])
	plane := v[0][normal]
	if thicknessCells < 1 {
		thicknessCells = 1
	}

	var idx field.Index
	for a := lo1; a <= hi1; a++ {
		for b := lo2; b <= hi2; b++ {
			if !inTriangle(a, b, v[0][t1], v[0][t2], v[1][t1], v[1][t2], v[2][t1], v[2][t2]) {
				continue
			}
			idx[t1] = a
			idx[t2] = b
			for d := 0; d < thicknessCells; d++ {
				idx[normal] = plane + d
				if _, ok := r.G.CheckBounds(idx); !ok {
					continue
				}
				r.G.SetCellMaterial(idx[0], idx[1], idx[2], m)
			}
		}
	}
}

func tangentials(normal units.Axis) (units.Axis, units.Axis) {
	switch normal {
	case units.X:
		return units.Y, units.Z
	case units.Y:
		return units.X, units.Z
	default:
		return units.X, units.Y
	}
}

func minmax3(a, b, c int) (int, int) {
	lo, hi := a, a
	for _, x := range []int{b, c} {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

// inTriangle tests 2D containment via edge cross products, accepting either
// winding order.
func inTriangle(px, py, x1, y1, x2, y2, x3, y3 int) bool {
	d1 := cross(px, py, x1, y1, x2, y2)
	d2 := cross(px, py, x2, y2, x3, y3)
	d3 := cross(px, py, x3, y3, x1, y1)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func cross(px, py, x1, y1, x2, y2 int) int {
	return (px-x2)*(y1-y2) - (x1-x2)*(py-y2)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
