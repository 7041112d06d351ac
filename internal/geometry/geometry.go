// Package geometry defines the user-facing geometry objects and the
// rasterization boundary. Objects validate themselves through a coordinate
// translator, then hand discrete index ranges to a Rasterizer; the package
// never writes material arrays itself.
package geometry

import (
	"fmt"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/units"
	"github.com/banshee-data/emfield/internal/userinput"
)

// Rasterizer consumes validated index ranges and assigns materials. The
// concrete implementation lives with the grid construction code; tests use a
// recording fake.
type Rasterizer interface {
	FillBox(lo, hi field.Index, m field.MaterialID)
	FillPlate(lo, hi field.Index, normal units.Axis, m field.MaterialID)
	FillTriangle(v [3]field.Index, normal units.Axis, thicknessCells int, m field.MaterialID)
}

// Object is a buildable piece of user geometry.
type Object interface {
	Build(tr userinput.Translator, ras Rasterizer, m field.MaterialID) error
}

// Box is an axis-aligned solid between two corners.
type Box struct {
	P1, P2   field.Point
	Material string `json:"material"`
}

func (b *Box) context() string {
	return fmt.Sprintf("box (%g, %g, %g)-(%g, %g, %g)", b.P1[0], b.P1[1], b.P1[2], b.P2[0], b.P2[1], b.P2[2])
}

// Build validates both corners and rasterizes the visible portion. A box
// entirely outside a decomposed rank's slice is skipped without error.
func (b *Box) Build(tr userinput.Translator, ras Rasterizer, m field.MaterialID) error {
	lo, hi, visible, err := tr.CheckBoxPoints(b.P1, b.P2, b.context())
	if err != nil {
		return err
	}
	if !visible {
		return nil
	}
	ras.FillBox(lo, hi, m)
	return nil
}

// Rotate turns the box about an axis through origin by a multiple of 90
// degrees, keeping it axis aligned.
func (b *Box) Rotate(axis units.Axis, angleDeg float64, origin field.Point) error {
	p1, err := rotatePoint(b.P1, axis, angleDeg, origin)
	if err != nil {
		return fmt.Errorf("%s: %w", b.context(), err)
	}
	p2, err := rotatePoint(b.P2, axis, angleDeg, origin)
	if err != nil {
		return fmt.Errorf("%s: %w", b.context(), err)
	}
	// Rotation can swap which corner is lower.
	for a := 0; a < 3; a++ {
		if p1[a] > p2[a] {
			p1[a], p2[a] = p2[a], p1[a]
		}
	}
	b.P1, b.P2 = p1, p2
	return nil
}

// Plate is a box degenerate on exactly one axis.
type Plate struct {
	P1, P2   field.Point
	Material string `json:"material"`
}

func (p *Plate) context() string {
	return fmt.Sprintf("plate (%g, %g, %g)-(%g, %g, %g)", p.P1[0], p.P1[1], p.P1[2], p.P2[0], p.P2[1], p.P2[2])
}

func (p *Plate) Build(tr userinput.Translator, ras Rasterizer, m field.MaterialID) error {
	lo, hi, visible, err := tr.CheckBoxPoints(p.P1, p.P2, p.context())
	if err != nil {
		return err
	}
	if !visible {
		return nil
	}
	normal := units.Axis(-1)
	for a := units.X; a <= units.Z; a++ {
		if lo[a] == hi[a] {
			if normal >= 0 {
				return fmt.Errorf("%s: degenerate on more than one axis", p.context())
			}
			normal = a
		}
	}
	if normal < 0 {
		return fmt.Errorf("%s: corners span a volume, use a box", p.context())
	}
	ras.FillPlate(lo, hi, normal, m)
	return nil
}

// Triangle is a triangular patch lying in a plane perpendicular to Normal,
// optionally extruded by Thickness along it.
type Triangle struct {
	V1, V2, V3 field.Point
	Normal     units.Axis
	Thickness  float64
	Material   string `json:"material"`
}

func (t *Triangle) context() string {
	return fmt.Sprintf("triangle (%g, %g, %g)", t.V1[0], t.V1[1], t.V1[2])
}

func (t *Triangle) Build(tr userinput.Translator, ras Rasterizer, m field.MaterialID) error {
	if t.Thickness < 0 {
		return fmt.Errorf("%s: thickness must be non-negative, got %g", t.context(), t.Thickness)
	}
	v, err := tr.CheckTrianglePoints(t.V1, t.V2, t.V3, t.context())
	if err != nil {
		return err
	}
	if v[0][t.Normal] != v[1][t.Normal] || v[0][t.Normal] != v[2][t.Normal] {
		return fmt.Errorf("%s: vertices are not coplanar perpendicular to the %s axis", t.context(), t.Normal)
	}

	// Express the extrusion in whole cells on the addressed grid by
	// snapping the far face onto the lattice.
	var p field.Point
	p[t.Normal] = t.Thickness
	cells := tr.Discretise(p)[t.Normal] - tr.Discretise(field.Point{})[t.Normal]
	ras.FillTriangle(v, t.Normal, cells, m)
	return nil
}
