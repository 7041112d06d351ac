package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/emfield/internal/units"
)

// staggerOffsets gives each component's Yee-cell position offset, in cells.
var staggerOffsets = [numComponents][3]float64{
	CompEx: {0.5, 0, 0},
	CompEy: {0, 0.5, 0},
	CompEz: {0, 0, 0.5},
	CompHx: {0, 0.5, 0.5},
	CompHy: {0.5, 0, 0.5},
	CompHz: {0.5, 0.5, 0},
}

// tangentialAxes maps a face normal to its two tangential axes in loop order.
var tangentialAxes = [3][2]units.Axis{
	units.X: {units.Y, units.Z},
	units.Y: {units.X, units.Z},
	units.Z: {units.X, units.Y},
}

// facePair holds interpolated main-grid samples of one component on the two
// opposing Inner Surface faces sharing a normal axis. Each coarse step the
// current samples rotate into prev and fresh ones are captured, so the
// sub-stepping loop can blend between the two in time.
type facePair struct {
	comp   Component
	normal units.Axis
	n1, n2 int // node counts along the two tangential axes

	lowerPrev, lowerCur, lowerNow []float64
	upperPrev, upperCur, upperNow []float64
}

func newFacePair(sub *SubGrid, comp Component, normal units.Axis) *facePair {
	work := sub.WorkingCells()
	t := tangentialAxes[normal]
	n1 := work[t[0]] + 1
	n2 := work[t[1]] + 1
	size := n1 * n2
	return &facePair{
		comp:      comp,
		normal:    normal,
		n1:        n1,
		n2:        n2,
		lowerPrev: make([]float64, size),
		lowerCur:  make([]float64, size),
		lowerNow:  make([]float64, size),
		upperPrev: make([]float64, size),
		upperCur:  make([]float64, size),
		upperNow:  make([]float64, size),
	}
}

// at indexes a face buffer by tangential node coordinates.
func (fp *facePair) at(u, v int) int { return u*fp.n2 + v }

// capture rotates current samples into prev and fills current from the main
// grid at the subgrid's Inner Surface planes.
func (fp *facePair) capture(main *Grid, sub *SubGrid) {
	fp.lowerPrev, fp.lowerCur = fp.lowerCur, fp.lowerPrev
	fp.upperPrev, fp.upperCur = fp.upperCur, fp.upperPrev

	work := Index{sub.I0, sub.J0, sub.K0}
	lowerPlane := float64([]int{sub.I0, sub.J0, sub.K0}[fp.normal])
	upperPlane := float64([]int{sub.I1, sub.J1, sub.K1}[fp.normal])

	// Components staggered along the face normal sit half a fine cell off
	// the IS plane; sample them there rather than on the plane itself.
	off := staggerOffsets[fp.comp]
	halfFine := 0.0
	if off[fp.normal] != 0 {
		halfFine = 0.5 / float64(sub.Ratio)
	}

	t := tangentialAxes[fp.normal]
	r := float64(sub.Ratio)
	var p [3]float64
	for u := 0; u < fp.n1; u++ {
		for v := 0; v < fp.n2; v++ {
			p[t[0]] = float64(work[t[0]]) + (float64(u)+off[t[0]])/r
			p[t[1]] = float64(work[t[1]]) + (float64(v)+off[t[1]])/r
			p[fp.normal] = lowerPlane - halfFine
			fp.lowerCur[fp.at(u, v)] = sampleMain(main, fp.comp, p)
			p[fp.normal] = upperPlane + halfFine
			fp.upperCur[fp.at(u, v)] = sampleMain(main, fp.comp, p)
		}
	}
}

// blend fills the consumable buffers with prev*(1-w) + cur*w.
func (fp *facePair) blend(w float64) {
	floats.ScaleTo(fp.lowerNow, 1-w, fp.lowerPrev)
	floats.AddScaled(fp.lowerNow, w, fp.lowerCur)
	floats.ScaleTo(fp.upperNow, 1-w, fp.upperPrev)
	floats.AddScaled(fp.upperNow, w, fp.upperCur)
}

// sampleMain trilinearly interpolates one component of the main grid at a
// continuous position given in coarse cell coordinates, honouring the
// component's Yee stagger.
func sampleMain(g *Grid, comp Component, p [3]float64) float64 {
	fld := g.Field(comp)
	off := staggerOffsets[comp]
	size := g.Size()

	var i0 [3]int
	var w [3]float64
	for a := 0; a < 3; a++ {
		q := p[a] - off[a]
		f := math.Floor(q)
		i0[a] = int(f)
		w[a] = q - f
		if i0[a] < 0 {
			i0[a], w[a] = 0, 0
		}
		if i0[a] >= size[a] {
			i0[a], w[a] = size[a]-1, 1
		}
	}

	var acc float64
	for di := 0; di < 2; di++ {
		wi := w[0]
		if di == 0 {
			wi = 1 - w[0]
		}
		for dj := 0; dj < 2; dj++ {
			wj := w[1]
			if dj == 0 {
				wj = 1 - w[1]
			}
			for dk := 0; dk < 2; dk++ {
				wk := w[2]
				if dk == 0 {
					wk = 1 - w[2]
				}
				acc += wi * wj * wk * fld[g.Idx(i0[0]+di, i0[1]+dj, i0[2]+dk)]
			}
		}
	}
	return acc
}

// Precursors maintains the time-interpolatable main-grid field estimates
// consumed by the Inner Surface updates. Buffers are regenerated every coarse
// step and consumed across Ratio sub-steps. Field naming follows the face
// convention: BT = bottom/top (z normal), LR = left/right (x normal),
// FB = front/back (y normal).
type Precursors struct {
	sub         *SubGrid
	interpolate bool

	// Coarse steps at which each family was last captured; the engine
	// checks these to refuse stale injections.
	electricStep int
	magneticStep int

	// Electric precursors, consumed by the magnetic IS updates.
	ExBT, EyBT *facePair
	EyLR, EzLR *facePair
	ExFB, EzFB *facePair

	// Magnetic precursors, consumed by the electric IS updates.
	HyBT, HxBT *facePair
	HzLR, HyLR *facePair
	HzFB, HxFB *facePair
}

// NewPrecursors allocates the buffer set for one subgrid. When interpolate is
// false the capture value is used unchanged for every sub-step.
func NewPrecursors(sub *SubGrid, interpolate bool) *Precursors {
	return &Precursors{
		sub:          sub,
		interpolate:  interpolate,
		electricStep: -1,
		magneticStep: -1,

		ExBT: newFacePair(sub, CompEx, units.Z),
		EyBT: newFacePair(sub, CompEy, units.Z),
		EyLR: newFacePair(sub, CompEy, units.X),
		EzLR: newFacePair(sub, CompEz, units.X),
		ExFB: newFacePair(sub, CompEx, units.Y),
		EzFB: newFacePair(sub, CompEz, units.Y),

		HyBT: newFacePair(sub, CompHy, units.Z),
		HxBT: newFacePair(sub, CompHx, units.Z),
		HzLR: newFacePair(sub, CompHz, units.X),
		HyLR: newFacePair(sub, CompHy, units.X),
		HzFB: newFacePair(sub, CompHz, units.Y),
		HxFB: newFacePair(sub, CompHx, units.Y),
	}
}

func (p *Precursors) electricPairs() []*facePair {
	return []*facePair{p.ExBT, p.EyBT, p.EyLR, p.EzLR, p.ExFB, p.EzFB}
}

func (p *Precursors) magneticPairs() []*facePair {
	return []*facePair{p.HyBT, p.HxBT, p.HzLR, p.HyLR, p.HzFB, p.HxFB}
}

// CaptureElectric samples the main grid's electric field at the IS planes
// for the given coarse step.
func (p *Precursors) CaptureElectric(main *Grid, step int) {
	for _, fp := range p.electricPairs() {
		fp.capture(main, p.sub)
	}
	p.electricStep = step
}

// CaptureMagnetic samples the main grid's magnetic field at the IS planes
// for the given coarse step.
func (p *Precursors) CaptureMagnetic(main *Grid, step int) {
	for _, fp := range p.magneticPairs() {
		fp.capture(main, p.sub)
	}
	p.magneticStep = step
}

// InterpElectric prepares the electric precursors for sub-step m of Ratio.
// Electric estimates use weight (m+1)/Ratio so the final sub-step lands on
// the freshly captured coarse value.
func (p *Precursors) InterpElectric(m int) {
	w := 1.0
	if p.interpolate {
		w = float64(m+1) / float64(p.sub.Ratio)
	}
	for _, fp := range p.electricPairs() {
		fp.blend(w)
	}
}

// InterpMagnetic prepares the magnetic precursors for sub-step m of Ratio.
// Magnetic estimates sit half a sub-step behind, weight (m+0.5)/Ratio.
func (p *Precursors) InterpMagnetic(m int) {
	w := 1.0
	if p.interpolate {
		w = (float64(m) + 0.5) / float64(p.sub.Ratio)
	}
	for _, fp := range p.magneticPairs() {
		fp.blend(w)
	}
}

// requireFresh guards against consuming precursors from an earlier coarse
// step, which would make the coupling non-causal.
func (p *Precursors) requireFresh(step int, electric bool) error {
	captured := p.electricStep
	family := "electric"
	if !electric {
		captured = p.magneticStep
		family = "magnetic"
	}
	if captured != step {
		return fmt.Errorf("subgrid %q: %s precursors captured at coarse step %d consumed at step %d",
			p.sub.Name, family, captured, step)
	}
	return nil
}
