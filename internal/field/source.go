package field

import (
	"fmt"
	"math"

	"github.com/banshee-data/emfield/internal/monitoring"
)

// Waveform evaluates a source time function at time t in seconds.
type Waveform interface {
	Value(t float64) float64
}

// GaussianWaveform is a Gaussian pulse centred at Delay with width set by
// the centre frequency.
type GaussianWaveform struct {
	Amplitude float64
	Frequency float64
	Delay     float64
}

func (w GaussianWaveform) Value(t float64) float64 {
	zeta := 2 * math.Pi * math.Pi * w.Frequency * w.Frequency
	chi := t - w.Delay
	return w.Amplitude * math.Exp(-zeta*chi*chi)
}

// RickerWaveform is the negative normalised second derivative of a Gaussian,
// the usual broadband excitation for subsurface models.
type RickerWaveform struct {
	Amplitude float64
	Frequency float64
	Delay     float64
}

func (w RickerWaveform) Value(t float64) float64 {
	zeta := math.Pi * math.Pi * w.Frequency * w.Frequency
	chi := t - w.Delay
	arg := zeta * chi * chi
	return -w.Amplitude * (2*arg - 1) * math.Exp(-arg)
}

// SineWaveform is a continuous sinusoid, useful for single-frequency checks.
type SineWaveform struct {
	Amplitude float64
	Frequency float64
}

func (w SineWaveform) Value(t float64) float64 {
	return w.Amplitude * math.Sin(2*math.Pi*w.Frequency*t)
}

// Source is a localised excitation attached to one grid. The engine injects
// electric sources after the electric kernel update and magnetic sources
// after the magnetic one, at the matching sample time.
type Source interface {
	Target() *Grid
	IsElectric() bool
	Inject(t float64)
}

// HertzianDipole drives a single electric field node through the material's
// source coefficient, so lossy media scale the injection correctly.
type HertzianDipole struct {
	Grid     *Grid
	Comp     Component
	Pos      Index
	Waveform Waveform
}

// NewHertzianDipole validates placement and warns when the dipole sits in
// the absorbing boundary.
func NewHertzianDipole(g *Grid, comp Component, pos Index, w Waveform) (*HertzianDipole, error) {
	if !comp.IsElectric() {
		return nil, fmt.Errorf("hertzian dipole: component %s is not electric", comp)
	}
	if axis, ok := g.CheckBounds(pos); !ok {
		return nil, fmt.Errorf("hertzian dipole: position %v outside grid %q on %s axis", pos, g.Name, axis)
	}
	if g.WithinPML(pos) {
		monitoring.Warnf("hertzian dipole at %v in grid %q sits inside the absorbing boundary", pos, g.Name)
	}
	return &HertzianDipole{Grid: g, Comp: comp, Pos: pos, Waveform: w}, nil
}

func (d *HertzianDipole) Target() *Grid    { return d.Grid }
func (d *HertzianDipole) IsElectric() bool { return true }

func (d *HertzianDipole) Inject(t float64) {
	g := d.Grid
	n := g.Idx(d.Pos[0], d.Pos[1], d.Pos[2])
	c := g.CoeffsE[g.MaterialAt(d.Comp, d.Pos[0], d.Pos[1], d.Pos[2])]
	// The source coefficient already folds in the cell volume; scale by
	// the dipole length along the component axis.
	g.Field(d.Comp)[n] -= c[4] * d.Waveform.Value(t) * g.Spacing()[d.Comp.Axis()]
}

// MagneticDipole drives a single magnetic field node.
type MagneticDipole struct {
	Grid     *Grid
	Comp     Component
	Pos      Index
	Waveform Waveform
}

func NewMagneticDipole(g *Grid, comp Component, pos Index, w Waveform) (*MagneticDipole, error) {
	if comp.IsElectric() {
		return nil, fmt.Errorf("magnetic dipole: component %s is not magnetic", comp)
	}
	if axis, ok := g.CheckBounds(pos); !ok {
		return nil, fmt.Errorf("magnetic dipole: position %v outside grid %q on %s axis", pos, g.Name, axis)
	}
	if g.WithinPML(pos) {
		monitoring.Warnf("magnetic dipole at %v in grid %q sits inside the absorbing boundary", pos, g.Name)
	}
	return &MagneticDipole{Grid: g, Comp: comp, Pos: pos, Waveform: w}, nil
}

func (d *MagneticDipole) Target() *Grid    { return d.Grid }
func (d *MagneticDipole) IsElectric() bool { return false }

func (d *MagneticDipole) Inject(t float64) {
	g := d.Grid
	n := g.Idx(d.Pos[0], d.Pos[1], d.Pos[2])
	c := g.CoeffsH[g.MaterialAt(d.Comp, d.Pos[0], d.Pos[1], d.Pos[2])]
	g.Field(d.Comp)[n] -= c[4] * d.Waveform.Value(t)
}

// Receiver records the six field components at one node every coarse step.
type Receiver struct {
	Name string
	Grid *Grid
	Pos  Index

	Samples [numComponents][]float64
}

func NewReceiver(name string, g *Grid, pos Index) (*Receiver, error) {
	if axis, ok := g.CheckBounds(pos); !ok {
		return nil, fmt.Errorf("receiver %q: position %v outside grid %q on %s axis", name, pos, g.Name, axis)
	}
	if g.WithinPML(pos) {
		monitoring.Warnf("receiver %q at %v in grid %q sits inside the absorbing boundary", name, pos, g.Name)
	}
	return &Receiver{Name: name, Grid: g, Pos: pos}, nil
}

// Record appends the current field values at the receiver node.
func (r *Receiver) Record() {
	n := r.Grid.Idx(r.Pos[0], r.Pos[1], r.Pos[2])
	for c := CompEx; c < numComponents; c++ {
		r.Samples[c] = append(r.Samples[c], r.Grid.Field(c)[n])
	}
}

// Component returns the recorded trace for one component.
func (r *Receiver) Component(c Component) []float64 { return r.Samples[c] }
