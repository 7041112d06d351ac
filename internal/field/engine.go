package field

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/emfield/internal/monitoring"
)

// Engine advances a main grid and its coupled subgrids through the leapfrog
// time loop. Per coarse step the ordering is fixed: main electric update,
// electric precursor capture, Ratio subgrid sub-steps with Inner Surface
// injections, electric Outer Surface projection, main magnetic update,
// magnetic precursor capture, magnetic Outer Surface projection.
type Engine struct {
	main   *Grid
	kernel Kernel

	subs      []*coupledSub
	sources   []Source
	receivers []*Receiver
	listeners []func(step int)

	step int
}

type coupledSub struct {
	sub *SubGrid
	pre *Precursors
}

func NewEngine(main *Grid, k Kernel) *Engine {
	return &Engine{main: main, kernel: k}
}

// Main returns the engine's coarse grid.
func (e *Engine) Main() *Grid { return e.main }

// Steps returns the number of completed coarse steps.
func (e *Engine) Steps() int { return e.step }

// AddSubGrid couples a subgrid to the engine's main grid and allocates its
// precursor buffers. When interpolate is false, precursors hold the captured
// value for every sub-step instead of blending in time.
func (e *Engine) AddSubGrid(sub *SubGrid, interpolate bool) (*Precursors, error) {
	if sub.Main != e.main {
		return nil, fmt.Errorf("subgrid %q is built on grid %q, engine runs %q", sub.Name, sub.Main.Name, e.main.Name)
	}
	pre := NewPrecursors(sub, interpolate)
	e.subs = append(e.subs, &coupledSub{sub: sub, pre: pre})
	return pre, nil
}

// AddSource registers a source on the main grid or any coupled subgrid.
func (e *Engine) AddSource(s Source) error {
	if !e.owns(s.Target()) {
		return fmt.Errorf("source targets grid %q which is not part of this engine", s.Target().Name)
	}
	e.sources = append(e.sources, s)
	return nil
}

// AddReceiver registers a receiver; it is sampled once per coarse step.
func (e *Engine) AddReceiver(r *Receiver) error {
	if !e.owns(r.Grid) {
		return fmt.Errorf("receiver %q targets grid %q which is not part of this engine", r.Name, r.Grid.Name)
	}
	e.receivers = append(e.receivers, r)
	return nil
}

// OnStep registers a callback invoked after every completed coarse step,
// used for snapshotting and progress reporting.
func (e *Engine) OnStep(fn func(step int)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) owns(g *Grid) bool {
	if g == e.main {
		return true
	}
	for _, cs := range e.subs {
		if g == &cs.sub.Grid {
			return true
		}
	}
	return false
}

func (e *Engine) injectMain(electric bool, t float64) {
	for _, s := range e.sources {
		if s.Target() == e.main && s.IsElectric() == electric {
			s.Inject(t)
		}
	}
}

func (e *Engine) injectSub(sub *SubGrid, electric bool, t float64) {
	for _, s := range e.sources {
		if s.Target() == &sub.Grid && s.IsElectric() == electric {
			s.Inject(t)
		}
	}
}

// Step advances the simulation by one coarse time step.
func (e *Engine) Step() error {
	n := e.step
	dt := e.main.Dt

	e.kernel.UpdateElectric(e.main)
	e.injectMain(true, float64(n)*dt)

	for _, cs := range e.subs {
		sub := cs.sub
		pre := cs.pre

		pre.CaptureElectric(e.main, n)
		if err := pre.requireFresh(n, true); err != nil {
			return err
		}
		// Magnetic precursors were captured after the previous coarse
		// magnetic update; the sub-stepping blends across that interval.
		if err := pre.requireFresh(n-1, false); err != nil {
			return err
		}

		subDt := sub.Dt
		for m := 0; m < sub.Ratio; m++ {
			subT := (float64(n*sub.Ratio + m)) * subDt

			pre.InterpMagnetic(m)
			e.kernel.UpdateElectric(&sub.Grid)
			sub.UpdateElectricIS(pre)
			e.injectSub(sub, true, subT)

			pre.InterpElectric(m)
			e.kernel.UpdateMagnetic(&sub.Grid)
			sub.UpdateMagneticIS(pre)
			e.injectSub(sub, false, subT+0.5*subDt)
		}

		sub.UpdateElectricOS(e.main)
	}

	e.kernel.UpdateMagnetic(e.main)
	e.injectMain(false, (float64(n)+0.5)*dt)

	for _, cs := range e.subs {
		cs.pre.CaptureMagnetic(e.main, n)
		cs.sub.UpdateMagneticOS(e.main)
	}

	for _, r := range e.receivers {
		r.Record()
	}

	e.step++
	for _, fn := range e.listeners {
		fn(n)
	}
	return nil
}

// Run executes steps coarse iterations, honouring ctx cancellation between
// steps and logging progress every few seconds.
func (e *Engine) Run(ctx context.Context, steps int) error {
	start := time.Now()
	lastLog := start
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := e.Step(); err != nil {
			return fmt.Errorf("coarse step %d: %w", e.step, err)
		}
		if time.Since(lastLog) > 5*time.Second {
			monitoring.Logf("simulation %q: step %d/%d (%.1f steps/s)",
				e.main.Name, i+1, steps, float64(i+1)/time.Since(start).Seconds())
			lastLog = time.Now()
		}
	}
	monitoring.Logf("simulation %q: completed %d steps in %s", e.main.Name, steps, time.Since(start).Round(time.Millisecond))
	return nil
}
