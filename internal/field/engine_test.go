package field

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testEngine(t *testing.T) (*Engine, *SubGrid, *Precursors) {
	t.Helper()
	main, sub := testSubGrid(t)
	e := NewEngine(main, NewCurlKernel(1))
	pre, err := e.AddSubGrid(sub, true)
	if err != nil {
		t.Fatalf("AddSubGrid: %v", err)
	}
	return e, sub, pre
}

func TestEngineStepAdvancesBothClocks(t *testing.T) {
	e, _, pre := testEngine(t)

	for i := 0; i < 3; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if e.Steps() != 3 {
		t.Fatalf("Steps() = %d, want 3", e.Steps())
	}
	// Both families were captured during the last completed step.
	if pre.electricStep != 2 || pre.magneticStep != 2 {
		t.Fatalf("capture steps = (%d, %d), want (2, 2)", pre.electricStep, pre.magneticStep)
	}
}

// Tampered precursor clocks must abort the step rather than inject stale
// boundary values.
func TestEngineRejectsStalePrecursors(t *testing.T) {
	e, _, pre := testEngine(t)
	if err := e.Step(); err != nil {
		t.Fatalf("first step: %v", err)
	}

	pre.magneticStep = 7
	err := e.Step()
	if err == nil {
		t.Fatal("step with stale magnetic precursors succeeded")
	}
	if !strings.Contains(err.Error(), "magnetic precursors") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEngineRejectsForeignSubGrid(t *testing.T) {
	mainA, _ := testSubGrid(t)
	_, subB := testSubGrid(t)
	e := NewEngine(mainA, NewCurlKernel(1))
	if _, err := e.AddSubGrid(subB, true); err == nil {
		t.Fatal("subgrid built on another grid accepted")
	}
}

func TestEngineSourceAndReceiverTargets(t *testing.T) {
	e, sub, _ := testEngine(t)
	other := testGrid(t, 4, 4, 4)

	w := RickerWaveform{Amplitude: 1, Frequency: 1e9}
	src, err := NewHertzianDipole(other, CompEz, Index{2, 2, 2}, w)
	if err != nil {
		t.Fatalf("NewHertzianDipole: %v", err)
	}
	if err := e.AddSource(src); err == nil {
		t.Fatal("source on unrelated grid accepted")
	}

	subSrc, err := NewHertzianDipole(&sub.Grid, CompEz, sub.InnerBound(), w)
	if err != nil {
		t.Fatalf("NewHertzianDipole on subgrid: %v", err)
	}
	if err := e.AddSource(subSrc); err != nil {
		t.Fatalf("AddSource on subgrid: %v", err)
	}

	rx, err := NewReceiver("rx", e.Main(), Index{10, 10, 10})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	if err := e.AddReceiver(rx); err != nil {
		t.Fatalf("AddReceiver: %v", err)
	}

	if err := e.Run(context.Background(), 4); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(rx.Component(CompEz)); got != 4 {
		t.Fatalf("receiver recorded %d samples, want 4", got)
	}
}

// Driving the subgrid and stepping with coupling enabled must eventually
// project energy onto the main grid through the Outer Surface.
func TestEngineOSProjectionReachesMainGrid(t *testing.T) {
	e, sub, _ := testEngine(t)

	w := GaussianWaveform{Amplitude: 1e3, Frequency: 2e9}
	centre := sub.InnerBound()
	centre[0] += sub.NWx / 2
	centre[1] += sub.NWy / 2
	centre[2] += sub.NWz / 2
	src, err := NewHertzianDipole(&sub.Grid, CompEz, centre, w)
	if err != nil {
		t.Fatalf("NewHertzianDipole: %v", err)
	}
	if err := e.AddSource(src); err != nil {
		t.Fatalf("AddSource: %v", err)
	}

	if err := e.Run(context.Background(), 30); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var sum float64
	for _, f := range [][]float64{e.Main().Ex, e.Main().Ey, e.Main().Ez} {
		for _, x := range f {
			sum += x * x
		}
	}
	if sum == 0 {
		t.Fatal("no energy reached the main grid through the outer surface")
	}
}

func TestEngineRunHonoursContext(t *testing.T) {
	e, _, _ := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx, 100); err != context.Canceled {
		t.Fatalf("Run with cancelled context = %v, want context.Canceled", err)
	}
	if e.Steps() != 0 {
		t.Fatalf("cancelled run advanced %d steps", e.Steps())
	}
}

func TestEngineOnStep(t *testing.T) {
	e, _, _ := testEngine(t)
	var seen []int
	e.OnStep(func(step int) { seen = append(seen, step) })
	if err := e.Run(context.Background(), 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, seen); diff != "" {
		t.Fatalf("listener steps mismatch (-want +got):\n%s", diff)
	}
}
