package field

import (
	"math"
	"strings"
	"testing"
)

// A spatially uniform main-grid field must interpolate to the same uniform
// value on every face buffer, regardless of stagger.
func TestPrecursorCaptureUniformField(t *testing.T) {
	main, sub := testSubGrid(t)
	const v = 3.25
	for n := range main.Ex {
		main.Ex[n] = v
	}
	p := NewPrecursors(sub, true)
	p.CaptureElectric(main, 0)

	for _, fp := range []*facePair{p.ExBT, p.ExFB} {
		for u := 0; u < fp.n1; u++ {
			for v2 := 0; v2 < fp.n2; v2++ {
				got := fp.lowerCur[fp.at(u, v2)]
				if math.Abs(got-v) > 1e-12 {
					t.Fatalf("%s lower face (%d,%d) = %g, want %g", fp.comp, u, v2, got, v)
				}
				got = fp.upperCur[fp.at(u, v2)]
				if math.Abs(got-v) > 1e-12 {
					t.Fatalf("%s upper face (%d,%d) = %g, want %g", fp.comp, u, v2, got, v)
				}
			}
		}
	}
	// Ey buffers read a different component and must stay zero.
	for _, x := range p.EyBT.lowerCur {
		if x != 0 {
			t.Fatal("Ey face buffer picked up Ex samples")
		}
	}
}

// Time interpolation blends linearly from the previous capture to the
// current one across the sub-steps.
func TestPrecursorTimeInterpolation(t *testing.T) {
	main, sub := testSubGrid(t)
	p := NewPrecursors(sub, true)

	for n := range main.Ex {
		main.Ex[n] = 1
	}
	p.CaptureElectric(main, 0)
	for n := range main.Ex {
		main.Ex[n] = 5
	}
	p.CaptureElectric(main, 1)

	// ratio 3: weights 1/3, 2/3, 1 across the interval [1, 5].
	wants := []float64{1 + 4.0/3, 1 + 8.0/3, 5}
	for m, want := range wants {
		p.InterpElectric(m)
		got := p.ExBT.lowerNow[0]
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("sub-step %d: blended value = %g, want %g", m, got, want)
		}
	}

	// Magnetic estimates sit half a sub-step behind.
	for n := range main.Hz {
		main.Hz[n] = 2
	}
	p.CaptureMagnetic(main, 0)
	for n := range main.Hz {
		main.Hz[n] = 4
	}
	p.CaptureMagnetic(main, 1)
	p.InterpMagnetic(0)
	want := 2 + 2*(0.5/3)
	if got := p.HzLR.lowerNow[0]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("magnetic sub-step 0: blended value = %g, want %g", got, want)
	}
}

// With interpolation disabled every sub-step consumes the captured value
// directly.
func TestPrecursorNoInterpolation(t *testing.T) {
	main, sub := testSubGrid(t)
	p := NewPrecursors(sub, false)

	for n := range main.Ex {
		main.Ex[n] = 7
	}
	p.CaptureElectric(main, 0)
	for m := 0; m < sub.Ratio; m++ {
		p.InterpElectric(m)
		if got := p.ExBT.lowerNow[0]; math.Abs(got-7) > 1e-12 {
			t.Fatalf("sub-step %d: value = %g, want 7", m, got)
		}
	}
}

func TestPrecursorFreshness(t *testing.T) {
	main, sub := testSubGrid(t)
	p := NewPrecursors(sub, true)

	if err := p.requireFresh(0, true); err == nil {
		t.Fatal("uncaptured electric precursors accepted")
	}
	p.CaptureElectric(main, 4)
	if err := p.requireFresh(4, true); err != nil {
		t.Fatalf("fresh electric precursors rejected: %v", err)
	}
	err := p.requireFresh(5, true)
	if err == nil {
		t.Fatal("stale electric precursors accepted")
	}
	if !strings.Contains(err.Error(), "electric precursors captured at coarse step 4") {
		t.Fatalf("unexpected error text: %v", err)
	}

	p.CaptureMagnetic(main, 4)
	if err := p.requireFresh(4, false); err != nil {
		t.Fatalf("fresh magnetic precursors rejected: %v", err)
	}
	if err := p.requireFresh(3, false); err == nil {
		t.Fatal("stale magnetic precursors accepted")
	}
}
