package userinput

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/monitoring"
	"github.com/banshee-data/emfield/internal/units"
)

func subGrid(t *testing.T, ratio int) *field.SubGrid {
	t.Helper()
	main := mainGrid(t, 30, 30, 30, 1e-3)
	sub, err := field.NewSubGrid(main, field.SubGridSpec{
		Name: "fine",
		I0:   10, J0: 10, K0: 10,
		I1: 14, J1: 14, K1: 14,
		Ratio: ratio,
	})
	if err != nil {
		t.Fatalf("NewSubGrid: %v", err)
	}
	return sub
}

// capturedWarnings redirects the package logger for one test and returns the
// collected lines.
func capturedWarnings(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(nil) })
	return &lines
}

// The working-region origin must land exactly on index NBoundaryCells.
func TestSubGridDiscretiseRoundTrip(t *testing.T) {
	sub := subGrid(t, 5)
	tr := NewSubGridInput(sub)

	got := tr.Discretise(field.Point{0, 0, 0})
	nbc := sub.NBoundaryCells
	if got != (field.Index{nbc, nbc, nbc}) {
		t.Fatalf("working-region origin discretised to %v, want {%d %d %d}", got, nbc, nbc, nbc)
	}

	// One working cell in: fine spacing is main spacing / ratio.
	got = tr.Discretise(field.Point{1e-3 / 5, 0, 0})
	if got[0] != nbc+1 {
		t.Fatalf("one fine cell in discretised to %d, want %d", got[0], nbc+1)
	}
}

func TestSubGridRoundToGridIdempotent(t *testing.T) {
	sub := subGrid(t, 5)
	tr := NewSubGridInput(sub)
	p := field.Point{0.00037, 0.00051, 0.00012}
	once := tr.RoundToGrid(p)
	if twice := tr.RoundToGrid(once); once != twice {
		t.Fatalf("RoundToGrid not idempotent: %v then %v", once, twice)
	}
}

func TestSubGridCheckPointWarnsOnOuterSurfaceTraverse(t *testing.T) {
	sub := subGrid(t, 3)
	tr := NewSubGridInput(sub)
	lines := capturedWarnings(t)

	// Inside the working region: no warning.
	if _, err := tr.CheckPoint(field.Point{1e-3, 1e-3, 1e-3}, "rx"); err != nil {
		t.Fatalf("CheckPoint: %v", err)
	}
	if len(*lines) != 0 {
		t.Fatalf("unexpected warnings: %v", *lines)
	}

	// Behind the working region, still inside the subgrid: warn, accept.
	idx, err := tr.CheckPoint(field.Point{-2e-3 / 3, 1e-3, 1e-3}, "rx")
	if err != nil {
		t.Fatalf("CheckPoint across OS: %v", err)
	}
	if idx[0] != sub.NBoundaryCells-2 {
		t.Fatalf("index = %v", idx)
	}
	if len(*lines) != 1 || !strings.Contains((*lines)[0], "outer surface") {
		t.Fatalf("expected outer-surface warning, got %v", *lines)
	}

	// Beyond the subgrid entirely: error.
	if _, err := tr.CheckPoint(field.Point{-1, 0, 0}, "rx"); err == nil {
		t.Fatal("point outside the subgrid accepted")
	}
}

func TestSubGridCheckThicknessClipsToWorkingRegion(t *testing.T) {
	sub := subGrid(t, 3)
	tr := NewSubGridInput(sub)
	// Working region is 4 main cells = 4 mm per axis.
	lower, thickness, visible, err := tr.CheckThickness(units.Y, 3e-3, 2e-3, "layer")
	if err != nil {
		t.Fatalf("CheckThickness: %v", err)
	}
	if !visible {
		t.Fatal("layer reported invisible")
	}
	if math.Abs(lower-3e-3) > 1e-12 || math.Abs(thickness-1e-3) > 1e-12 {
		t.Fatalf("clipped layer = (%g, %g), want (0.003, 0.001)", lower, thickness)
	}

	if _, _, _, err := tr.CheckThickness(units.Y, 5e-3, 1e-3, "layer"); err == nil {
		t.Fatal("layer outside the working region accepted")
	}
}
