package monitor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/snapshot"
	"github.com/banshee-data/emfield/internal/units"
)

func testGrid(t *testing.T) *field.Grid {
	t.Helper()
	d := 1e-3
	g, err := field.NewGrid("main", 8, 8, 8, d, d, d, units.CFLTimeStep(d, d, d))
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestPlotPlaneWritesPNG(t *testing.T) {
	g := testGrid(t)
	for i := range g.Ez {
		g.Ez[i] = float64(i%7) - 3
	}
	ps, err := snapshot.CapturePlane(g, field.CompEz, units.Z, 4, "run", 10)
	if err != nil {
		t.Fatalf("CapturePlane: %v", err)
	}

	out := filepath.Join(t.TempDir(), "plots", "ez_step10.png")
	if err := PlotPlane(ps, g.Dx, g.Dy, out); err != nil {
		t.Fatalf("PlotPlane: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("plot file is empty")
	}
}

func TestWriteReceiverChart(t *testing.T) {
	g := testGrid(t)
	rx, err := field.NewReceiver("rx1", g, field.Index{4, 4, 4})
	if err != nil {
		t.Fatalf("NewReceiver: %v", err)
	}
	for i := 0; i < 5; i++ {
		g.Ez[g.Idx(4, 4, 4)] = float64(i)
		rx.Record()
	}

	out := filepath.Join(t.TempDir(), "charts", "rx1.html")
	if err := WriteReceiverChart(rx, []field.Component{field.CompEz, field.CompEx}, 1e-12, out); err != nil {
		t.Fatalf("WriteReceiverChart: %v", err)
	}
	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !strings.Contains(string(body), "Receiver rx1") {
		t.Fatal("chart title missing from output")
	}

	if err := WriteReceiverChart(rx, nil, 1e-12, out); err == nil {
		t.Fatal("empty component list accepted")
	}
}
