// Package monitor renders simulation output for human inspection: field
// plane heat maps as PNG and receiver traces as standalone HTML charts.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/emfield/internal/snapshot"
)

// planeGrid adapts a plane snapshot to the plotter's grid interface. The
// snapshot is row-major N1 x N2; columns map to the second tangential axis.
type planeGrid struct {
	ps     *snapshot.PlaneSnapshot
	d1, d2 float64 // physical spacing along the two tangential axes
}

func (g planeGrid) Dims() (int, int)   { return g.ps.N2, g.ps.N1 }
func (g planeGrid) Z(c, r int) float64 { return g.ps.Data[r*g.ps.N2+c] }
func (g planeGrid) X(c int) float64    { return float64(c) * g.d2 }
func (g planeGrid) Y(r int) float64    { return float64(r) * g.d1 }

// PlotPlane renders one plane snapshot as a PNG heat map. d1 and d2 are the
// cell sizes along the snapshot's two tangential axes, in metres.
func PlotPlane(ps *snapshot.PlaneSnapshot, d1, d2 float64, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s, %s plane %d, step %d",
		ps.GridName, ps.Component, ps.NormalAxis, ps.PlaneIndex, ps.Step)
	p.X.Label.Text = "distance (m)"
	p.Y.Label.Text = "distance (m)"

	pal := moreland.SmoothBlueRed().Palette(255)
	h := plotter.NewHeatMap(planeGrid{ps: ps, d1: d1, d2: d2}, pal)
	p.Add(h)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, outPath); err != nil {
		return fmt.Errorf("failed to save plane plot: %w", err)
	}
	return nil
}
