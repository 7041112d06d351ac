package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/emfield/internal/field"
)

// WriteReceiverChart renders a receiver's recorded traces as a standalone
// HTML line chart, one series per requested component, with time in
// nanoseconds on the x axis.
func WriteReceiverChart(rx *field.Receiver, comps []field.Component, dt float64, outPath string) error {
	if len(comps) == 0 {
		return fmt.Errorf("receiver %q: no components requested", rx.Name)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("Receiver %s", rx.Name),
			Width:     "1000px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Receiver %s (%s)", rx.Name, rx.Grid.Name),
			Subtitle: fmt.Sprintf("dt = %.3g s", dt),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time (ns)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "field amplitude"}),
	)

	n := len(rx.Component(comps[0]))
	ticks := make([]string, n)
	for i := 0; i < n; i++ {
		ticks[i] = fmt.Sprintf("%.3f", float64(i)*dt*1e9)
	}
	line.SetXAxis(ticks)

	for _, c := range comps {
		samples := rx.Component(c)
		data := make([]opts.LineData, len(samples))
		for i, v := range samples {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(c.String(), data)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("failed to render receiver chart: %w", err)
	}
	return nil
}
