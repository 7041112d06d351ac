// Package model loads scenario files and assembles the simulation: main
// grid, subgrids, materials, geometry, sources, and receivers.
package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/emfield/internal/config"
	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/geometry"
	"github.com/banshee-data/emfield/internal/monitoring"
	"github.com/banshee-data/emfield/internal/units"
	"github.com/banshee-data/emfield/internal/userinput"
)

// Scenario is the JSON model description.
type Scenario struct {
	Name     string  `json:"name"`
	Cells    [3]int  `json:"cells"`
	CellSize float64 `json:"cell_size"` // metres, isotropic
	Steps    int     `json:"steps"`
	PMLCells int     `json:"pml_cells,omitempty"`

	Tuning *config.TuningConfig `json:"tuning,omitempty"`

	Materials []field.Material `json:"materials,omitempty"`
	SubGrids  []SubGridSpec    `json:"subgrids,omitempty"`
	Boxes     []BoxSpec        `json:"boxes,omitempty"`
	Plates    []PlateSpec      `json:"plates,omitempty"`
	Sources   []SourceSpec     `json:"sources,omitempty"`
	Receivers []ReceiverSpec   `json:"receivers,omitempty"`
}

// SubGridSpec places one embedded fine grid by main-grid cell indices.
type SubGridSpec struct {
	Name  string `json:"name"`
	Lower [3]int `json:"lower"`
	Upper [3]int `json:"upper"`
	// Ratio overrides the tuning default when non-zero.
	Ratio int `json:"ratio,omitempty"`
}

// BoxSpec is an axis-aligned solid in physical coordinates. An empty Grid
// targets the main grid; otherwise it names a subgrid and the coordinates
// are relative to that subgrid's working region.
type BoxSpec struct {
	Grid     string     `json:"grid,omitempty"`
	P1       [3]float64 `json:"p1"`
	P2       [3]float64 `json:"p2"`
	Material string     `json:"material"`
}

type PlateSpec struct {
	Grid     string     `json:"grid,omitempty"`
	P1       [3]float64 `json:"p1"`
	P2       [3]float64 `json:"p2"`
	Material string     `json:"material"`
}

// SourceSpec describes one excitation.
type SourceSpec struct {
	Grid      string     `json:"grid,omitempty"`
	Type      string     `json:"type"` // hertzian_dipole or magnetic_dipole
	Component string     `json:"component"`
	Position  [3]float64 `json:"position"`
	Waveform  WaveSpec   `json:"waveform"`
}

type WaveSpec struct {
	Shape     string  `json:"shape"` // gaussian, ricker, sine
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
	Delay     float64 `json:"delay,omitempty"`
}

type ReceiverSpec struct {
	Name     string     `json:"name"`
	Grid     string     `json:"grid,omitempty"`
	Position [3]float64 `json:"position"`
}

// Sim is a fully assembled simulation ready to run.
type Sim struct {
	Scenario  *Scenario
	Engine    *field.Engine
	Main      *field.Grid
	SubGrids  map[string]*field.SubGrid
	Receivers []*field.Receiver
	Tuning    *config.TuningConfig
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scenario file must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	for _, n := range sc.Cells {
		if n < 1 {
			return fmt.Errorf("cells must be positive, got %v", sc.Cells)
		}
	}
	if sc.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %g", sc.CellSize)
	}
	if sc.Steps < 1 {
		return fmt.Errorf("steps must be >= 1, got %d", sc.Steps)
	}
	if sc.Tuning != nil {
		if err := sc.Tuning.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Build assembles the grid tree, rasterizes geometry, and wires sources and
// receivers into a coupling engine.
func (sc *Scenario) Build() (*Sim, error) {
	tuning := sc.Tuning
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}

	d := sc.CellSize
	dt := tuning.GetCourantFactor() * units.CFLTimeStep(d, d, d)
	main, err := field.NewGrid(sc.Name, sc.Cells[0], sc.Cells[1], sc.Cells[2], d, d, d, dt)
	if err != nil {
		return nil, err
	}
	main.PMLThickness = sc.PMLCells

	sim := &Sim{
		Scenario: sc,
		Main:     main,
		SubGrids: make(map[string]*field.SubGrid),
		Tuning:   tuning,
	}

	for _, m := range sc.Materials {
		if _, err := main.AddMaterial(m); err != nil {
			return nil, err
		}
	}

	for _, spec := range sc.SubGrids {
		ratio := spec.Ratio
		if ratio == 0 {
			ratio = tuning.GetSubgridRatio()
		}
		sub, err := field.NewSubGrid(main, field.SubGridSpec{
			Name: spec.Name,
			I0:   spec.Lower[0], J0: spec.Lower[1], K0: spec.Lower[2],
			I1: spec.Upper[0], J1: spec.Upper[1], K1: spec.Upper[2],
			Ratio:         ratio,
			ISOSSep:       tuning.GetISOSSeparation(),
			PMLThickness:  tuning.GetPMLThickness(),
			PMLSeparation: tuning.GetPMLSeparation(ratio),
		})
		if err != nil {
			return nil, err
		}
		// Subgrids resolve the same material palette independently.
		for _, m := range sc.Materials {
			if _, err := sub.AddMaterial(m); err != nil {
				return nil, err
			}
		}
		sim.SubGrids[spec.Name] = sub
	}

	if err := sim.buildGeometry(); err != nil {
		return nil, err
	}

	engine := field.NewEngine(main, field.NewCurlKernel(tuning.GetWorkers()))
	for name, sub := range sim.SubGrids {
		if _, err := engine.AddSubGrid(sub, tuning.GetInterpolatePrecursors()); err != nil {
			return nil, fmt.Errorf("subgrid %q: %w", name, err)
		}
	}

	for _, spec := range sc.Sources {
		src, err := sim.buildSource(spec)
		if err != nil {
			return nil, err
		}
		if err := engine.AddSource(src); err != nil {
			return nil, err
		}
	}

	for _, spec := range sc.Receivers {
		g, tr, err := sim.target(spec.Grid)
		if err != nil {
			return nil, fmt.Errorf("receiver %q: %w", spec.Name, err)
		}
		idx, err := tr.CheckSrcRxPoint(field.Point(spec.Position), fmt.Sprintf("receiver %q", spec.Name))
		if err != nil {
			return nil, err
		}
		rx, err := field.NewReceiver(spec.Name, g, idx)
		if err != nil {
			return nil, err
		}
		if err := engine.AddReceiver(rx); err != nil {
			return nil, err
		}
		sim.Receivers = append(sim.Receivers, rx)
	}

	sim.Engine = engine
	monitoring.Logf("model %q: %d cells, %d subgrids, %d sources, %d receivers",
		sc.Name, sc.Cells[0]*sc.Cells[1]*sc.Cells[2], len(sim.SubGrids), len(sc.Sources), len(sim.Receivers))
	return sim, nil
}

// target resolves a grid name to the grid and its coordinate translator.
func (s *Sim) target(name string) (*field.Grid, userinput.Translator, error) {
	if name == "" {
		return s.Main, userinput.NewMainGridInput(s.Main), nil
	}
	sub, ok := s.SubGrids[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown grid %q", name)
	}
	return &sub.Grid, userinput.NewSubGridInput(sub), nil
}

func (s *Sim) buildGeometry() error {
	run := func(gridName, material string, build func(tr userinput.Translator, ras geometry.Rasterizer, m field.MaterialID) error) error {
		g, tr, err := s.target(gridName)
		if err != nil {
			return err
		}
		m, ok := g.MaterialByName(material)
		if !ok {
			return fmt.Errorf("unknown material %q on grid %q", material, g.Name)
		}
		return build(tr, &GridRasterizer{G: g}, m)
	}

	for _, spec := range s.Scenario.Boxes {
		b := &geometry.Box{P1: field.Point(spec.P1), P2: field.Point(spec.P2), Material: spec.Material}
		if err := run(spec.Grid, spec.Material, b.Build); err != nil {
			return err
		}
	}
	for _, spec := range s.Scenario.Plates {
		p := &geometry.Plate{P1: field.Point(spec.P1), P2: field.Point(spec.P2), Material: spec.Material}
		if err := run(spec.Grid, spec.Material, p.Build); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sim) buildSource(spec SourceSpec) (field.Source, error) {
	g, tr, err := s.target(spec.Grid)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	comp, err := parseComponent(spec.Component)
	if err != nil {
		return nil, err
	}
	wave, err := buildWaveform(spec.Waveform)
	if err != nil {
		return nil, err
	}
	ctx := fmt.Sprintf("%s %s", spec.Type, spec.Component)
	idx, err := tr.CheckSrcRxPoint(field.Point(spec.Position), ctx)
	if err != nil {
		return nil, err
	}

	switch spec.Type {
	case "hertzian_dipole":
		return field.NewHertzianDipole(g, comp, idx, wave)
	case "magnetic_dipole":
		return field.NewMagneticDipole(g, comp, idx, wave)
	default:
		return nil, fmt.Errorf("unknown source type %q", spec.Type)
	}
}

func parseComponent(name string) (field.Component, error) {
	for c := field.CompEx; c <= field.CompHz; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown field component %q", name)
}

func buildWaveform(w WaveSpec) (field.Waveform, error) {
	if w.Amplitude == 0 {
		return nil, fmt.Errorf("waveform amplitude must be non-zero")
	}
	switch w.Shape {
	case "gaussian":
		return field.GaussianWaveform{Amplitude: w.Amplitude, Frequency: w.Frequency, Delay: w.Delay}, nil
	case "ricker":
		return field.RickerWaveform{Amplitude: w.Amplitude, Frequency: w.Frequency, Delay: w.Delay}, nil
	case "sine":
		return field.SineWaveform{Amplitude: w.Amplitude, Frequency: w.Frequency}, nil
	default:
		return nil, fmt.Errorf("unknown waveform shape %q", w.Shape)
	}
}
