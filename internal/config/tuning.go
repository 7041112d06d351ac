package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TuningConfig holds solver tuning parameters. All fields are pointers so a
// partial JSON file can override only what it names; the Get* methods supply
// the canonical defaults for anything left unset. The same schema is accepted
// inline in a scenario file under "tuning".
type TuningConfig struct {
	// Subgrid coupling params
	SubgridRatio          *int  `json:"subgrid_ratio,omitempty"`          // fine cells per coarse cell, must be odd
	ISOSSeparation        *int  `json:"is_os_separation,omitempty"`       // main-grid cells between IS and OS
	PMLThickness          *int  `json:"pml_thickness,omitempty"`          // absorbing cells on each subgrid side
	PMLSeparation         *int  `json:"pml_separation,omitempty"`         // subgrid cells between OS and PML; <0 means ratio/2+2
	InterpolatePrecursors *bool `json:"interpolate_precursors,omitempty"` // time-interpolate precursors across sub-steps

	// Run params
	Workers        *int     `json:"workers,omitempty"`          // worker goroutines for field updates
	CourantFactor  *float64 `json:"courant_factor,omitempty"`   // dt as a fraction of the CFL limit
	SnapshotEvery  *int     `json:"snapshot_every,omitempty"`   // coarse steps between field snapshots; 0 disables
	SnapshotDBPath *string  `json:"snapshot_db_path,omitempty"` // sqlite file for run persistence
	PlotOutputDir  *string  `json:"plot_output_dir,omitempty"`  // directory for debug heatmaps and charts
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Omitted fields keep
// their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that any set values are usable.
func (c *TuningConfig) Validate() error {
	if c.SubgridRatio != nil {
		if *c.SubgridRatio < 1 {
			return fmt.Errorf("subgrid_ratio must be >= 1, got %d", *c.SubgridRatio)
		}
		if *c.SubgridRatio%2 == 0 {
			return fmt.Errorf("subgrid_ratio must be odd, got %d", *c.SubgridRatio)
		}
	}
	if c.ISOSSeparation != nil && *c.ISOSSeparation < 1 {
		return fmt.Errorf("is_os_separation must be >= 1, got %d", *c.ISOSSeparation)
	}
	if c.PMLThickness != nil && *c.PMLThickness < 0 {
		return fmt.Errorf("pml_thickness must be non-negative, got %d", *c.PMLThickness)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", *c.Workers)
	}
	if c.CourantFactor != nil {
		if *c.CourantFactor <= 0 || *c.CourantFactor > 1 {
			return fmt.Errorf("courant_factor must be in (0, 1], got %f", *c.CourantFactor)
		}
	}
	if c.SnapshotEvery != nil && *c.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot_every must be non-negative, got %d", *c.SnapshotEvery)
	}
	return nil
}

// GetSubgridRatio returns the subgrid_ratio value or the default.
func (c *TuningConfig) GetSubgridRatio() int {
	if c.SubgridRatio == nil {
		return 3
	}
	return *c.SubgridRatio
}

// GetISOSSeparation returns the is_os_separation value or the default.
// The default of 3 main-grid cells is a tunable with no deeper derivation.
func (c *TuningConfig) GetISOSSeparation() int {
	if c.ISOSSeparation == nil {
		return 3
	}
	return *c.ISOSSeparation
}

// GetPMLThickness returns the pml_thickness value or the default.
func (c *TuningConfig) GetPMLThickness() int {
	if c.PMLThickness == nil {
		return 6
	}
	return *c.PMLThickness
}

// GetPMLSeparation returns the pml_separation value for the given ratio.
func (c *TuningConfig) GetPMLSeparation(ratio int) int {
	if c.PMLSeparation == nil || *c.PMLSeparation < 0 {
		return ratio/2 + 2
	}
	return *c.PMLSeparation
}

// GetInterpolatePrecursors returns the interpolate_precursors value or the default.
func (c *TuningConfig) GetInterpolatePrecursors() bool {
	if c.InterpolatePrecursors == nil {
		return true
	}
	return *c.InterpolatePrecursors
}

// GetWorkers returns the workers value or the default (1: strictly
// sequential updates).
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetCourantFactor returns the courant_factor value or the default.
func (c *TuningConfig) GetCourantFactor() float64 {
	if c.CourantFactor == nil {
		return 1.0
	}
	return *c.CourantFactor
}

// GetSnapshotEvery returns the snapshot_every value or the default (disabled).
func (c *TuningConfig) GetSnapshotEvery() int {
	if c.SnapshotEvery == nil {
		return 0
	}
	return *c.SnapshotEvery
}

// GetSnapshotDBPath returns the snapshot_db_path value or the default.
func (c *TuningConfig) GetSnapshotDBPath() string {
	if c.SnapshotDBPath == nil {
		return ""
	}
	return *c.SnapshotDBPath
}

// GetPlotOutputDir returns the plot_output_dir value or the default.
func (c *TuningConfig) GetPlotOutputDir() string {
	if c.PlotOutputDir == nil {
		return ""
	}
	return *c.PlotOutputDir
}
