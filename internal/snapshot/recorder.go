package snapshot

import (
	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/monitoring"
	"github.com/banshee-data/emfield/internal/units"
)

// PlaneSpec names one plane to capture while the simulation runs.
type PlaneSpec struct {
	Grid       *field.Grid
	Component  field.Component
	NormalAxis units.Axis
	PlaneIndex int
}

// Recorder captures configured planes every Every coarse steps and writes
// them to the store. Attach it with engine.OnStep(rec.Record).
type Recorder struct {
	Store  *Store
	RunID  string
	Every  int
	Planes []PlaneSpec
}

// Record is the step callback. Persistence failures are logged, not fatal;
// losing a snapshot must not abort a long simulation.
func (r *Recorder) Record(step int) {
	every := r.Every
	if every < 1 {
		every = 1
	}
	if step%every != 0 {
		return
	}
	for _, spec := range r.Planes {
		ps, err := CapturePlane(spec.Grid, spec.Component, spec.NormalAxis, spec.PlaneIndex, r.RunID, step)
		if err != nil {
			monitoring.Warnf("snapshot capture failed at step %d: %v", step, err)
			continue
		}
		if _, err := r.Store.InsertPlaneSnapshot(ps); err != nil {
			monitoring.Warnf("snapshot persist failed at step %d: %v", step, err)
		}
	}
}
