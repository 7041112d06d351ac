package snapshot

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/units"
)

// Run identifies one simulation execution.
type Run struct {
	RunID     string
	ModelName string
	Steps     int
	Dt        float64
}

// PlaneSnapshot is one field component sampled on a plane of constant index
// along the normal axis, at one coarse step.
type PlaneSnapshot struct {
	SnapshotID int64
	RunID      string
	GridName   string
	Step       int
	Component  field.Component
	NormalAxis units.Axis
	PlaneIndex int
	N1, N2     int
	Data       []float64 // row-major, N1 x N2
}

// serializeField compresses a sample slice with gob encoding and gzip.
func serializeField(data []float64) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(data); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deserializeField(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty field blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var data []float64
	if err := gob.NewDecoder(gz).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode field blob: %w", err)
	}
	return data, nil
}

// InsertRun records a new run. A missing RunID is assigned a fresh UUID.
func (s *Store) InsertRun(r *Run) error {
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	_, err := s.Exec(
		`INSERT INTO runs (run_id, model_name, steps, dt) VALUES (?, ?, ?, ?)`,
		r.RunID, r.ModelName, r.Steps, r.Dt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// InsertPlaneSnapshot persists one plane capture and returns its row ID.
func (s *Store) InsertPlaneSnapshot(ps *PlaneSnapshot) (int64, error) {
	if len(ps.Data) != ps.N1*ps.N2 {
		return 0, fmt.Errorf("plane data has %d samples, want %d x %d", len(ps.Data), ps.N1, ps.N2)
	}
	blob, err := serializeField(ps.Data)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize plane: %w", err)
	}
	res, err := s.Exec(
		`INSERT INTO plane_snapshots
			(run_id, grid_name, step, component, normal_axis, plane_index, n1, n2, field_blob)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ps.RunID, ps.GridName, ps.Step, ps.Component.String(), ps.NormalAxis.String(),
		ps.PlaneIndex, ps.N1, ps.N2, blob)
	if err != nil {
		return 0, fmt.Errorf("failed to insert plane snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	ps.SnapshotID = id
	return id, nil
}

// GetPlaneSnapshot loads one capture by run, grid, step, and component.
func (s *Store) GetPlaneSnapshot(runID, gridName string, step int, comp field.Component) (*PlaneSnapshot, error) {
	row := s.QueryRow(
		`SELECT snapshot_id, run_id, grid_name, step, component, normal_axis, plane_index, n1, n2, field_blob
			FROM plane_snapshots
			WHERE run_id = ? AND grid_name = ? AND step = ? AND component = ?
			ORDER BY snapshot_id LIMIT 1`,
		runID, gridName, step, comp.String())

	var ps PlaneSnapshot
	var compName, axisName string
	var blob []byte
	err := row.Scan(&ps.SnapshotID, &ps.RunID, &ps.GridName, &ps.Step,
		&compName, &axisName, &ps.PlaneIndex, &ps.N1, &ps.N2, &blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no snapshot for run %s grid %s step %d component %s", runID, gridName, step, comp)
	}
	if err != nil {
		return nil, err
	}
	ps.Component = comp
	if axis, ok := units.ParseAxis(axisName); ok {
		ps.NormalAxis = axis
	}
	if ps.Data, err = deserializeField(blob); err != nil {
		return nil, err
	}
	return &ps, nil
}

// ListSteps returns the distinct captured steps of one run in order.
func (s *Store) ListSteps(runID string) ([]int, error) {
	rows, err := s.Query(
		`SELECT DISTINCT step FROM plane_snapshots WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []int
	for rows.Next() {
		var step int
		if err := rows.Scan(&step); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// InsertReceiverTrace persists one receiver component's full time series.
func (s *Store) InsertReceiverTrace(runID string, r *field.Receiver, comp field.Component) (int64, error) {
	blob, err := serializeField(r.Component(comp))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize trace: %w", err)
	}
	res, err := s.Exec(
		`INSERT INTO receiver_traces (run_id, receiver_name, grid_name, component, samples_blob)
			VALUES (?, ?, ?, ?, ?)`,
		runID, r.Name, r.Grid.Name, comp.String(), blob)
	if err != nil {
		return 0, fmt.Errorf("failed to insert receiver trace: %w", err)
	}
	return res.LastInsertId()
}

// GetReceiverTrace loads one receiver component's samples.
func (s *Store) GetReceiverTrace(runID, receiverName string, comp field.Component) ([]float64, error) {
	row := s.QueryRow(
		`SELECT samples_blob FROM receiver_traces
			WHERE run_id = ? AND receiver_name = ? AND component = ?
			ORDER BY trace_id DESC LIMIT 1`,
		runID, receiverName, comp.String())
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no trace for run %s receiver %s component %s", runID, receiverName, comp)
		}
		return nil, err
	}
	return deserializeField(blob)
}

// CapturePlane extracts one component on a constant-index plane from a grid.
func CapturePlane(g *field.Grid, comp field.Component, normal units.Axis, planeIndex int, runID string, step int) (*PlaneSnapshot, error) {
	size := g.Size()
	if planeIndex < 0 || planeIndex > size[normal] {
		return nil, fmt.Errorf("plane index %d outside grid %q on %s axis", planeIndex, g.Name, normal)
	}

	axes := [3]units.Axis{}
	n := 0
	for a := units.X; a <= units.Z; a++ {
		if a != normal {
			axes[n] = a
			n++
		}
	}
	t1, t2 := axes[0], axes[1]
	n1 := size[t1] + 1
	n2 := size[t2] + 1

	data := make([]float64, n1*n2)
	fld := g.Field(comp)
	var idx field.Index
	idx[normal] = planeIndex
	for u := 0; u < n1; u++ {
		for v := 0; v < n2; v++ {
			idx[t1] = u
			idx[t2] = v
			data[u*n2+v] = fld[g.Idx(idx[0], idx[1], idx[2])]
		}
	}

	return &PlaneSnapshot{
		RunID:      runID,
		GridName:   g.Name,
		Step:       step,
		Component:  comp,
		NormalAxis: normal,
		PlaneIndex: planeIndex,
		N1:         n1,
		N2:         n2,
		Data:       data,
	}, nil
}
