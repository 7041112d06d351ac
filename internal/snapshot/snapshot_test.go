package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/emfield/internal/field"
	"github.com/banshee-data/emfield/internal/units"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testGrid(t *testing.T) *field.Grid {
	t.Helper()
	d := 1e-3
	g, err := field.NewGrid("main", 10, 10, 10, d, d, d, units.CFLTimeStep(d, d, d))
	require.NoError(t, err)
	return g
}

func TestInsertRunAssignsUUID(t *testing.T) {
	s := openTestStore(t)
	run := &Run{ModelName: "test-model", Steps: 100, Dt: 1e-12}
	require.NoError(t, s.InsertRun(run))
	assert.NotEmpty(t, run.RunID)

	// Explicit IDs are preserved.
	run2 := &Run{RunID: "fixed-id", ModelName: "other"}
	require.NoError(t, s.InsertRun(run2))
	assert.Equal(t, "fixed-id", run2.RunID)
}

func TestPlaneSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	g := testGrid(t)
	run := &Run{ModelName: "m"}
	require.NoError(t, s.InsertRun(run))

	for i := range g.Ez {
		g.Ez[i] = float64(i) * 0.5
	}
	ps, err := CapturePlane(g, field.CompEz, units.Z, 5, run.RunID, 12)
	require.NoError(t, err)
	assert.Equal(t, 11, ps.N1)
	assert.Equal(t, 11, ps.N2)
	assert.Equal(t, g.Ez[g.Idx(3, 4, 5)], ps.Data[3*11+4])

	id, err := s.InsertPlaneSnapshot(ps)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.GetPlaneSnapshot(run.RunID, "main", 12, field.CompEz)
	require.NoError(t, err)
	assert.Equal(t, ps.N1, got.N1)
	assert.Equal(t, units.Z, got.NormalAxis)
	assert.Equal(t, 5, got.PlaneIndex)
	assert.Equal(t, ps.Data, got.Data)
}

func TestCapturePlaneBounds(t *testing.T) {
	g := testGrid(t)
	_, err := CapturePlane(g, field.CompEx, units.Y, 11, "run", 0)
	assert.Error(t, err)
}

func TestInsertPlaneSnapshotRejectsSizeMismatch(t *testing.T) {
	s := openTestStore(t)
	ps := &PlaneSnapshot{RunID: "r", GridName: "g", N1: 4, N2: 4, Data: make([]float64, 9)}
	_, err := s.InsertPlaneSnapshot(ps)
	assert.Error(t, err)
}

func TestListSteps(t *testing.T) {
	s := openTestStore(t)
	g := testGrid(t)
	run := &Run{ModelName: "m"}
	require.NoError(t, s.InsertRun(run))

	for _, step := range []int{0, 4, 2, 4} {
		ps, err := CapturePlane(g, field.CompEy, units.X, 3, run.RunID, step)
		require.NoError(t, err)
		_, err = s.InsertPlaneSnapshot(ps)
		require.NoError(t, err)
	}
	steps, err := s.ListSteps(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, steps)
}

func TestReceiverTraceRoundTrip(t *testing.T) {
	s := openTestStore(t)
	g := testGrid(t)
	run := &Run{ModelName: "m"}
	require.NoError(t, s.InsertRun(run))

	rx, err := field.NewReceiver("rx1", g, field.Index{5, 5, 5})
	require.NoError(t, err)
	g.Ez[g.Idx(5, 5, 5)] = 1.5
	rx.Record()
	g.Ez[g.Idx(5, 5, 5)] = -0.25
	rx.Record()

	_, err = s.InsertReceiverTrace(run.RunID, rx, field.CompEz)
	require.NoError(t, err)

	got, err := s.GetReceiverTrace(run.RunID, "rx1", field.CompEz)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -0.25}, got)
}

func TestRecorderCapturesEveryN(t *testing.T) {
	s := openTestStore(t)
	g := testGrid(t)
	run := &Run{ModelName: "m"}
	require.NoError(t, s.InsertRun(run))

	rec := &Recorder{
		Store: s,
		RunID: run.RunID,
		Every: 2,
		Planes: []PlaneSpec{
			{Grid: g, Component: field.CompEz, NormalAxis: units.Z, PlaneIndex: 5},
		},
	}
	for step := 0; step < 5; step++ {
		rec.Record(step)
	}
	steps, err := s.ListSteps(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4}, steps)
}
