package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runsHasNotesColumn(t *testing.T, s *Store) bool {
	t.Helper()
	rows, err := s.Query(`PRAGMA table_info(runs)`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			defaultVal any
			pk         int
		)
		require.NoError(t, rows.Scan(&cid, &name, &typ, &notnull, &defaultVal, &pk))
		if name == "notes" {
			return true
		}
	}
	require.NoError(t, rows.Err())
	return false
}

func TestOpenAppliesMigrations(t *testing.T) {
	s := openTestStore(t)

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
	assert.True(t, runsHasNotesColumn(t, s))

	run := &Run{ModelName: "annotated"}
	require.NoError(t, s.InsertRun(run))
	_, err = s.Exec(`UPDATE runs SET notes = ? WHERE run_id = ?`, "calibration run", run.RunID)
	require.NoError(t, err)
}

func TestMigrateRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.MigrateDown())
	assert.False(t, runsHasNotesColumn(t, s))

	// Up is idempotent from the rolled-back state.
	require.NoError(t, s.MigrateUp())
	assert.True(t, runsHasNotesColumn(t, s))
	require.NoError(t, s.MigrateUp())

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}
