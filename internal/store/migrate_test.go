package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateLegacy(t *testing.T) {
	legacy := map[string]string{
		"fp-1": "firing",
		"fp-2": "resolved",
	}
	now := time.Unix(1700000000, 0).UTC()

	migrated := migrateLegacy(legacy, now)
	require.Len(t, migrated, 2)

	record := migrated["fp-1"]
	assert.Equal(t, "fp-1", record.Fingerprint)
	assert.Equal(t, "firing", record.LastStatus)
	assert.Equal(t, int64(1700000000), record.LastSeen.Unix())
	assert.Equal(t, int64(1700000000), record.LastAlerted.Unix())
	assert.Nil(t, record.FirstAlerted)
	assert.Nil(t, record.Name)
	assert.Nil(t, record.Priority)
	assert.Nil(t, record.Summary)

	assert.Equal(t, "resolved", migrated["fp-2"].LastStatus)
}

func TestMigrateV1RewritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"fp-1": "firing", "fp-2": "resolved"}`), 0o644))

	require.NoError(t, MigrateV1(path))

	s := Load(path)
	require.Len(t, s.data, 2)
	assert.Equal(t, "firing", s.data["fp-1"].LastStatus)
	assert.Equal(t, "resolved", s.data["fp-2"].LastStatus)
}

func TestMigrateV1MissingFile(t *testing.T) {
	assert.Error(t, MigrateV1(filepath.Join(t.TempDir(), "nope.json")))
}

func TestMigrateV1AlreadyCurrentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	s := Load(path)
	s.RecordAlerted(firingAlert())
	s.Persist()
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// The current schema does not unmarshal as a flat string map, so the
	// migration is refused and the file is untouched.
	assert.Error(t, MigrateV1(path))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
