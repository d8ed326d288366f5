package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

func TestLoadMissingFileLeavesStateEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	state := map[string]record{}
	require.NoError(t, Load(path, &state))
	assert.Empty(t, state)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	saved := map[string]record{
		"100": {Name: "alpha", Wins: 2},
		"200": {Name: "beta", Wins: 0},
	}
	require.NoError(t, Save(path, saved))

	loaded := map[string]record{}
	require.NoError(t, Load(path, &loaded))
	assert.Equal(t, saved, loaded)
}

func TestSaveOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, Save(path, map[string]record{"1": {Name: "old"}}))
	require.NoError(t, Save(path, map[string]record{"2": {Name: "new"}}))

	loaded := map[string]record{}
	require.NoError(t, Load(path, &loaded))
	assert.Equal(t, map[string]record{"2": {Name: "new"}}, loaded)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, Save(path, map[string]record{"1": {Name: "x"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	state := map[string]record{}
	assert.Error(t, Load(path, &state))
}
