package train

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.ckpt")
	params := []float64{0.5, -1.25, 3e-7, 0, 42}

	require.NoError(t, WriteCheckpoint(path, params))

	got, err := ReadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, params, got)
}

func TestCheckpointEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.ckpt")
	require.NoError(t, WriteCheckpoint(path, nil))

	got, err := ReadCheckpoint(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCheckpointOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.ckpt")
	require.NoError(t, WriteCheckpoint(path, []float64{1, 2}))
	require.NoError(t, WriteCheckpoint(path, []float64{3, 4, 5}))

	got, err := ReadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4, 5}, got)
}

func TestCheckpointDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.ckpt")
	require.NoError(t, WriteCheckpoint(path, []float64{1, 2, 3}))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	buf[20] ^= 0xff
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	_, err = ReadCheckpoint(path)
	assert.True(t, errors.Is(err, ErrCorruptCheckpoint), "got %v", err)
}

func TestCheckpointDetectsTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.ckpt")
	require.NoError(t, WriteCheckpoint(path, []float64{1, 2, 3}))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf[:len(buf)-6], 0o644))

	_, err = ReadCheckpoint(path)
	assert.True(t, errors.Is(err, ErrCorruptCheckpoint), "got %v", err)
}

func TestCheckpointRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.ckpt")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	_, err := ReadCheckpoint(path)
	assert.True(t, errors.Is(err, ErrCorruptCheckpoint), "got %v", err)
}

func TestCheckpointMissingFile(t *testing.T) {
	_, err := ReadCheckpoint(filepath.Join(t.TempDir(), "nope.ckpt"))
	assert.Error(t, err)
}
