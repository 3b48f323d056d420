package train

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JohnSon-zh-12345/pyconvsegnet/amp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ckpt.json")

	params := []*mat.Dense{
		mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		mat.NewDense(1, 2, []float64{-1, 0.5}),
	}
	scaler := amp.State{Scale: 4096, CleanStreak: 17}
	ckpt := &Checkpoint{
		Epoch:      7,
		GlobalIter: 1234,
		BestMIoU:   0.71,
		Params:     encodeMatrices(params),
		Scaler:     &scaler,
	}
	require.NoError(t, SaveCheckpoint(path, ckpt))

	loaded, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Epoch)
	assert.Equal(t, 1234, loaded.GlobalIter)
	assert.Equal(t, 0.71, loaded.BestMIoU)
	require.NotNil(t, loaded.Scaler)
	assert.Equal(t, 4096.0, loaded.Scaler.Scale)

	restored := []*mat.Dense{mat.NewDense(2, 3, nil), mat.NewDense(1, 2, nil)}
	require.NoError(t, loaded.RestoreParams(restored))
	assert.True(t, mat.EqualApprox(params[0], restored[0], 1e-12))
	assert.True(t, mat.EqualApprox(params[1], restored[1], 1e-12))
}

func TestCheckpointRejectsShapeMismatch(t *testing.T) {
	params := []*mat.Dense{mat.NewDense(2, 2, []float64{1, 2, 3, 4})}
	ckpt := &Checkpoint{Params: encodeMatrices(params)}

	assert.Error(t, ckpt.RestoreParams([]*mat.Dense{mat.NewDense(3, 2, nil)}))
	assert.Error(t, ckpt.RestoreParams(nil))
}

func TestSaveCheckpointCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "ckpt.json")
	ckpt := &Checkpoint{Epoch: 1}

	require.NoError(t, SaveCheckpoint(path, ckpt))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
