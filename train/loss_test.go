package train

import (
	"math"
	"testing"

	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossEntropyUniformLogits(t *testing.T) {
	logits := utils.NewTensor(4, 2, 2)
	target := utils.NewLabelMap(2, 2)

	loss, grad, err := SoftmaxCrossEntropy(logits, target, 255)
	require.NoError(t, err)
	// Equal logits: -log(1/4) per pixel.
	assert.InDelta(t, math.Log(4), loss, 1e-12)
	// Gradient at the target class is (p - 1)/count, elsewhere p/count.
	assert.InDelta(t, (0.25-1)/4, grad.At(0, 0, 0), 1e-12)
	assert.InDelta(t, 0.25/4, grad.At(1, 0, 0), 1e-12)
}

func TestCrossEntropyIgnoredPixelsContributeNothing(t *testing.T) {
	logits := utils.NewTensor(2, 1, 2)
	logits.Set(0, 0, 0, 5)
	logits.Set(1, 0, 1, 3)
	target := utils.NewLabelMap(1, 2)
	target.Set(0, 0, 0)
	target.Set(0, 1, 255)

	loss, grad, err := SoftmaxCrossEntropy(logits, target, 255)
	require.NoError(t, err)

	only := utils.NewTensor(2, 1, 1)
	only.Set(0, 0, 0, 5)
	onlyTarget := utils.NewLabelMap(1, 1)
	wantLoss, _, err := SoftmaxCrossEntropy(only, onlyTarget, 255)
	require.NoError(t, err)

	assert.InDelta(t, wantLoss, loss, 1e-12)
	assert.Zero(t, grad.At(0, 0, 1))
	assert.Zero(t, grad.At(1, 0, 1))
}

func TestCrossEntropyGradientSumsToZeroPerPixel(t *testing.T) {
	logits := utils.NewTensor(3, 2, 2)
	for i := range logits.Data {
		logits.Data[i] = float64(i%5) - 2
	}
	target := utils.NewLabelMap(2, 2)
	for i := range target.Data {
		target.Data[i] = int32(i % 3)
	}

	_, grad, err := SoftmaxCrossEntropy(logits, target, 255)
	require.NoError(t, err)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			var sum float64
			for c := 0; c < 3; c++ {
				sum += grad.At(c, y, x)
			}
			assert.InDelta(t, 0, sum, 1e-12)
		}
	}
}

func TestCrossEntropyAllIgnoredIsZero(t *testing.T) {
	logits := utils.NewTensor(2, 1, 1)
	target := utils.NewLabelMap(1, 1)
	target.Set(0, 0, 255)

	loss, grad, err := SoftmaxCrossEntropy(logits, target, 255)
	require.NoError(t, err)
	assert.Zero(t, loss)
	assert.Zero(t, grad.At(0, 0, 0))
}

func TestCrossEntropyRejectsBadInput(t *testing.T) {
	logits := utils.NewTensor(2, 2, 2)
	_, _, err := SoftmaxCrossEntropy(logits, utils.NewLabelMap(3, 2), 255)
	assert.Error(t, err)

	target := utils.NewLabelMap(2, 2)
	target.Set(0, 0, 7)
	_, _, err = SoftmaxCrossEntropy(logits, target, 255)
	assert.Error(t, err)
}
