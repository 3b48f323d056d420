package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfusionTwoClassScenario(t *testing.T) {
	cm := NewConfusionMatrix(2)
	truth := []int32{0, 0, 1, 1}
	predicted := []int32{0, 1, 1, 1}
	require.NoError(t, cm.Update(predicted, truth, 255))

	assert.Equal(t, int64(1), cm.Counts[0*2+0])
	assert.Equal(t, int64(1), cm.Counts[0*2+1])
	assert.Equal(t, int64(0), cm.Counts[1*2+0])
	assert.Equal(t, int64(2), cm.Counts[1*2+1])

	ious, valid := cm.IoU()
	assert.True(t, valid[0])
	assert.True(t, valid[1])
	assert.InDelta(t, 0.5, ious[0], 1e-12)
	assert.InDelta(t, 2.0/3.0, ious[1], 1e-12)
	assert.InDelta(t, 7.0/12.0, cm.MeanIoU(), 1e-12)
	assert.InDelta(t, 0.75, cm.PixelAccuracy(), 1e-12)
}

func TestConfusionOrderInvariance(t *testing.T) {
	imageA := struct{ pred, truth []int32 }{[]int32{0, 1, 2}, []int32{0, 2, 2}}
	imageB := struct{ pred, truth []int32 }{[]int32{1, 1, 0}, []int32{1, 0, 0}}

	ab := NewConfusionMatrix(3)
	require.NoError(t, ab.Update(imageA.pred, imageA.truth, 255))
	require.NoError(t, ab.Update(imageB.pred, imageB.truth, 255))

	ba := NewConfusionMatrix(3)
	require.NoError(t, ba.Update(imageB.pred, imageB.truth, 255))
	require.NoError(t, ba.Update(imageA.pred, imageA.truth, 255))

	assert.Equal(t, ab.Counts, ba.Counts)
	assert.Equal(t, ab.MeanIoU(), ba.MeanIoU())
}

func TestConfusionIgnoresLabel(t *testing.T) {
	cm := NewConfusionMatrix(2)
	require.NoError(t, cm.Update([]int32{0, 1, 0}, []int32{0, 255, 255}, 255))

	var total int64
	for _, c := range cm.Counts {
		total += c
	}
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), cm.Counts[0])
}

func TestConfusionZeroUnionClassExcluded(t *testing.T) {
	// Class 2 never appears in truth or predictions.
	cm := NewConfusionMatrix(3)
	require.NoError(t, cm.Update([]int32{0, 1}, []int32{0, 1}, 255))

	_, valid := cm.IoU()
	assert.False(t, valid[2])
	assert.InDelta(t, 1.0, cm.MeanIoU(), 1e-12)
}

func TestConfusionMergeMatchesSingleUpdate(t *testing.T) {
	a := NewConfusionMatrix(2)
	require.NoError(t, a.Update([]int32{0, 1}, []int32{0, 0}, 255))
	b := NewConfusionMatrix(2)
	require.NoError(t, b.Update([]int32{1, 1}, []int32{1, 0}, 255))

	combined := NewConfusionMatrix(2)
	require.NoError(t, combined.Update([]int32{0, 1, 1, 1}, []int32{0, 0, 1, 0}, 255))

	require.NoError(t, a.Merge(b))
	assert.Equal(t, combined.Counts, a.Counts)
}

func TestConfusionSerializeRoundTrip(t *testing.T) {
	cm := NewConfusionMatrix(3)
	require.NoError(t, cm.Update([]int32{0, 1, 2, 2}, []int32{0, 2, 2, 1}, 255))

	payload, err := cm.Serialize()
	require.NoError(t, err)
	decoded, err := Deserialize(payload)
	require.NoError(t, err)
	assert.Equal(t, cm.Counts, decoded.Counts)
}

func TestConfusionUpdateLengthMismatch(t *testing.T) {
	cm := NewConfusionMatrix(2)
	assert.Error(t, cm.Update([]int32{0, 1}, []int32{0}, 255))
}
