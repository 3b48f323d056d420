package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensorAccessors(t *testing.T) {
	x := NewTensor(2, 3, 4)
	x.Set(1, 2, 3, 7.5)
	assert.Equal(t, 7.5, x.At(1, 2, 3))
	assert.Equal(t, 7.5, x.Channel(1)[2*4+3])

	clone := x.Clone()
	clone.Set(1, 2, 3, 0)
	assert.Equal(t, 7.5, x.At(1, 2, 3))
}

func TestBilinearResizeIdentity(t *testing.T) {
	x := NewTensor(1, 3, 3)
	for i := range x.Data {
		x.Data[i] = float64(i)
	}
	y := BilinearResize(x, 3, 3)
	assert.Equal(t, x.Data, y.Data)
}

func TestBilinearResizeInterpolatesMidpoint(t *testing.T) {
	x := NewTensor(1, 1, 2)
	x.Set(0, 0, 0, 0)
	x.Set(0, 0, 1, 10)

	y := BilinearResize(x, 1, 3)
	assert.InDelta(t, 0, y.At(0, 0, 0), 1e-12)
	assert.InDelta(t, 5, y.At(0, 0, 1), 1e-12)
	assert.InDelta(t, 10, y.At(0, 0, 2), 1e-12)
}

func TestBilinearResizePreservesConstant(t *testing.T) {
	x := NewTensor(2, 4, 4)
	for i := range x.Data {
		x.Data[i] = 3.25
	}
	y := BilinearResize(x, 9, 7)
	for _, v := range y.Data {
		assert.InDelta(t, 3.25, v, 1e-12)
	}
}

func TestPadToAndCropBack(t *testing.T) {
	x := NewTensor(2, 3, 3)
	for i := range x.Data {
		x.Data[i] = float64(i + 1)
	}
	padded, top, left := PadTo(x, 7, 7, []float64{-1, -2})
	assert.Equal(t, 7, padded.H)
	assert.Equal(t, 7, padded.W)
	// Symmetric padding centers the original.
	assert.Equal(t, 2, top)
	assert.Equal(t, 2, left)
	assert.Equal(t, -1.0, padded.At(0, 0, 0))
	assert.Equal(t, -2.0, padded.At(1, 0, 0))

	back := Crop(padded, top, left, 3, 3)
	assert.Equal(t, x.Data, back.Data)
}

func TestPadToNoopWhenLargeEnough(t *testing.T) {
	x := NewTensor(1, 5, 5)
	padded, top, left := PadTo(x, 5, 5, nil)
	assert.Equal(t, 0, top)
	assert.Equal(t, 0, left)
	assert.Equal(t, x.Data, padded.Data)
}

func TestSerializeTensorRoundTrip(t *testing.T) {
	x := NewTensor(3, 2, 5)
	for i := range x.Data {
		x.Data[i] = float64(i) * 0.5
	}
	payload, err := SerializeTensor(x)
	require.NoError(t, err)
	decoded, err := DeserializeTensor(payload)
	require.NoError(t, err)
	assert.Equal(t, x.C, decoded.C)
	assert.Equal(t, x.H, decoded.H)
	assert.Equal(t, x.W, decoded.W)
	assert.Equal(t, x.Data, decoded.Data)
}

func TestSerializeLabelMapRoundTrip(t *testing.T) {
	l := NewLabelMap(2, 3)
	for i := range l.Data {
		l.Data[i] = int32(i * 7)
	}
	payload, err := SerializeLabelMap(l)
	require.NoError(t, err)
	decoded, err := DeserializeLabelMap(payload)
	require.NoError(t, err)
	assert.Equal(t, l.H, decoded.H)
	assert.Equal(t, l.W, decoded.W)
	assert.Equal(t, l.Data, decoded.Data)
}

func TestDeserializeLabelMapRejectsGarbage(t *testing.T) {
	_, err := DeserializeLabelMap([]byte{0, 1})
	assert.Error(t, err)
}
