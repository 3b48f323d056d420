package model

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsLinearArch(t *testing.T) {
	c := comm.NewSingle()
	for _, arch := range []string{"", "linear"} {
		m, err := New(Options{Arch: arch, InChannels: 3, Classes: 4}, c)
		require.NoError(t, err)
		assert.Equal(t, 4, m.NumClasses())
	}
	_, err := New(Options{Arch: "resnet", InChannels: 3, Classes: 4}, c)
	assert.Error(t, err)
}

func TestLinearForwardShapes(t *testing.T) {
	e, err := NewLinearExtractor(Options{InChannels: 3, Classes: 5, OutputStride: 2, AuxStride: 4}, comm.NewSingle())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	batch := []*utils.Tensor{randomTensor(rng, 3, 8, 8), randomTensor(rng, 3, 8, 8)}

	primary, aux, err := e.Forward(context.Background(), batch, true)
	require.NoError(t, err)
	require.Len(t, primary, 2)
	require.Len(t, aux, 2)
	assert.Equal(t, 5, primary[0].C)
	assert.Equal(t, 4, primary[0].H)
	assert.Equal(t, 4, primary[0].W)
	assert.Equal(t, 2, aux[0].H)
	assert.Equal(t, 2, aux[0].W)

	// Evaluation mode produces no auxiliary head.
	primary, aux, err = e.Forward(context.Background(), batch, false)
	require.NoError(t, err)
	assert.Len(t, primary, 2)
	assert.Nil(t, aux)
}

func TestLinearBackwardAccumulatesGradients(t *testing.T) {
	e, err := NewLinearExtractor(Options{InChannels: 2, Classes: 3, Seed: 5}, comm.NewSingle())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(2))
	batch := []*utils.Tensor{randomTensor(rng, 2, 4, 4)}
	primary, _, err := e.Forward(context.Background(), batch, true)
	require.NoError(t, err)

	upstream := []*utils.Tensor{randomTensor(rng, 3, primary[0].H, primary[0].W)}
	require.NoError(t, e.Backward(context.Background(), upstream, nil))

	var nonzero bool
	for _, g := range e.Gradients() {
		r, c := g.Dims()
		for y := 0; y < r; y++ {
			for x := 0; x < c; x++ {
				if g.At(y, x) != 0 {
					nonzero = true
				}
			}
		}
	}
	assert.True(t, nonzero)

	e.ZeroGrad()
	for _, g := range e.Gradients() {
		r, c := g.Dims()
		for y := 0; y < r; y++ {
			for x := 0; x < c; x++ {
				assert.Zero(t, g.At(y, x))
			}
		}
	}
}

func TestLinearParametersAndGradientsAlign(t *testing.T) {
	e, err := NewLinearExtractor(Options{InChannels: 3, Classes: 4, AuxStride: 2}, comm.NewSingle())
	require.NoError(t, err)

	params := e.Parameters()
	grads := e.Gradients()
	require.Equal(t, len(params), len(grads))
	for i := range params {
		pr, pc := params[i].Dims()
		gr, gc := grads[i].Dims()
		assert.Equal(t, pr, gr)
		assert.Equal(t, pc, gc)
	}
}

// Two ranks running the sync-enabled extractor on split data must produce
// the same outputs as one rank over the pooled batch.
func TestLinearSyncBNPartitionInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	samples := []*utils.Tensor{randomTensor(rng, 2, 4, 4), randomTensor(rng, 2, 4, 4)}

	opts := Options{InChannels: 2, Classes: 3, SyncBN: true, Seed: 17}
	ref, err := NewLinearExtractor(opts, comm.NewSingle())
	require.NoError(t, err)
	// SyncBN over a single rank still reduces, against a world of one.
	refOut, _, err := ref.Forward(context.Background(), samples, true)
	require.NoError(t, err)

	comms := comm.NewLocalGroup(2)
	outs := make([][]*utils.Tensor, 2)
	var wg sync.WaitGroup
	for rank := 0; rank < 2; rank++ {
		e, err := NewLinearExtractor(opts, comms[rank])
		require.NoError(t, err)
		wg.Add(1)
		go func(rank int, e *LinearExtractor) {
			defer wg.Done()
			out, _, err := e.Forward(context.Background(), samples[rank:rank+1], true)
			assert.NoError(t, err)
			outs[rank] = out
		}(rank, e)
	}
	wg.Wait()

	for rank := 0; rank < 2; rank++ {
		require.Len(t, outs[rank], 1)
		for j := range refOut[rank].Data {
			assert.InDelta(t, refOut[rank].Data[j], outs[rank][0].Data[j], 1e-9)
		}
	}
}
