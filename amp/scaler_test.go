package amp

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTestScaler(t *testing.T, opts ScalerOptions) *LossScaler {
	s, err := NewLossScaler(comm.NewSingle(), opts)
	require.NoError(t, err)
	return s
}

func TestScaleLoss(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 1024})
	assert.Equal(t, 2048.0, s.ScaleLoss(2))
}

func TestOverflowSkipsStepAndHalvesScale(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 1024})
	grads := []*mat.Dense{mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4})}

	stepped := false
	applied, err := s.Step(context.Background(), grads, func() error {
		stepped = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, stepped)
	assert.Equal(t, 512.0, s.Scale())
}

func TestInfCountsAsOverflow(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 1024})
	grads := []*mat.Dense{mat.NewDense(1, 2, []float64{math.Inf(1), 0})}

	applied, err := s.Step(context.Background(), grads, func() error { return nil })
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 512.0, s.Scale())
}

func TestCleanStepUnscalesAndApplies(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 8})
	grads := []*mat.Dense{mat.NewDense(1, 2, []float64{16, 24})}

	applied, err := s.Step(context.Background(), grads, func() error { return nil })
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 2.0, grads[0].At(0, 0))
	assert.Equal(t, 3.0, grads[0].At(0, 1))
}

func TestScaleDoublesAfterGrowthInterval(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 1024, GrowthInterval: 3})
	grads := []*mat.Dense{mat.NewDense(1, 1, []float64{1})}

	for i := 0; i < 3; i++ {
		assert.Equal(t, 1024.0, s.Scale())
		grads[0].Set(0, 0, 1)
		applied, err := s.Step(context.Background(), grads, func() error { return nil })
		require.NoError(t, err)
		assert.True(t, applied)
	}
	// Doubled exactly once after the third clean step.
	assert.Equal(t, 2048.0, s.Scale())
}

func TestOverflowResetsStreak(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 1024, GrowthInterval: 2})
	clean := []*mat.Dense{mat.NewDense(1, 1, []float64{1})}
	dirty := []*mat.Dense{mat.NewDense(1, 1, []float64{math.NaN()})}

	_, err := s.Step(context.Background(), clean, func() error { return nil })
	require.NoError(t, err)
	_, err = s.Step(context.Background(), dirty, func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 512.0, s.Scale())

	// One clean step is no longer enough to grow.
	clean[0].Set(0, 0, 1)
	_, err = s.Step(context.Background(), clean, func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 512.0, s.Scale())
}

func TestScaleUnderflowIsFatal(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 2, MinScale: 2})
	dirty := []*mat.Dense{mat.NewDense(1, 1, []float64{math.NaN()})}

	_, err := s.Step(context.Background(), dirty, func() error { return nil })
	assert.Error(t, err)
}

func TestStaticModeNeverAdjusts(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 128, Static: true, GrowthInterval: 1})
	dirty := []*mat.Dense{mat.NewDense(1, 1, []float64{math.NaN()})}
	clean := []*mat.Dense{mat.NewDense(1, 1, []float64{1})}

	applied, err := s.Step(context.Background(), dirty, func() error { return nil })
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 128.0, s.Scale())

	applied, err = s.Step(context.Background(), clean, func() error { return nil })
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 128.0, s.Scale())
}

func TestStateRoundTrip(t *testing.T) {
	s := newTestScaler(t, ScalerOptions{InitScale: 1024, GrowthInterval: 10})
	clean := []*mat.Dense{mat.NewDense(1, 1, []float64{1})}
	_, err := s.Step(context.Background(), clean, func() error { return nil })
	require.NoError(t, err)

	st := s.State()
	restored := newTestScaler(t, ScalerOptions{InitScale: 1024, GrowthInterval: 10})
	require.NoError(t, restored.Restore(st))
	assert.Equal(t, s.Scale(), restored.Scale())
}

// A rank with clean gradients must still skip the step when any peer
// overflowed, or the replicas diverge.
func TestOverflowVerdictIsGlobal(t *testing.T) {
	comms := comm.NewLocalGroup(2)
	scalers := make([]*LossScaler, 2)
	for i := range scalers {
		s, err := NewLossScaler(comms[i], ScalerOptions{InitScale: 1024})
		require.NoError(t, err)
		scalers[i] = s
	}

	appliedByRank := make([]bool, 2)
	var wg sync.WaitGroup
	for rank := 0; rank < 2; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			v := 1.0
			if rank == 1 {
				v = math.NaN()
			}
			grads := []*mat.Dense{mat.NewDense(1, 1, []float64{v})}
			applied, err := scalers[rank].Step(context.Background(), grads, func() error { return nil })
			assert.NoError(t, err)
			appliedByRank[rank] = applied
		}(rank)
	}
	wg.Wait()

	assert.False(t, appliedByRank[0])
	assert.False(t, appliedByRank[1])
	assert.Equal(t, 512.0, scalers[0].Scale())
	assert.Equal(t, 512.0, scalers[1].Scale())
}
