package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSGDPlainStep(t *testing.T) {
	opt := NewSGD(0, 0)
	params := []*mat.Dense{mat.NewDense(1, 2, []float64{1, 2})}
	grads := []*mat.Dense{mat.NewDense(1, 2, []float64{0.5, -1})}

	require.NoError(t, opt.Step(params, grads, 0.1))
	assert.InDelta(t, 0.95, params[0].At(0, 0), 1e-12)
	assert.InDelta(t, 2.1, params[0].At(0, 1), 1e-12)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	opt := NewSGD(0.9, 0)
	params := []*mat.Dense{mat.NewDense(1, 1, []float64{0})}
	grads := []*mat.Dense{mat.NewDense(1, 1, []float64{1})}

	// v1 = 1, v2 = 0.9 + 1 = 1.9
	require.NoError(t, opt.Step(params, grads, 1))
	assert.InDelta(t, -1.0, params[0].At(0, 0), 1e-12)
	require.NoError(t, opt.Step(params, grads, 1))
	assert.InDelta(t, -2.9, params[0].At(0, 0), 1e-12)
}

func TestSGDWeightDecay(t *testing.T) {
	opt := NewSGD(0, 0.1)
	params := []*mat.Dense{mat.NewDense(1, 1, []float64{2})}
	grads := []*mat.Dense{mat.NewDense(1, 1, []float64{0})}

	// Effective gradient is 0.1 * 2.
	require.NoError(t, opt.Step(params, grads, 1))
	assert.InDelta(t, 1.8, params[0].At(0, 0), 1e-12)
}

func TestSGDRejectsShapeMismatch(t *testing.T) {
	opt := NewSGD(0, 0)
	params := []*mat.Dense{mat.NewDense(1, 2, nil)}
	assert.Error(t, opt.Step(params, []*mat.Dense{mat.NewDense(2, 1, nil)}, 0.1))
	assert.Error(t, opt.Step(params, nil, 0.1))
}
