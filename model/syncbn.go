package model

import (
	"context"
	"math"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SyncBatchNorm normalizes per-channel activations using statistics computed
// over the union of all ranks' local batches. Each training forward issues
// exactly one all-reduce carrying (sum, sum of squares, count) per channel;
// the derived mean and variance are then identical on every rank. Backward
// likewise reduces the two gradient sums before forming parameter and input
// gradients, so optimization sees the shared statistics, not per-rank ones.
//
// A rank whose local batch is empty still participates in every reduction
// with zero contributions; skipping would leave the other ranks blocked.
type SyncBatchNorm struct {
	comm        comm.Communicator
	numFeatures int

	Eps      float64
	Momentum float64

	Gamma, Beta             []float64
	RunningMean, RunningVar []float64
	GradGamma, GradBeta     []float64

	// saved by the training forward for backward
	xhat        []*utils.Tensor
	invStd      []float64
	globalCount float64
}

func NewSyncBatchNorm(c comm.Communicator, numFeatures int, momentum float64) *SyncBatchNorm {
	bn := &SyncBatchNorm{
		comm:        c,
		numFeatures: numFeatures,
		Eps:         1e-5,
		Momentum:    momentum,
		Gamma:       make([]float64, numFeatures),
		Beta:        make([]float64, numFeatures),
		RunningMean: make([]float64, numFeatures),
		RunningVar:  make([]float64, numFeatures),
		GradGamma:   make([]float64, numFeatures),
		GradBeta:    make([]float64, numFeatures),
	}
	for i := range bn.Gamma {
		bn.Gamma[i] = 1
		bn.RunningVar[i] = 1
	}
	return bn
}

func (bn *SyncBatchNorm) Forward(ctx context.Context, batch []*utils.Tensor, training bool) ([]*utils.Tensor, error) {
	if !training {
		return bn.normalize(batch, bn.RunningMean, bn.runningInvStd()), nil
	}

	c := bn.numFeatures
	stats := mat.NewDense(3, c, nil)
	var count float64
	for _, t := range batch {
		if t.C != c {
			return nil, errors.Errorf("input has %v channels, batch norm expects %v", t.C, c)
		}
		count += float64(t.H * t.W)
		for ch := 0; ch < c; ch++ {
			var sum, sumSq float64
			for _, v := range t.Channel(ch) {
				sum += v
				sumSq += v * v
			}
			stats.Set(0, ch, stats.At(0, ch)+sum)
			stats.Set(1, ch, stats.At(1, ch)+sumSq)
		}
	}
	for ch := 0; ch < c; ch++ {
		stats.Set(2, ch, count)
	}

	// One reduction combines sums, squared sums, and counts for all ranks.
	// An empty local batch contributes zeros but never skips the call.
	reduced, err := bn.comm.AllReduceSum(ctx, stats)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reduce batch statistics")
	}

	n := reduced.At(2, 0)
	bn.globalCount = n
	if n == 0 {
		// No samples anywhere this step; fall back to running statistics.
		bn.xhat = nil
		return bn.normalize(batch, bn.RunningMean, bn.runningInvStd()), nil
	}

	mean := make([]float64, c)
	invStd := make([]float64, c)
	for ch := 0; ch < c; ch++ {
		m := reduced.At(0, ch) / n
		v := reduced.At(1, ch)/n - m*m
		if v < 0 {
			v = 0
		}
		mean[ch] = m
		invStd[ch] = 1 / math.Sqrt(v+bn.Eps)
		bn.RunningMean[ch] = (1-bn.Momentum)*bn.RunningMean[ch] + bn.Momentum*m
		bn.RunningVar[ch] = (1-bn.Momentum)*bn.RunningVar[ch] + bn.Momentum*v
	}

	out := bn.normalize(batch, mean, invStd)
	bn.invStd = invStd
	bn.xhat = make([]*utils.Tensor, len(batch))
	for i, t := range batch {
		x := utils.NewTensor(t.C, t.H, t.W)
		for ch := 0; ch < c; ch++ {
			src := t.Channel(ch)
			dst := x.Channel(ch)
			for j, v := range src {
				dst[j] = (v - mean[ch]) * invStd[ch]
			}
		}
		bn.xhat[i] = x
	}
	return out, nil
}

func (bn *SyncBatchNorm) runningInvStd() []float64 {
	invStd := make([]float64, bn.numFeatures)
	for ch := range invStd {
		invStd[ch] = 1 / math.Sqrt(bn.RunningVar[ch]+bn.Eps)
	}
	return invStd
}

func (bn *SyncBatchNorm) normalize(batch []*utils.Tensor, mean, invStd []float64) []*utils.Tensor {
	out := make([]*utils.Tensor, len(batch))
	for i, t := range batch {
		y := utils.NewTensor(t.C, t.H, t.W)
		for ch := 0; ch < bn.numFeatures; ch++ {
			src := t.Channel(ch)
			dst := y.Channel(ch)
			g, b, m, s := bn.Gamma[ch], bn.Beta[ch], mean[ch], invStd[ch]
			for j, v := range src {
				dst[j] = g*(v-m)*s + b
			}
		}
		out[i] = y
	}
	return out
}

// Backward consumes the loss gradient with respect to the layer output and
// returns the gradient with respect to the input. The two per-channel
// gradient sums are reduced across ranks before any gradient is formed.
func (bn *SyncBatchNorm) Backward(ctx context.Context, gradOut []*utils.Tensor) ([]*utils.Tensor, error) {
	if bn.xhat == nil {
		return nil, errors.New("backward called without a training forward")
	}
	c := bn.numFeatures
	sums := mat.NewDense(2, c, nil)
	for i, g := range gradOut {
		x := bn.xhat[i]
		for ch := 0; ch < c; ch++ {
			gp := g.Channel(ch)
			xp := x.Channel(ch)
			var sumDy, sumDyXhat float64
			for j, dy := range gp {
				sumDy += dy
				sumDyXhat += dy * xp[j]
			}
			sums.Set(0, ch, sums.At(0, ch)+sumDy)
			sums.Set(1, ch, sums.At(1, ch)+sumDyXhat)
		}
	}

	reduced, err := bn.comm.AllReduceSum(ctx, sums)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reduce gradient statistics")
	}

	n := bn.globalCount
	gradIn := make([]*utils.Tensor, len(gradOut))
	for i, g := range gradOut {
		x := bn.xhat[i]
		dx := utils.NewTensor(g.C, g.H, g.W)
		for ch := 0; ch < c; ch++ {
			sumDy := reduced.At(0, ch)
			sumDyXhat := reduced.At(1, ch)
			scale := bn.Gamma[ch] * bn.invStd[ch]
			gp := g.Channel(ch)
			xp := x.Channel(ch)
			dp := dx.Channel(ch)
			for j, dy := range gp {
				dp[j] = scale * (dy - sumDy/n - xp[j]*sumDyXhat/n)
			}
		}
		gradIn[i] = dx
	}
	for ch := 0; ch < c; ch++ {
		bn.GradBeta[ch] += reduced.At(0, ch)
		bn.GradGamma[ch] += reduced.At(1, ch)
	}
	return gradIn, nil
}

// Parameters and Gradients expose gamma/beta as 1xC matrices sharing the
// layer's backing storage, so the optimizer updates them in place.
func (bn *SyncBatchNorm) Parameters() []*mat.Dense {
	return []*mat.Dense{
		mat.NewDense(1, bn.numFeatures, bn.Gamma),
		mat.NewDense(1, bn.numFeatures, bn.Beta),
	}
}

func (bn *SyncBatchNorm) Gradients() []*mat.Dense {
	return []*mat.Dense{
		mat.NewDense(1, bn.numFeatures, bn.GradGamma),
		mat.NewDense(1, bn.numFeatures, bn.GradBeta),
	}
}

func (bn *SyncBatchNorm) ZeroGrad() {
	for i := range bn.GradGamma {
		bn.GradGamma[i] = 0
		bn.GradBeta[i] = 0
	}
}
