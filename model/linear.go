package model

import (
	"context"
	"math/rand"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LinearExtractor is the reference FeatureExtractor: batch-normalized input
// features followed by a per-pixel linear classifier, with the primary head
// at a configurable output stride and an auxiliary head at a coarser one.
// It is deliberately small; real backbones plug in behind the same interface.
type LinearExtractor struct {
	inC, classes int
	outputStride int
	auxStride    int

	bn *SyncBatchNorm

	W, B         *mat.Dense // inC x classes, 1 x classes
	WAux, BAux   *mat.Dense
	GW, GB       *mat.Dense
	GWAux, GBAux *mat.Dense

	// saved by the training forward
	pooled    []*utils.Tensor
	pooledAux []*utils.Tensor
	featDims  [][2]int
}

func NewLinearExtractor(opts Options, c comm.Communicator) (*LinearExtractor, error) {
	if opts.InChannels <= 0 || opts.Classes <= 1 {
		return nil, errors.Errorf("invalid extractor dimensions: %v channels, %v classes", opts.InChannels, opts.Classes)
	}
	stride := opts.OutputStride
	if stride <= 0 {
		stride = 1
	}
	bnComm := c
	if !opts.SyncBN {
		// Unsynchronized mode is the same layer over a world of one.
		bnComm = comm.NewSingle()
	}
	momentum := opts.BNMomentum
	if momentum <= 0 {
		momentum = 0.1
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	initWeights := func(rows, cols int) *mat.Dense {
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = rng.NormFloat64() * 0.01
		}
		return mat.NewDense(rows, cols, data)
	}
	e := &LinearExtractor{
		inC:          opts.InChannels,
		classes:      opts.Classes,
		outputStride: stride,
		auxStride:    opts.AuxStride,
		bn:           NewSyncBatchNorm(bnComm, opts.InChannels, momentum),
		W:            initWeights(opts.InChannels, opts.Classes),
		B:            mat.NewDense(1, opts.Classes, nil),
		GW:           mat.NewDense(opts.InChannels, opts.Classes, nil),
		GB:           mat.NewDense(1, opts.Classes, nil),
	}
	if opts.AuxStride > 0 {
		e.WAux = initWeights(opts.InChannels, opts.Classes)
		e.BAux = mat.NewDense(1, opts.Classes, nil)
		e.GWAux = mat.NewDense(opts.InChannels, opts.Classes, nil)
		e.GBAux = mat.NewDense(1, opts.Classes, nil)
	}
	return e, nil
}

func (e *LinearExtractor) NumClasses() int { return e.classes }

func (e *LinearExtractor) Forward(ctx context.Context, batch []*utils.Tensor, training bool) ([]*utils.Tensor, []*utils.Tensor, error) {
	feats, err := e.bn.Forward(ctx, batch, training)
	if err != nil {
		return nil, nil, err
	}

	primary := make([]*utils.Tensor, len(feats))
	pooled := make([]*utils.Tensor, len(feats))
	for i, f := range feats {
		p := avgPool(f, e.outputStride)
		pooled[i] = p
		primary[i] = e.linear(p, e.W, e.B)
	}

	var aux []*utils.Tensor
	var pooledAux []*utils.Tensor
	if training && e.WAux != nil {
		aux = make([]*utils.Tensor, len(feats))
		pooledAux = make([]*utils.Tensor, len(feats))
		for i, f := range feats {
			p := avgPool(f, e.auxStride)
			pooledAux[i] = p
			aux[i] = e.linear(p, e.WAux, e.BAux)
		}
	}

	if training {
		e.pooled = pooled
		e.pooledAux = pooledAux
		e.featDims = make([][2]int, len(feats))
		for i, f := range feats {
			e.featDims[i] = [2]int{f.H, f.W}
		}
	}
	return primary, aux, nil
}

func (e *LinearExtractor) linear(in *utils.Tensor, w, b *mat.Dense) *utils.Tensor {
	out := utils.NewTensor(e.classes, in.H, in.W)
	for cl := 0; cl < e.classes; cl++ {
		dst := out.Channel(cl)
		bias := b.At(0, cl)
		for j := range dst {
			dst[j] = bias
		}
		for k := 0; k < e.inC; k++ {
			wkc := w.At(k, cl)
			src := in.Channel(k)
			for j, v := range src {
				dst[j] += wkc * v
			}
		}
	}
	return out
}

func (e *LinearExtractor) Backward(ctx context.Context, gradPrimary, gradAux []*utils.Tensor) error {
	if e.pooled == nil {
		return errors.New("backward called without a training forward")
	}
	if len(gradPrimary) != len(e.pooled) {
		return errors.Errorf("got %v primary gradients for %v inputs", len(gradPrimary), len(e.pooled))
	}

	gradFeats := make([]*utils.Tensor, len(e.pooled))
	for i, g := range gradPrimary {
		dims := e.featDims[i]
		gradFeats[i] = utils.NewTensor(e.inC, dims[0], dims[1])
		e.headBackward(e.pooled[i], g, e.W, e.GW, e.GB, e.outputStride, gradFeats[i])
	}
	if gradAux != nil && e.WAux != nil {
		for i, g := range gradAux {
			e.headBackward(e.pooledAux[i], g, e.WAux, e.GWAux, e.GBAux, e.auxStride, gradFeats[i])
		}
	}

	_, err := e.bn.Backward(ctx, gradFeats)
	return err
}

// headBackward accumulates weight/bias gradients for one head and adds the
// unpooled input gradient into gradFeat.
func (e *LinearExtractor) headBackward(pooled, gradLogits *utils.Tensor, w, gw, gb *mat.Dense, stride int, gradFeat *utils.Tensor) {
	for cl := 0; cl < e.classes; cl++ {
		gp := gradLogits.Channel(cl)
		var sum float64
		for _, v := range gp {
			sum += v
		}
		gb.Set(0, cl, gb.At(0, cl)+sum)
		for k := 0; k < e.inC; k++ {
			src := pooled.Channel(k)
			var dot float64
			for j, v := range gp {
				dot += v * src[j]
			}
			gw.Set(k, cl, gw.At(k, cl)+dot)
		}
	}

	// dL/d(pooled feature), then spread evenly over each pooling window.
	gradPooled := utils.NewTensor(e.inC, gradLogits.H, gradLogits.W)
	for k := 0; k < e.inC; k++ {
		dst := gradPooled.Channel(k)
		for cl := 0; cl < e.classes; cl++ {
			wkc := w.At(k, cl)
			gp := gradLogits.Channel(cl)
			for j, v := range gp {
				dst[j] += wkc * v
			}
		}
	}
	unpoolInto(gradPooled, stride, gradFeat)
}

// avgPool reduces spatial resolution by stride, averaging over each window;
// border windows shrink to the pixels that exist.
func avgPool(t *utils.Tensor, stride int) *utils.Tensor {
	if stride <= 1 {
		return t
	}
	oh := (t.H + stride - 1) / stride
	ow := (t.W + stride - 1) / stride
	out := utils.NewTensor(t.C, oh, ow)
	for c := 0; c < t.C; c++ {
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				y1 := min((oy+1)*stride, t.H)
				x1 := min((ox+1)*stride, t.W)
				var sum float64
				for y := oy * stride; y < y1; y++ {
					for x := ox * stride; x < x1; x++ {
						sum += t.At(c, y, x)
					}
				}
				count := float64((y1 - oy*stride) * (x1 - ox*stride))
				out.Set(c, oy, ox, sum/count)
			}
		}
	}
	return out
}

func unpoolInto(gradPooled *utils.Tensor, stride int, gradFeat *utils.Tensor) {
	if stride <= 1 {
		for i, v := range gradPooled.Data {
			gradFeat.Data[i] += v
		}
		return
	}
	for c := 0; c < gradPooled.C; c++ {
		for oy := 0; oy < gradPooled.H; oy++ {
			for ox := 0; ox < gradPooled.W; ox++ {
				y1 := min((oy+1)*stride, gradFeat.H)
				x1 := min((ox+1)*stride, gradFeat.W)
				count := float64((y1 - oy*stride) * (x1 - ox*stride))
				share := gradPooled.At(c, oy, ox) / count
				for y := oy * stride; y < y1; y++ {
					for x := ox * stride; x < x1; x++ {
						gradFeat.Set(c, y, x, gradFeat.At(c, y, x)+share)
					}
				}
			}
		}
	}
}

func (e *LinearExtractor) Parameters() []*mat.Dense {
	params := []*mat.Dense{e.W, e.B}
	if e.WAux != nil {
		params = append(params, e.WAux, e.BAux)
	}
	return append(params, e.bn.Parameters()...)
}

func (e *LinearExtractor) Gradients() []*mat.Dense {
	grads := []*mat.Dense{e.GW, e.GB}
	if e.GWAux != nil {
		grads = append(grads, e.GWAux, e.GBAux)
	}
	return append(grads, e.bn.Gradients()...)
}

func (e *LinearExtractor) ZeroGrad() {
	e.GW.Zero()
	e.GB.Zero()
	if e.GWAux != nil {
		e.GWAux.Zero()
		e.GBAux.Zero()
	}
	e.bn.ZeroGrad()
}
