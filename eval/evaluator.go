// Package eval implements multi-scale sliding-window inference. A network
// with a fixed input size scores an image of arbitrary size by running
// overlapping fixed-size crops at one or more scales and averaging the
// stitched logits by overlap count.
package eval

import (
	"context"
	"log"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	"github.com/JohnSon-zh-12345/pyconvsegnet/dataset"
	"github.com/JohnSon-zh-12345/pyconvsegnet/metrics"
	"github.com/JohnSon-zh-12345/pyconvsegnet/model"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const DefaultOverlapRatio = 1.0 / 3.0

type Options struct {
	BaseSize     int
	CropH, CropW int
	Scales       []float64
	OverlapRatio float64
	IgnoreLabel  int32
	// PadMean fills padded borders when an image is smaller than the crop,
	// one value per input channel.
	PadMean []float64
}

type Evaluator struct {
	opts  Options
	model model.FeatureExtractor
	comm  comm.Communicator
}

func NewEvaluator(opts Options, m model.FeatureExtractor, c comm.Communicator) (*Evaluator, error) {
	if opts.CropH <= 0 || opts.CropW <= 0 {
		return nil, errors.Errorf("invalid crop size %vx%v", opts.CropH, opts.CropW)
	}
	if opts.BaseSize <= 0 {
		return nil, errors.Errorf("invalid base size %v", opts.BaseSize)
	}
	if len(opts.Scales) == 0 {
		opts.Scales = []float64{1.0}
	}
	for _, s := range opts.Scales {
		if s <= 0 {
			return nil, errors.Errorf("invalid evaluation scale %v", s)
		}
	}
	if opts.OverlapRatio < 0 || opts.OverlapRatio >= 1 {
		opts.OverlapRatio = DefaultOverlapRatio
	}
	return &Evaluator{opts: opts, model: m, comm: c}, nil
}

// cropOrigins returns the window origins along one axis: a regular grid at
// the given stride, with the final origin pulled inward so the last window
// ends exactly at size.
func cropOrigins(size, crop, stride int) []int {
	if size <= crop {
		return []int{0}
	}
	var origins []int
	for o := 0; ; o += stride {
		if o+crop >= size {
			origins = append(origins, size-crop)
			return origins
		}
		origins = append(origins, o)
	}
}

// ScoreImage produces the averaged per-pixel class scores for one image at
// its original resolution.
func (e *Evaluator) ScoreImage(ctx context.Context, img *utils.Tensor) (*utils.Tensor, error) {
	classes := e.model.NumClasses()
	total := utils.NewTensor(classes, img.H, img.W)
	for _, scale := range e.opts.Scales {
		scaled := resizeShortSide(img, int(float64(e.opts.BaseSize)*scale+0.5))
		scores, err := e.slidingWindow(ctx, scaled)
		if err != nil {
			return nil, errors.Wrapf(err, "sliding-window pass failed at scale %v", scale)
		}
		scores = utils.BilinearResize(scores, img.H, img.W)
		for i, v := range scores.Data {
			total.Data[i] += v
		}
	}
	inv := 1 / float64(len(e.opts.Scales))
	for i := range total.Data {
		total.Data[i] *= inv
	}
	return total, nil
}

// slidingWindow stitches overlapping crop predictions over one image at one
// scale. Overlapping footprints are averaged by their coverage count, so the
// result does not depend on crop order.
func (e *Evaluator) slidingWindow(ctx context.Context, img *utils.Tensor) (*utils.Tensor, error) {
	cropH, cropW := e.opts.CropH, e.opts.CropW

	// Images smaller than the crop are padded out to crop size; the padding
	// is stripped from the stitched result below.
	padded, padTop, padLeft := utils.PadTo(img, max(img.H, cropH), max(img.W, cropW), e.opts.PadMean)

	strideH := int(float64(cropH)*(1-e.opts.OverlapRatio) + 0.5)
	strideW := int(float64(cropW)*(1-e.opts.OverlapRatio) + 0.5)
	if strideH < 1 {
		strideH = 1
	}
	if strideW < 1 {
		strideW = 1
	}

	classes := e.model.NumClasses()
	sum := utils.NewTensor(classes, padded.H, padded.W)
	count := make([]float64, padded.H*padded.W)

	for _, oy := range cropOrigins(padded.H, cropH, strideH) {
		for _, ox := range cropOrigins(padded.W, cropW, strideW) {
			crop := utils.Crop(padded, oy, ox, cropH, cropW)
			primary, _, err := e.model.Forward(ctx, []*utils.Tensor{crop}, false)
			if err != nil {
				return nil, errors.Wrapf(err, "forward pass failed for crop at (%v, %v)", oy, ox)
			}
			logits := primary[0]
			if logits.H != cropH || logits.W != cropW {
				logits = utils.BilinearResize(logits, cropH, cropW)
			}
			for c := 0; c < classes; c++ {
				for y := 0; y < cropH; y++ {
					for x := 0; x < cropW; x++ {
						sum.Set(c, oy+y, ox+x, sum.At(c, oy+y, ox+x)+logits.At(c, y, x))
					}
				}
			}
			for y := 0; y < cropH; y++ {
				for x := 0; x < cropW; x++ {
					count[(oy+y)*padded.W+ox+x]++
				}
			}
		}
	}

	// Every pixel was covered by at least one crop, so count is positive.
	for c := 0; c < classes; c++ {
		ch := sum.Channel(c)
		for i := range ch {
			ch[i] /= count[i]
		}
	}
	return utils.Crop(sum, padTop, padLeft, img.H, img.W), nil
}

// Predict returns the argmax class map for one image.
func (e *Evaluator) Predict(ctx context.Context, img *utils.Tensor) (*utils.LabelMap, error) {
	scores, err := e.ScoreImage(ctx, img)
	if err != nil {
		return nil, err
	}
	return ArgMaxMap(scores), nil
}

// ArgMaxMap collapses per-pixel class scores to the winning class id.
func ArgMaxMap(scores *utils.Tensor) *utils.LabelMap {
	out := utils.NewLabelMap(scores.H, scores.W)
	pixel := make([]float64, scores.C)
	for y := 0; y < scores.H; y++ {
		for x := 0; x < scores.W; x++ {
			for c := 0; c < scores.C; c++ {
				pixel[c] = scores.At(c, y, x)
			}
			out.Set(y, x, int32(utils.ArgMax(pixel)))
		}
	}
	return out
}

// Validate scores this rank's shard of the dataset, merges every rank's
// confusion matrix, and returns the global mean IoU and pixel accuracy.
// All ranks return identical values, so checkpoint decisions made from them
// stay consistent.
func (e *Evaluator) Validate(ctx context.Context, ds dataset.Dataset) (float64, float64, error) {
	cm := metrics.NewConfusionMatrix(e.model.NumClasses())
	lo, hi := dataset.Shard(ds.Len(), e.comm.WorldSize(), e.comm.Rank())
	for i := lo; i < hi; i++ {
		img, label, err := ds.Sample(i)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "failed to load sample %v", i)
		}
		if label == nil {
			return 0, 0, errors.Errorf("sample %v has no label; validation needs labeled data", i)
		}
		pred, err := e.Predict(ctx, img)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "failed to score sample %v", i)
		}
		if err := cm.Update(pred.Data, label.Data, e.opts.IgnoreLabel); err != nil {
			return 0, 0, err
		}
	}
	log.Printf("rank %d scored %d validation images", e.comm.Rank(), hi-lo)

	merged, err := e.MergeConfusion(ctx, cm)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to merge confusion matrices")
	}
	return merged.MeanIoU(), merged.PixelAccuracy(), nil
}

// MergeLabeledConfusion merges confusion matrices when the shard split leaves
// some ranks without labeled samples. The labeled flag is rank-local, so it is
// reduced first; every rank then agrees on whether the merge collective runs
// at all. Returns (nil, false, nil) when no rank saw a label.
func (e *Evaluator) MergeLabeledConfusion(ctx context.Context, cm *metrics.ConfusionMatrix, labeled bool) (*metrics.ConfusionMatrix, bool, error) {
	haveLabels, err := e.comm.OrFlag(ctx, labeled)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to agree on label availability")
	}
	if !haveLabels {
		return nil, false, nil
	}
	merged, err := e.MergeConfusion(ctx, cm)
	if err != nil {
		return nil, false, err
	}
	return merged, true, nil
}

// MergeConfusion sums the per-rank confusion matrices with one all-reduce,
// leaving every rank with the global matrix.
func (e *Evaluator) MergeConfusion(ctx context.Context, cm *metrics.ConfusionMatrix) (*metrics.ConfusionMatrix, error) {
	n := cm.NumClasses
	data := make([]float64, len(cm.Counts))
	for i, c := range cm.Counts {
		data[i] = float64(c)
	}
	reduced, err := e.comm.AllReduceSum(ctx, mat.NewDense(n, n, data))
	if err != nil {
		return nil, err
	}
	merged := metrics.NewConfusionMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			merged.Counts[i*n+j] = int64(reduced.At(i, j) + 0.5)
		}
	}
	return merged, nil
}

func resizeShortSide(img *utils.Tensor, target int) *utils.Tensor {
	short := min(img.H, img.W)
	if short == target {
		return img
	}
	ratio := float64(target) / float64(short)
	h := int(float64(img.H)*ratio + 0.5)
	w := int(float64(img.W)*ratio + 0.5)
	return utils.BilinearResize(img, h, w)
}
