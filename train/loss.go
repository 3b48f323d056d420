package train

import (
	"math"

	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
)

// SoftmaxCrossEntropy computes per-pixel softmax cross-entropy between logits
// (classes x H x W) and an integer label map of the same spatial size. Pixels
// carrying ignoreLabel contribute neither loss nor gradient. The loss is
// averaged over the counted pixels; the returned gradient matches the logits
// shape and already includes the 1/count factor.
func SoftmaxCrossEntropy(logits *utils.Tensor, target *utils.LabelMap, ignoreLabel int32) (float64, *utils.Tensor, error) {
	if logits.H != target.H || logits.W != target.W {
		return 0, nil, errors.Errorf("logits %vx%v do not match labels %vx%v", logits.H, logits.W, target.H, target.W)
	}
	classes := logits.C
	grad := utils.NewTensor(classes, logits.H, logits.W)

	var loss float64
	var counted int
	probs := make([]float64, classes)
	for y := 0; y < logits.H; y++ {
		for x := 0; x < logits.W; x++ {
			label := target.At(y, x)
			if label == ignoreLabel {
				continue
			}
			if label < 0 || int(label) >= classes {
				return 0, nil, errors.Errorf("label %v at (%v, %v) outside %v classes", label, y, x, classes)
			}

			maxLogit := math.Inf(-1)
			for c := 0; c < classes; c++ {
				if v := logits.At(c, y, x); v > maxLogit {
					maxLogit = v
				}
			}
			var sum float64
			for c := 0; c < classes; c++ {
				probs[c] = math.Exp(logits.At(c, y, x) - maxLogit)
				sum += probs[c]
			}
			loss += math.Log(sum) - (logits.At(int(label), y, x) - maxLogit)
			for c := 0; c < classes; c++ {
				grad.Set(c, y, x, probs[c]/sum)
			}
			grad.Set(int(label), y, x, grad.At(int(label), y, x)-1)
			counted++
		}
	}

	if counted == 0 {
		return 0, grad, nil
	}
	inv := 1 / float64(counted)
	for i := range grad.Data {
		grad.Data[i] *= inv
	}
	return loss * inv, grad, nil
}
