package train

import "math"

// LRScheduler yields the learning rate for a given global iteration.
type LRScheduler interface {
	LearningRate(iter int) float64
}

// ConstantScheduler always returns the base learning rate.
type ConstantScheduler struct {
	BaseLR float64
}

func (s ConstantScheduler) LearningRate(iter int) float64 { return s.BaseLR }

// PolyScheduler implements polynomial decay over a fixed iteration budget:
// lr = base * (1 - iter/total)^power. At and beyond the final iteration the
// rate is zero.
type PolyScheduler struct {
	BaseLR    float64
	Power     float64
	TotalIter int
}

func NewPolyScheduler(baseLR float64, power float64, totalIter int) PolyScheduler {
	if power <= 0 {
		power = 0.9
	}
	return PolyScheduler{BaseLR: baseLR, Power: power, TotalIter: totalIter}
}

func (s PolyScheduler) LearningRate(iter int) float64 {
	if iter >= s.TotalIter {
		return 0
	}
	if iter < 0 {
		iter = 0
	}
	frac := 1 - float64(iter)/float64(s.TotalIter)
	return s.BaseLR * math.Pow(frac, s.Power)
}
