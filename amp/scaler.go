// Package amp implements dynamic loss scaling for mixed-precision training.
// Gradients are computed against a scaled loss; before the optimizer step the
// scaler checks them for overflow, agrees on the verdict with every other
// rank, and either unscales and applies the step or skips it and backs off.
package amp

import (
	"context"
	"math"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultInitScale      = 65536
	DefaultGrowthFactor   = 2
	DefaultBackoffFactor  = 0.5
	DefaultGrowthInterval = 2000
	DefaultMaxScale       = 1 << 24
	DefaultMinScale       = 1
)

type ScalerOptions struct {
	InitScale      float64
	GrowthFactor   float64
	BackoffFactor  float64
	GrowthInterval int
	MaxScale       float64
	MinScale       float64
	// Static disables the dynamic adjustment; the scale never changes and
	// an overflow still skips the step.
	Static bool
}

type LossScaler struct {
	comm comm.Communicator
	opts ScalerOptions

	scale       float64
	cleanStreak int
}

func NewLossScaler(c comm.Communicator, opts ScalerOptions) (*LossScaler, error) {
	if opts.InitScale <= 0 {
		opts.InitScale = DefaultInitScale
	}
	if opts.GrowthFactor <= 1 {
		opts.GrowthFactor = DefaultGrowthFactor
	}
	if opts.BackoffFactor <= 0 || opts.BackoffFactor >= 1 {
		opts.BackoffFactor = DefaultBackoffFactor
	}
	if opts.GrowthInterval <= 0 {
		opts.GrowthInterval = DefaultGrowthInterval
	}
	if opts.MaxScale <= 0 {
		opts.MaxScale = DefaultMaxScale
	}
	if opts.MinScale <= 0 {
		opts.MinScale = DefaultMinScale
	}
	if opts.InitScale < opts.MinScale || opts.InitScale > opts.MaxScale {
		return nil, errors.Errorf("initial scale %v outside [%v, %v]", opts.InitScale, opts.MinScale, opts.MaxScale)
	}
	return &LossScaler{comm: c, opts: opts, scale: opts.InitScale}, nil
}

func (s *LossScaler) Scale() float64 { return s.scale }

// ScaleLoss returns the loss to backpropagate.
func (s *LossScaler) ScaleLoss(loss float64) float64 { return loss * s.scale }

// Step inspects the scaled gradients for overflow, reconciles the verdict
// across all ranks, and on a clean step unscales the gradients in place and
// invokes apply. It reports whether the step was applied. Every rank must
// call Step each iteration, overflow or not, so the collective stays aligned.
func (s *LossScaler) Step(ctx context.Context, grads []*mat.Dense, apply func() error) (bool, error) {
	local := hasOverflow(grads)

	// The verdict must be global before anyone branches, or the ranks
	// diverge on whether the step happened.
	overflow, err := s.comm.OrFlag(ctx, local)
	if err != nil {
		return false, errors.Wrap(err, "overflow reconciliation failed")
	}

	if overflow {
		s.cleanStreak = 0
		if !s.opts.Static {
			s.scale *= s.opts.BackoffFactor
			if s.scale < s.opts.MinScale {
				return false, errors.Errorf("loss scale %v fell below minimum %v: gradients are diverging", s.scale, s.opts.MinScale)
			}
		}
		return false, nil
	}

	inv := 1 / s.scale
	for _, g := range grads {
		g.Scale(inv, g)
	}
	if err := apply(); err != nil {
		return false, err
	}

	if !s.opts.Static {
		s.cleanStreak++
		if s.cleanStreak >= s.opts.GrowthInterval {
			s.cleanStreak = 0
			next := s.scale * s.opts.GrowthFactor
			if next <= s.opts.MaxScale {
				s.scale = next
			}
		}
	}
	return true, nil
}

// State captures the scaler for checkpointing.
type State struct {
	Scale       float64 `json:"scale"`
	CleanStreak int     `json:"clean_streak"`
}

func (s *LossScaler) State() State {
	return State{Scale: s.scale, CleanStreak: s.cleanStreak}
}

func (s *LossScaler) Restore(st State) error {
	if st.Scale < s.opts.MinScale || st.Scale > s.opts.MaxScale {
		return errors.Errorf("checkpointed scale %v outside [%v, %v]", st.Scale, s.opts.MinScale, s.opts.MaxScale)
	}
	s.scale = st.Scale
	s.cleanStreak = st.CleanStreak
	return nil
}

func hasOverflow(grads []*mat.Dense) bool {
	for _, g := range grads {
		raw := g.RawMatrix()
		for i := 0; i < raw.Rows; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
			for _, v := range row {
				if math.IsInf(v, 0) || math.IsNaN(v) {
					return true
				}
			}
		}
	}
	return false
}
