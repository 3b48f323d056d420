package train

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SGD applies stochastic gradient descent with classical momentum and
// decoupled L2 weight decay to a fixed parameter list.
type SGD struct {
	Momentum    float64
	WeightDecay float64

	velocity []*mat.Dense
}

func NewSGD(momentum, weightDecay float64) *SGD {
	return &SGD{Momentum: momentum, WeightDecay: weightDecay}
}

// Step updates params in place. The parameter and gradient lists must stay
// shape-stable across calls so the momentum buffers line up.
func (o *SGD) Step(params, grads []*mat.Dense, lr float64) error {
	if len(params) != len(grads) {
		return errors.Errorf("got %v gradients for %v parameters", len(grads), len(params))
	}
	if o.velocity == nil {
		o.velocity = make([]*mat.Dense, len(params))
		for i, p := range params {
			r, c := p.Dims()
			o.velocity[i] = mat.NewDense(r, c, nil)
		}
	}
	if len(o.velocity) != len(params) {
		return errors.Errorf("optimizer state tracks %v parameters, got %v", len(o.velocity), len(params))
	}

	for i, p := range params {
		pr, pc := p.Dims()
		gr, gc := grads[i].Dims()
		if pr != gr || pc != gc {
			return errors.Errorf("parameter %v is %vx%v but gradient is %vx%v", i, pr, pc, gr, gc)
		}
		v := o.velocity[i]
		for r := 0; r < pr; r++ {
			for c := 0; c < pc; c++ {
				g := grads[i].At(r, c) + o.WeightDecay*p.At(r, c)
				vel := o.Momentum*v.At(r, c) + g
				v.Set(r, c, vel)
				p.Set(r, c, p.At(r, c)-lr*vel)
			}
		}
	}
	return nil
}

// Velocity exposes the momentum buffers for checkpointing.
func (o *SGD) Velocity() []*mat.Dense { return o.velocity }

func (o *SGD) SetVelocity(v []*mat.Dense) { o.velocity = v }
