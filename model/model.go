package model

import (
	"context"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FeatureExtractor abstracts the segmentation network. The training and
// evaluation pipeline depends only on this interface: a forward pass that
// yields per-pixel class logits (primary head, plus an optional auxiliary
// head at reduced resolution during training) and a backward pass that
// accumulates parameter gradients. Forward takes a context because layers
// with synchronized statistics issue collective calls inside it.
type FeatureExtractor interface {
	// Forward returns primary logits for each input, and auxiliary logits
	// when training with an aux head (nil slice otherwise). Logit tensors
	// have NumClasses channels but may be spatially smaller than the input.
	Forward(ctx context.Context, batch []*utils.Tensor, training bool) (primary []*utils.Tensor, aux []*utils.Tensor, err error)

	// Backward accumulates gradients given the loss gradient with respect
	// to each head's logits, at the resolution Forward produced them.
	Backward(ctx context.Context, gradPrimary, gradAux []*utils.Tensor) error

	Parameters() []*mat.Dense
	Gradients() []*mat.Dense
	ZeroGrad()
	NumClasses() int
}

// Options selects and sizes a concrete extractor.
type Options struct {
	Arch         string
	InChannels   int
	Classes      int
	SyncBN       bool
	BNMomentum   float64
	OutputStride int
	AuxStride    int
	Seed         int64
}

// New builds the extractor named by opts.Arch. The pipeline never depends on
// a concrete variant beyond this constructor.
func New(opts Options, c comm.Communicator) (FeatureExtractor, error) {
	switch opts.Arch {
	case "", "linear":
		return NewLinearExtractor(opts, c)
	default:
		return nil, errors.Errorf("unknown architecture %q", opts.Arch)
	}
}
