// Package train drives distributed optimization: epoch and iteration
// bookkeeping, loss computation against full-resolution labels, gradient
// synchronization, scaler-guarded optimizer steps, and checkpointing.
package train

import (
	"context"
	"log"
	"math"
	"path/filepath"

	"github.com/JohnSon-zh-12345/pyconvsegnet/amp"
	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	"github.com/JohnSon-zh-12345/pyconvsegnet/dataset"
	"github.com/JohnSon-zh-12345/pyconvsegnet/model"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// State names the trainer's position in its epoch/iteration cycle.
type State int

const (
	StateInitializing State = iota
	StateIterationRunning
	StateEpochBoundary
	StateEvaluating
	StateCheckpointing
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "Initializing"
	case StateIterationRunning:
		return "IterationRunning"
	case StateEpochBoundary:
		return "EpochBoundary"
	case StateEvaluating:
		return "Evaluating"
	case StateCheckpointing:
		return "Checkpointing"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// TrainingJob tracks monotonically increasing progress counters. It is
// mutated only by the trainer and persisted at epoch boundaries.
type TrainingJob struct {
	Epoch       int
	Iteration   int
	GlobalStep  int
	TotalEpochs int
}

// Validator runs an evaluation pass and reports the global mean IoU and
// pixel accuracy. Every rank must receive identical values.
type Validator interface {
	Validate(ctx context.Context, ds dataset.Dataset) (float64, float64, error)
}

type Options struct {
	Epochs      int
	BatchSize   int
	AuxWeight   float64
	IgnoreLabel int32

	Momentum    float64
	WeightDecay float64

	// EvalEvery triggers validation every N epochs; 0 disables it.
	EvalEvery int

	CheckpointDir string
	ResumePath    string
}

type Trainer struct {
	comm      comm.Communicator
	extractor model.FeatureExtractor
	opt       *SGD
	sched     LRScheduler
	scaler    *amp.LossScaler
	validator Validator
	valData   dataset.Dataset
	opts      Options

	state    State
	job      TrainingJob
	bestMIoU float64
}

func NewTrainer(c comm.Communicator, extractor model.FeatureExtractor, sched LRScheduler, scaler *amp.LossScaler, opts Options) (*Trainer, error) {
	if opts.Epochs <= 0 {
		return nil, errors.Errorf("invalid epoch count %v", opts.Epochs)
	}
	if opts.BatchSize <= 0 {
		return nil, errors.Errorf("invalid batch size %v", opts.BatchSize)
	}
	return &Trainer{
		comm:      c,
		extractor: extractor,
		opt:       NewSGD(opts.Momentum, opts.WeightDecay),
		sched:     sched,
		scaler:    scaler,
		opts:      opts,
		state:     StateInitializing,
		job:       TrainingJob{TotalEpochs: opts.Epochs},
		bestMIoU:  math.Inf(-1),
	}, nil
}

// SetValidator wires the evaluation pass run at the configured cadence.
func (t *Trainer) SetValidator(v Validator, ds dataset.Dataset) {
	t.validator = v
	t.valData = ds
}

func (t *Trainer) State() State      { return t.state }
func (t *Trainer) Job() TrainingJob  { return t.job }
func (t *Trainer) BestMIoU() float64 { return t.bestMIoU }

func (t *Trainer) enter(s State) {
	if s != t.state {
		log.Printf("rank %d: %v -> %v (epoch %d)", t.comm.Rank(), t.state, s, t.job.Epoch)
		t.state = s
	}
}

// Run executes the whole job: resume if configured, then loop epochs until
// the budget is exhausted.
func (t *Trainer) Run(ctx context.Context, ds dataset.Dataset) error {
	if t.opts.ResumePath != "" {
		if err := t.resume(t.opts.ResumePath); err != nil {
			return err
		}
		log.Printf("rank %d resumed from %v at epoch %d", t.comm.Rank(), t.opts.ResumePath, t.job.Epoch)
	}

	for t.job.Epoch < t.job.TotalEpochs {
		t.enter(StateIterationRunning)
		if err := t.runEpoch(ctx, ds); err != nil {
			return errors.Wrapf(err, "epoch %v failed", t.job.Epoch)
		}
		t.enter(StateEpochBoundary)
		t.job.Epoch++
		t.job.Iteration = 0

		miou := math.NaN()
		if t.validator != nil && t.opts.EvalEvery > 0 && t.job.Epoch%t.opts.EvalEvery == 0 {
			t.enter(StateEvaluating)
			var acc float64
			var err error
			miou, acc, err = t.validator.Validate(ctx, t.valData)
			if err != nil {
				return errors.Wrapf(err, "validation failed after epoch %v", t.job.Epoch)
			}
			log.Printf("rank %d epoch %d: mIoU %.4f, pixel accuracy %.4f", t.comm.Rank(), t.job.Epoch, miou, acc)
		}

		t.enter(StateCheckpointing)
		if err := t.checkpoint(ctx, miou); err != nil {
			return errors.Wrapf(err, "checkpointing failed after epoch %v", t.job.Epoch)
		}
	}

	t.enter(StateTerminated)
	return nil
}

func (t *Trainer) runEpoch(ctx context.Context, ds dataset.Dataset) error {
	lo, hi := dataset.Shard(ds.Len(), t.comm.WorldSize(), t.comm.Rank())
	steps, err := t.epochSteps(ctx, hi-lo)
	if err != nil {
		return err
	}
	for s := 0; s < steps; s++ {
		start := lo + s*t.opts.BatchSize
		end := min(start+t.opts.BatchSize, hi)
		var batch []*utils.Tensor
		var labels []*utils.LabelMap
		for i := start; i < end; i++ {
			img, label, err := ds.Sample(i)
			if err != nil {
				return errors.Wrapf(err, "failed to load sample %v", i)
			}
			if label == nil {
				return errors.Errorf("sample %v has no label", i)
			}
			batch = append(batch, img)
			labels = append(labels, label)
		}
		if err := t.step(ctx, batch, labels); err != nil {
			return errors.Wrapf(err, "iteration %v failed", t.job.Iteration)
		}
		t.job.Iteration++
		t.job.GlobalStep++
	}
	return nil
}

// epochSteps agrees on a common iteration count for the epoch: the largest
// shard's step count. Shards do not divide evenly in general, so ranks whose
// shard runs out keep stepping with empty batches; every collective inside
// step is then reached by every rank the same number of times.
func (t *Trainer) epochSteps(ctx context.Context, shardSize int) (int, error) {
	local := (shardSize + t.opts.BatchSize - 1) / t.opts.BatchSize
	reduced, err := t.comm.AllReduceMax(ctx, mat.NewDense(1, 1, []float64{float64(local)}))
	if err != nil {
		return 0, errors.Wrap(err, "failed to agree on epoch length")
	}
	return int(reduced.At(0, 0)), nil
}

// step runs one forward/backward/update cycle. The collectives inside it
// (normalization statistics, gradient sum, overflow flag) are reached by
// every rank on every iteration regardless of local outcomes.
func (t *Trainer) step(ctx context.Context, batch []*utils.Tensor, labels []*utils.LabelMap) error {
	t.extractor.ZeroGrad()

	primary, aux, err := t.extractor.Forward(ctx, batch, true)
	if err != nil {
		return errors.Wrap(err, "forward pass failed")
	}

	mainLoss, gradPrimary, err := t.headLoss(primary, labels)
	if err != nil {
		return err
	}
	total := mainLoss

	var gradAux []*utils.Tensor
	if aux != nil && t.opts.AuxWeight > 0 {
		auxLoss, g, err := t.headLoss(aux, labels)
		if err != nil {
			return err
		}
		total += t.opts.AuxWeight * auxLoss
		for _, t2 := range g {
			for i := range t2.Data {
				t2.Data[i] *= t.opts.AuxWeight
			}
		}
		gradAux = g
	}

	// Backpropagate the scaled loss: scaling the upstream gradient is the
	// same as scaling the loss itself.
	scale := t.scaler.Scale()
	for _, g := range gradPrimary {
		for i := range g.Data {
			g.Data[i] *= scale
		}
	}
	for _, g := range gradAux {
		for i := range g.Data {
			g.Data[i] *= scale
		}
	}
	if err := t.extractor.Backward(ctx, gradPrimary, gradAux); err != nil {
		return errors.Wrap(err, "backward pass failed")
	}

	grads := t.extractor.Gradients()
	for _, g := range grads {
		reduced, err := t.comm.AllReduceSum(ctx, g)
		if err != nil {
			return errors.Wrap(err, "gradient synchronization failed")
		}
		g.Copy(reduced)
		g.Scale(1/float64(t.comm.WorldSize()), g)
	}

	lr := t.sched.LearningRate(t.job.GlobalStep)
	applied, err := t.scaler.Step(ctx, grads, func() error {
		return t.opt.Step(t.extractor.Parameters(), grads, lr)
	})
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("rank %d: overflow at step %d, loss scale now %v", t.comm.Rank(), t.job.GlobalStep, t.scaler.Scale())
	} else if t.job.Iteration%50 == 0 {
		log.Printf("rank %d epoch %d iter %d: loss %.4f, lr %.6f", t.comm.Rank(), t.job.Epoch, t.job.Iteration, total, lr)
	}
	return nil
}

// headLoss averages per-image cross-entropy for one head. Predictions at
// reduced resolution are upsampled to label resolution first, so the loss is
// always computed against full-resolution labels; the gradient is carried
// back to prediction resolution.
func (t *Trainer) headLoss(logits []*utils.Tensor, labels []*utils.LabelMap) (float64, []*utils.Tensor, error) {
	if len(logits) != len(labels) {
		return 0, nil, errors.Errorf("got %v predictions for %v labels", len(logits), len(labels))
	}
	if len(logits) == 0 {
		return 0, nil, nil
	}
	var total float64
	grads := make([]*utils.Tensor, len(logits))
	invBatch := 1 / float64(len(logits))
	for i, lg := range logits {
		label := labels[i]
		up := lg
		if lg.H != label.H || lg.W != label.W {
			up = utils.BilinearResize(lg, label.H, label.W)
		}
		loss, grad, err := SoftmaxCrossEntropy(up, label, t.opts.IgnoreLabel)
		if err != nil {
			return 0, nil, err
		}
		total += loss * invBatch
		if up != lg {
			// Approximate adjoint of the upsample: resize back and keep the
			// total gradient mass comparable.
			grad = utils.BilinearResize(grad, lg.H, lg.W)
			factor := float64(label.H*label.W) / float64(lg.H*lg.W)
			for j := range grad.Data {
				grad.Data[j] *= factor
			}
		}
		for j := range grad.Data {
			grad.Data[j] *= invBatch
		}
		grads[i] = grad
	}
	return total, grads, nil
}

// checkpoint persists the job on rank 0 and holds every rank at a barrier on
// both sides of the write, so a restart sees one consistent snapshot.
func (t *Trainer) checkpoint(ctx context.Context, miou float64) error {
	if t.opts.CheckpointDir == "" {
		return nil
	}
	if err := t.comm.Barrier(ctx); err != nil {
		return errors.Wrap(err, "pre-checkpoint barrier failed")
	}

	isBest := !math.IsNaN(miou) && miou > t.bestMIoU
	if isBest {
		t.bestMIoU = miou
	}

	if t.comm.Rank() == 0 {
		ckpt := &Checkpoint{
			Epoch:      t.job.Epoch,
			GlobalIter: t.job.GlobalStep,
			BestMIoU:   t.bestMIoU,
			Params:     encodeMatrices(t.extractor.Parameters()),
		}
		if v := t.opt.Velocity(); v != nil {
			ckpt.Velocity = encodeMatrices(v)
		}
		st := t.scaler.State()
		ckpt.Scaler = &st

		path := filepath.Join(t.opts.CheckpointDir, "train_epoch_last.json")
		if err := SaveCheckpoint(path, ckpt); err != nil {
			return err
		}
		if isBest {
			if err := SaveCheckpoint(filepath.Join(t.opts.CheckpointDir, "train_epoch_best.json"), ckpt); err != nil {
				return err
			}
			log.Printf("new best mIoU %.4f at epoch %d", miou, t.job.Epoch)
		}
	}

	if err := t.comm.Barrier(ctx); err != nil {
		return errors.Wrap(err, "post-checkpoint barrier failed")
	}
	return nil
}

func (t *Trainer) resume(path string) error {
	ckpt, err := LoadCheckpoint(path)
	if err != nil {
		return err
	}
	if err := decodeInto(ckpt.Params, t.extractor.Parameters()); err != nil {
		return errors.Wrap(err, "checkpoint does not match model")
	}
	if ckpt.Velocity != nil {
		params := t.extractor.Parameters()
		if len(ckpt.Velocity) != len(params) {
			return errors.Errorf("checkpoint holds %v velocity buffers for %v parameters", len(ckpt.Velocity), len(params))
		}
		vel := make([]*mat.Dense, len(params))
		for i, p := range params {
			r, c := p.Dims()
			vel[i] = mat.NewDense(r, c, nil)
		}
		if err := decodeInto(ckpt.Velocity, vel); err != nil {
			return errors.Wrap(err, "checkpoint optimizer state does not match model")
		}
		t.opt.SetVelocity(vel)
	}
	if ckpt.Scaler != nil {
		if err := t.scaler.Restore(*ckpt.Scaler); err != nil {
			return err
		}
	}
	t.job.Epoch = ckpt.Epoch
	t.job.GlobalStep = ckpt.GlobalIter
	t.bestMIoU = ckpt.BestMIoU
	return nil
}
