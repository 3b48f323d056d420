package comm

import (
	"context"
	"sync"

	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// localHub rendezvouses n in-process workers the same way the coordinator
// service does for remote ones. Used for world_size = 1 runs and for tests
// that drive several ranks as goroutines.
type localHub struct {
	n       int
	mu      sync.Mutex
	pending map[uint64]*localOp
}

type localOp struct {
	kind     opName
	mats     map[int]*mat.Dense
	bytes    map[int][]byte
	arrived  int
	released int
	done     chan struct{}
	result   *mat.Dense
	gathered [][]byte
	err      error
}

type opName int

const (
	localSum opName = iota
	localMax
	localBarrier
	localGather
)

// NewLocalGroup creates n Communicators sharing one in-process hub, one per
// rank. All n ranks must be driven concurrently for collectives to complete.
func NewLocalGroup(n int) []Communicator {
	hub := &localHub{n: n, pending: make(map[uint64]*localOp)}
	group := make([]Communicator, n)
	for rank := 0; rank < n; rank++ {
		group[rank] = &localWorker{hub: hub, rank: rank}
	}
	return group
}

// NewSingle returns a Communicator for a world of one, where every collective
// is the identity.
func NewSingle() Communicator {
	return NewLocalGroup(1)[0]
}

type localWorker struct {
	hub  *localHub
	rank int
	seq  uint64
	mu   sync.Mutex
}

func (w *localWorker) Rank() int      { return w.rank }
func (w *localWorker) WorldSize() int { return w.hub.n }
func (w *localWorker) Close() error   { return nil }

func (w *localWorker) nextSeq() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	return w.seq
}

func (h *localHub) rendezvous(ctx context.Context, seq uint64, kind opName, rank int, m *mat.Dense, b []byte) (*localOp, error) {
	h.mu.Lock()
	p, ok := h.pending[seq]
	if !ok {
		p = &localOp{
			kind:  kind,
			mats:  make(map[int]*mat.Dense),
			bytes: make(map[int][]byte),
			done:  make(chan struct{}),
		}
		h.pending[seq] = p
	} else if p.kind != kind {
		h.mu.Unlock()
		return nil, errors.Errorf("collective mismatch at seq %v: ranks issued different operations", seq)
	}
	if _, dup := p.mats[rank]; dup {
		h.mu.Unlock()
		return nil, errors.Errorf("rank %v already contributed to seq %v", rank, seq)
	}
	p.mats[rank] = m
	p.bytes[rank] = b
	p.arrived++
	if p.arrived == h.n {
		h.finalize(p)
		close(p.done)
	}
	h.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, errors.Wrapf(ctx.Err(), "collective at seq %v timed out", seq)
	}

	h.mu.Lock()
	p.released++
	if p.released == h.n {
		delete(h.pending, seq)
	}
	h.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	return p, nil
}

func (h *localHub) finalize(p *localOp) {
	switch p.kind {
	case localBarrier:
	case localGather:
		p.gathered = make([][]byte, h.n)
		for rank := 0; rank < h.n; rank++ {
			p.gathered[rank] = p.bytes[rank]
		}
	case localSum, localMax:
		var acc *mat.Dense
		var err error
		for rank := 0; rank < h.n; rank++ {
			m := p.mats[rank]
			if acc == nil {
				acc = mat.DenseCopyOf(m)
				continue
			}
			if p.kind == localSum {
				acc, err = utils.SumMatrix(acc, m)
			} else {
				acc, err = utils.MaxMatrix(acc, m)
			}
			if err != nil {
				p.err = errors.Wrapf(err, "could not reduce contribution from rank %v", rank)
				return
			}
		}
		p.result = acc
	}
}

func (w *localWorker) allReduce(ctx context.Context, m *mat.Dense, kind opName) (*mat.Dense, error) {
	p, err := w.hub.rendezvous(ctx, w.nextSeq(), kind, w.rank, m, nil)
	if err != nil {
		return nil, err
	}
	// Each caller gets its own copy so later in-place use stays rank-local.
	return mat.DenseCopyOf(p.result), nil
}

func (w *localWorker) AllReduceSum(ctx context.Context, m *mat.Dense) (*mat.Dense, error) {
	return w.allReduce(ctx, m, localSum)
}

func (w *localWorker) AllReduceMax(ctx context.Context, m *mat.Dense) (*mat.Dense, error) {
	return w.allReduce(ctx, m, localMax)
}

func (w *localWorker) OrFlag(ctx context.Context, flag bool) (bool, error) {
	v := 0.0
	if flag {
		v = 1.0
	}
	reduced, err := w.AllReduceMax(ctx, mat.NewDense(1, 1, []float64{v}))
	if err != nil {
		return false, err
	}
	return reduced.At(0, 0) > 0, nil
}

func (w *localWorker) Barrier(ctx context.Context) error {
	_, err := w.hub.rendezvous(ctx, w.nextSeq(), localBarrier, w.rank, nil, nil)
	return err
}

func (w *localWorker) Gather(ctx context.Context, payload []byte) ([][]byte, error) {
	p, err := w.hub.rendezvous(ctx, w.nextSeq(), localGather, w.rank, nil, payload)
	if err != nil {
		return nil, err
	}
	if w.rank != 0 {
		return nil, nil
	}
	return p.gathered, nil
}
