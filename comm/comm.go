package comm

import (
	"context"
	"sync/atomic"
	"time"

	pb "github.com/JohnSon-zh-12345/pyconvsegnet/comm/proto"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Communicator is the collective-communication surface shared by all ranks of
// a training job. Every method is blocking: a rank that reaches a collective
// waits until every other rank has reached the same call. All ranks must
// issue collectives in the same order or the group deadlocks.
type Communicator interface {
	Rank() int
	WorldSize() int

	// AllReduceSum returns the elementwise sum of every rank's matrix;
	// the result is identical on all ranks.
	AllReduceSum(ctx context.Context, m *mat.Dense) (*mat.Dense, error)

	// AllReduceMax returns the elementwise maximum across ranks.
	AllReduceMax(ctx context.Context, m *mat.Dense) (*mat.Dense, error)

	// OrFlag combines a boolean across ranks (true if any rank is true).
	OrFlag(ctx context.Context, flag bool) (bool, error)

	// Barrier blocks until every rank has reached it.
	Barrier(ctx context.Context) error

	// Gather collects every rank's payload on rank 0, ordered by rank.
	// Ranks other than 0 receive nil.
	Gather(ctx context.Context, payload []byte) ([][]byte, error)

	Close() error
}

// Group is a Communicator backed by the coordinator's Collective service.
type Group struct {
	conn      *grpc.ClientConn
	client    pb.CollectiveClient
	commId    uint64
	rank      int
	worldSize int
	seq       atomic.Uint64
}

// Join dials the coordinator and registers this worker in the given device
// slot, which becomes its rank. Group initialization is bounded by
// initTimeout; on expiry the whole job is expected to abort.
func Join(ctx context.Context, coordinatorAddress string, worldSize, device int, initTimeout time.Duration) (*Group, error) {
	if device < 0 || device >= worldSize {
		return nil, errors.Errorf("device %v outside world size %v", device, worldSize)
	}
	var opts []grpc.DialOption
	opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	conn, err := grpc.NewClient(coordinatorAddress, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to coordinator at %v", coordinatorAddress)
	}
	client := pb.NewCollectiveClient(conn)

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()
	resp, err := client.InitComm(initCtx, &pb.InitCommRequest{WorldSize: uint32(worldSize), DeviceId: uint32(device)})
	if err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "failed to init communication group of size %v", worldSize)
	}
	if !resp.GetSuccess() {
		conn.Close()
		return nil, errors.Errorf("coordinator rejected group init for world size %v", worldSize)
	}
	return &Group{
		conn:      conn,
		client:    client,
		commId:    resp.GetCommId(),
		rank:      int(resp.GetRank()),
		worldSize: worldSize,
	}, nil
}

func (g *Group) Rank() int      { return g.rank }
func (g *Group) WorldSize() int { return g.worldSize }

func (g *Group) allReduce(ctx context.Context, m *mat.Dense, op pb.ReduceOp) (*mat.Dense, error) {
	payload, err := utils.SerializeMatrix(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize all-reduce payload")
	}
	resp, err := g.client.AllReduce(ctx, &pb.AllReduceRequest{
		CommId:  g.commId,
		Seq:     g.seq.Add(1),
		Rank:    uint32(g.rank),
		Op:      op,
		Payload: payload,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "all-reduce failed on rank %v", g.rank)
	}
	reduced, err := utils.DeserializeMatrix(resp.GetPayload())
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize all-reduce result")
	}
	return reduced, nil
}

func (g *Group) AllReduceSum(ctx context.Context, m *mat.Dense) (*mat.Dense, error) {
	return g.allReduce(ctx, m, pb.ReduceOp_SUM)
}

func (g *Group) AllReduceMax(ctx context.Context, m *mat.Dense) (*mat.Dense, error) {
	return g.allReduce(ctx, m, pb.ReduceOp_MAX)
}

func (g *Group) OrFlag(ctx context.Context, flag bool) (bool, error) {
	v := 0.0
	if flag {
		v = 1.0
	}
	reduced, err := g.AllReduceMax(ctx, mat.NewDense(1, 1, []float64{v}))
	if err != nil {
		return false, err
	}
	return reduced.At(0, 0) > 0, nil
}

func (g *Group) Barrier(ctx context.Context) error {
	_, err := g.client.Barrier(ctx, &pb.BarrierRequest{
		CommId: g.commId,
		Seq:    g.seq.Add(1),
		Rank:   uint32(g.rank),
	})
	if err != nil {
		return errors.Wrapf(err, "barrier failed on rank %v", g.rank)
	}
	return nil
}

func (g *Group) Gather(ctx context.Context, payload []byte) ([][]byte, error) {
	resp, err := g.client.Gather(ctx, &pb.GatherRequest{
		CommId:  g.commId,
		Seq:     g.seq.Add(1),
		Rank:    uint32(g.rank),
		Payload: payload,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "gather failed on rank %v", g.rank)
	}
	if g.rank != 0 {
		return nil, nil
	}
	return resp.GetPayloads(), nil
}

func (g *Group) Close() error {
	return g.conn.Close()
}
