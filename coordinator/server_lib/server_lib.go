package server_lib

import (
	"context"
	"sync"

	pb "github.com/JohnSon-zh-12345/pyconvsegnet/comm/proto"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CollectiveService rendezvouses the workers of one training job. Every
// collective call blocks until all worldSize ranks have reached the same
// sequence number, then all callers are released with the combined result.
type CollectiveService struct {
	pb.UnimplementedCollectiveServer

	maxDevices int

	mu            sync.Mutex
	commIDCounter uint64
	comm          *commState
}

func NewCollectiveService(maxDevices int) *CollectiveService {
	return &CollectiveService{maxDevices: maxDevices}
}

type opKind int

const (
	opAllReduce opKind = iota
	opBarrier
	opGather
)

type pendingOp struct {
	kind     opKind
	op       pb.ReduceOp
	payloads map[uint32][]byte
	arrived  uint32
	released uint32
	done     chan struct{}
	result   []byte
	gathered [][]byte
	err      error
}

type commState struct {
	id        uint64
	worldSize uint32
	assigned  []bool
	joined    uint32

	mu      sync.Mutex
	pending map[uint64]*pendingOp
}

// InitComm registers one worker in the rank slot named by its device id. Slots
// are fixed at launch time, so a duplicate device id means two processes were
// started with the same configuration.
func (s *CollectiveService) InitComm(ctx context.Context, req *pb.InitCommRequest) (*pb.InitCommResponse, error) {
	worldSize := req.GetWorldSize()
	if worldSize == 0 {
		return &pb.InitCommResponse{Success: false}, status.Errorf(codes.InvalidArgument, "world size cannot be 0")
	}
	if int(worldSize) > s.maxDevices {
		return &pb.InitCommResponse{Success: false}, status.Errorf(codes.InvalidArgument,
			"world size %v exceeds the %v available devices", worldSize, s.maxDevices)
	}
	deviceID := req.GetDeviceId()
	if deviceID >= worldSize {
		return &pb.InitCommResponse{Success: false}, status.Errorf(codes.InvalidArgument,
			"device id %v outside world size %v", deviceID, worldSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.comm == nil {
		s.commIDCounter++
		s.comm = &commState{
			id:        s.commIDCounter,
			worldSize: worldSize,
			assigned:  make([]bool, worldSize),
			pending:   make(map[uint64]*pendingOp),
		}
	} else if s.comm.worldSize != worldSize {
		return &pb.InitCommResponse{Success: false}, status.Errorf(codes.InvalidArgument,
			"worker requested world size %v but the group was created with %v", worldSize, s.comm.worldSize)
	}
	if s.comm.joined >= s.comm.worldSize {
		return &pb.InitCommResponse{Success: false}, status.Errorf(codes.ResourceExhausted,
			"all %v ranks already assigned", s.comm.worldSize)
	}
	if s.comm.assigned[deviceID] {
		return &pb.InitCommResponse{Success: false}, status.Errorf(codes.FailedPrecondition,
			"device %v already joined the group", deviceID)
	}
	s.comm.assigned[deviceID] = true
	s.comm.joined++
	return &pb.InitCommResponse{Success: true, CommId: s.comm.id, Rank: deviceID}, nil
}

func (s *CollectiveService) lookupComm(commId uint64) (*commState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.comm == nil || s.comm.id != commId {
		return nil, status.Errorf(codes.InvalidArgument, "invalid commId %v", commId)
	}
	return s.comm, nil
}

// rendezvous registers one rank's contribution to the collective identified by
// seq and blocks until all ranks have contributed (or ctx expires). The
// returned op carries the combined result, identical for every caller.
func (s *CollectiveService) rendezvous(ctx context.Context, comm *commState, seq uint64, kind opKind, op pb.ReduceOp, rank uint32, payload []byte) (*pendingOp, error) {
	if rank >= comm.worldSize {
		return nil, status.Errorf(codes.InvalidArgument, "invalid rank %v for world size %v", rank, comm.worldSize)
	}

	comm.mu.Lock()
	p, ok := comm.pending[seq]
	if !ok {
		p = &pendingOp{
			kind:     kind,
			op:       op,
			payloads: make(map[uint32][]byte),
			done:     make(chan struct{}),
		}
		comm.pending[seq] = p
	} else if p.kind != kind || p.op != op {
		comm.mu.Unlock()
		return nil, status.Errorf(codes.FailedPrecondition,
			"collective mismatch at seq %v: workers issued different operations", seq)
	}
	if _, dup := p.payloads[rank]; dup {
		comm.mu.Unlock()
		return nil, status.Errorf(codes.FailedPrecondition, "rank %v already contributed to seq %v", rank, seq)
	}
	p.payloads[rank] = payload
	p.arrived++
	if p.arrived == comm.worldSize {
		s.finalize(comm, p)
		close(p.done)
	}
	comm.mu.Unlock()

	select {
	case <-p.done:
	case <-ctx.Done():
		return nil, status.Errorf(codes.DeadlineExceeded, "collective at seq %v timed out: %v", seq, ctx.Err())
	}

	comm.mu.Lock()
	p.released++
	if p.released == comm.worldSize {
		delete(comm.pending, seq)
	}
	comm.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	return p, nil
}

// finalize combines the worldSize contributions; called with comm.mu held.
func (s *CollectiveService) finalize(comm *commState, p *pendingOp) {
	switch p.kind {
	case opBarrier:
		// Nothing to combine.
	case opGather:
		p.gathered = make([][]byte, comm.worldSize)
		for rank := uint32(0); rank < comm.worldSize; rank++ {
			p.gathered[rank] = p.payloads[rank]
		}
	case opAllReduce:
		var acc *mat.Dense
		for rank := uint32(0); rank < comm.worldSize; rank++ {
			m, err := utils.DeserializeMatrix(p.payloads[rank])
			if err != nil {
				p.err = status.Errorf(codes.InvalidArgument, "could not deserialize payload from rank %v: %v", rank, err)
				return
			}
			if acc == nil {
				acc = m
				continue
			}
			switch p.op {
			case pb.ReduceOp_SUM:
				acc, err = utils.SumMatrix(acc, m)
			case pb.ReduceOp_MAX:
				acc, err = utils.MaxMatrix(acc, m)
			default:
				p.err = status.Errorf(codes.InvalidArgument, "unsupported reduce op %v", p.op)
				return
			}
			if err != nil {
				p.err = status.Errorf(codes.InvalidArgument, "could not reduce payload from rank %v: %v", rank, err)
				return
			}
		}
		result, err := utils.SerializeMatrix(acc)
		if err != nil {
			p.err = status.Errorf(codes.Internal, "could not serialize reduced result: %v", err)
			return
		}
		p.result = result
	}
}

func (s *CollectiveService) AllReduce(ctx context.Context, req *pb.AllReduceRequest) (*pb.AllReduceResponse, error) {
	comm, err := s.lookupComm(req.GetCommId())
	if err != nil {
		return nil, err
	}
	if req.GetPayload() == nil {
		return nil, status.Errorf(codes.InvalidArgument, "payload cannot be nil")
	}
	p, err := s.rendezvous(ctx, comm, req.GetSeq(), opAllReduce, req.GetOp(), req.GetRank(), req.GetPayload())
	if err != nil {
		return &pb.AllReduceResponse{Success: false}, err
	}
	return &pb.AllReduceResponse{Success: true, Payload: p.result}, nil
}

func (s *CollectiveService) Barrier(ctx context.Context, req *pb.BarrierRequest) (*pb.BarrierResponse, error) {
	comm, err := s.lookupComm(req.GetCommId())
	if err != nil {
		return nil, err
	}
	_, err = s.rendezvous(ctx, comm, req.GetSeq(), opBarrier, pb.ReduceOp_SUM, req.GetRank(), nil)
	if err != nil {
		return &pb.BarrierResponse{Success: false}, err
	}
	return &pb.BarrierResponse{Success: true}, nil
}

func (s *CollectiveService) Gather(ctx context.Context, req *pb.GatherRequest) (*pb.GatherResponse, error) {
	comm, err := s.lookupComm(req.GetCommId())
	if err != nil {
		return nil, err
	}
	p, err := s.rendezvous(ctx, comm, req.GetSeq(), opGather, pb.ReduceOp_SUM, req.GetRank(), req.GetPayload())
	if err != nil {
		return &pb.GatherResponse{Success: false}, err
	}
	// Only rank 0 receives the gathered payloads; everyone else just unblocks.
	if req.GetRank() == 0 {
		return &pb.GatherResponse{Success: true, Payloads: p.gathered}, nil
	}
	return &pb.GatherResponse{Success: true}, nil
}
