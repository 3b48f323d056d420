package comm

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	pb "github.com/JohnSon-zh-12345/pyconvsegnet/comm/proto"
	cs "github.com/JohnSon-zh-12345/pyconvsegnet/coordinator/server_lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc"
)

func startCoordinator(t *testing.T) string {
	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := grpc.NewServer()
	pb.RegisterCollectiveServer(s, cs.NewCollectiveService(16))
	go s.Serve(listen)
	t.Cleanup(s.Stop)
	return listen.Addr().String()
}

func joinGroup(t *testing.T, address string, worldSize int) []*Group {
	groups := make([]*Group, worldSize)
	for i := range groups {
		g, err := Join(context.Background(), address, worldSize, i, 5*time.Second)
		require.NoError(t, err)
		t.Cleanup(func() { g.Close() })
		groups[i] = g
	}
	return groups
}

func TestJoinAssignsRequestedSlots(t *testing.T) {
	address := startCoordinator(t)

	// Workers may arrive in any order; each keeps its configured slot.
	for _, device := range []int{2, 0, 1} {
		g, err := Join(context.Background(), address, 3, device, 5*time.Second)
		require.NoError(t, err)
		t.Cleanup(func() { g.Close() })
		assert.Equal(t, device, g.Rank())
		assert.Equal(t, 3, g.WorldSize())
	}
}

func TestJoinRejectsInvalidDevice(t *testing.T) {
	address := startCoordinator(t)
	_, err := Join(context.Background(), address, 2, 2, 5*time.Second)
	assert.Error(t, err)
	_, err = Join(context.Background(), address, 2, -1, 5*time.Second)
	assert.Error(t, err)
}

func TestGroupAllReduceSum(t *testing.T) {
	address := startCoordinator(t)
	groups := joinGroup(t, address, 2)

	results := make([]*mat.Dense, 2)
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g *Group) {
			defer wg.Done()
			m := mat.NewDense(1, 2, []float64{float64(i + 1), 10})
			reduced, err := g.AllReduceSum(context.Background(), m)
			assert.NoError(t, err)
			results[i] = reduced
		}(i, g)
	}
	wg.Wait()

	want := mat.NewDense(1, 2, []float64{3, 20})
	assert.True(t, mat.EqualApprox(want, results[0], 1e-12))
	assert.True(t, mat.EqualApprox(want, results[1], 1e-12))
}

func TestGroupOrFlag(t *testing.T) {
	address := startCoordinator(t)
	groups := joinGroup(t, address, 2)

	results := make([]bool, 2)
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		go func(i int, g *Group) {
			defer wg.Done()
			// Only rank index 1 raises the flag; both must observe true.
			flag, err := g.OrFlag(context.Background(), i == 1)
			assert.NoError(t, err)
			results[i] = flag
		}(i, g)
	}
	wg.Wait()

	assert.True(t, results[0])
	assert.True(t, results[1])
}

func TestGroupGatherOrderedByRank(t *testing.T) {
	address := startCoordinator(t)
	groups := joinGroup(t, address, 3)

	var rank0Payloads [][]byte
	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g *Group) {
			defer wg.Done()
			payload := []byte{byte(g.Rank())}
			gathered, err := g.Gather(context.Background(), payload)
			assert.NoError(t, err)
			if g.Rank() == 0 {
				rank0Payloads = gathered
			} else {
				assert.Nil(t, gathered)
			}
		}(g)
	}
	wg.Wait()

	require.Len(t, rank0Payloads, 3)
	for rank, p := range rank0Payloads {
		assert.Equal(t, []byte{byte(rank)}, p)
	}
}

func TestGroupBarrier(t *testing.T) {
	address := startCoordinator(t)
	groups := joinGroup(t, address, 2)

	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g *Group) {
			defer wg.Done()
			assert.NoError(t, g.Barrier(context.Background()))
		}(g)
	}
	wg.Wait()
}

func TestJoinTimesOutWithoutCoordinator(t *testing.T) {
	// Nothing listens on this address; init must fail within its timeout.
	_, err := Join(context.Background(), "127.0.0.1:1", 2, 0, 200*time.Millisecond)
	assert.Error(t, err)
}
