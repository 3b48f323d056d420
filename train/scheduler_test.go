package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolySchedulerMidpoint(t *testing.T) {
	sched := NewPolyScheduler(0.01, 0.9, 100)
	// 0.01 * (0.5)^0.9
	assert.InDelta(t, 0.005359, sched.LearningRate(50), 1e-6)
}

func TestPolySchedulerBoundaries(t *testing.T) {
	sched := NewPolyScheduler(0.01, 0.9, 100)
	assert.Equal(t, 0.01, sched.LearningRate(0))
	assert.Equal(t, 0.0, sched.LearningRate(100))
	assert.Equal(t, 0.0, sched.LearningRate(250))
	assert.Equal(t, 0.01, sched.LearningRate(-5))
}

func TestPolySchedulerMonotone(t *testing.T) {
	sched := NewPolyScheduler(0.1, 0.9, 1000)
	prev := sched.LearningRate(0)
	for iter := 1; iter <= 1000; iter++ {
		lr := sched.LearningRate(iter)
		assert.LessOrEqual(t, lr, prev)
		prev = lr
	}
}

func TestPolySchedulerDefaultPower(t *testing.T) {
	sched := NewPolyScheduler(0.01, 0, 100)
	assert.Equal(t, 0.9, sched.Power)
}

func TestConstantScheduler(t *testing.T) {
	sched := ConstantScheduler{BaseLR: 0.05}
	assert.Equal(t, 0.05, sched.LearningRate(0))
	assert.Equal(t, 0.05, sched.LearningRate(10000))
}
