package lace

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type recordingManager struct {
	notified int32
}

func (m *recordingManager) NotifyTermination() {
	atomic.AddInt32(&m.notified, 1)
}

// RuntimeTestSuite covers the end-to-end scheduler scenarios: every
// seeded task must run exactly once, regardless of how many workers
// are in the partition or which steal policy is configured.
type RuntimeTestSuite struct {
	suite.Suite
}

func TestRuntimeTestSuite(t *testing.T) {
	suite.Run(t, new(RuntimeTestSuite))
}

func countingTask(counter *int64) Task {
	return Task{Fn: func(ctx context.Context) {
		atomic.AddInt64(counter, 1)
	}}
}

func (ts *RuntimeTestSuite) runAndCount(rt *Runtime, numTasks int, timeout time.Duration) int64 {
	var counter int64
	for i := 0; i < numTasks; i++ {
		rt.Submit(0, countingTask(&counter))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := rt.Run(ctx)
	ts.Require().NoError(err)
	return atomic.LoadInt64(&counter)
}

func (ts *RuntimeTestSuite) TestTwoWorkersOneProducer() {
	rt := NewRuntime(2, nil, nil, zap.NewNop())
	got := ts.runAndCount(rt, 50, 5*time.Second)
	ts.EqualValues(50, got)
}

func (ts *RuntimeTestSuite) TestImmediateQuiescenceWithNoWork() {
	rt := NewRuntime(4, nil, nil, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := rt.Run(ctx)
	ts.Require().NoError(err)
}

func (ts *RuntimeTestSuite) TestFourWorkersDrainBurstOfSeededWork() {
	rt := NewRuntime(4, nil, nil, zap.NewNop(), WithMaxStealAttempts(3))
	got := ts.runAndCount(rt, 500, 10*time.Second)
	ts.EqualValues(500, got)
}

func (ts *RuntimeTestSuite) TestEightWorkersAdaptivePolicyDrainsAllWork() {
	rt := NewRuntime(8, nil, nil, zap.NewNop(),
		WithStealStrategy(StealAdaptive),
		WithStealAdaptativeInterval(4))
	got := ts.runAndCount(rt, 1000, 10*time.Second)
	ts.EqualValues(1000, got)
}

func (ts *RuntimeTestSuite) TestFourWorkersLastVictimBiasDrainsAllWork() {
	rt := NewRuntime(4, nil, nil, zap.NewNop(),
		WithStealLastVictim(true),
		WithVictimCheck(true))
	got := ts.runAndCount(rt, 300, 10*time.Second)
	ts.EqualValues(300, got)
}

func (ts *RuntimeTestSuite) TestStealHalfStrategyDrainsAllWork() {
	rt := NewRuntime(4, nil, nil, zap.NewNop(), WithStealStrategy(StealHalf))
	got := ts.runAndCount(rt, 400, 10*time.Second)
	ts.EqualValues(400, got)
}

func (ts *RuntimeTestSuite) TestManagerNotifiedExactlyOnceOnTermination() {
	mgr := &recordingManager{}
	rt := NewRuntime(4, mgr, nil, zap.NewNop())
	ts.runAndCount(rt, 100, 10*time.Second)
	ts.EqualValues(1, mgr.notified)
}

func (ts *RuntimeTestSuite) TestSubmitDistributesAcrossMultipleRootCalls() {
	rt := NewRuntime(3, nil, nil, zap.NewNop())

	var counter int64
	for i := 0; i < 10; i++ {
		rt.Submit(0, countingTask(&counter))
	}
	for i := 0; i < 10; i++ {
		rt.Submit(0, countingTask(&counter))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts.Require().NoError(rt.Run(ctx))
	ts.EqualValues(20, counter)
}
