package xsail_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/xsailtest"
)

func TestActiveNodeStop(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	n := xsail.NewActiveNode(xsail.NodeSimulator, bus)
	assert.False(t, n.Running())
	assert.NoError(t, n.Wait(), "never started")

	ticks := make(chan struct{}, 100)
	require.NoError(t, n.RunLoop(xsail.Every(time.Millisecond, 0, func(context.Context) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	})))
	<-ticks
	assert.True(t, n.Running())

	n.Stop()
	select {
	case <-n.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
	assert.NoError(t, n.Wait())
	assert.False(t, n.Running())
}

func TestActiveNodeStartTwice(t *testing.T) {
	n := xsail.NewActiveNode(xsail.NodeSimulator, nil)
	block := func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
	require.NoError(t, n.RunLoop(block))
	defer func() { _ = n.StopAndWait() }()
	assert.ErrorIs(t, n.RunLoop(block), xsail.ErrNodeStarted)
}

func TestActiveNodeLoopPanicIsContained(t *testing.T) {
	n := xsail.NewActiveNode(xsail.NodeSimulator, nil)
	require.NoError(t, n.RunLoop(func(context.Context) error { panic("sensor bus fault") }))
	err := n.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensor bus fault")
	assert.False(t, n.Running())
}

func TestActiveNodeLoopError(t *testing.T) {
	n := xsail.NewActiveNode(xsail.NodeSimulator, nil)
	want := errors.New("device closed")
	require.NoError(t, n.RunLoop(func(context.Context) error { return want }))
	assert.ErrorIs(t, n.Wait(), want)
}

func TestActiveNodeContext(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	n := xsail.NewActiveNode(xsail.NodeStateEstimation, bus)

	type seen struct {
		logger, clock bool
		id            xsail.NodeID
	}
	got := make(chan seen, 1)
	require.NoError(t, n.RunLoop(func(ctx context.Context) error {
		_, lok := xsail.LoggerFromContext(ctx)
		clk, cok := xsail.ClockFromContext(ctx)
		id, _ := xsail.NodeIDFromContext(ctx)
		got <- seen{logger: lok, clock: cok && clk != nil, id: id}
		return nil
	}))
	s := <-got
	assert.True(t, s.logger)
	assert.True(t, s.clock)
	assert.Equal(t, xsail.NodeStateEstimation, s.id)
	assert.NoError(t, n.Wait())
}

func TestActiveNodeParentContext(t *testing.T) {
	n := xsail.NewActiveNode(xsail.NodeSimulator, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, n.RunLoopContext(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	assert.NoError(t, n.Wait())
}

type sensorNode struct {
	*xsail.ActiveNode
}

func (s *sensorNode) ProcessMessage(xsail.Message) {}

func TestActiveNodeSendsThroughBus(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	sink := xsailtest.NewRecorder(xsail.NodeLogger)
	node := &sensorNode{ActiveNode: xsail.NewActiveNode(xsail.NodeCompass, bus)}
	bus.RegisterNode(node)
	bus.RegisterNode(sink, xsail.MessageCompassData)
	xsailtest.RunBus(t, bus)

	require.NoError(t, node.RunLoop(xsail.Every(2*time.Millisecond, 0, func(context.Context) error {
		node.Send(compass(node.NodeID(), xsail.NodeNone, 1))
		return nil
	})))
	t.Cleanup(func() { _ = node.StopAndWait() })
	sink.WaitFor(t, 3, wait)
	assert.Equal(t, xsail.NodeCompass, sink.Messages()[0].Source())
}
