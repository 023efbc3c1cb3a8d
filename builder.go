package xsail

import (
	"context"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

// BusBuilder constructs MessageBus instances (Builder pattern).
type BusBuilder struct {
	cfg         Config
	middlewares []Middleware
	observers   []Observer
	logger      *xlog.Logger
	clock       xclock.Clock
	poolCtx     context.Context
}

// NewBusBuilder returns a new builder with Defaults.
func NewBusBuilder() *BusBuilder {
	return &BusBuilder{cfg: Defaults()}
}

// WithConfig replaces the whole configuration.
func (bb *BusBuilder) WithConfig(cfg Config) *BusBuilder {
	bb.cfg = cfg
	return bb
}

func (bb *BusBuilder) WithMiddleware(mw ...Middleware) *BusBuilder {
	if len(mw) == 0 {
		return bb
	}
	bb.middlewares = append(bb.middlewares, mw...)
	return bb
}

// WithObserver adds observers. Without an observer pool they run on the
// dispatch goroutine and do not receive MessageSent.
func (bb *BusBuilder) WithObserver(obs ...Observer) *BusBuilder {
	for _, o := range obs {
		if o != nil {
			bb.observers = append(bb.observers, o)
		}
	}
	return bb
}

// WithObserverPool notifies observers asynchronously from workers goroutines.
func (bb *BusBuilder) WithObserverPool(ctx context.Context, workers, bufferSize int) *BusBuilder {
	bb.poolCtx = ctx
	bb.cfg.ObserverWorkers = workers
	bb.cfg.ObserverBuffer = bufferSize
	return bb
}

func (bb *BusBuilder) WithLogger(l *xlog.Logger) *BusBuilder {
	bb.logger = l
	return bb
}

func (bb *BusBuilder) WithClock(c xclock.Clock) *BusBuilder {
	bb.clock = c
	return bb
}

func (bb *BusBuilder) Build() (*MessageBus, error) {
	if err := bb.cfg.Validate(); err != nil {
		return nil, err
	}

	clk := bb.clock
	if clk == nil {
		clk = xclock.Default()
	}
	lg := bb.logger
	if lg == nil {
		lg = xlog.Default()
	}

	// Recovery sits innermost so user middlewares observe the converted error.
	mws := make([]Middleware, 0, len(bb.middlewares)+1)
	if bb.cfg.SlowHandlerThreshold > 0 {
		mws = append(mws, SlowHandlerMiddleware(bb.cfg.SlowHandlerThreshold, lg))
	}
	mws = append(mws, bb.middlewares...)
	base := RecoveryMiddleware()(deliverDirect)

	b := &MessageBus{
		clock:   clk,
		logger:  lg,
		cfg:     bb.cfg,
		deliver: Chain(base, mws...),
		queue:   newMessageQueue(),
	}
	if bb.cfg.ObserverWorkers > 0 {
		ctx := bb.poolCtx
		if ctx == nil {
			ctx = context.Background()
		}
		b.observerPool = NewObserverPool(ctx, bb.cfg.ObserverWorkers, bb.cfg.ObserverBuffer)
	}
	for _, o := range bb.observers {
		b.AddObserver(o)
	}
	return b, nil
}
