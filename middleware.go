package xsail

import (
	"context"
	"time"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

// Deliver hands one message to one node. The bus's innermost Deliver calls
// ProcessMessage; middlewares wrap it.
type Deliver func(ctx context.Context, n Node, msg Message) error

// Middleware composes processing concerns around a Deliver.
type Middleware func(next Deliver) Deliver

func deliverDirect(_ context.Context, n Node, msg Message) error {
	n.ProcessMessage(msg)
	return nil
}

// RecoveryMiddleware turns a panic in the wrapped delivery into a
// *HandlerPanicError.
func RecoveryMiddleware() Middleware {
	return func(next Deliver) Deliver {
		return func(ctx context.Context, n Node, msg Message) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &HandlerPanicError{Node: n.NodeID(), Value: r}
				}
			}()
			return next(ctx, n, msg)
		}
	}
}

// SlowHandlerMiddleware warns when a node takes longer than threshold to
// process a message. The handler is never interrupted: deliveries stay
// sequential on the dispatch goroutine.
func SlowHandlerMiddleware(threshold time.Duration, logger *xlog.Logger) Middleware {
	if threshold <= 0 {
		return func(next Deliver) Deliver { return next }
	}
	return func(next Deliver) Deliver {
		return func(ctx context.Context, n Node, msg Message) error {
			clk, ok := ClockFromContext(ctx)
			if !ok {
				clk = xclock.Default()
			}
			lg := logger
			if lg == nil {
				if lg, ok = LoggerFromContext(ctx); !ok {
					lg = xlog.Default()
				}
			}
			start := clk.Now()
			err := next(ctx, n, msg)
			if d := clk.Since(start); d > threshold {
				lg.Warn().
					Str("node", n.NodeID().String()).
					Str("type", msg.Type().String()).
					Dur("duration", d).
					Dur("threshold", threshold).
					Msg("xsail: slow message handler")
			}
			return err
		}
	}
}

// Chain composes middlewares around d in order: the first middleware is the
// outermost.
func Chain(d Deliver, mws ...Middleware) Deliver {
	wrapped := d
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		wrapped = mws[i](wrapped)
	}
	return wrapped
}
