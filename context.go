package xsail

import (
	"context"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

// ctxKey is the base for all context keys in xsail (prevents collisions).
type ctxKey string

const (
	loggerCtxKey ctxKey = "xsail:logger"
	clockCtxKey  ctxKey = "xsail:clock"
	nodeCtxKey   ctxKey = "xsail:node"
)

func injectLogger(ctx context.Context, l *xlog.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerCtxKey, l)
}

// LoggerFromContext returns the logger attached to an active node loop.
func LoggerFromContext(ctx context.Context) (*xlog.Logger, bool) {
	if v := ctx.Value(loggerCtxKey); v != nil {
		if l, ok := v.(*xlog.Logger); ok && l != nil {
			return l, true
		}
	}
	return nil, false
}

func injectClock(ctx context.Context, c xclock.Clock) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, clockCtxKey, c)
}

// ClockFromContext returns the clock attached to an active node loop.
func ClockFromContext(ctx context.Context) (xclock.Clock, bool) {
	if v := ctx.Value(clockCtxKey); v != nil {
		if c, ok := v.(xclock.Clock); ok && c != nil {
			return c, true
		}
	}
	return nil, false
}

// NodeIDFromContext returns the identity of the node owning the loop.
func NodeIDFromContext(ctx context.Context) (NodeID, bool) {
	id, ok := ctx.Value(nodeCtxKey).(NodeID)
	return id, ok
}

// InjectAll attaches the logger, clock and node identity used by loops.
func InjectAll(ctx context.Context, id NodeID, logger *xlog.Logger, clock xclock.Clock) context.Context {
	ctx = injectLogger(ctx, logger)
	ctx = injectClock(ctx, clock)
	return context.WithValue(ctx, nodeCtxKey, id)
}
