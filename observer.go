package xsail

import (
	"github.com/trickstertwo/xlog"
)

// ObserverFunc is an Adapter that lets a plain function satisfy Observer.
type ObserverFunc func(e Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// LoggingObserver is an Adapter that emits bus events via xlog.
type LoggingObserver struct {
	Logger *xlog.Logger
}

func (o LoggingObserver) OnEvent(e Event) {
	if o.Logger == nil {
		return
	}
	ev := o.Logger.With(
		xlog.Str("event", string(e.Type)),
		xlog.Str("type", e.MessageType.String()),
		xlog.Str("source", e.Source.String()),
		xlog.Str("destination", e.Destination.String()),
	)
	switch e.Type {
	case HandlerFault:
		ev.Warn().Str("node", e.Node.String()).Err(e.Err).Msg("xsail event")
	case BusStarted, BusStopped:
		ev.Info().Msg("xsail event")
	default:
		if e.Duration > 0 {
			ev = ev.With(xlog.Dur("duration", e.Duration))
		}
		ev.Debug().Msg("xsail event")
	}
}
