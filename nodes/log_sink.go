package nodes

import (
	"sync/atomic"

	"github.com/trickstertwo/xlog"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/messages"
)

// LogSink writes every message it is subscribed to through xlog.
// StatusReports keep their own level; everything else logs at debug.
type LogSink struct {
	xsail.BaseNode
	logger *xlog.Logger
	seen   atomic.Uint64
}

// NewLogSink registers the sink for types. A nil logger uses xlog.Default.
func NewLogSink(bus Bus, logger *xlog.Logger, types ...xsail.MessageType) *LogSink {
	if logger == nil {
		logger = xlog.Default()
	}
	n := &LogSink{
		BaseNode: xsail.NewBaseNode(xsail.NodeLogger, bus),
		logger:   logger.With(xlog.Str("node", xsail.NodeLogger.String())),
	}
	bus.RegisterNode(n, types...)
	return n
}

// Seen counts messages processed.
func (n *LogSink) Seen() uint64 { return n.seen.Load() }

func (n *LogSink) ProcessMessage(msg xsail.Message) {
	n.seen.Add(1)
	l := n.logger.With(
		xlog.Str("type", msg.Type().String()),
		xlog.Str("source", msg.Source().String()),
	)

	switch m := msg.(type) {
	case *messages.StatusReport:
		l = l.With(xlog.Str("component", m.Component()))
		switch m.Level() {
		case messages.LevelError:
			l.Error().Msg(m.Text())
		case messages.LevelWarn:
			l.Warn().Msg(m.Text())
		case messages.LevelInfo:
			l.Info().Msg(m.Text())
		default:
			l.Debug().Msg(m.Text())
		}
	case *messages.StateMessage:
		l.Debug().
			Float64("heading", float64(m.Heading())).
			Float64("lat", m.Latitude()).
			Float64("lon", m.Longitude()).
			Float64("speed", m.Speed()).
			Float64("course", m.Course()).
			Msg("vessel state")
	case *messages.WindState:
		l.Debug().
			Float64("tws", m.TrueWindSpeed()).
			Float64("twd", m.TrueWindDirection()).
			Msg("wind state")
	default:
		l.Debug().Msg("message")
	}
}
