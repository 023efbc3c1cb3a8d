package messages

import (
	"time"

	"github.com/trickstertwo/xsail"
)

// Level is the severity of a StatusReport.
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// StatusReport is a free-text health line from a node, relayed to the
// logging collaborator.
type StatusReport struct {
	xsail.Header
	sequence  uint64
	timestamp int64
	level     Level
	component string
	text      string
}

// NewStatusReport truncates component and text to 65535 bytes each.
func NewStatusReport(source, destination xsail.NodeID, seq uint64, at time.Time, level Level, component, text string) *StatusReport {
	return &StatusReport{
		Header:    xsail.NewHeader(xsail.MessageStatusReport, source, destination),
		sequence:  seq,
		timestamp: at.UnixNano(),
		level:     level,
		component: xsail.TruncateString(component),
		text:      xsail.TruncateString(text),
	}
}

func (m *StatusReport) Sequence() uint64     { return m.sequence }
func (m *StatusReport) Timestamp() time.Time { return time.Unix(0, m.timestamp) }
func (m *StatusReport) Level() Level         { return m.level }
func (m *StatusReport) Component() string    { return m.component }
func (m *StatusReport) Text() string         { return m.text }

func (m *StatusReport) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Uint64(m.sequence)
	s.Int64(m.timestamp)
	s.Int8(int8(m.level))
	s.String(m.component)
	s.String(m.text)
}

func decodeStatusReport(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &StatusReport{}
	d.ReadUint64(&m.sequence)
	d.ReadInt64(&m.timestamp)
	var lvl int8
	d.ReadInt8(&lvl)
	m.level = Level(lvl)
	d.ReadString(&m.component)
	d.ReadString(&m.text)
	m.Header = h.Complete(d)
	return m
}
