package nodes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/messages"
)

// StateEstimationConfig tunes a StateEstimation node.
type StateEstimationConfig struct {
	// LoopTime between StateMessages (default 500ms).
	LoopTime time.Duration
	// InitialDelay before the first estimate, letting sensors report in
	// (default 2s).
	InitialDelay time.Duration
	// Below LowSpeed (m/s) the course is the heading, at or above HighSpeed
	// it is the GPS course, and in between the two are blended.
	LowSpeed  float64
	HighSpeed float64
}

func DefaultStateEstimationConfig() StateEstimationConfig {
	return StateEstimationConfig{
		LoopTime:     500 * time.Millisecond,
		InitialDelay: 2 * time.Second,
		LowSpeed:     0,
		HighSpeed:    1,
	}
}

func (c StateEstimationConfig) Validate() error {
	if c.LoopTime <= 0 {
		return fmt.Errorf("config: loop_time must be > 0, got %v", c.LoopTime)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("config: initial_delay must be >= 0, got %v", c.InitialDelay)
	}
	if c.LowSpeed < 0 || c.HighSpeed < 0 {
		return fmt.Errorf("config: speed thresholds must be >= 0")
	}
	return nil
}

// VesselState is the latest estimate.
type VesselState struct {
	Heading   float64
	Latitude  float64
	Longitude float64
	Speed     float64
	Course    float64
}

// StateEstimation combines compass, GPS and waypoint declination into a
// broadcast StateMessage at a fixed cadence. Nothing is sent while the GPS
// is offline.
type StateEstimation struct {
	*xsail.ActiveNode
	cfg StateEstimationConfig

	mu          sync.Mutex
	compass     float64
	gps         messages.GPSFixData
	declination float64
}

// NewStateEstimation registers the node for CompassData, GPSData and
// WaypointData. A LowSpeed above HighSpeed is clamped down to HighSpeed.
func NewStateEstimation(bus Bus, cfg StateEstimationConfig) (*StateEstimation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.LowSpeed > cfg.HighSpeed {
		cfg.LowSpeed = cfg.HighSpeed
	}
	n := &StateEstimation{
		ActiveNode: xsail.NewActiveNode(xsail.NodeStateEstimation, bus),
		cfg:        cfg,
	}
	bus.RegisterNode(n, xsail.MessageCompassData, xsail.MessageGPSData, xsail.MessageWaypointData)
	return n, nil
}

func (n *StateEstimation) Init() error { return nil }

// Start runs the estimation loop until ctx ends or Stop is called.
func (n *StateEstimation) Start(ctx context.Context) error {
	return n.RunLoopContext(ctx, xsail.Every(n.cfg.LoopTime, n.cfg.InitialDelay, n.step))
}

func (n *StateEstimation) ProcessMessage(msg xsail.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	switch m := msg.(type) {
	case *messages.CompassData:
		n.compass = float64(m.Heading())
	case *messages.GPSData:
		n.gps = m.Fix()
	case *messages.WaypointData:
		n.declination = m.NextDeclination()
	}
}

// Estimate returns the current estimate; ok is false while the GPS is offline.
func (n *StateEstimation) Estimate() (s VesselState, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	s.Heading = wrapAngle(n.compass + n.declination)
	if !n.gps.Online {
		return s, false
	}
	s.Latitude = n.gps.Latitude
	s.Longitude = n.gps.Longitude
	s.Speed = n.gps.Speed

	switch {
	case s.Speed < n.cfg.LowSpeed:
		s.Course = s.Heading
	case s.Speed >= n.cfg.HighSpeed:
		s.Course = n.gps.Course
	default:
		s.Course = blendAngle(s.Speed, n.cfg.LowSpeed, n.cfg.HighSpeed, s.Heading, n.gps.Course)
	}
	return s, true
}

func (n *StateEstimation) step(context.Context) error {
	s, ok := n.Estimate()
	if !ok {
		return nil
	}
	n.Send(messages.NewStateMessage(n.NodeID(), xsail.NodeNone,
		float32(s.Heading), s.Latitude, s.Longitude, s.Speed, s.Course))
	return nil
}
