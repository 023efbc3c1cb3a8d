package nodes

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/trickstertwo/xclock"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/messages"
)

const (
	simStartLat = 60.098933
	simStartLon = 19.921028
	simStep     = 0.0002 // degrees per tick at full cos
)

// SimulatedSensorsConfig tunes SimulatedSensors.
type SimulatedSensorsConfig struct {
	Period    time.Duration
	Latitude  float64
	Longitude float64
	Heading   float64
	Speed     float64 // reported GPS speed, m/s
}

func DefaultSimulatedSensorsConfig() SimulatedSensorsConfig {
	return SimulatedSensorsConfig{
		Period:    time.Second,
		Latitude:  simStartLat,
		Longitude: simStartLon,
		Speed:     1.5,
	}
}

// SimulatedSensors stands in for the compass and GPS drivers. Each tick it
// turns one degree towards the last NavigationControl course, advances the
// position along that course and broadcasts CompassData and GPSData.
type SimulatedSensors struct {
	*xsail.ActiveNode
	cfg SimulatedSensorsConfig

	mu            sync.Mutex
	lat, lon      float64
	heading       float64
	courseToSteer float64
}

// NewSimulatedSensors registers the node for NavigationControl.
func NewSimulatedSensors(bus Bus, cfg SimulatedSensorsConfig) *SimulatedSensors {
	if cfg.Period <= 0 {
		cfg.Period = time.Second
	}
	n := &SimulatedSensors{
		ActiveNode:    xsail.NewActiveNode(xsail.NodeSimulator, bus),
		cfg:           cfg,
		lat:           cfg.Latitude,
		lon:           cfg.Longitude,
		heading:       cfg.Heading,
		courseToSteer: cfg.Heading,
	}
	bus.RegisterNode(n, xsail.MessageNavigationControl)
	return n
}

func (n *SimulatedSensors) Start(ctx context.Context) error {
	return n.RunLoopContext(ctx, xsail.Every(n.cfg.Period, 0, n.step))
}

func (n *SimulatedSensors) ProcessMessage(msg xsail.Message) {
	if m, ok := msg.(*messages.NavigationControl); ok {
		n.mu.Lock()
		n.courseToSteer = float64(m.CourseToSteer())
		n.mu.Unlock()
	}
}

// Position returns the simulated latitude, longitude and heading.
func (n *SimulatedSensors) Position() (lat, lon, heading float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lat, n.lon, n.heading
}

// advance moves the model one tick.
func (n *SimulatedSensors) advance() {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch d := n.courseToSteer - n.heading; {
	case d >= 1:
		n.heading++
	case d <= -1:
		n.heading--
	default:
		n.heading = n.courseToSteer
	}
	rad := n.courseToSteer * math.Pi / 180
	n.lat += math.Cos(rad) * simStep
	n.lon += math.Sin(rad) * simStep
}

func (n *SimulatedSensors) step(ctx context.Context) error {
	n.advance()
	lat, lon, heading := n.Position()

	clock, ok := xsail.ClockFromContext(ctx)
	if !ok {
		clock = xclock.Default()
	}
	now := clock.Now()

	n.Send(messages.NewCompassData(n.NodeID(), xsail.NodeNone, float32(heading), 0, 0))
	n.Send(messages.NewGPSData(n.NodeID(), xsail.NodeNone, messages.GPSFixData{
		Online:     true,
		Latitude:   lat,
		Longitude:  lon,
		UnixTime:   float64(now.UnixNano()) / 1e9,
		Speed:      n.cfg.Speed,
		Course:     wrapAngle(heading),
		Satellites: 8,
		Mode:       messages.GPSFix3D,
	}))
	return nil
}
