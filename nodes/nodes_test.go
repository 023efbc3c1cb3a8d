package nodes

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trickstertwo/xsail"
	"github.com/trickstertwo/xsail/messages"
	"github.com/trickstertwo/xsail/xsailtest"
)

const wait = 2 * time.Second

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 10, wrapAngle(370), 1e-9)
	assert.InDelta(t, 350, wrapAngle(-10), 1e-9)
	assert.InDelta(t, 0, wrapAngle(360), 1e-9)
}

func TestBlendAngle(t *testing.T) {
	assert.InDelta(t, 15, blendAngle(0.5, 0, 1, 10, 20), 1e-9)
	// shorter arc across north
	assert.InDelta(t, 0, blendAngle(0.5, 0, 1, 350, 10), 1e-9)
	assert.InDelta(t, 355, blendAngle(0.25, 0, 1, 350, 10), 1e-9)
	assert.InDelta(t, 20, blendAngle(1, 1, 1, 10, 20), 1e-9)
}

func TestStateEstimationWaitsForGPS(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	n, err := NewStateEstimation(bus, DefaultStateEstimationConfig())
	require.NoError(t, err)

	n.ProcessMessage(messages.NewCompassData(xsail.NodeCompass, xsail.NodeNone, 90, 0, 0))
	s, ok := n.Estimate()
	assert.False(t, ok)
	assert.InDelta(t, 90, s.Heading, 1e-6)
}

func TestStateEstimationCourseBlending(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	cfg := DefaultStateEstimationConfig()
	cfg.LowSpeed, cfg.HighSpeed = 1, 3
	n, err := NewStateEstimation(bus, cfg)
	require.NoError(t, err)

	n.ProcessMessage(messages.NewCompassData(xsail.NodeCompass, xsail.NodeNone, 100, 0, 0))
	n.ProcessMessage(messages.NewWaypointData(xsail.NodeWaypoint, xsail.NodeNone,
		messages.Waypoint{ID: 1, Declination: 6}, messages.Waypoint{}))

	for _, tc := range []struct {
		speed, course float64
	}{
		{0.5, 106}, // heading plus declination
		{2, 123},   // halfway between 106 and 140
		{3, 140},   // GPS course
	} {
		n.ProcessMessage(messages.NewGPSData(xsail.NodeGPS, xsail.NodeNone, messages.GPSFixData{
			Online: true, Latitude: 60.1, Longitude: 19.9, Speed: tc.speed, Course: 140,
		}))
		s, ok := n.Estimate()
		require.True(t, ok)
		assert.InDelta(t, 106, s.Heading, 1e-6)
		assert.InDelta(t, tc.course, s.Course, 1e-6, "speed %v", tc.speed)
		assert.Equal(t, 60.1, s.Latitude)
	}
}

func TestStateEstimationClampsThresholds(t *testing.T) {
	cfg := DefaultStateEstimationConfig()
	cfg.LowSpeed, cfg.HighSpeed = 5, 2
	n, err := NewStateEstimation(xsailtest.NewBus(t, nil), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, n.cfg.LowSpeed)

	cfg.LoopTime = 0
	_, err = NewStateEstimation(xsailtest.NewBus(t, nil), cfg)
	assert.Error(t, err)
}

func TestStateEstimationBroadcasts(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	rec := xsailtest.NewRecorder(xsail.NodeLogger)
	bus.RegisterNode(rec, xsail.MessageStateMessage)

	cfg := DefaultStateEstimationConfig()
	cfg.LoopTime, cfg.InitialDelay = 5*time.Millisecond, 0
	n, err := NewStateEstimation(bus, cfg)
	require.NoError(t, err)
	xsailtest.RunBus(t, bus)

	bus.SendMessage(messages.NewGPSData(xsail.NodeGPS, xsail.NodeNone, messages.GPSFixData{
		Online: true, Latitude: 60, Longitude: 20, Speed: 4, Course: 45,
	}))
	xsailtest.Drain(t, bus, wait)

	require.NoError(t, n.Start(t.Context()))
	t.Cleanup(func() { _ = n.StopAndWait() })

	rec.WaitFor(t, 2, wait)
	st := rec.Messages()[0].(*messages.StateMessage)
	assert.Equal(t, xsail.NodeStateEstimation, st.Source())
	assert.True(t, st.Broadcast())
	assert.Equal(t, 45.0, st.Course())
	assert.Equal(t, 4.0, st.Speed())
}

func TestSimulatedSensorsSteer(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	cfg := DefaultSimulatedSensorsConfig()
	n := NewSimulatedSensors(bus, cfg)

	n.ProcessMessage(messages.NewNavigationControl(xsail.NodeLocalNavigation, xsail.NodeNone,
		messages.NavigationSailToWaypoint, 3, 1, false))
	for i := 0; i < 5; i++ {
		n.advance()
	}
	lat, lon, heading := n.Position()
	assert.Equal(t, 3.0, heading)
	assert.Greater(t, lat, cfg.Latitude)
	assert.Greater(t, lon, cfg.Longitude)
}

func TestSimulatedSensorsFeedStateEstimation(t *testing.T) {
	bus := xsailtest.NewBus(t, nil)
	rec := xsailtest.NewRecorder(xsail.NodeLogger)
	bus.RegisterNode(rec, xsail.MessageStateMessage, xsail.MessageCompassData, xsail.MessageGPSData)

	sim := NewSimulatedSensors(bus, SimulatedSensorsConfig{Period: 5 * time.Millisecond, Latitude: 60, Longitude: 20, Speed: 2})
	cfg := DefaultStateEstimationConfig()
	cfg.LoopTime, cfg.InitialDelay = 5*time.Millisecond, 10*time.Millisecond
	est, err := NewStateEstimation(bus, cfg)
	require.NoError(t, err)
	xsailtest.RunBus(t, bus)

	require.NoError(t, sim.Start(t.Context()))
	require.NoError(t, est.Start(t.Context()))
	t.Cleanup(func() {
		_ = sim.StopAndWait()
		_ = est.StopAndWait()
	})

	require.Eventually(t, func() bool { return rec.Count(xsail.MessageStateMessage) > 0 }, wait, time.Millisecond)
	assert.Positive(t, rec.Count(xsail.MessageCompassData))
	assert.Positive(t, rec.Count(xsail.MessageGPSData))
}

func TestLogSink(t *testing.T) {
	out := &syncBuffer{}
	bus := xsailtest.NewBus(t, nil)
	sink := NewLogSink(bus, xsailtest.LoggerTo(out), xsail.MessageStatusReport, xsail.MessageStateMessage)
	xsailtest.RunBus(t, bus)

	bus.SendMessage(messages.NewStatusReport(xsail.NodeGPS, xsail.NodeNone, 1, time.Now(), messages.LevelWarn, "gps", "fix lost"))
	bus.SendMessage(messages.NewStateMessage(xsail.NodeStateEstimation, xsail.NodeNone, 10, 60, 20, 1, 2))
	xsailtest.Drain(t, bus, wait)

	assert.Equal(t, uint64(2), sink.Seen())
	logged := out.String()
	assert.Contains(t, logged, "fix lost")
	assert.Contains(t, logged, `"component":"gps"`)
	assert.Contains(t, logged, "vessel state")
}

type initNode struct {
	xsail.BaseNode
	err error
}

func (n *initNode) ProcessMessage(xsail.Message) {}
func (n *initNode) Init() error                  { return n.err }

func TestInitialise(t *testing.T) {
	out := &syncBuffer{}
	logger := xsailtest.LoggerTo(out)
	boom := errors.New("no serial port")

	ok := &initNode{BaseNode: xsail.NewBaseNode(xsail.NodeCompass, nil)}
	require.NoError(t, Initialise(ok, "Compass", Critical, logger))
	assert.Contains(t, out.String(), "[OK]")

	bad := &initNode{BaseNode: xsail.NewBaseNode(xsail.NodeAIS, nil), err: boom}
	require.NoError(t, Initialise(bad, "AIS", NotCritical, logger))
	assert.Contains(t, out.String(), "[FAILED]")

	err := Initialise(bad, "AIS", Critical, logger)
	require.ErrorIs(t, err, ErrCriticalInit)
	require.ErrorIs(t, err, boom)

	// nodes without Init always succeed
	require.NoError(t, Initialise(xsailtest.NewRecorder(xsail.NodeLogger), "Recorder", Critical, logger))
}
