package messages

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trickstertwo/xsail"
)

var allowAll = cmp.AllowUnexported(
	xsail.Header{},
	DataRequest{}, ServerWaypointsReceived{}, StateMessage{}, WaypointData{},
	CourseData{}, NavigationControl{}, CompassData{}, GPSData{}, WindData{},
	WindState{}, AISData{}, ActuatorControl{}, ActuatorFeedback{}, StatusReport{},
)

func samples() []xsail.Message {
	return []xsail.Message{
		NewDataRequest(xsail.NodeLogger, xsail.NodeGPS),
		NewServerWaypointsReceived(xsail.NodeHTTPSync, xsail.NodeNone),
		NewStateMessage(xsail.NodeStateEstimation, xsail.NodeNone, 187.5, 60.1032, 19.9224, 2.5, 190.25),
		NewWaypointData(xsail.NodeWaypoint, xsail.NodeNone,
			Waypoint{ID: 7, Longitude: 19.92, Latitude: 60.10, Declination: 6, Radius: 15, StayTime: 30},
			Waypoint{ID: 6, Longitude: 19.91, Latitude: 60.09, Declination: 6, Radius: 15}),
		NewCourseData(xsail.NodeLineFollow, xsail.NodeNone, 270, 1234.5, -45),
		NewNavigationControl(xsail.NodeLocalNavigation, xsail.NodeLowLevelController, NavigationLoiter, 93.5, 1.5, true),
		NewCompassData(xsail.NodeCompass, xsail.NodeNone, 123.4, -2.5, 4.25),
		NewGPSData(xsail.NodeGPS, xsail.NodeNone, GPSFixData{
			Online: true, Latitude: 60.1, Longitude: 19.9, UnixTime: 1.7e9, Speed: 3.2,
			Course: 45, Satellites: 9, Mode: GPSFix3D,
		}),
		NewWindData(xsail.NodeWindSensor, xsail.NodeNone, 310, 6.5, 14.2),
		NewWindState(xsail.NodeStateEstimation, xsail.NodeNone, 7.1, 305, 8.3, 20.5),
		NewAISData(xsail.NodeAIS, xsail.NodeNone, []AISVessel{
			{MMSI: 230123456, Latitude: 60.2, Longitude: 19.8, COG: 180, SOG: 12.5},
			{MMSI: 265000111, Latitude: 60.0, Longitude: 20.1, COG: 15, SOG: 0.3},
		}, 60.1, 19.9),
		NewActuatorControl(xsail.NodeLowLevelController, xsail.NodeActuator, 12.5, -20, false),
		NewActuatorFeedback(xsail.NodeActuator, xsail.NodeNone, 12, -19.5, 3, true),
		NewStatusReport(xsail.NodeSimulator, xsail.NodeLogger, 42, time.Unix(1700000000, 123), LevelWarn, "simulator", "låg batterinivå"),
	}
}

func TestRoundTripAllVariants(t *testing.T) {
	seen := map[xsail.MessageType]bool{}
	for _, m := range samples() {
		t.Run(m.Type().String(), func(t *testing.T) {
			got, err := xsail.Decode(xsail.Encode(m))
			require.NoError(t, err)
			require.True(t, got.Valid())
			if diff := cmp.Diff(m, got, allowAll); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
		seen[m.Type()] = true
	}
	assert.Len(t, seen, 14)
}

func TestStatusReportLongTextRoundTrips(t *testing.T) {
	m := NewStatusReport(xsail.NodeSimulator, xsail.NodeLogger, 7, time.Unix(1700000000, 0), LevelError,
		strings.Repeat("c", 70000), strings.Repeat("a", 69999)+"é")
	assert.Len(t, m.Component(), xsail.MaxStringLen)
	assert.Len(t, m.Text(), xsail.MaxStringLen)

	got, err := xsail.Decode(xsail.Encode(m))
	require.NoError(t, err)
	require.True(t, got.Valid())
	if diff := cmp.Diff(m, got, allowAll); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestTruncatedPayloadIsInvalid(t *testing.T) {
	for _, m := range samples() {
		b := xsail.Encode(m)
		for n := 6; n < len(b); n++ {
			got, err := xsail.Decode(b[:n])
			require.NoError(t, err, "%s truncated to %d", m.Type(), n)
			assert.False(t, got.Valid(), "%s truncated to %d", m.Type(), n)
			assert.Equal(t, m.Type(), got.Type())
		}
	}
}

func TestTruncatedHeader(t *testing.T) {
	b := xsail.Encode(NewCompassData(xsail.NodeCompass, xsail.NodeNone, 1, 2, 3))
	for n := 0; n < 6; n++ {
		_, err := xsail.Decode(b[:n])
		assert.ErrorIs(t, err, xsail.ErrShortBuffer)
	}
}

func TestUnknownType(t *testing.T) {
	s := xsail.NewSerializer(8)
	s.Uint16(999)
	s.Uint16(0)
	s.Uint16(0)
	_, err := xsail.Decode(s.Bytes())
	assert.ErrorIs(t, err, xsail.ErrUnknownMessageType)
}

func TestStateMessageWireOrder(t *testing.T) {
	m := NewStateMessage(xsail.NodeStateEstimation, xsail.NodeNone, 1, 2, 3, 5, 4)
	d := xsail.NewDeserializer(xsail.Encode(m))
	h := xsail.ReadHeader(d)
	require.True(t, h.Valid())
	assert.Equal(t, xsail.MessageStateMessage, h.Type())

	var heading float32
	var lat, lon, course, speed float64
	require.True(t, d.ReadFloat32(&heading))
	require.True(t, d.ReadFloat64(&lat))
	require.True(t, d.ReadFloat64(&lon))
	require.True(t, d.ReadFloat64(&course))
	require.True(t, d.ReadFloat64(&speed))
	assert.Equal(t, []float64{2, 3, 4, 5}, []float64{lat, lon, course, speed})
	assert.Zero(t, d.Remaining())
}

func TestAISCountBeyondBuffer(t *testing.T) {
	s := xsail.NewSerializer(16)
	xsail.NewHeader(xsail.MessageAISData, xsail.NodeAIS, xsail.NodeNone).Serialize(s)
	s.Uint16(0xFFFF)
	got, err := xsail.Decode(s.Bytes())
	require.NoError(t, err)
	assert.False(t, got.Valid())
	assert.Empty(t, got.(*AISData).Vessels())
}

func TestBadBoolIsInvalid(t *testing.T) {
	b := xsail.Encode(NewActuatorControl(xsail.NodeLowLevelController, xsail.NodeNone, 1, 2, true))
	b[len(b)-1] = 2
	got, err := xsail.Decode(b)
	require.NoError(t, err)
	assert.False(t, got.Valid())
}

func TestAISVesselsAreCopied(t *testing.T) {
	in := []AISVessel{{MMSI: 1}}
	m := NewAISData(xsail.NodeAIS, xsail.NodeNone, in, 0, 0)
	in[0].MMSI = 2
	m.Vessels()[0].MMSI = 3
	assert.Equal(t, uint32(1), m.Vessels()[0].MMSI)
}
