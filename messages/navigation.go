package messages

import "github.com/trickstertwo/xsail"

// DataRequest asks the destination node to publish its current data.
type DataRequest struct {
	xsail.Header
}

func NewDataRequest(source, destination xsail.NodeID) *DataRequest {
	return &DataRequest{Header: xsail.NewHeader(xsail.MessageDataRequest, source, destination)}
}

func decodeDataRequest(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	return &DataRequest{Header: h.Complete(d)}
}

// ServerWaypointsReceived announces that a new waypoint list was stored.
type ServerWaypointsReceived struct {
	xsail.Header
}

func NewServerWaypointsReceived(source, destination xsail.NodeID) *ServerWaypointsReceived {
	return &ServerWaypointsReceived{Header: xsail.NewHeader(xsail.MessageServerWaypointsReceived, source, destination)}
}

func decodeServerWaypointsReceived(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	return &ServerWaypointsReceived{Header: h.Complete(d)}
}

// StateMessage is the estimated vessel state. Angles are degrees in [0, 360)
// clockwise from north, speed is m/s.
type StateMessage struct {
	xsail.Header
	heading   float32
	latitude  float64
	longitude float64
	course    float64
	speed     float64
}

func NewStateMessage(source, destination xsail.NodeID, heading float32, lat, lon, speed, course float64) *StateMessage {
	return &StateMessage{
		Header:    xsail.NewHeader(xsail.MessageStateMessage, source, destination),
		heading:   heading,
		latitude:  lat,
		longitude: lon,
		course:    course,
		speed:     speed,
	}
}

func (m *StateMessage) Heading() float32   { return m.heading }
func (m *StateMessage) Latitude() float64  { return m.latitude }
func (m *StateMessage) Longitude() float64 { return m.longitude }
func (m *StateMessage) Course() float64    { return m.course }
func (m *StateMessage) Speed() float64     { return m.speed }

func (m *StateMessage) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Float32(m.heading)
	s.Float64(m.latitude)
	s.Float64(m.longitude)
	s.Float64(m.course)
	s.Float64(m.speed)
}

func decodeStateMessage(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &StateMessage{}
	d.ReadFloat32(&m.heading)
	d.ReadFloat64(&m.latitude)
	d.ReadFloat64(&m.longitude)
	d.ReadFloat64(&m.course)
	d.ReadFloat64(&m.speed)
	m.Header = h.Complete(d)
	return m
}

// Waypoint is one leg end as carried by WaypointData. StayTime is seconds.
type Waypoint struct {
	ID          int32
	Longitude   float64
	Latitude    float64
	Declination int32
	Radius      int32
	StayTime    int32
}

// WaypointData carries the next waypoint and the one the vessel comes from.
// The previous waypoint has no stay time on the wire.
type WaypointData struct {
	xsail.Header
	next Waypoint
	prev Waypoint
}

func NewWaypointData(source, destination xsail.NodeID, next, prev Waypoint) *WaypointData {
	prev.StayTime = 0
	return &WaypointData{
		Header: xsail.NewHeader(xsail.MessageWaypointData, source, destination),
		next:   next,
		prev:   prev,
	}
}

func (m *WaypointData) Next() Waypoint           { return m.next }
func (m *WaypointData) Prev() Waypoint           { return m.prev }
func (m *WaypointData) NextDeclination() float64 { return float64(m.next.Declination) }

func (m *WaypointData) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Int32(m.next.ID)
	s.Float64(m.next.Longitude)
	s.Float64(m.next.Latitude)
	s.Int32(m.next.Declination)
	s.Int32(m.next.Radius)
	s.Int32(m.next.StayTime)
	s.Int32(m.prev.ID)
	s.Float64(m.prev.Longitude)
	s.Float64(m.prev.Latitude)
	s.Int32(m.prev.Declination)
	s.Int32(m.prev.Radius)
}

func decodeWaypointData(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &WaypointData{}
	d.ReadInt32(&m.next.ID)
	d.ReadFloat64(&m.next.Longitude)
	d.ReadFloat64(&m.next.Latitude)
	d.ReadInt32(&m.next.Declination)
	d.ReadInt32(&m.next.Radius)
	d.ReadInt32(&m.next.StayTime)
	d.ReadInt32(&m.prev.ID)
	d.ReadFloat64(&m.prev.Longitude)
	d.ReadFloat64(&m.prev.Latitude)
	d.ReadInt32(&m.prev.Declination)
	d.ReadInt32(&m.prev.Radius)
	m.Header = h.Complete(d)
	return m
}

// CourseData is the course calculation towards the next waypoint.
type CourseData struct {
	xsail.Header
	trueWindDirection  float32
	distanceToWaypoint float32
	bearingToWaypoint  int16
}

func NewCourseData(source, destination xsail.NodeID, twd, distance float32, bearing int16) *CourseData {
	return &CourseData{
		Header:             xsail.NewHeader(xsail.MessageCourseData, source, destination),
		trueWindDirection:  twd,
		distanceToWaypoint: distance,
		bearingToWaypoint:  bearing,
	}
}

func (m *CourseData) TrueWindDirection() float32  { return m.trueWindDirection }
func (m *CourseData) DistanceToWaypoint() float32 { return m.distanceToWaypoint }
func (m *CourseData) BearingToWaypoint() int16    { return m.bearingToWaypoint }

func (m *CourseData) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Float32(m.trueWindDirection)
	s.Float32(m.distanceToWaypoint)
	s.Int16(m.bearingToWaypoint)
}

func decodeCourseData(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &CourseData{}
	d.ReadFloat32(&m.trueWindDirection)
	d.ReadFloat32(&m.distanceToWaypoint)
	d.ReadInt16(&m.bearingToWaypoint)
	m.Header = h.Complete(d)
	return m
}

// NavigationState is the mode selected by the navigation layer.
type NavigationState uint8

const (
	NavigationSailToWaypoint NavigationState = iota
	NavigationLoiter
	NavigationMoveToPosition
	NavigationStationKeeping
)

// NavigationControl is the navigation layer's order to the low level controller.
type NavigationControl struct {
	xsail.Header
	state                  NavigationState
	courseToSteer          float32
	targetSpeed            float32
	windvaneSelfSteeringOn bool
}

func NewNavigationControl(source, destination xsail.NodeID, state NavigationState, courseToSteer, targetSpeed float32, windvane bool) *NavigationControl {
	return &NavigationControl{
		Header:                 xsail.NewHeader(xsail.MessageNavigationControl, source, destination),
		state:                  state,
		courseToSteer:          courseToSteer,
		targetSpeed:            targetSpeed,
		windvaneSelfSteeringOn: windvane,
	}
}

func (m *NavigationControl) State() NavigationState       { return m.state }
func (m *NavigationControl) CourseToSteer() float32       { return m.courseToSteer }
func (m *NavigationControl) TargetSpeed() float32         { return m.targetSpeed }
func (m *NavigationControl) WindvaneSelfSteeringOn() bool { return m.windvaneSelfSteeringOn }

func (m *NavigationControl) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Uint8(uint8(m.state))
	s.Float32(m.courseToSteer)
	s.Float32(m.targetSpeed)
	s.Bool(m.windvaneSelfSteeringOn)
}

func decodeNavigationControl(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &NavigationControl{}
	var state uint8
	d.ReadUint8(&state)
	m.state = NavigationState(state)
	d.ReadFloat32(&m.courseToSteer)
	d.ReadFloat32(&m.targetSpeed)
	d.ReadBool(&m.windvaneSelfSteeringOn)
	m.Header = h.Complete(d)
	return m
}
