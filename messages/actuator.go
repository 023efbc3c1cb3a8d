package messages

import "github.com/trickstertwo/xsail"

// ActuatorControl sets the servo targets, angles in degrees.
type ActuatorControl struct {
	xsail.Header
	wingsailServoAngle     float32
	rudderAngle            float32
	windvaneSelfSteeringOn bool
}

func NewActuatorControl(source, destination xsail.NodeID, wingsail, rudder float32, windvane bool) *ActuatorControl {
	return &ActuatorControl{
		Header:                 xsail.NewHeader(xsail.MessageActuatorControl, source, destination),
		wingsailServoAngle:     wingsail,
		rudderAngle:            rudder,
		windvaneSelfSteeringOn: windvane,
	}
}

func (m *ActuatorControl) WingsailServoAngle() float32  { return m.wingsailServoAngle }
func (m *ActuatorControl) RudderAngle() float32         { return m.rudderAngle }
func (m *ActuatorControl) WindvaneSelfSteeringOn() bool { return m.windvaneSelfSteeringOn }

func (m *ActuatorControl) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Float32(m.wingsailServoAngle)
	s.Float32(m.rudderAngle)
	s.Bool(m.windvaneSelfSteeringOn)
}

func decodeActuatorControl(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &ActuatorControl{}
	d.ReadFloat32(&m.wingsailServoAngle)
	d.ReadFloat32(&m.rudderAngle)
	d.ReadBool(&m.windvaneSelfSteeringOn)
	m.Header = h.Complete(d)
	return m
}

// ActuatorFeedback reports measured actuator positions.
type ActuatorFeedback struct {
	xsail.Header
	wingsailFeedback          float32
	rudderFeedback            float32
	windvaneSelfSteeringAngle float32
	radioControllerOn         bool
}

func NewActuatorFeedback(source, destination xsail.NodeID, wingsail, rudder, windvane float32, radio bool) *ActuatorFeedback {
	return &ActuatorFeedback{
		Header:                    xsail.NewHeader(xsail.MessageActuatorFeedback, source, destination),
		wingsailFeedback:          wingsail,
		rudderFeedback:            rudder,
		windvaneSelfSteeringAngle: windvane,
		radioControllerOn:         radio,
	}
}

func (m *ActuatorFeedback) WingsailFeedback() float32          { return m.wingsailFeedback }
func (m *ActuatorFeedback) RudderFeedback() float32            { return m.rudderFeedback }
func (m *ActuatorFeedback) WindvaneSelfSteeringAngle() float32 { return m.windvaneSelfSteeringAngle }
func (m *ActuatorFeedback) RadioControllerOn() bool            { return m.radioControllerOn }

func (m *ActuatorFeedback) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Float32(m.wingsailFeedback)
	s.Float32(m.rudderFeedback)
	s.Float32(m.windvaneSelfSteeringAngle)
	s.Bool(m.radioControllerOn)
}

func decodeActuatorFeedback(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &ActuatorFeedback{}
	d.ReadFloat32(&m.wingsailFeedback)
	d.ReadFloat32(&m.rudderFeedback)
	d.ReadFloat32(&m.windvaneSelfSteeringAngle)
	d.ReadBool(&m.radioControllerOn)
	m.Header = h.Complete(d)
	return m
}
