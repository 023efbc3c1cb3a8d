package messages

import "github.com/trickstertwo/xsail"

// CompassData is a magnetic heading reading in degrees.
type CompassData struct {
	xsail.Header
	heading float32
	pitch   float32
	roll    float32
}

func NewCompassData(source, destination xsail.NodeID, heading, pitch, roll float32) *CompassData {
	return &CompassData{
		Header:  xsail.NewHeader(xsail.MessageCompassData, source, destination),
		heading: heading,
		pitch:   pitch,
		roll:    roll,
	}
}

func (m *CompassData) Heading() float32 { return m.heading }
func (m *CompassData) Pitch() float32   { return m.pitch }
func (m *CompassData) Roll() float32    { return m.roll }

func (m *CompassData) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Float32(m.heading)
	s.Float32(m.pitch)
	s.Float32(m.roll)
}

func decodeCompassData(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &CompassData{}
	d.ReadFloat32(&m.heading)
	d.ReadFloat32(&m.pitch)
	d.ReadFloat32(&m.roll)
	m.Header = h.Complete(d)
	return m
}

// GPSFix describes the receiver's fix quality.
type GPSFix uint8

const (
	GPSFixNone GPSFix = iota
	GPSFix2D
	GPSFix3D
)

// GPSFixData is the payload of a GPSData message.
type GPSFixData struct {
	Online     bool
	Latitude   float64
	Longitude  float64
	UnixTime   float64
	Speed      float64 // m/s
	Course     float64 // degrees
	Satellites int32
	Mode       GPSFix
}

// GPSData is one position fix.
type GPSData struct {
	xsail.Header
	fix GPSFixData
}

func NewGPSData(source, destination xsail.NodeID, fix GPSFixData) *GPSData {
	return &GPSData{Header: xsail.NewHeader(xsail.MessageGPSData, source, destination), fix: fix}
}

func (m *GPSData) Fix() GPSFixData    { return m.fix }
func (m *GPSData) Online() bool       { return m.fix.Online }
func (m *GPSData) Latitude() float64  { return m.fix.Latitude }
func (m *GPSData) Longitude() float64 { return m.fix.Longitude }
func (m *GPSData) UnixTime() float64  { return m.fix.UnixTime }
func (m *GPSData) Speed() float64     { return m.fix.Speed }
func (m *GPSData) Course() float64    { return m.fix.Course }
func (m *GPSData) Satellites() int32  { return m.fix.Satellites }
func (m *GPSData) Mode() GPSFix       { return m.fix.Mode }

func (m *GPSData) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Bool(m.fix.Online)
	s.Float64(m.fix.Latitude)
	s.Float64(m.fix.Longitude)
	s.Float64(m.fix.UnixTime)
	s.Float64(m.fix.Speed)
	s.Float64(m.fix.Course)
	s.Int32(m.fix.Satellites)
	s.Uint8(uint8(m.fix.Mode))
}

func decodeGPSData(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &GPSData{}
	d.ReadBool(&m.fix.Online)
	d.ReadFloat64(&m.fix.Latitude)
	d.ReadFloat64(&m.fix.Longitude)
	d.ReadFloat64(&m.fix.UnixTime)
	d.ReadFloat64(&m.fix.Speed)
	d.ReadFloat64(&m.fix.Course)
	d.ReadInt32(&m.fix.Satellites)
	var mode uint8
	d.ReadUint8(&mode)
	m.fix.Mode = GPSFix(mode)
	m.Header = h.Complete(d)
	return m
}

// WindData is a raw wind sensor reading, relative to the hull.
type WindData struct {
	xsail.Header
	direction   float32
	speed       float32
	temperature float32
}

func NewWindData(source, destination xsail.NodeID, direction, speed, temperature float32) *WindData {
	return &WindData{
		Header:      xsail.NewHeader(xsail.MessageWindData, source, destination),
		direction:   direction,
		speed:       speed,
		temperature: temperature,
	}
}

func (m *WindData) Direction() float32   { return m.direction }
func (m *WindData) Speed() float32       { return m.speed }
func (m *WindData) Temperature() float32 { return m.temperature }

func (m *WindData) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Float32(m.direction)
	s.Float32(m.speed)
	s.Float32(m.temperature)
}

func decodeWindData(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &WindData{}
	d.ReadFloat32(&m.direction)
	d.ReadFloat32(&m.speed)
	d.ReadFloat32(&m.temperature)
	m.Header = h.Complete(d)
	return m
}

// WindState is the estimated true and apparent wind.
type WindState struct {
	xsail.Header
	trueWindSpeed         float64
	trueWindDirection     float64
	apparentWindSpeed     float64
	apparentWindDirection float64
}

func NewWindState(source, destination xsail.NodeID, tws, twd, aws, awd float64) *WindState {
	return &WindState{
		Header:                xsail.NewHeader(xsail.MessageWindState, source, destination),
		trueWindSpeed:         tws,
		trueWindDirection:     twd,
		apparentWindSpeed:     aws,
		apparentWindDirection: awd,
	}
}

func (m *WindState) TrueWindSpeed() float64         { return m.trueWindSpeed }
func (m *WindState) TrueWindDirection() float64     { return m.trueWindDirection }
func (m *WindState) ApparentWindSpeed() float64     { return m.apparentWindSpeed }
func (m *WindState) ApparentWindDirection() float64 { return m.apparentWindDirection }

func (m *WindState) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Float64(m.trueWindSpeed)
	s.Float64(m.trueWindDirection)
	s.Float64(m.apparentWindSpeed)
	s.Float64(m.apparentWindDirection)
}

func decodeWindState(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &WindState{}
	d.ReadFloat64(&m.trueWindSpeed)
	d.ReadFloat64(&m.trueWindDirection)
	d.ReadFloat64(&m.apparentWindSpeed)
	d.ReadFloat64(&m.apparentWindDirection)
	m.Header = h.Complete(d)
	return m
}

// AISVessel is one target reported by the AIS receiver.
type AISVessel struct {
	MMSI      uint32
	Latitude  float64
	Longitude float64
	COG       float32
	SOG       float32
}

const aisVesselSize = 4 + 8 + 8 + 4 + 4

// AISData lists nearby vessels and the receiver position.
type AISData struct {
	xsail.Header
	vessels []AISVessel
	posLat  float64
	posLon  float64
}

// NewAISData copies vessels; at most 65535 are kept.
func NewAISData(source, destination xsail.NodeID, vessels []AISVessel, posLat, posLon float64) *AISData {
	if len(vessels) > 0xFFFF {
		vessels = vessels[:0xFFFF]
	}
	return &AISData{
		Header:  xsail.NewHeader(xsail.MessageAISData, source, destination),
		vessels: append([]AISVessel(nil), vessels...),
		posLat:  posLat,
		posLon:  posLon,
	}
}

// Vessels returns a copy of the vessel list.
func (m *AISData) Vessels() []AISVessel {
	return append([]AISVessel(nil), m.vessels...)
}

func (m *AISData) PosLat() float64 { return m.posLat }
func (m *AISData) PosLon() float64 { return m.posLon }

func (m *AISData) Serialize(s *xsail.Serializer) {
	m.Header.Serialize(s)
	s.Uint16(uint16(len(m.vessels)))
	for _, v := range m.vessels {
		s.Uint32(v.MMSI)
		s.Float64(v.Latitude)
		s.Float64(v.Longitude)
		s.Float32(v.COG)
		s.Float32(v.SOG)
	}
	s.Float64(m.posLat)
	s.Float64(m.posLon)
}

func decodeAISData(h xsail.Header, d *xsail.Deserializer) xsail.Message {
	m := &AISData{}
	var n uint16
	if d.ReadUint16(&n) && d.Require(int(n)*aisVesselSize) {
		m.vessels = make([]AISVessel, n)
		for i := range m.vessels {
			v := &m.vessels[i]
			d.ReadUint32(&v.MMSI)
			d.ReadFloat64(&v.Latitude)
			d.ReadFloat64(&v.Longitude)
			d.ReadFloat32(&v.COG)
			d.ReadFloat32(&v.SOG)
		}
	}
	d.ReadFloat64(&m.posLat)
	d.ReadFloat64(&m.posLon)
	m.Header = h.Complete(d)
	return m
}
