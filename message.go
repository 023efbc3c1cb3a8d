package xsail

// Message is a typed, addressed event travelling the bus. Implementations are
// immutable after construction: the header and payload are set once and only
// read afterwards, so a message can be handed across goroutines freely.
type Message interface {
	// Type identifies the payload schema.
	Type() MessageType
	// Source is the producing node, or NodeNone.
	Source() NodeID
	// Destination is the single intended recipient, or NodeNone for broadcast.
	Destination() NodeID
	// Valid reports false when decoding failed to populate the payload.
	Valid() bool
	// Serialize appends the header followed by the payload fields.
	Serialize(s *Serializer)
}

// Header carries the fields every message shares. Concrete messages embed it.
type Header struct {
	msgType     MessageType
	source      NodeID
	destination NodeID
	valid       bool
}

// NewHeader returns a valid header.
func NewHeader(t MessageType, source, destination NodeID) Header {
	return Header{msgType: t, source: source, destination: destination, valid: true}
}

// ReadHeader reads type, source and destination. The returned header is
// invalid when the buffer is too short.
func ReadHeader(d *Deserializer) Header {
	var t, src, dst uint16
	d.ReadUint16(&t)
	d.ReadUint16(&src)
	d.ReadUint16(&dst)
	return Header{
		msgType:     MessageType(t),
		source:      NodeID(src),
		destination: NodeID(dst),
		valid:       d.OK(),
	}
}

func (h Header) Type() MessageType       { return h.msgType }
func (h Header) Source() NodeID          { return h.source }
func (h Header) Destination() NodeID     { return h.destination }
func (h Header) Valid() bool             { return h.valid }
func (h Header) Broadcast() bool         { return h.destination == NodeNone }
func (h Header) Serialize(s *Serializer) { h.write(s) }

// Complete returns h marked invalid if any read on d has failed. Decoders
// call it after reading the payload.
func (h Header) Complete(d *Deserializer) Header {
	h.valid = h.valid && d.OK()
	return h
}

func (h Header) write(s *Serializer) {
	s.Uint16(uint16(h.msgType))
	s.Uint16(uint16(h.source))
	s.Uint16(uint16(h.destination))
}

// headerSize is the encoded size of Header.
const headerSize = 6
