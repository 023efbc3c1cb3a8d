package xsail

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Serializer appends fixed-width little-endian fields to a byte buffer.
// Strings are written as a uint16 byte length followed by UTF-8 bytes.
type Serializer struct {
	buf []byte
}

// NewSerializer returns a Serializer with capacity for sizeHint bytes.
func NewSerializer(sizeHint int) *Serializer {
	if sizeHint < headerSize {
		sizeHint = 64
	}
	return &Serializer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded buffer.
func (s *Serializer) Bytes() []byte { return s.buf }

// Len returns the number of bytes written so far.
func (s *Serializer) Len() int { return len(s.buf) }

func (s *Serializer) Uint8(v uint8)   { s.buf = append(s.buf, v) }
func (s *Serializer) Int8(v int8)     { s.buf = append(s.buf, byte(v)) }
func (s *Serializer) Uint16(v uint16) { s.buf = binary.LittleEndian.AppendUint16(s.buf, v) }
func (s *Serializer) Int16(v int16)   { s.Uint16(uint16(v)) }
func (s *Serializer) Uint32(v uint32) { s.buf = binary.LittleEndian.AppendUint32(s.buf, v) }
func (s *Serializer) Int32(v int32)   { s.Uint32(uint32(v)) }
func (s *Serializer) Uint64(v uint64) { s.buf = binary.LittleEndian.AppendUint64(s.buf, v) }
func (s *Serializer) Int64(v int64)   { s.Uint64(uint64(v)) }

func (s *Serializer) Float32(v float32) { s.Uint32(math.Float32bits(v)) }
func (s *Serializer) Float64(v float64) { s.Uint64(math.Float64bits(v)) }

func (s *Serializer) Bool(v bool) {
	if v {
		s.Uint8(1)
		return
	}
	s.Uint8(0)
}

// String writes v as TruncateString(v).
func (s *Serializer) String(v string) {
	v = TruncateString(v)
	s.Uint16(uint16(len(v)))
	s.buf = append(s.buf, v...)
}

// TruncateString cuts v to at most MaxStringLen bytes without splitting a
// rune. Constructors of string-carrying messages apply it so a message equals
// its own decoded copy.
func TruncateString(v string) string {
	if len(v) <= MaxStringLen {
		return v
	}
	cut := MaxStringLen
	for cut > 0 && !utf8.RuneStart(v[cut]) {
		cut--
	}
	return v[:cut]
}

// MaxStringLen is the longest string the uint16 length prefix can describe.
const MaxStringLen = math.MaxUint16

// Deserializer reads the encodings written by Serializer. A failed read
// (short buffer or malformed value) is sticky: it and every later read
// return false and leave their destination untouched.
type Deserializer struct {
	buf    []byte
	off    int
	failed bool
}

// NewDeserializer wraps b without copying it.
func NewDeserializer(b []byte) *Deserializer {
	return &Deserializer{buf: b}
}

// OK reports whether every read so far succeeded.
func (d *Deserializer) OK() bool { return !d.failed }

// Remaining returns the number of unread bytes.
func (d *Deserializer) Remaining() int { return len(d.buf) - d.off }

// Require fails the deserializer unless at least n bytes remain. Decoders
// use it before allocating for a length read from the wire.
func (d *Deserializer) Require(n int) bool {
	if d.failed {
		return false
	}
	if n < 0 || d.Remaining() < n {
		d.failed = true
		return false
	}
	return true
}

func (d *Deserializer) take(n int) ([]byte, bool) {
	if !d.Require(n) {
		return nil, false
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, true
}

func (d *Deserializer) ReadUint8(v *uint8) bool {
	b, ok := d.take(1)
	if ok {
		*v = b[0]
	}
	return ok
}

func (d *Deserializer) ReadInt8(v *int8) bool {
	var u uint8
	if !d.ReadUint8(&u) {
		return false
	}
	*v = int8(u)
	return true
}

func (d *Deserializer) ReadUint16(v *uint16) bool {
	b, ok := d.take(2)
	if ok {
		*v = binary.LittleEndian.Uint16(b)
	}
	return ok
}

func (d *Deserializer) ReadInt16(v *int16) bool {
	var u uint16
	if !d.ReadUint16(&u) {
		return false
	}
	*v = int16(u)
	return true
}

func (d *Deserializer) ReadUint32(v *uint32) bool {
	b, ok := d.take(4)
	if ok {
		*v = binary.LittleEndian.Uint32(b)
	}
	return ok
}

func (d *Deserializer) ReadInt32(v *int32) bool {
	var u uint32
	if !d.ReadUint32(&u) {
		return false
	}
	*v = int32(u)
	return true
}

func (d *Deserializer) ReadUint64(v *uint64) bool {
	b, ok := d.take(8)
	if ok {
		*v = binary.LittleEndian.Uint64(b)
	}
	return ok
}

func (d *Deserializer) ReadInt64(v *int64) bool {
	var u uint64
	if !d.ReadUint64(&u) {
		return false
	}
	*v = int64(u)
	return true
}

func (d *Deserializer) ReadFloat32(v *float32) bool {
	var u uint32
	if !d.ReadUint32(&u) {
		return false
	}
	*v = math.Float32frombits(u)
	return true
}

func (d *Deserializer) ReadFloat64(v *float64) bool {
	var u uint64
	if !d.ReadUint64(&u) {
		return false
	}
	*v = math.Float64frombits(u)
	return true
}

// ReadBool accepts only 0 and 1.
func (d *Deserializer) ReadBool(v *bool) bool {
	var u uint8
	if !d.ReadUint8(&u) {
		return false
	}
	switch u {
	case 0:
		*v = false
	case 1:
		*v = true
	default:
		d.failed = true
		return false
	}
	return true
}

// ReadString fails on a short buffer or bytes that are not valid UTF-8.
func (d *Deserializer) ReadString(v *string) bool {
	var n uint16
	if !d.ReadUint16(&n) {
		return false
	}
	b, ok := d.take(int(n))
	if !ok {
		return false
	}
	if !utf8.Valid(b) {
		d.failed = true
		return false
	}
	*v = string(b)
	return true
}
