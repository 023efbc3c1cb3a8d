package xsail

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializerLittleEndian(t *testing.T) {
	s := NewSerializer(0)
	s.Uint16(0x0102)
	s.Int32(-2)
	s.Bool(true)
	s.Bool(false)
	s.String("hé")
	assert.Equal(t, []byte{
		0x02, 0x01,
		0xfe, 0xff, 0xff, 0xff,
		1, 0,
		3, 0, 'h', 0xc3, 0xa9,
	}, s.Bytes())
}

func TestDeserializerRoundTrip(t *testing.T) {
	s := NewSerializer(0)
	s.Uint8(200)
	s.Int8(-100)
	s.Int16(-30000)
	s.Uint32(4e9)
	s.Uint64(math.MaxUint64)
	s.Int64(math.MinInt64)
	s.Float32(3.25)
	s.Float64(math.Inf(-1))
	s.String("")

	d := NewDeserializer(s.Bytes())
	var (
		u8  uint8
		i8  int8
		i16 int16
		u32 uint32
		u64 uint64
		i64 int64
		f32 float32
		f64 float64
		str = "unchanged"
	)
	require.True(t, d.ReadUint8(&u8))
	require.True(t, d.ReadInt8(&i8))
	require.True(t, d.ReadInt16(&i16))
	require.True(t, d.ReadUint32(&u32))
	require.True(t, d.ReadUint64(&u64))
	require.True(t, d.ReadInt64(&i64))
	require.True(t, d.ReadFloat32(&f32))
	require.True(t, d.ReadFloat64(&f64))
	require.True(t, d.ReadString(&str))

	assert.Equal(t, uint8(200), u8)
	assert.Equal(t, int8(-100), i8)
	assert.Equal(t, int16(-30000), i16)
	assert.Equal(t, uint32(4e9), u32)
	assert.Equal(t, uint64(math.MaxUint64), u64)
	assert.Equal(t, int64(math.MinInt64), i64)
	assert.Equal(t, float32(3.25), f32)
	assert.True(t, math.IsInf(f64, -1))
	assert.Equal(t, "", str)
	assert.Zero(t, d.Remaining())
	assert.True(t, d.OK())
}

func TestDeserializerStickyFailure(t *testing.T) {
	d := NewDeserializer([]byte{1, 2, 3})
	v := uint32(9)
	assert.False(t, d.ReadUint32(&v))
	assert.Equal(t, uint32(9), v)

	var b uint8
	assert.False(t, d.ReadUint8(&b), "reads after a failure keep failing")
	assert.False(t, d.OK())
}

func TestDeserializerRejectsMalformed(t *testing.T) {
	var b bool
	assert.False(t, NewDeserializer([]byte{2}).ReadBool(&b))

	var s string
	assert.False(t, NewDeserializer([]byte{2, 0, 0xff, 0xfe}).ReadString(&s))
	assert.False(t, NewDeserializer([]byte{5, 0, 'a'}).ReadString(&s))
	assert.Equal(t, "", s)
}

func TestSerializerTruncatesLongStrings(t *testing.T) {
	long := strings.Repeat("é", MaxStringLen) // two bytes per rune
	s := NewSerializer(0)
	s.String(long)

	var got string
	d := NewDeserializer(s.Bytes())
	require.True(t, d.ReadString(&got))
	assert.LessOrEqual(t, len(got), MaxStringLen)
	assert.True(t, strings.HasPrefix(long, got))
	assert.Zero(t, d.Remaining())
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "kurs", TruncateString("kurs"))

	exact := strings.Repeat("x", MaxStringLen)
	assert.Equal(t, exact, TruncateString(exact))

	// "é" straddles the limit and must be dropped whole
	got := TruncateString(strings.Repeat("x", MaxStringLen-1) + "é")
	assert.Len(t, got, MaxStringLen-1)
	assert.True(t, utf8.ValidString(got))
}

func TestHeaderComplete(t *testing.T) {
	h := NewHeader(MessageGPSData, NodeGPS, NodeNone)
	d := NewDeserializer(nil)
	assert.True(t, h.Complete(d).Valid())

	var x uint8
	d.ReadUint8(&x)
	assert.False(t, h.Complete(d).Valid())
	assert.True(t, h.Valid(), "Complete returns a copy")
	assert.True(t, h.Broadcast())
}

func TestDecodeUnknownAndShort(t *testing.T) {
	_, err := Decode([]byte{1})
	assert.ErrorIs(t, err, ErrShortBuffer)

	s := NewSerializer(0)
	NewHeader(MessageType(0xBEEF), NodeNone, NodeNone).Serialize(s)
	_, err = Decode(s.Bytes())
	assert.ErrorIs(t, err, ErrUnknownMessageType)
}

func TestRegisterDecoder(t *testing.T) {
	const custom = MessageType(0xF00D)
	RegisterDecoder(custom, func(h Header, d *Deserializer) Message {
		m := &tagged{}
		var n int32
		d.ReadInt32(&n)
		m.n = int(n)
		m.Header = h.Complete(d)
		return m
	})

	s := NewSerializer(0)
	NewHeader(custom, NodeSimulator, NodeLogger).Serialize(s)
	s.Int32(77)
	m, err := Decode(s.Bytes())
	require.NoError(t, err)
	require.True(t, m.Valid())
	assert.Equal(t, 77, m.(*tagged).n)
	assert.Equal(t, NodeLogger, m.Destination())

	assert.Panics(t, func() { RegisterDecoder(custom, nil) })
}
