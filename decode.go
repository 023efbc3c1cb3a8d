package xsail

import (
	"fmt"
	"sync"
)

// DecoderFunc builds a concrete message from an already read header. It reads
// the payload from d and must return a message even when d runs short; the
// message then reports Valid() == false.
type DecoderFunc func(h Header, d *Deserializer) Message

var (
	decodersMu sync.RWMutex
	decoders   = make(map[MessageType]DecoderFunc)
)

// RegisterDecoder installs the decoder for t, replacing any previous one.
// Message packages call it from init().
func RegisterDecoder(t MessageType, fn DecoderFunc) {
	if fn == nil {
		panic("xsail: RegisterDecoder with nil func")
	}
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[t] = fn
}

func lookupDecoder(t MessageType) (DecoderFunc, bool) {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	fn, ok := decoders[t]
	return fn, ok
}

// Encode serializes m into a fresh byte slice.
func Encode(m Message) []byte {
	s := NewSerializer(64)
	m.Serialize(s)
	return s.Bytes()
}

// Decode reconstructs a message from b. A payload that fails to parse still
// yields a message, with Valid() == false. An error is returned only when no
// message can be built at all.
func Decode(b []byte) (Message, error) {
	d := NewDeserializer(b)
	h := ReadHeader(d)
	if !h.Valid() {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrShortBuffer, len(b), headerSize)
	}
	fn, ok := lookupDecoder(h.Type())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, h.Type())
	}
	return fn(h, d), nil
}
