package redisstream

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/trickstertwo/xsail"
)

var errMissingData = errors.New("redisstream: entry without data field")

// decodeFrame reconstructs a frame from stream entry values.
func decodeFrame(vals map[string]any) (xsail.Frame, error) {
	var f xsail.Frame
	f.Origin = asString(vals[fieldOrigin])
	switch p := vals[fieldData].(type) {
	case string:
		f.Data = []byte(p)
	case []byte:
		f.Data = p
	default:
		return f, errMissingData
	}
	return f, nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

func encodeFrame(f xsail.Frame) map[string]any {
	return map[string]any{
		fieldOrigin: f.Origin,
		fieldData:   f.Data,
	}
}

// ack acknowledges ids in one call. Entries are acknowledged after the
// handler ran: malformed ones too, so they are never redelivered forever.
func (t *transport) ack(ctx context.Context, stream, group string, ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := t.client.XAck(ctx, stream, group, ids...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		t.metrics.ackErrors.Add(1)
		return
	}
	t.metrics.acked.Add(uint64(len(ids)))
}
