package redisstream

// Stream entry fields.
const (
	fieldOrigin = "origin"
	fieldData   = "data" // raw message bytes, binary-safe
)
