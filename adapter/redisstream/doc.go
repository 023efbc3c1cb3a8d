// Package redisstream carries bridge frames over Redis Streams.
//
// Transport name: "redis-streams"
//
// Each topic maps to the stream StreamPrefix+topic. Every subscribing bridge
// reads through its own consumer group, created at the stream tail, so each
// bridge sees every frame published after it started. Entries are
// acknowledged once the handler accepts them.
//
// Config keys:
//   - addr: "host:port" (default "127.0.0.1:6379")
//   - username, password, db
//   - tls, tls_server_name
//   - stream_prefix (default "xsail:")
//   - consumer (default "xsail-<host>-<pid>")
//   - batch_size: XREADGROUP COUNT (default 128)
//   - block: XREADGROUP BLOCK duration (default 2s)
//   - auto_create (default true)
//   - destroy_group_on_close (default true)
//   - max_len_approx: XADD MAXLEN ~ (default 100000, 0 disables)
//
// Example:
//
//	br := redisstream.Use(bus, redisstream.Defaults(),
//	    bridge.WithTypes(xsail.MessageStateMessage, xsail.MessageWindState))
//	if err := br.Start(ctx); err != nil {
//	    return err
//	}
package redisstream
