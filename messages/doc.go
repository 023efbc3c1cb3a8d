// Package messages defines the concrete message variants exchanged by the
// vessel nodes and registers their decoders with xsail.
//
// Every constructor takes the source and destination first; pass
// xsail.NodeNone as destination for a broadcast. Field order in Serialize is
// the wire order.
package messages
