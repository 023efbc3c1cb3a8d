// Package natspubsub carries bridge frames over core NATS.
//
// Transport name: "nats"
//
// Topic "fleet" maps to subject "<subject_prefix>.fleet". Frame origin
// travels in the Xsail-Origin header, the message bytes in the body.
package natspubsub
