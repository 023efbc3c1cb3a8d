// Package xsail is the message bus and node framework of the vessel control
// software.
//
// Nodes register with a MessageBus before it runs, either for broadcast
// message types or only for messages addressed to their NodeID. Run then
// drains a single FIFO queue and calls ProcessMessage on each matching node
// from the dispatch goroutine, one delivery at a time. Producers on any
// goroutine call SendMessage.
//
// Active nodes additionally own a goroutine started with RunLoop, typically
// built with Every for a fixed cadence:
//
//	bus, _ := xsail.NewBusBuilder().WithLogger(logger).Build()
//	est, _ := nodes.NewStateEstimation(bus, nodes.DefaultStateEstimationConfig())
//	_ = est.Start(ctx)
//	_ = bus.Run(ctx)
//
// Messages cross process boundaries as bytes (Encode, Decode) through a
// Transport, see the bridge package.
package xsail
