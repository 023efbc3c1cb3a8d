package xsail

import (
	"fmt"
	"slices"
)

// registeredNode pairs a node with the message types it receives as
// broadcasts. Direct messages reach it regardless of subscriptions.
type registeredNode struct {
	node  Node
	types []MessageType
}

func (r *registeredNode) subscribe(t MessageType) {
	if !slices.Contains(r.types, t) {
		r.types = append(r.types, t)
	}
}

// registry is the ordered list of nodes. It is written only before Run and
// read only afterwards.
type registry struct {
	nodes []*registeredNode
}

func (r *registry) find(n Node) *registeredNode {
	for _, rn := range r.nodes {
		if rn.node == n {
			return rn
		}
	}
	return nil
}

func (r *registry) add(n Node, types []MessageType) {
	rn := r.find(n)
	if rn == nil {
		if id := n.NodeID(); id != NodeNone {
			for _, other := range r.nodes {
				if other.node.NodeID() == id {
					panic(fmt.Errorf("%w: %s", ErrDuplicateNodeID, id))
				}
			}
		}
		rn = &registeredNode{node: n}
		r.nodes = append(r.nodes, rn)
	}
	for _, t := range types {
		rn.subscribe(t)
	}
}

// routes is the routing table frozen when the bus starts.
type routes struct {
	direct    map[NodeID]Node
	broadcast map[MessageType][]Node
}

func (r *registry) freeze() routes {
	rt := routes{
		direct:    make(map[NodeID]Node, len(r.nodes)),
		broadcast: make(map[MessageType][]Node),
	}
	for _, rn := range r.nodes {
		if id := rn.node.NodeID(); id != NodeNone {
			rt.direct[id] = rn.node
		}
		for _, t := range rn.types {
			rt.broadcast[t] = append(rt.broadcast[t], rn.node)
		}
	}
	return rt
}

// match returns the nodes msg is delivered to, in registry order.
func (rt routes) match(msg Message) []Node {
	if dst := msg.Destination(); dst != NodeNone {
		if n, ok := rt.direct[dst]; ok {
			return []Node{n}
		}
		return nil
	}
	return rt.broadcast[msg.Type()]
}
