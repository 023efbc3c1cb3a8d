// Package nodes holds sample vessel nodes built on xsail: a state
// estimator, a simulated sensor suite and a logging sink.
package nodes

import (
	"errors"
	"fmt"

	"github.com/trickstertwo/xlog"

	"github.com/trickstertwo/xsail"
)

// Bus is what the sample nodes need from a bus at construction time.
type Bus interface {
	xsail.Sender
	RegisterNode(node xsail.Node, types ...xsail.MessageType)
}

// Importance decides whether a failed Init stops startup.
type Importance int

const (
	NotCritical Importance = iota
	Critical
)

// ErrCriticalInit is returned by Initialise when a critical node fails.
var ErrCriticalInit = errors.New("nodes: critical node failed to initialise")

// Initialise runs node.Init when the node implements xsail.Initializer and
// logs the outcome. A failure is only returned for critical nodes.
func Initialise(node xsail.Node, name string, importance Importance, logger *xlog.Logger) error {
	if logger == nil {
		logger = xlog.Default()
	}
	var err error
	if in, ok := node.(xsail.Initializer); ok {
		err = in.Init()
	}
	if err == nil {
		logger.Info().Str("node", name).Msg("init [OK]")
		return nil
	}
	logger.Error().Str("node", name).Err(err).Msg("init [FAILED]")
	if importance == Critical {
		return fmt.Errorf("%w: %s: %w", ErrCriticalInit, name, err)
	}
	return nil
}
