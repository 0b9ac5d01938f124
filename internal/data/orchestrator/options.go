// File path: internal/data/orchestrator/options.go
package orchestrator

import (
	"github.com/nicodishanthj/propinsight/internal/fetch"
)

type Option func(*options)

type options struct {
	store  fetch.Store
	noPing bool
}

// WithStore injects a property store instead of opening one from Config. If
// the store has a Close method, the orchestrator closes it.
func WithStore(s fetch.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithoutPing skips the startup reachability check.
func WithoutPing() Option {
	return func(o *options) {
		o.noPing = true
	}
}
