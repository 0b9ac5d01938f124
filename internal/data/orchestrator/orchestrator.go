// File path: internal/data/orchestrator/orchestrator.go

// Package orchestrator owns the lifecycle of the property store and the
// fetchers built on top of it.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/nicodishanthj/propinsight/internal/common"
	"github.com/nicodishanthj/propinsight/internal/fetch"
	"github.com/nicodishanthj/propinsight/internal/store"
)

type closer interface {
	Close() error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Orchestrator wires the property store into the context fetchers and exposes
// accessors for the pipeline and API layers.
type Orchestrator struct {
	cfg Config

	store    fetch.Store
	fetchers *fetch.Set

	closers []closer
}

// New opens the configured store, or adopts the injected one, and builds the
// fetcher set.
func New(ctx context.Context, cfg Config, opts ...Option) (*Orchestrator, error) {
	logger := common.Logger()
	cfg = applyDefaults(cfg)
	settings := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	propertyStore := settings.store
	if propertyStore == nil {
		opened, err := store.OpenWithConfig(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("init property store: %w", err)
		}
		propertyStore = opened
		logger.Info("orchestrator: property store opened", "driver", cfg.Store.Driver, "years", opened.Years())
	}

	orch := &Orchestrator{
		cfg:      cfg,
		store:    propertyStore,
		fetchers: fetch.NewSet(propertyStore, cfg.Fetch),
	}
	if c, ok := propertyStore.(closer); ok {
		orch.closers = append(orch.closers, c)
	}

	if p, ok := propertyStore.(pinger); ok && !settings.noPing {
		if err := p.Ping(ctx); err != nil {
			closeErr := orch.Close()
			return nil, errors.Join(fmt.Errorf("ping property store: %w", err), closeErr)
		}
	}
	logger.Info("orchestrator: fetchers ready", "fetchers", orch.fetchers.Names())
	return orch, nil
}

// Store exposes the property store.
func (o *Orchestrator) Store() fetch.Store {
	if o == nil {
		return nil
	}
	return o.store
}

// Fetchers exposes the fetcher set built on the store.
func (o *Orchestrator) Fetchers() *fetch.Set {
	if o == nil {
		return nil
	}
	return o.fetchers
}

func (o *Orchestrator) Config() Config {
	if o == nil {
		return Config{}
	}
	return o.cfg
}

// Close releases any resources associated with the orchestrator.
func (o *Orchestrator) Close() error {
	if o == nil {
		return nil
	}
	var err error
	for i := len(o.closers) - 1; i >= 0; i-- {
		closer := o.closers[i]
		if closer == nil {
			continue
		}
		if cerr := closer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	o.closers = nil
	return err
}
