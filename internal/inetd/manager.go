package inetd

import (
	"iter"

	"grimm.is/sockd/internal/logging"
	"grimm.is/sockd/internal/metrics"
	"grimm.is/sockd/internal/netdb"
)

// Deps wires a Manager to its collaborators. DB, Registry, Launcher, Reactor
// and Resolver are required; Metrics and Logger fall back to the process
// defaults.
type Deps struct {
	DB       netdb.Database
	Registry Registry
	Launcher Launcher
	Reactor  Reactor
	Resolver Resolver
	Metrics  *metrics.Registry
	Logger   *logging.Logger
}

// Manager registers, activates and dispatches inetd bindings. It must only be
// used from the reactor goroutine.
type Manager struct {
	db       netdb.Database
	registry Registry
	launcher Launcher
	reactor  Reactor
	resolver Resolver
	metrics  *metrics.Registry
	logger   *logging.Logger
}

// NewManager creates a Manager.
func NewManager(d Deps) *Manager {
	m := &Manager{
		db:       d.DB,
		registry: d.Registry,
		launcher: d.Launcher,
		reactor:  d.Reactor,
		resolver: d.Resolver,
		metrics:  d.Metrics,
		logger:   d.Logger,
	}
	if m.metrics == nil {
		m.metrics = metrics.Get()
	}
	if m.logger == nil {
		m.logger = logging.WithComponent("inetd")
	}
	return m
}

// records yields only the records that carry a registered binding.
func (m *Manager) records() iter.Seq2[Record, *Binding] {
	return func(yield func(Record, *Binding) bool) {
		if m.registry == nil {
			return
		}
		for rec := range m.registry.Records() {
			b := rec.Inetd()
			if b == nil || b.Kind == KindUnset {
				continue
			}
			if !yield(rec, b) {
				return
			}
		}
	}
}
