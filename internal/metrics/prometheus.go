package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry *Registry
)

// Activation results.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultFailed  = "failed"
)

// Registry holds all sockd metrics.
type Registry struct {
	reg *prometheus.Registry

	Bindings       *prometheus.GaugeVec
	Activations    *prometheus.CounterVec
	Dispatches     *prometheus.CounterVec
	Denied         *prometheus.CounterVec
	Discarded      *prometheus.CounterVec
	ConflictDenies *prometheus.CounterVec
	ChildExits     *prometheus.CounterVec
	RegisterErrors *prometheus.CounterVec
	UnhandledExits prometheus.Counter
}

// Get returns the process-wide registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = New()
		registry.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
	return registry
}

// New creates an isolated registry. Tests use it to avoid shared state.
func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	r := &Registry{reg: reg}

	r.Bindings = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sockd_bindings",
		Help: "Registered inetd bindings per service name",
	}, []string{"service"})

	r.Activations = f.NewCounterVec(prometheus.CounterOpts{
		Name: "sockd_activations_total",
		Help: "Socket activation attempts by result",
	}, []string{"service", "result"})

	r.Dispatches = f.NewCounterVec(prometheus.CounterOpts{
		Name: "sockd_dispatches_total",
		Help: "Handlers launched on socket readiness",
	}, []string{"service"})

	r.Denied = f.NewCounterVec(prometheus.CounterOpts{
		Name: "sockd_denied_total",
		Help: "Connections or datagrams refused by interface filters",
	}, []string{"service", "interface"})

	r.Discarded = f.NewCounterVec(prometheus.CounterOpts{
		Name: "sockd_discarded_total",
		Help: "Pending traffic dropped because the service was not startable",
	}, []string{"service"})

	r.ConflictDenies = f.NewCounterVec(prometheus.CounterOpts{
		Name: "sockd_conflict_denies_total",
		Help: "Deny rules installed by conflict resolution",
	}, []string{"service"})

	r.ChildExits = f.NewCounterVec(prometheus.CounterOpts{
		Name: "sockd_child_exits_total",
		Help: "Handler process exits",
	}, []string{"service", "crashed"})

	r.RegisterErrors = f.NewCounterVec(prometheus.CounterOpts{
		Name: "sockd_register_errors_total",
		Help: "Failed service registrations by error kind",
	}, []string{"kind"})

	r.UnhandledExits = f.NewCounter(prometheus.CounterOpts{
		Name: "sockd_unhandled_child_exits_total",
		Help: "Reaped children that did not belong to an inetd service",
	})

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RecordActivation counts one activation attempt.
func (r *Registry) RecordActivation(service, result string) {
	r.Activations.WithLabelValues(service, result).Inc()
}

// RecordDenied counts traffic refused on ifname. An empty name is reported as "*".
func (r *Registry) RecordDenied(service, ifname string) {
	if ifname == "" {
		ifname = "*"
	}
	r.Denied.WithLabelValues(service, ifname).Inc()
}

// RecordChildExit counts a handler exit.
func (r *Registry) RecordChildExit(service string, crashed bool) {
	r.ChildExits.WithLabelValues(service, strconv.FormatBool(crashed)).Inc()
}
