// Package services holds the supervised inetd service records and starts
// their handler processes.
package services

import (
	"iter"

	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/inetd"
)

// Service is one configured inetd service.
type Service struct {
	// Name is the configured identity, e.g. "ssh@eth0:222/tcp".
	Name      string
	Path      string
	Args      []string
	Runlevels Runlevels
	Enabled   bool

	Binding inetd.Binding

	pid int
}

func (s *Service) Inetd() *inetd.Binding { return &s.Binding }

func (s *Service) InRunlevel(level int) bool { return s.Runlevels.Has(level) }

func (s *Service) PID() int { return s.pid }

func (s *Service) SetPID(pid int) { s.pid = pid }

func (s *Service) Command() string { return s.Path }

// Entry is a service definition as read from configuration.
type Entry struct {
	Name      string
	Spec      inetd.Spec
	Path      string
	Args      []string
	Runlevels Runlevels
	Enabled   bool
}

// Registry keeps services in registration order.
type Registry struct {
	services []*Service
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Records iterates every service as an inetd record.
func (r *Registry) Records() iter.Seq[inetd.Record] {
	return func(yield func(inetd.Record) bool) {
		for _, s := range r.services {
			if !yield(s) {
				return
			}
		}
	}
}

// Services returns the registered services in order.
func (r *Registry) Services() []*Service {
	return r.services
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	return len(r.services)
}

// Lookup finds a service by its configured name.
func (r *Registry) Lookup(name string) (*Service, bool) {
	for _, s := range r.services {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// ByPID finds the service whose handler runs as pid.
func (r *Registry) ByPID(pid int) (*Service, bool) {
	if pid <= 0 {
		return nil, false
	}
	for _, s := range r.services {
		if s.pid == pid {
			return s, true
		}
	}
	return nil, false
}

// RegisterInetd adds e to the registry. When a service running the same
// command already serves the same service and port, e's interface is added
// to that service instead and reused is true.
func (r *Registry) RegisterInetd(mgr *inetd.Manager, e Entry) (svc *Service, reused bool, err error) {
	if e.Path == "" {
		return nil, false, errors.Errorf(errors.KindInvalid, "%s: missing command", e.Name)
	}

	for _, s := range r.services {
		if s.Path != e.Path || !mgr.MatchExisting(&s.Binding, e.Spec.Service, e.Spec.Protocol, e.Spec.Port) {
			continue
		}
		if _, err := mgr.AllowInterface(&s.Binding, e.Spec.Interface); err != nil {
			return nil, false, err
		}
		return s, true, nil
	}

	svc = &Service{
		Name:      e.Name,
		Path:      e.Path,
		Args:      e.Args,
		Runlevels: e.Runlevels,
		Enabled:   e.Enabled,
	}
	if svc.Name == "" {
		svc.Name = e.Spec.Service + "/" + e.Spec.Protocol
	}
	if err := mgr.Register(&svc.Binding, e.Spec); err != nil {
		return nil, false, errors.Attr(err, "service", svc.Name)
	}
	r.services = append(r.services, svc)
	return svc, false, nil
}
