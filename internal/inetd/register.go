package inetd

import (
	"strings"

	"grimm.is/sockd/internal/errors"
)

// Spec is a parsed inetd entry: service[@iface][:port]/proto.
type Spec struct {
	Service   string
	Protocol  string
	Interface string // empty means any interface
	Port      uint16 // zero means the service's standard port
	Forking   bool
}

// Register fills in b from spec, allows spec.Interface and resolves conflicts
// with every same-named binding already in the registry. b must be fresh.
//
// The socket kind is stream only for "tcp"; every other protocol, known or
// not, is treated as datagram.
func (m *Manager) Register(b *Binding, spec Spec) error {
	if err := m.register(b, spec); err != nil {
		m.metrics.RegisterErrors.WithLabelValues(errors.GetKind(err).String()).Inc()
		return err
	}
	return nil
}

func (m *Manager) register(b *Binding, spec Spec) error {
	if b == nil {
		return errors.New(errors.KindInvalid, "nil binding")
	}
	if spec.Service == "" || spec.Protocol == "" {
		return errors.New(errors.KindInvalid, "service and protocol are required")
	}
	if b.Kind != KindUnset {
		return errors.Errorf(errors.KindInvalid, "binding %s is already registered", b)
	}
	if len(spec.Interface) > MaxInterfaceName {
		return errors.Errorf(errors.KindInvalid, "interface name %q exceeds %d bytes", spec.Interface, MaxInterfaceName)
	}

	sv, err := m.db.LookupService(spec.Service, spec.Protocol)
	if err != nil {
		return errors.Attr(errors.Wrapf(err, errors.KindLookup, "unknown service %s/%s", spec.Service, spec.Protocol), "service", spec.Service)
	}
	pe, err := m.db.LookupProtocol(sv.Proto)
	if err != nil {
		return errors.Attr(errors.Wrapf(err, errors.KindLookup, "unknown protocol %s", sv.Proto), "protocol", sv.Proto)
	}

	m.logger.Debug("adding service",
		"service", spec.Service,
		"default_port", sv.Port,
		"proto", sv.Proto,
		"proto_number", pe.Number,
		"custom_port", spec.Port)

	b.Name = spec.Service
	if strings.EqualFold(sv.Proto, "tcp") {
		b.Kind = Stream
	} else {
		b.Kind = Datagram
	}
	if spec.Port == 0 || spec.Port == sv.Port {
		b.Port = sv.Port
		b.Standard = true
	} else {
		b.Port = spec.Port
		b.Standard = false
	}
	b.Forking = spec.Forking
	b.Protocol = pe.Number
	b.proto = sv.Proto

	if _, err := b.Allow(spec.Interface); err != nil {
		return err
	}
	m.ResolveConflicts(b)
	m.metrics.Bindings.WithLabelValues(b.Name).Inc()
	return nil
}

// ResolveConflicts installs mutual deny rules between b and every other
// registered binding with the same name: b is denied each interface a peer
// allows, and each peer is denied the interfaces b allows. Existing rules are
// never replaced. It returns the number of rules added.
func (m *Manager) ResolveConflicts(b *Binding) int {
	added := 0
	deny := func(target *Binding, ifname string) {
		ok, err := target.Deny(ifname)
		if err != nil || !ok {
			return
		}
		added++
		m.logger.Debug("conflict deny", "binding", target.String(), "interface", displayIface(ifname))
	}

	for _, other := range m.records() {
		if other == b || other.Name != b.Name {
			continue
		}
		for _, ifname := range other.allowed() {
			deny(b, ifname)
		}
		for _, ifname := range b.allowed() {
			deny(other, ifname)
		}
	}

	if added > 0 {
		m.metrics.ConflictDenies.WithLabelValues(b.Name).Add(float64(added))
	}
	return added
}

// AllowInterface extends an already registered binding to ifname and
// resolves conflicts again so same-named peers lose that interface. It
// reports false when ifname already had a rule.
func (m *Manager) AllowInterface(b *Binding, ifname string) (bool, error) {
	if b == nil || b.Kind == KindUnset {
		return false, errors.New(errors.KindInvalid, "binding is not registered")
	}
	added, err := b.Allow(ifname)
	if err != nil || !added {
		return added, err
	}
	m.ResolveConflicts(b)
	return true, nil
}

// MatchExisting reports whether b is the same service instance as
// service[:port]/proto. With no port the service's standard port is compared.
// A failed lookup is not a match.
func (m *Manager) MatchExisting(b *Binding, service, proto string, port uint16) bool {
	if b == nil || service == "" || proto == "" || b.Name != service {
		return false
	}
	if port != 0 {
		return b.Port == port
	}
	sv, err := m.db.LookupService(service, proto)
	if err != nil {
		return false
	}
	return b.Port == sv.Port
}

func displayIface(ifname string) string {
	if ifname == Wildcard {
		return "*"
	}
	return ifname
}
