package inetd

import (
	"strconv"

	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/reactor"
)

// MaxInterfaceName is the longest interface name the kernel accepts (IFNAMSIZ-1).
const MaxInterfaceName = 15

// Wildcard is the interface key matching any interface.
const Wildcard = ""

// SocketKind selects stream or datagram sockets.
type SocketKind int

const (
	KindUnset SocketKind = iota
	Stream
	Datagram
)

func (k SocketKind) String() string {
	switch k {
	case Stream:
		return "stream"
	case Datagram:
		return "dgram"
	default:
		return "unset"
	}
}

// Rule is one allow/deny decision for an interface key.
type Rule struct {
	Interface string
	Deny      bool
}

// Binding is a service's network activation state. The zero value is an
// unregistered binding with no rules.
type Binding struct {
	// Set once by Register.
	Name     string
	Kind     SocketKind
	Protocol int
	Port     uint16
	Standard bool

	// Forking is nowait mode: one handler per accepted connection. It only
	// applies to stream bindings; datagram bindings are single-shot.
	Forking bool

	proto  string
	handle reactor.Handle

	rules map[string]bool // interface -> deny
	order []string        // newest first
}

// Find returns the rule stored for exactly ifname.
func (b *Binding) Find(ifname string) (Rule, bool) {
	deny, ok := b.rules[ifname]
	if !ok {
		return Rule{}, false
	}
	return Rule{Interface: ifname, Deny: deny}, true
}

// Match returns the exact rule for ifname, or else the wildcard rule.
func (b *Binding) Match(ifname string) (Rule, bool) {
	if r, ok := b.Find(ifname); ok {
		return r, true
	}
	return b.Find(Wildcard)
}

// Allow adds an allow rule for ifname. It reports false, without error, when
// Match already finds a rule, so a wildcard rule of either polarity absorbs
// later allows for specific interfaces.
func (b *Binding) Allow(ifname string) (bool, error) {
	if err := checkName(ifname); err != nil {
		return false, err
	}
	if _, ok := b.Match(ifname); ok {
		return false, nil
	}
	b.insert(ifname, false)
	return true, nil
}

// Deny adds a deny rule for ifname. Only an existing rule for exactly the
// same key blocks it; that rule is left untouched and false is returned.
func (b *Binding) Deny(ifname string) (bool, error) {
	if err := checkName(ifname); err != nil {
		return false, err
	}
	if _, ok := b.Find(ifname); ok {
		return false, nil
	}
	b.insert(ifname, true)
	return true, nil
}

func checkName(ifname string) error {
	if len(ifname) > MaxInterfaceName {
		return errors.Errorf(errors.KindInvalid, "interface name %q exceeds %d bytes", ifname, MaxInterfaceName)
	}
	return nil
}

func (b *Binding) insert(ifname string, deny bool) {
	if b.rules == nil {
		b.rules = make(map[string]bool)
	}
	b.rules[ifname] = deny
	b.order = append([]string{ifname}, b.order...)
}

// IsAllowed is the access decision for traffic arriving on ifname. No
// matching rule means deny.
func (b *Binding) IsAllowed(ifname string) bool {
	r, ok := b.Match(ifname)
	return ok && !r.Deny
}

// Rules returns all rules, newest first.
func (b *Binding) Rules() []Rule {
	out := make([]Rule, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, Rule{Interface: name, Deny: b.rules[name]})
	}
	return out
}

// allowed lists the interfaces b explicitly allows.
func (b *Binding) allowed() []string {
	var out []string
	for _, name := range b.order {
		if !b.rules[name] {
			out = append(out, name)
		}
	}
	return out
}

// Active reports whether the binding has a watched socket.
func (b *Binding) Active() bool {
	return b.handle != nil
}

// Watching reports whether the socket's read interest is armed.
func (b *Binding) Watching() bool {
	return b.handle != nil && b.handle.Active()
}

// String renders the binding the way it is written in configuration.
func (b *Binding) String() string {
	proto := b.proto
	if proto == "" {
		proto = "udp"
		if b.Kind == Stream {
			proto = "tcp"
		}
	}
	return b.Name + ":" + strconv.Itoa(int(b.Port)) + "/" + proto
}

// singleShot reports whether only one handler may run at a time. Datagram
// sockets are never dispatched concurrently: the handler owns the queue
// until it exits, whatever the configured mode.
func (b *Binding) singleShot() bool {
	return !b.Forking || b.Kind == Datagram
}

func (b *Binding) fd() int {
	if b.handle == nil {
		return -1
	}
	return b.handle.FD()
}

func nameOf(b *Binding) string {
	if b == nil || b.Name == "" {
		return "unknown"
	}
	return b.Name
}
