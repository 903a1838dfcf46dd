// Package inetd activates network services on demand.
//
// A [Binding] is the network half of an inetd-style service: its socket kind,
// protocol, port, dispatch mode and per-interface allow/deny rules. The
// [Manager] registers bindings against the system databases, keeps
// same-named bindings from claiming the same interface, opens and watches
// their sockets, and launches a handler when traffic arrives on an interface
// the binding is allowed to serve.
//
// # Filter rules
//
// Rules are keyed by interface name; the empty name is the wildcard. An exact
// rule always beats the wildcard, and an interface with no matching rule is
// denied. A key holds at most one rule, so a later deny never overrides an
// earlier allow on the same interface (and vice versa).
//
// # Conflict resolution
//
// Registering a binding denies it every interface its same-named peers
// explicitly allow, and denies every peer the interfaces it allows:
//
//	ssh/tcp          -> allow *
//	ssh@eth0:222/tcp -> allow eth0, deny *      (peer: + deny eth0)
//
// # Threading
//
// All methods run on the reactor goroutine. Nothing here locks.
package inetd
