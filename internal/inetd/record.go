package inetd

import (
	"iter"

	"grimm.is/sockd/internal/reactor"
)

// Record is the view the manager needs of a supervised service that carries
// a Binding.
type Record interface {
	// Inetd returns the record's binding, or nil for non-inetd services.
	Inetd() *Binding
	InRunlevel(level int) bool
	PID() int
	SetPID(pid int)
	// Command is used in log messages only.
	Command() string
}

// Registry iterates every supervised service record. Implementations must
// not be mutated while an iteration is running.
type Registry interface {
	Records() iter.Seq[Record]
}

// Decision is the supervisor's answer to whether a service may start now.
type Decision int

const (
	Start Decision = iota
	Skip
	Stop
)

func (d Decision) String() string {
	switch d {
	case Start:
		return "start"
	case Skip:
		return "skip"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Launcher starts handler processes. Start must not take ownership of fd; the
// manager closes it, or keeps watching it, after Start returns.
type Launcher interface {
	Startable(rec Record) Decision
	Start(rec Record, fd int) error
}

// Reactor is the subset of the event loop the manager registers sockets with.
type Reactor interface {
	Register(fd int, cb reactor.Callback) (reactor.Handle, error)
}

// Resolver finds the interface traffic arrived on.
type Resolver interface {
	// StreamInterface resolves from a connected socket's local address.
	StreamInterface(fd int) (string, error)
	// DatagramInterface peeks the next datagram's packet info.
	DatagramInterface(fd int) (string, error)
}
