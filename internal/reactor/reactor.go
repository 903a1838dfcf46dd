// Package reactor is a single-goroutine readiness loop.
//
// Every callback registered with [Reactor.Register] and every function
// handed to [Reactor.Post] runs on the goroutine executing [Reactor.Run], so
// code driven by the reactor needs no locking of its own.
package reactor

// Handle is a registered read-interest on one file descriptor.
type Handle interface {
	// FD returns the watched descriptor.
	FD() int
	// Enable re-arms read interest.
	Enable() error
	// Disable suspends read interest without forgetting the descriptor.
	Disable() error
	// Close removes the descriptor from the reactor. It does not close fd.
	Close() error
	// Active reports whether read interest is currently armed.
	Active() bool
}

// Callback runs on the reactor goroutine when a descriptor is readable.
type Callback func(h Handle)
