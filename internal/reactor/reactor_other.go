//go:build !linux

package reactor

import (
	"context"
	"fmt"

	"grimm.is/sockd/internal/logging"
)

// Reactor is unavailable off Linux.
type Reactor struct{}

// New always fails on this platform.
func New(logger *logging.Logger) (*Reactor, error) {
	return nil, fmt.Errorf("reactor requires epoll (linux)")
}

func (r *Reactor) Register(fd int, cb Callback) (Handle, error) {
	return nil, fmt.Errorf("reactor not supported on this platform")
}

func (r *Reactor) Post(fn func()) {}

func (r *Reactor) Run(ctx context.Context) error {
	return fmt.Errorf("reactor not supported on this platform")
}

func (r *Reactor) Close() error { return nil }
