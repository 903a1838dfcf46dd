//go:build !linux

package inetd

import (
	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/network"
)

// SocketResolver is unavailable outside Linux.
type SocketResolver struct{}

// NewSocketResolver returns a resolver that always fails.
func NewSocketResolver(network.Netlinker) *SocketResolver {
	return &SocketResolver{}
}

func (r *SocketResolver) StreamInterface(int) (string, error) {
	return "", errors.New(errors.KindUnavailable, "interface resolution requires linux")
}

func (r *SocketResolver) DatagramInterface(int) (string, error) {
	return "", errors.New(errors.KindUnavailable, "interface resolution requires linux")
}
