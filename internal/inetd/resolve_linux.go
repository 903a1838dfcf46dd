//go:build linux

package inetd

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/network"
)

// SocketResolver resolves interfaces from live sockets using netlink.
type SocketResolver struct {
	nl network.Netlinker
}

// NewSocketResolver returns a resolver backed by nl, or the host's netlink
// when nl is nil.
func NewSocketResolver(nl network.Netlinker) *SocketResolver {
	if nl == nil {
		nl = network.DefaultNetlinker
	}
	return &SocketResolver{nl: nl}
}

// StreamInterface returns the interface owning the connection's local address.
func (r *SocketResolver) StreamInterface(fd int) (string, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return "", fmt.Errorf("getsockname: %w", err)
	}

	var ip net.IP
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		ip = net.IP(a.Addr[:])
	case *unix.SockaddrInet6:
		ip = net.IP(a.Addr[:])
	default:
		return "", errors.Errorf(errors.KindInvalid, "unsupported socket address %T", sa)
	}
	return network.InterfaceByAddr(r.nl, ip)
}

// DatagramInterface peeks at the next datagram and returns the interface
// named by its IP_PKTINFO control message. The datagram stays queued.
func (r *SocketResolver) DatagramInterface(fd int) (string, error) {
	oob := ipv4.NewControlMessage(ipv4.FlagInterface)
	var buf [1]byte

	_, oobn, _, _, err := unix.Recvmsg(fd, buf[:], oob, unix.MSG_PEEK|unix.MSG_DONTWAIT)
	if err != nil {
		return "", fmt.Errorf("recvmsg: %w", err)
	}

	var cm ipv4.ControlMessage
	if err := cm.Parse(oob[:oobn]); err != nil {
		return "", fmt.Errorf("failed to parse control message: %w", err)
	}
	if cm.IfIndex == 0 {
		return "", errors.ErrNoPktinfo
	}
	return network.InterfaceNameByIndex(r.nl, cm.IfIndex)
}
