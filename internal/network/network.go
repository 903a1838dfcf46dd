package network

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"

	"grimm.is/sockd/internal/errors"
)

// Netlinker abstracts the netlink calls sockd makes so resolvers can be
// tested without touching the host's interfaces.
type Netlinker interface {
	LinkList() ([]netlink.Link, error)
	LinkByIndex(index int) (netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
}

// InterfaceByAddr returns the name of the first interface carrying ip.
// Interfaces are scanned in kernel order, addresses in netlink order.
func InterfaceByAddr(nl Netlinker, ip net.IP) (string, error) {
	family := netlink.FAMILY_V4
	if ip.To4() == nil {
		family = netlink.FAMILY_V6
	}

	links, err := nl.LinkList()
	if err != nil {
		return "", fmt.Errorf("failed to list links: %w", err)
	}

	for _, link := range links {
		addrs, err := nl.AddrList(link, family)
		if err != nil {
			// Links can vanish between LinkList and AddrList.
			continue
		}
		for _, addr := range addrs {
			if addr.IPNet != nil && addr.IP.Equal(ip) {
				return link.Attrs().Name, nil
			}
		}
	}

	return "", errors.ErrNoInterface
}

// InterfaceNameByIndex translates an ifindex into an interface name.
func InterfaceNameByIndex(nl Netlinker, index int) (string, error) {
	link, err := nl.LinkByIndex(index)
	if err != nil {
		return "", fmt.Errorf("failed to look up ifindex %d: %w", index, err)
	}
	return link.Attrs().Name, nil
}
