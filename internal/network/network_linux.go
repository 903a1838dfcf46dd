//go:build linux
// +build linux

package network

import (
	"github.com/vishvananda/netlink"
)

// DefaultNetlinker talks to the running kernel.
var DefaultNetlinker Netlinker = &RealNetlinker{}

// RealNetlinker is a concrete implementation of Netlinker that uses the actual netlink package.
type RealNetlinker struct{}

// LinkList retrieves all links.
func (r *RealNetlinker) LinkList() ([]netlink.Link, error) {
	return netlink.LinkList()
}

// LinkByIndex retrieves a link by its kernel index.
func (r *RealNetlinker) LinkByIndex(index int) (netlink.Link, error) {
	return netlink.LinkByIndex(index)
}

// AddrList lists addresses of the given family on link.
func (r *RealNetlinker) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}
