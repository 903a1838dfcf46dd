//go:build !linux
// +build !linux

package network

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// DefaultNetlinker is the default RealNetlinker instance (stub).
var DefaultNetlinker Netlinker = &RealNetlinker{}

// RealNetlinker is a stub implementation of Netlinker.
type RealNetlinker struct{}

func (r *RealNetlinker) LinkList() ([]netlink.Link, error) {
	return nil, nil
}

func (r *RealNetlinker) LinkByIndex(index int) (netlink.Link, error) {
	return nil, fmt.Errorf("LinkByIndex not supported on this platform")
}

func (r *RealNetlinker) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return nil, nil
}
