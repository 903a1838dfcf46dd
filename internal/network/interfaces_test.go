package network

import (
	"errors"
	"net"
	"testing"

	sockerrors "grimm.is/sockd/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vishvananda/netlink"
)

func addr(cidr string) netlink.Addr {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	ipnet.IP = ip
	return netlink.Addr{IPNet: ipnet}
}

func TestInterfaceByAddr(t *testing.T) {
	lo := &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: "lo", Index: 1}}
	eth0 := &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: "eth0", Index: 2}}
	eth1 := &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: "eth1", Index: 3}}

	nl := new(MockNetlinker)
	nl.On("LinkList").Return([]netlink.Link{lo, eth0, eth1}, nil)
	nl.On("AddrList", lo, netlink.FAMILY_V4).Return([]netlink.Addr{addr("127.0.0.1/8")}, nil)
	nl.On("AddrList", eth0, netlink.FAMILY_V4).Return(nil, errors.New("link gone"))
	nl.On("AddrList", eth1, netlink.FAMILY_V4).Return([]netlink.Addr{addr("10.0.0.1/24"), addr("192.168.1.1/24")}, nil)

	name, err := InterfaceByAddr(nl, net.ParseIP("192.168.1.1"))
	assert.NoError(t, err)
	assert.Equal(t, "eth1", name)

	name, err = InterfaceByAddr(nl, net.ParseIP("127.0.0.1"))
	assert.NoError(t, err)
	assert.Equal(t, "lo", name)

	_, err = InterfaceByAddr(nl, net.ParseIP("172.16.0.1"))
	assert.ErrorIs(t, err, sockerrors.ErrNoInterface)
}

func TestInterfaceByAddr_LinkListFails(t *testing.T) {
	nl := new(MockNetlinker)
	nl.On("LinkList").Return(nil, errors.New("netlink socket closed"))

	_, err := InterfaceByAddr(nl, net.ParseIP("10.0.0.1"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list links")
	nl.AssertNotCalled(t, "AddrList", mock.Anything, mock.Anything)
}

func TestInterfaceNameByIndex(t *testing.T) {
	eth0 := &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: "eth0", Index: 2}}

	nl := new(MockNetlinker)
	nl.On("LinkByIndex", 2).Return(eth0, nil).Once()
	nl.On("LinkByIndex", 9).Return(nil, errors.New("no such device")).Once()

	name, err := InterfaceNameByIndex(nl, 2)
	assert.NoError(t, err)
	assert.Equal(t, "eth0", name)

	_, err = InterfaceNameByIndex(nl, 9)
	assert.Error(t, err)
	nl.AssertExpectations(t)
}
