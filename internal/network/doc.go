// Package network maps local addresses and interface indexes to interface
// names through netlink.
//
// The [Netlinker] seam keeps callers testable: production code uses
// [DefaultNetlinker], tests use [MockNetlinker].
package network
