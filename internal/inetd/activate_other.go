//go:build !linux

package inetd

import "grimm.is/sockd/internal/errors"

// Activate is only supported on Linux.
func (m *Manager) Activate(rec Record) error {
	return errors.New(errors.KindUnavailable, "socket activation requires linux")
}

// Deactivate stops watching rec's socket.
func (m *Manager) Deactivate(rec Record) {
	b := rec.Inetd()
	if b == nil || b.handle == nil {
		return
	}
	_ = b.handle.Close()
	b.handle = nil
}
