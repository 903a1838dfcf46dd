//go:build linux

package inetd

import (
	"golang.org/x/sys/unix"

	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/metrics"
	"grimm.is/sockd/internal/reactor"
)

// listenBacklog matches the classic inetd accept queue.
const listenBacklog = 20

// Activate opens, binds and watches rec's socket. Failures leave the binding
// without a listener; they are logged and returned so callers can count
// them, but are not fatal. Activating an active binding does nothing.
func (m *Manager) Activate(rec Record) error {
	b := rec.Inetd()
	if b == nil || b.Kind == KindUnset {
		err := errors.Errorf(errors.KindInvalid, "skipping invalid inetd service %s", rec.Command())
		m.logger.Error("activation failed", "error", err)
		m.metrics.RecordActivation(nameOf(b), metrics.ResultInvalid)
		return err
	}
	if b.Active() {
		return nil
	}

	fd, err := m.openSocket(b)
	if err != nil {
		m.logger.Error("activation failed", "binding", b.String(), "error", err)
		m.metrics.RecordActivation(b.Name, metrics.ResultFailed)
		return err
	}

	h, err := m.reactor.Register(fd, func(h reactor.Handle) {
		m.onReadiness(rec, b, h)
	})
	if err != nil {
		unix.Close(fd)
		err = errors.Wrapf(err, errors.KindSocket, "failed to watch %s", b)
		m.logger.Error("activation failed", "binding", b.String(), "error", err)
		m.metrics.RecordActivation(b.Name, metrics.ResultFailed)
		return err
	}
	b.handle = h

	m.logger.Info("listening",
		"binding", b.String(),
		"command", rec.Command(),
		"forking", b.Forking,
		"fd", fd)
	m.metrics.RecordActivation(b.Name, metrics.ResultOK)
	return nil
}

func (m *Manager) openSocket(b *Binding) (int, error) {
	typ := unix.SOCK_DGRAM
	if b.Kind == Stream {
		typ = unix.SOCK_STREAM
	}

	fd, err := unix.Socket(unix.AF_INET, typ|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, b.Protocol)
	if err != nil {
		return -1, errors.Wrapf(err, errors.KindSocket, "failed opening socket type %s proto %d", b.Kind, b.Protocol)
	}

	fail := func(err error, format string, args ...any) (int, error) {
		unix.Close(fd)
		return -1, errors.Wrapf(err, errors.KindSocket, format, args...)
	}

	if b.Kind == Stream {
		if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			return fail(err, "failed setting SO_REUSEADDR")
		}
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: int(b.Port)}); err != nil {
		return fail(err, "failed binding to port %d, maybe another %s server is already running", b.Port, b.Name)
	}

	if b.Kind == Stream {
		if err := unix.Listen(fd, listenBacklog); err != nil {
			return fail(err, "failed listening on %s", b)
		}
	} else if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_PKTINFO, 1); err != nil {
		// Traffic is still served, but only wildcard rules can match.
		m.logger.Warn("failed enabling IP_PKTINFO", "binding", b.String(), "error", err)
	}

	return fd, nil
}

func (m *Manager) onReadiness(rec Record, b *Binding, h reactor.Handle) {
	if d := m.launcher.Startable(rec); d != Start {
		m.logger.Debug("not startable, discarding", "binding", b.String(), "decision", d.String())
		m.discard(b, h.FD())
		return
	}

	switch {
	case b.Kind == Stream && b.Forking:
		m.acceptAndLaunch(rec, b, h)
	case b.Kind == Stream:
		// The handler accepts by itself, so the peer's interface is unknown here.
		m.launch(rec, b, h, h.FD())
	default:
		m.receiveAndLaunch(rec, b, h)
	}
}

func (m *Manager) acceptAndLaunch(rec Record, b *Binding, h reactor.Handle) {
	conn, _, err := unix.Accept4(h.FD(), unix.SOCK_CLOEXEC)
	if err != nil {
		if err != unix.EAGAIN && err != unix.EINTR {
			m.logger.Warn("accept failed", "binding", b.String(), "error", err)
		}
		return
	}
	defer unix.Close(conn)

	ifname, err := m.resolver.StreamInterface(conn)
	if err != nil {
		m.logger.Debug("cannot resolve interface", "binding", b.String(), "error", err)
		ifname = Wildcard
	}
	if !b.IsAllowed(ifname) {
		m.logger.Debug("denied", "binding", b.String(), "interface", displayIface(ifname))
		m.metrics.RecordDenied(b.Name, ifname)
		return
	}
	m.launch(rec, b, h, conn)
}

func (m *Manager) receiveAndLaunch(rec Record, b *Binding, h reactor.Handle) {
	ifname, err := m.resolver.DatagramInterface(h.FD())
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return
		}
		m.logger.Debug("cannot resolve interface", "binding", b.String(), "error", err)
		ifname = Wildcard
	}
	if !b.IsAllowed(ifname) {
		m.logger.Debug("denied", "binding", b.String(), "interface", displayIface(ifname))
		m.metrics.RecordDenied(b.Name, ifname)
		drain(h.FD())
		return
	}
	m.launch(rec, b, h, h.FD())
}

// launch starts the handler on fd. A single-shot binding's watch is disarmed
// first so no second handler can be dispatched, and re-armed if the start
// fails.
func (m *Manager) launch(rec Record, b *Binding, h reactor.Handle, fd int) {
	if b.singleShot() {
		if err := h.Disable(); err != nil {
			m.logger.Warn("failed to disarm watch", "binding", b.String(), "error", err)
		}
	}

	if err := m.launcher.Start(rec, fd); err != nil {
		m.logger.Error("failed to start handler", "binding", b.String(), "command", rec.Command(), "error", err)
		if b.singleShot() {
			if err := h.Enable(); err != nil {
				m.logger.Warn("failed to re-arm watch", "binding", b.String(), "error", err)
			}
			m.discard(b, fd)
		}
		return
	}
	m.metrics.Dispatches.WithLabelValues(b.Name).Inc()
}

// discard consumes one pending connection or datagram. Readiness is
// level-triggered, so leaving it queued would wake the loop forever.
func (m *Manager) discard(b *Binding, fd int) {
	if b.Kind == Stream && fd == b.fd() {
		conn, _, err := unix.Accept4(fd, unix.SOCK_CLOEXEC)
		if err != nil {
			return
		}
		unix.Close(conn)
	} else if b.Kind == Datagram {
		drain(fd)
	}
	m.metrics.Discarded.WithLabelValues(b.Name).Inc()
}

func drain(fd int) {
	var buf [1]byte
	_, _, _ = unix.Recvfrom(fd, buf[:], unix.MSG_DONTWAIT)
}

// Deactivate stops watching rec's socket and closes it.
func (m *Manager) Deactivate(rec Record) {
	b := rec.Inetd()
	if b == nil || b.handle == nil {
		return
	}
	fd := b.handle.FD()
	if err := b.handle.Close(); err != nil {
		m.logger.Warn("failed to unwatch socket", "binding", b.String(), "error", err)
	}
	unix.Close(fd)
	b.handle = nil
	m.logger.Debug("closed", "binding", b.String())
}
