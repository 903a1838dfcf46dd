// Package monitor reaps exited handler processes.
//
// SIGCHLD only wakes the monitor; the actual wait4 loop is posted onto the
// reactor so exit handling never races readiness dispatch.
package monitor

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"grimm.is/sockd/internal/logging"
)

// ExitEvent describes one reaped child.
type ExitEvent struct {
	PID      int
	ExitCode int
	Signal   syscall.Signal
	CoreDump bool
}

// Crashed reports whether the child died abnormally rather than exiting or
// being asked to stop.
func (e ExitEvent) Crashed() bool {
	switch e.Signal {
	case 0:
		return e.ExitCode != 0
	case syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP, syscall.SIGPIPE:
		return false
	default:
		return true
	}
}

func eventFrom(pid int, ws unix.WaitStatus) ExitEvent {
	ev := ExitEvent{PID: pid}
	if ws.Signaled() {
		ev.Signal = syscall.Signal(ws.Signal())
		ev.CoreDump = ws.CoreDump()
	} else {
		ev.ExitCode = ws.ExitStatus()
	}
	return ev
}

// WaitFunc reaps one exited child without blocking. It returns pid 0 when
// children exist but none has exited.
var WaitFunc = func() (int, unix.WaitStatus, error) {
	var ws unix.WaitStatus
	pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
	return pid, ws, err
}

// Poster runs functions on the reactor goroutine.
type Poster interface {
	Post(fn func())
}

// Monitor delivers child exits to a handler on the reactor goroutine.
type Monitor struct {
	poster  Poster
	handler func(ExitEvent)
	logger  *logging.Logger
}

// New creates a Monitor calling handler for every reaped child.
func New(poster Poster, handler func(ExitEvent), logger *logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.WithComponent("monitor")
	}
	return &Monitor{poster: poster, handler: handler, logger: logger}
}

// Run waits for SIGCHLD until ctx is done. Children that exited before Run
// was called are reaped on start.
func (m *Monitor) Run(ctx context.Context) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGCHLD)
	defer signal.Stop(sigs)

	m.poster.Post(func() { m.Reap() })
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigs:
			m.poster.Post(func() { m.Reap() })
		}
	}
}

// Reap collects every exited child and returns how many were handled.
// Signals coalesce, so one SIGCHLD may stand for several exits.
func (m *Monitor) Reap() int {
	n := 0
	for {
		pid, ws, err := WaitFunc()
		if err == unix.EINTR {
			continue
		}
		if err != nil && err != unix.ECHILD {
			m.logger.Warn("wait4 failed", "error", err)
		}
		if err != nil || pid <= 0 {
			return n
		}

		ev := eventFrom(pid, ws)
		m.logger.Debug("reaped child",
			"pid", ev.PID,
			"exit_code", ev.ExitCode,
			"signal", int(ev.Signal),
			"crashed", ev.Crashed())
		m.handler(ev)
		n++
	}
}
