package services

import (
	"os/exec"

	"grimm.is/sockd/internal/inetd"
	"grimm.is/sockd/internal/logging"
)

// Supervisor decides whether services may start and launches their
// handlers. It is used from the reactor goroutine only.
type Supervisor struct {
	level  int
	logger *logging.Logger

	// start is exec.Cmd.Start; tests replace it.
	start func(*exec.Cmd) error
}

// NewSupervisor creates a Supervisor at runlevel level.
func NewSupervisor(level int, logger *logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.WithComponent("services")
	}
	return &Supervisor{
		level:  level,
		logger: logger,
		start:  (*exec.Cmd).Start,
	}
}

// Runlevel returns the current runlevel.
func (s *Supervisor) Runlevel() int {
	return s.level
}

// SetRunlevel changes the current runlevel.
func (s *Supervisor) SetRunlevel(level int) {
	s.level = level
}

// Startable implements inetd.Launcher. A disabled service, or one outside the
// current runlevel, must stop; a single-instance service whose handler is
// still running is skipped.
func (s *Supervisor) Startable(rec inetd.Record) inetd.Decision {
	svc, ok := rec.(*Service)
	if !ok {
		return inetd.Skip
	}
	if !svc.Enabled || !svc.InRunlevel(s.level) {
		return inetd.Stop
	}
	if svc.pid != 0 && !svc.Binding.Forking {
		return inetd.Skip
	}
	return inetd.Start
}
