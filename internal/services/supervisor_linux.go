//go:build linux

package services

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/inetd"
)

// Start implements inetd.Launcher. The handler runs in its own session with
// fd as stdin, stdout and stderr. The child is reaped by the monitor, so the
// process handle is released here.
func (s *Supervisor) Start(rec inetd.Record, fd int) error {
	svc, ok := rec.(*Service)
	if !ok {
		return errors.Errorf(errors.KindInvalid, "unsupported record %T", rec)
	}

	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return errors.Wrapf(err, errors.KindSocket, "failed to read flags of fd %d", fd)
	}
	dup, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 3)
	if err != nil {
		return errors.Wrapf(err, errors.KindSocket, "failed to dup fd %d", fd)
	}
	f := os.NewFile(uintptr(dup), svc.Name)
	defer f.Close()

	// exec switches the shared file description to blocking mode; the
	// reactor still reads from it.
	if flags&unix.O_NONBLOCK != 0 {
		defer unix.SetNonblock(fd, true)
	}

	cmd := exec.Command(svc.Path, svc.Args...)
	cmd.Stdin = f
	cmd.Stdout = f
	cmd.Stderr = f
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := s.start(cmd); err != nil {
		return errors.Attr(errors.Wrapf(err, errors.KindInternal, "failed to start %s", svc.Path), "service", svc.Name)
	}

	svc.pid = cmd.Process.Pid
	s.logger.Info("started handler", "service", svc.Name, "pid", svc.pid, "command", svc.Path)
	_ = cmd.Process.Release()
	return nil
}
