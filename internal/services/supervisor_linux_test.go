//go:build linux

package services

import (
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	sockerrors "grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/testutil"
)

func socketpair(t *testing.T) (parent, child int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func reap(t *testing.T, pid int) unix.WaitStatus {
	t.Helper()
	var ws unix.WaitStatus
	_, err := unix.Wait4(pid, &ws, 0, nil)
	require.NoError(t, err)
	return ws
}

func TestSupervisor_StartRunsHandlerOnSocket(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	parent, child := socketpair(t)
	require.NoError(t, unix.SetNonblock(child, true))

	svc := &Service{Name: "echo/tcp", Path: "/bin/sh", Args: []string{"-c", "read line; echo got $line"}}
	sup := NewSupervisor(2, testutil.Logger(t))

	require.NoError(t, sup.Start(svc, child))
	require.NotZero(t, svc.PID())

	_, err := unix.Write(parent, []byte("ping\n"))
	require.NoError(t, err)

	out := make([]byte, 64)
	n, err := unix.Read(parent, out)
	require.NoError(t, err)
	assert.Equal(t, "got ping\n", string(out[:n]))

	ws := reap(t, svc.PID())
	assert.True(t, ws.Exited())
	assert.Zero(t, ws.ExitStatus())

	flags, err := unix.FcntlInt(uintptr(child), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK, "caller's socket stays non-blocking")
}

func TestSupervisor_StartFailure(t *testing.T) {
	_, child := socketpair(t)
	svc := &Service{Name: "ssh/tcp", Path: "/usr/sbin/sshd"}
	sup := NewSupervisor(2, testutil.Logger(t))
	sup.start = func(*exec.Cmd) error { return errors.New("fork: resource temporarily unavailable") }

	err := sup.Start(svc, child)
	require.Error(t, err)
	assert.Equal(t, sockerrors.KindInternal, sockerrors.GetKind(err))
	assert.Zero(t, svc.PID())
}

func TestSupervisor_StartBadDescriptor(t *testing.T) {
	sup := NewSupervisor(2, testutil.Logger(t))
	err := sup.Start(&Service{Path: "/bin/true"}, -1)
	assert.True(t, sockerrors.IsKind(err, sockerrors.KindSocket))
}
