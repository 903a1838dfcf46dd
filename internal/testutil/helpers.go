// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"net"
	"testing"

	"grimm.is/sockd/internal/logging"
)

// Logger returns a logger that discards output. Set SOCKD_TEST_LOG to see it.
func Logger(t *testing.T) *logging.Logger {
	t.Helper()
	var out io.Writer = io.Discard
	if testing.Verbose() && lookupEnv("SOCKD_TEST_LOG") {
		out = testWriter{t}
	}
	return logging.New(logging.Config{Level: logging.LevelDebug, Output: out})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// FreePort returns a port nothing on the host is bound to for proto
// ("tcp4" or "udp4"). The port is released before returning, so another
// process may take it; tests bind it immediately.
func FreePort(t *testing.T, proto string) uint16 {
	t.Helper()
	switch proto {
	case "tcp4", "tcp":
		l, err := net.Listen(proto, "0.0.0.0:0")
		if err != nil {
			t.Fatalf("failed to reserve %s port: %v", proto, err)
		}
		defer l.Close()
		return uint16(l.Addr().(*net.TCPAddr).Port)
	default:
		c, err := net.ListenPacket(proto, "0.0.0.0:0")
		if err != nil {
			t.Fatalf("failed to reserve %s port: %v", proto, err)
		}
		defer c.Close()
		return uint16(c.LocalAddr().(*net.UDPAddr).Port)
	}
}
