package logging

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestDefaultSyslogConfig(t *testing.T) {
	cfg := DefaultSyslogConfig()

	if cfg.Enabled {
		t.Error("Default should be disabled")
	}
	if cfg.Port != 514 {
		t.Errorf("Expected port 514, got %d", cfg.Port)
	}
	if cfg.Protocol != "udp" {
		t.Errorf("Expected protocol udp, got %s", cfg.Protocol)
	}
	if cfg.Tag != "sockd" {
		t.Errorf("Expected tag sockd, got %s", cfg.Tag)
	}
	if cfg.Facility != 3 {
		t.Errorf("Expected facility 3, got %d", cfg.Facility)
	}
}

func TestNewSyslogWriter_MissingHost(t *testing.T) {
	_, err := NewSyslogWriter(SyslogConfig{Enabled: true})
	if err == nil {
		t.Error("Expected error for missing host")
	}
}

func TestNormalizeSyslog(t *testing.T) {
	cfg := normalizeSyslog(SyslogConfig{Host: "localhost"})
	if cfg.Port != 514 || cfg.Protocol != "udp" || cfg.Tag != "sockd" || cfg.Facility != 3 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.addr() != "localhost:514" {
		t.Errorf("addr = %s", cfg.addr())
	}
}

func TestSyslogWriter_UDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	defer pc.Close()

	port := pc.LocalAddr().(*net.UDPAddr).Port
	w, err := NewSyslogWriter(SyslogConfig{Host: "127.0.0.1", Port: port, Tag: "sockd-test"})
	if err != nil {
		t.Fatalf("NewSyslogWriter: %v", err)
	}
	defer w.Close()

	logger := New(Config{Level: LevelInfo, Output: MultiWriter(w)})
	logger.Info("Socket activated", "service", "ssh")

	buf := make([]byte, 2048)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("no syslog datagram received: %v", err)
	}

	msg := string(buf[:n])
	if !strings.HasPrefix(msg, "<30>") {
		t.Errorf("priority should be daemon.info (30), got %q", msg)
	}
	if !strings.Contains(msg, "sockd-test: ") || !strings.Contains(msg, "Socket activated") {
		t.Errorf("unexpected syslog message %q", msg)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if _, err := w.Write([]byte("after close")); err == nil {
		t.Error("Write after Close should fail")
	}
}
