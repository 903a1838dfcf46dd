package logging

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// SyslogConfig holds remote syslog settings.
type SyslogConfig struct {
	Enabled  bool   // Enable remote syslog
	Host     string // Remote syslog server hostname or IP
	Port     int    // Remote syslog server port (default: 514)
	Protocol string // udp or tcp (default: udp)
	Tag      string // Syslog tag (default: sockd)
	Facility int    // Syslog facility (default: 3 = daemon)
}

// DefaultSyslogConfig returns sensible defaults.
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "sockd",
		Facility: 3, // LOG_DAEMON
	}
}

// SyslogWriter implements io.Writer and sends logs to a remote syslog server.
type SyslogWriter struct {
	mu       sync.Mutex
	conn     net.Conn
	config   SyslogConfig
	hostname string
}

// NewSyslogWriter creates a new syslog writer.
func NewSyslogWriter(cfg SyslogConfig) (*SyslogWriter, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("syslog host is required")
	}
	cfg = normalizeSyslog(cfg)

	conn, err := net.DialTimeout(cfg.Protocol, cfg.addr(), 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to syslog server %s: %w", cfg.addr(), err)
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "localhost"
	}

	return &SyslogWriter{
		conn:     conn,
		config:   cfg,
		hostname: hostname,
	}, nil
}

func normalizeSyslog(cfg SyslogConfig) SyslogConfig {
	def := DefaultSyslogConfig()
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.Protocol == "" {
		cfg.Protocol = def.Protocol
	}
	if cfg.Tag == "" {
		cfg.Tag = def.Tag
	}
	if cfg.Facility == 0 {
		cfg.Facility = def.Facility
	}
	return cfg
}

func (c SyslogConfig) addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// Write formats p as an RFC 3164 message: <priority>timestamp hostname tag: message
func (w *SyslogWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn == nil {
		return 0, fmt.Errorf("syslog connection closed")
	}

	// Severity is fixed at INFO (6); the level is already in the line.
	priority := w.config.Facility*8 + 6
	timestamp := time.Now().Format(time.Stamp)
	msg := fmt.Sprintf("<%d>%s %s %s: %s", priority, timestamp, w.hostname, w.config.Tag, string(p))

	if _, err = w.conn.Write([]byte(msg)); err != nil {
		w.reconnect()
		return 0, err
	}

	return len(p), nil
}

// reconnect attempts to re-establish the syslog connection.
func (w *SyslogWriter) reconnect() {
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}

	conn, err := net.DialTimeout(w.config.Protocol, w.config.addr(), 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[syslog] Failed to reconnect: %v\n", err)
		return
	}
	w.conn = conn
}

// Close closes the syslog connection.
func (w *SyslogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		err := w.conn.Close()
		w.conn = nil
		return err
	}
	return nil
}

// MultiWriter combines multiple io.Writers (e.g., stderr + syslog).
func MultiWriter(writers ...io.Writer) io.Writer {
	return io.MultiWriter(writers...)
}
