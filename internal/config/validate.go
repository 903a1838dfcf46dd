package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"grimm.is/sockd/internal/logging"
	"grimm.is/sockd/internal/services"
)

// ValidationError is one problem found in a configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks the configuration without touching the system databases.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Runlevel < 0 || c.Runlevel > services.LevelS {
		add("runlevel", "must be between 0 and %d", services.LevelS)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		add("log_level", "%v", err)
	}
	if c.MetricsListen != "" {
		if _, _, err := net.SplitHostPort(c.MetricsListen); err != nil {
			add("metrics_listen", "%v", err)
		}
	}
	if s := c.Syslog; s != nil {
		if s.Host == "" {
			add("syslog.host", "is required")
		}
		if s.Protocol != "" && s.Protocol != "udp" && s.Protocol != "tcp" {
			add("syslog.protocol", "must be udp or tcp, got %q", s.Protocol)
		}
		if s.Port < 0 || s.Port > 65535 {
			add("syslog.port", "out of range")
		}
	}

	errs = append(errs, c.validateServices()...)
	return errs
}

func (c *Config) validateServices() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	for i, line := range c.Inetd {
		if _, err := ParseLine(line); err != nil {
			add(fmt.Sprintf("inetd[%d]", i), "%v", err)
		}
	}

	all, err := c.AllServices()
	if err != nil {
		// Already reported per line above.
		all = c.Services
	}

	seen := make(map[string]bool)
	for _, sc := range all {
		field := fmt.Sprintf("service[%q]", sc.Endpoint)
		if seen[sc.Endpoint] {
			add(field, "duplicate endpoint")
		}
		seen[sc.Endpoint] = true

		if _, err := sc.Entry(); err != nil {
			add(field, "%v", err)
		}
		if !filepath.IsAbs(sc.Command) {
			add(field+".command", "must be an absolute path, got %q", sc.Command)
		}
	}
	return errs
}
