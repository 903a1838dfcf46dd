package config

import (
	"grimm.is/sockd/internal/logging"
	"grimm.is/sockd/internal/netdb"
)

// Defaults.
const (
	DefaultRunlevel  = 2
	DefaultLogLevel  = "info"
	DefaultPIDFile   = "/run/sockd.pid"
	DefaultRunlevels = "[2345]"
)

// Config is the top-level sockd configuration.
type Config struct {
	Runlevel      int             `hcl:"runlevel,optional"`
	LogLevel      string          `hcl:"log_level,optional"`
	LogJSON       bool            `hcl:"log_json,optional"`
	PIDFile       string          `hcl:"pid_file,optional"`
	MetricsListen string          `hcl:"metrics_listen,optional"`
	ServicesFile  string          `hcl:"services_file,optional"`
	ProtocolsFile string          `hcl:"protocols_file,optional"`
	Syslog        *Syslog         `hcl:"syslog,block"`
	Services      []ServiceConfig `hcl:"service,block"`
	Inetd         []string        `hcl:"inetd,optional"`
}

// Syslog configures remote logging.
type Syslog struct {
	Host     string `hcl:"host"`
	Port     int    `hcl:"port,optional"`
	Protocol string `hcl:"protocol,optional"`
	Tag      string `hcl:"tag,optional"`
	Facility int    `hcl:"facility,optional"`
}

// ServiceConfig is one service block, labelled with its endpoint.
type ServiceConfig struct {
	Endpoint  string   `hcl:"endpoint,label"`
	Mode      string   `hcl:"mode,optional"`
	Runlevels string   `hcl:"runlevels,optional"`
	Command   string   `hcl:"command"`
	Args      []string `hcl:"args,optional"`
	Enabled   *bool    `hcl:"enabled,optional"`
}

// Dispatch modes.
const (
	ModeWait   = "wait"
	ModeNowait = "nowait"
)

// Default returns a configuration with every default applied and no services.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Runlevel == 0 {
		c.Runlevel = DefaultRunlevel
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.PIDFile == "" {
		c.PIDFile = DefaultPIDFile
	}
	if c.ServicesFile == "" {
		c.ServicesFile = netdb.ServicesPath
	}
	if c.ProtocolsFile == "" {
		c.ProtocolsFile = netdb.ProtocolsPath
	}
	for i := range c.Services {
		s := &c.Services[i]
		if s.Mode == "" {
			s.Mode = ModeNowait
		}
		if s.Runlevels == "" {
			s.Runlevels = DefaultRunlevels
		}
	}
}

// IsEnabled reports whether the service should be started. Services are
// enabled unless they say otherwise.
func (s ServiceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// SyslogConfig converts the syslog block for the logging package.
func (c *Config) SyslogConfig() logging.SyslogConfig {
	out := logging.DefaultSyslogConfig()
	if c.Syslog == nil {
		return out
	}
	out.Enabled = true
	out.Host = c.Syslog.Host
	if c.Syslog.Port != 0 {
		out.Port = c.Syslog.Port
	}
	if c.Syslog.Protocol != "" {
		out.Protocol = c.Syslog.Protocol
	}
	if c.Syslog.Tag != "" {
		out.Tag = c.Syslog.Tag
	}
	if c.Syslog.Facility != 0 {
		out.Facility = c.Syslog.Facility
	}
	return out
}
