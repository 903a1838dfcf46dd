package config

import (
	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/services"
)

// AllServices returns the service blocks followed by the parsed inetd lines.
func (c *Config) AllServices() ([]ServiceConfig, error) {
	out := make([]ServiceConfig, 0, len(c.Services)+len(c.Inetd))
	out = append(out, c.Services...)
	for i, line := range c.Inetd {
		sc, err := ParseLine(line)
		if err != nil {
			return nil, errors.Attr(err, "inetd", i)
		}
		out = append(out, sc)
	}
	return out, nil
}

// Entries converts every configured service into a registry entry.
func (c *Config) Entries() ([]services.Entry, error) {
	all, err := c.AllServices()
	if err != nil {
		return nil, err
	}

	entries := make([]services.Entry, 0, len(all))
	for _, sc := range all {
		e, err := sc.Entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Entry converts one service into a registry entry.
func (s ServiceConfig) Entry() (services.Entry, error) {
	spec, err := ParseEndpoint(s.Endpoint)
	if err != nil {
		return services.Entry{}, err
	}

	switch s.Mode {
	case ModeNowait, "":
		spec.Forking = true
	case ModeWait:
		spec.Forking = false
	default:
		return services.Entry{}, errors.Errorf(errors.KindInvalid, "%s: invalid mode %q, want wait or nowait", s.Endpoint, s.Mode)
	}

	levels := s.Runlevels
	if levels == "" {
		levels = DefaultRunlevels
	}
	rl, err := services.ParseRunlevels(levels)
	if err != nil {
		return services.Entry{}, errors.Attr(err, "service", s.Endpoint)
	}

	return services.Entry{
		Name:      s.Endpoint,
		Spec:      spec,
		Path:      s.Command,
		Args:      s.Args,
		Runlevels: rl,
		Enabled:   s.IsEnabled(),
	}, nil
}
