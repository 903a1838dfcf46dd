package config

import (
	"strconv"
	"strings"

	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/inetd"
)

// ParseEndpoint parses "service[@iface][:port]/proto". The interface and
// port are optional; a missing port means the service's standard port.
func ParseEndpoint(s string) (inetd.Spec, error) {
	var spec inetd.Spec

	rest, proto, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || proto == "" {
		return spec, errors.Errorf(errors.KindInvalid, "endpoint %q: missing /protocol", s)
	}
	if strings.ContainsAny(proto, "/@: \t") {
		return spec, errors.Errorf(errors.KindInvalid, "endpoint %q: invalid protocol %q", s, proto)
	}
	spec.Protocol = proto

	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		port, err := strconv.ParseUint(rest[i+1:], 10, 16)
		if err != nil || port == 0 {
			return spec, errors.Errorf(errors.KindInvalid, "endpoint %q: invalid port %q", s, rest[i+1:])
		}
		spec.Port = uint16(port)
		rest = rest[:i]
	}

	if name, iface, ok := strings.Cut(rest, "@"); ok {
		if iface == "" || len(iface) > inetd.MaxInterfaceName {
			return spec, errors.Errorf(errors.KindInvalid, "endpoint %q: invalid interface %q", s, iface)
		}
		spec.Interface = iface
		rest = name
	}

	if rest == "" || strings.ContainsAny(rest, "@: \t") {
		return spec, errors.Errorf(errors.KindInvalid, "endpoint %q: invalid service name", s)
	}
	spec.Service = rest
	return spec, nil
}

// ParseLine parses a one-line inetd entry:
//
//	service[@iface][:port]/proto wait|nowait [runlevels] command [args...]
//
// The runlevel field is optional.
func ParseLine(line string) (ServiceConfig, error) {
	var sc ServiceConfig

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return sc, errors.Errorf(errors.KindInvalid, "inetd %q: want endpoint, mode and command", line)
	}
	sc.Endpoint = fields[0]
	sc.Mode = fields[1]
	fields = fields[2:]

	if strings.HasPrefix(fields[0], "[") {
		sc.Runlevels = fields[0]
		fields = fields[1:]
		if len(fields) == 0 {
			return sc, errors.Errorf(errors.KindInvalid, "inetd %q: missing command", line)
		}
	} else {
		sc.Runlevels = DefaultRunlevels
	}

	sc.Command = fields[0]
	if len(fields) > 1 {
		sc.Args = fields[1:]
	}
	return sc, nil
}
