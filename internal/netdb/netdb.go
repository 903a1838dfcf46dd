// Package netdb resolves service and protocol names the way getservbyname(3)
// and getprotobyname(3) do, from /etc/services and /etc/protocols.
package netdb

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"grimm.is/sockd/internal/errors"
)

const (
	// ServicesPath is the system service database.
	ServicesPath = "/etc/services"
	// ProtocolsPath is the system protocol database.
	ProtocolsPath = "/etc/protocols"
)

// Servent is one service database entry.
type Servent struct {
	Name    string
	Aliases []string
	Port    uint16
	Proto   string
}

// Protoent is one protocol database entry.
type Protoent struct {
	Name    string
	Aliases []string
	Number  int
}

// Database answers service and protocol lookups.
type Database interface {
	LookupService(name, proto string) (Servent, error)
	LookupProtocol(name string) (Protoent, error)
}

// Static is an in-memory Database. The zero value is empty.
type Static struct {
	services  []Servent
	protocols []Protoent
}

// NewStatic builds a Database from explicit entries.
func NewStatic(services []Servent, protocols []Protoent) *Static {
	return &Static{services: services, protocols: protocols}
}

// LookupService finds the first entry whose name or alias equals name and
// whose protocol equals proto. Comparison is exact, as in getservbyname(3).
func (s *Static) LookupService(name, proto string) (Servent, error) {
	for _, sv := range s.services {
		if sv.Proto != proto {
			continue
		}
		if sv.Name == name || contains(sv.Aliases, name) {
			return sv, nil
		}
	}
	return Servent{}, errors.Errorf(errors.KindLookup, "unknown service %s/%s", name, proto)
}

// LookupProtocol finds a protocol by name or alias.
func (s *Static) LookupProtocol(name string) (Protoent, error) {
	for _, p := range s.protocols {
		if p.Name == name || contains(p.Aliases, name) {
			return p, nil
		}
	}
	return Protoent{}, errors.Errorf(errors.KindLookup, "unknown protocol %s", name)
}

// Services returns a copy of the service entries.
func (s *Static) Services() []Servent {
	return append([]Servent(nil), s.services...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Load reads the service and protocol databases from the given paths. A
// missing file is replaced by the built-in table; any other read error is
// returned.
func Load(servicesPath, protocolsPath string) (*Static, error) {
	db := &Static{}

	services, err := readFile(servicesPath, ParseServices)
	switch {
	case err == nil:
		db.services = services
	case os.IsNotExist(err):
		db.services = builtinServices()
	default:
		return nil, errors.Wrapf(err, errors.KindLookup, "read %s", servicesPath)
	}

	protocols, err := readFile(protocolsPath, ParseProtocols)
	switch {
	case err == nil:
		db.protocols = protocols
	case os.IsNotExist(err):
		db.protocols = builtinProtocols()
	default:
		return nil, errors.Wrapf(err, errors.KindLookup, "read %s", protocolsPath)
	}

	return db, nil
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

// ParseServices parses services(5) format: "name port/proto [aliases...] [# comment]".
// Malformed lines are skipped.
func ParseServices(r io.Reader) ([]Servent, error) {
	var out []Servent
	err := scanFields(r, func(fields []string) {
		if len(fields) < 2 {
			return
		}
		portStr, proto, ok := strings.Cut(fields[1], "/")
		if !ok || proto == "" {
			return
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return
		}
		out = append(out, Servent{
			Name:    fields[0],
			Aliases: fields[2:],
			Port:    uint16(port),
			Proto:   proto,
		})
	})
	return out, err
}

// ParseProtocols parses protocols(5) format: "name number [aliases...] [# comment]".
func ParseProtocols(r io.Reader) ([]Protoent, error) {
	var out []Protoent
	err := scanFields(r, func(fields []string) {
		if len(fields) < 2 {
			return
		}
		num, err := strconv.Atoi(fields[1])
		if err != nil || num < 0 {
			return
		}
		out = append(out, Protoent{
			Name:    fields[0],
			Aliases: fields[2:],
			Number:  num,
		})
	})
	return out, err
}

func scanFields(r io.Reader, fn func([]string)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		fn(fields)
	}
	return sc.Err()
}
