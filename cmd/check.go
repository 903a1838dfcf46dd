package cmd

import (
	"io"

	"gopkg.in/yaml.v2"

	"grimm.is/sockd/internal/brand"
	"grimm.is/sockd/internal/config"
	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/inetd"
	"grimm.is/sockd/internal/metrics"
	"grimm.is/sockd/internal/netdb"
	"grimm.is/sockd/internal/services"
)

// Report is what check prints with -v: the services as the daemon would
// register them, with their final filter rules.
type Report struct {
	Runlevel int             `yaml:"runlevel"`
	Services []ServiceReport `yaml:"services"`
	Errors   []string        `yaml:"errors,omitempty"`
}

// ServiceReport describes one registered service.
type ServiceReport struct {
	Name      string   `yaml:"name"`
	Command   string   `yaml:"command"`
	Socket    string   `yaml:"socket"`
	Port      uint16   `yaml:"port"`
	Standard  bool     `yaml:"standard"`
	Mode      string   `yaml:"mode"`
	Runlevels string   `yaml:"runlevels"`
	Enabled   bool     `yaml:"enabled"`
	Rules     []string `yaml:"rules"`
}

// Check registers cfg's services against db without opening any socket.
// Entries that fail to register are listed in the report's Errors.
func Check(cfg *config.Config, db netdb.Database) (*Report, error) {
	entries, err := cfg.Entries()
	if err != nil {
		return nil, err
	}

	reg := services.NewRegistry()
	mgr := inetd.NewManager(inetd.Deps{
		DB:       db,
		Registry: reg,
		Metrics:  metrics.New(),
	})

	report := &Report{Runlevel: cfg.Runlevel}
	for _, e := range entries {
		if _, _, err := reg.RegisterInetd(mgr, e); err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
	}

	for _, svc := range reg.Services() {
		b := &svc.Binding
		mode := config.ModeWait
		if b.Forking {
			mode = config.ModeNowait
		}
		sr := ServiceReport{
			Name:      svc.Name,
			Command:   svc.Path,
			Socket:    b.String(),
			Port:      b.Port,
			Standard:  b.Standard,
			Mode:      mode,
			Runlevels: svc.Runlevels.String(),
			Enabled:   svc.Enabled,
		}
		for _, r := range b.Rules() {
			sr.Rules = append(sr.Rules, ruleString(r))
		}
		report.Services = append(report.Services, sr)
	}
	return report, nil
}

func ruleString(r inetd.Rule) string {
	iface := r.Interface
	if iface == inetd.Wildcard {
		iface = "*"
	}
	if r.Deny {
		return "deny " + iface
	}
	return "allow " + iface
}

// RunCheck validates the configuration file syntax and semantics. With
// verbose it also prints the registration report as YAML.
func RunCheck(configFile string, verbose bool, w io.Writer) error {
	if len(configFile) == 0 {
		return errors.Errorf(errors.KindInvalid, "usage: %s check [-v] <config-file>\nExample: %s check -v %s",
			brand.BinaryName, brand.BinaryName, brand.ConfigPath())
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return errors.Wrap(err, errors.KindInvalid, "configuration invalid")
	}
	if errs := cfg.Validate(); errs.HasErrors() {
		return errors.Wrap(errs, errors.KindInvalid, "configuration invalid")
	}

	db, err := netdb.Load(cfg.ServicesFile, cfg.ProtocolsFile)
	if err != nil {
		return err
	}

	report, err := Check(cfg, db)
	if err != nil {
		return errors.Wrap(err, errors.KindInvalid, "configuration invalid")
	}
	if len(report.Errors) > 0 && len(report.Services) == 0 {
		return errors.Errorf(errors.KindInvalid, "configuration invalid: no service could be registered: %s", report.Errors[0])
	}

	Printer.Fprintf(w, "Configuration valid!\n")
	Printer.Fprintf(w, "Runlevel: %d\n", cfg.Runlevel)
	Printer.Fprintf(w, "Services: %d\n", len(report.Services))
	if len(report.Errors) > 0 {
		Printer.Fprintf(w, "Skipped: %d\n", len(report.Errors))
	}

	if verbose {
		out, err := yaml.Marshal(report)
		if err != nil {
			return errors.Wrap(err, errors.KindInternal, "failed to encode report")
		}
		Printer.Fprintln(w)
		w.Write(out)
	}
	return nil
}
