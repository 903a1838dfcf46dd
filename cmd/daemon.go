package cmd

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"grimm.is/sockd/internal/brand"
	"grimm.is/sockd/internal/config"
	"grimm.is/sockd/internal/errors"
	"grimm.is/sockd/internal/inetd"
	"grimm.is/sockd/internal/logging"
	"grimm.is/sockd/internal/metrics"
	"grimm.is/sockd/internal/monitor"
	"grimm.is/sockd/internal/netdb"
	"grimm.is/sockd/internal/reactor"
	"grimm.is/sockd/internal/services"
)

// Options are the run command's flags.
type Options struct {
	ConfigFile string
	Runlevel   int // overrides the configured runlevel at startup when non-zero
	Debug      bool
}

// Daemon owns the reactor and everything it drives.
type Daemon struct {
	cfg        *config.Config
	configFile string
	logger     *logging.Logger
	metrics    *metrics.Registry

	reactor    *reactor.Reactor
	registry   *services.Registry
	supervisor *services.Supervisor
	manager    *inetd.Manager
}

// NewDaemon wires a daemon for cfg. No services are registered yet.
func NewDaemon(cfg *config.Config, db netdb.Database, level int, logger *logging.Logger, m *metrics.Registry) (*Daemon, error) {
	r, err := reactor.New(logger.WithComponent("reactor"))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "failed to create reactor")
	}

	d := &Daemon{
		cfg:        cfg,
		logger:     logger.WithComponent("daemon"),
		metrics:    m,
		reactor:    r,
		registry:   services.NewRegistry(),
		supervisor: services.NewSupervisor(level, logger.WithComponent("services")),
	}
	d.manager = inetd.NewManager(inetd.Deps{
		DB:       db,
		Registry: d.registry,
		Launcher: d.supervisor,
		Reactor:  r,
		Resolver: inetd.NewSocketResolver(nil),
		Metrics:  m,
		Logger:   logger.WithComponent("inetd"),
	})
	return d, nil
}

// Register adds every entry to the registry. A bad entry is logged and
// skipped so the rest still come up; the failures are returned.
func (d *Daemon) Register(entries []services.Entry) []error {
	var failed []error
	for _, e := range entries {
		svc, reused, err := d.registry.RegisterInetd(d.manager, e)
		if err != nil {
			d.logger.Error("skipping service", "service", e.Name, "error", err)
			failed = append(failed, err)
			continue
		}
		if reused {
			d.logger.Info("extended service", "service", svc.Name, "interface", e.Spec.Interface)
			continue
		}
		d.logger.Debug("registered service", "service", svc.Name, "binding", svc.Binding.String())
	}
	return failed
}

// Run serves until ctx is cancelled, then closes every socket.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.reactor.Close()

	g, gctx := errgroup.WithContext(ctx)

	d.reactor.Post(func() {
		if failed := d.manager.RunlevelActivate(d.supervisor.Runlevel()); failed > 0 {
			d.logger.Warn("some services have no socket", "failed", failed)
		}
	})
	g.Go(func() error {
		return d.reactor.Run(gctx)
	})

	if d.configFile != "" {
		g.Go(func() error {
			return d.watchReload(gctx)
		})
	}

	mon := monitor.New(d.reactor, d.handleExit, d.logger.WithComponent("monitor"))
	g.Go(func() error {
		return mon.Run(gctx)
	})

	if addr := d.cfg.MetricsListen; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", d.metrics.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			d.logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrapf(err, errors.KindUnavailable, "metrics listener %s", addr)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()

	// The reactor has returned, so nothing else touches the bindings.
	d.manager.Shutdown()
	d.logger.Info("stopped")
	return err
}

// SwitchRunlevel moves the daemon to level. Bindings configured for level
// are activated; handlers outside it are no longer started. It must run on
// the reactor goroutine.
func (d *Daemon) SwitchRunlevel(level int) {
	prev := d.supervisor.Runlevel()
	if level == prev {
		return
	}
	d.supervisor.SetRunlevel(level)
	failed := d.manager.RunlevelActivate(level)
	d.logger.Info("runlevel changed", "from", prev, "to", level, "failed", failed)
}

// watchReload re-reads the configured runlevel on SIGHUP and switches to it.
func (d *Daemon) watchReload(ctx context.Context) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigs:
			level, err := d.reloadRunlevel()
			if err != nil {
				d.logger.Error("reload failed", "path", d.configFile, "error", err)
				continue
			}
			d.reactor.Post(func() { d.SwitchRunlevel(level) })
		}
	}
}

func (d *Daemon) reloadRunlevel() (int, error) {
	cfg, err := config.LoadFile(d.configFile)
	if err != nil {
		return 0, err
	}
	if errs := cfg.Validate(); errs.HasErrors() {
		return 0, errors.Wrap(errs, errors.KindInvalid, "configuration invalid")
	}
	return cfg.Runlevel, nil
}

func (d *Daemon) handleExit(ev monitor.ExitEvent) {
	svc, known := d.registry.ByPID(ev.PID)
	if !d.manager.Respawn(ev.PID) {
		d.metrics.UnhandledExits.Inc()
		d.logger.Debug("reaped unknown child", "pid", ev.PID)
		return
	}

	name := "unknown"
	if known {
		name = svc.Binding.Name
	}
	d.metrics.RecordChildExit(name, ev.Crashed())
	if ev.Crashed() {
		d.logger.Warn("handler crashed", "service", name, "pid", ev.PID,
			"exit_code", ev.ExitCode, "signal", ev.Signal.String(), "core_dump", ev.CoreDump)
	}
}

// RunDaemon loads the configuration, takes the PID lock and serves until ctx
// is cancelled.
func RunDaemon(ctx context.Context, opts Options) error {
	cfg, err := config.LoadFile(opts.ConfigFile)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); errs.HasErrors() {
		return errors.Wrap(errs, errors.KindInvalid, "configuration invalid")
	}

	logger, closeLog, err := newLogger(cfg, opts.Debug)
	if err != nil {
		return err
	}
	defer closeLog()
	logging.SetDefault(logger)

	lock, err := lockPIDFile(cfg.PIDFile)
	if err != nil {
		return err
	}
	defer func() {
		os.Remove(cfg.PIDFile)
		if err := lock.Close(); err != nil {
			logger.Debug("failed to release pid lock", "path", cfg.PIDFile, "error", err)
		}
	}()

	db, err := netdb.Load(cfg.ServicesFile, cfg.ProtocolsFile)
	if err != nil {
		return err
	}

	entries, err := cfg.Entries()
	if err != nil {
		return err
	}

	level := cfg.Runlevel
	if opts.Runlevel != 0 {
		level = opts.Runlevel
	}

	d, err := NewDaemon(cfg, db, level, logger, metrics.Get())
	if err != nil {
		return err
	}
	d.configFile = opts.ConfigFile
	if failed := d.Register(entries); len(entries) > 0 && len(failed) == len(entries) {
		return errors.New(errors.KindInvalid, "no service could be registered")
	}

	logger.Info("starting", "version", brand.Version, "runlevel", level, "services", d.registry.Len())
	return d.Run(ctx)
}

func newLogger(cfg *config.Config, debug bool) (*logging.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.KindInvalid, "log_level")
	}
	if debug {
		level = logging.LevelDebug
	}

	var out io.Writer = os.Stderr
	closeLog := func() {}
	if sc := cfg.SyslogConfig(); sc.Enabled {
		w, err := logging.NewSyslogWriter(sc)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.KindUnavailable, "failed to open syslog")
		}
		out = logging.MultiWriter(os.Stderr, w)
		closeLog = func() { w.Close() }
	}

	logging.SetProcessName(brand.BinaryName)
	return logging.New(logging.Config{Level: level, Output: out, JSON: cfg.LogJSON}), closeLog, nil
}

// lockPIDFile takes an exclusive lock on path and writes our pid into it. It
// fails with KindUnavailable while another daemon holds the lock.
func lockPIDFile(path string) (*flock.Flock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindUnavailable, "failed to lock %s", path)
	}
	if !locked {
		return nil, errors.Errorf(errors.KindUnavailable, "%s is already running (%s is locked)", brand.Name, path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		fl.Close()
		return nil, errors.Wrapf(err, errors.KindUnavailable, "failed to write %s", path)
	}
	return fl, nil
}
