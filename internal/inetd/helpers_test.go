package inetd

import (
	"iter"
	"slices"
	"testing"

	"grimm.is/sockd/internal/metrics"
	"grimm.is/sockd/internal/netdb"
	"grimm.is/sockd/internal/reactor"
	"grimm.is/sockd/internal/testutil"
)

type fakeRecord struct {
	cmd    string
	b      Binding
	levels []int
	pid    int
}

func (r *fakeRecord) Inetd() *Binding { return &r.b }
func (r *fakeRecord) InRunlevel(level int) bool { return slices.Contains(r.levels, level) }
func (r *fakeRecord) PID() int { return r.pid }
func (r *fakeRecord) SetPID(pid int) { r.pid = pid }
func (r *fakeRecord) Command() string { return r.cmd }

type fakeRegistry struct {
	recs []*fakeRecord
}

func (f *fakeRegistry) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range f.recs {
			if !yield(r) {
				return
			}
		}
	}
}

func (f *fakeRegistry) add(cmd string, levels ...int) *fakeRecord {
	r := &fakeRecord{cmd: cmd, levels: levels}
	f.recs = append(f.recs, r)
	return r
}

type fakeHandle struct {
	fd       int
	active   bool
	closed   bool
	enables  int
	disables int
}

func (h *fakeHandle) FD() int { return h.fd }
func (h *fakeHandle) Active() bool { return h.active && !h.closed }

func (h *fakeHandle) Enable() error {
	h.enables++
	h.active = true
	return nil
}

func (h *fakeHandle) Disable() error {
	h.disables++
	h.active = false
	return nil
}

func (h *fakeHandle) Close() error {
	h.closed = true
	h.active = false
	return nil
}

type fakeReactor struct {
	handles map[int]*fakeHandle
	cbs     map[int]reactor.Callback
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{handles: map[int]*fakeHandle{}, cbs: map[int]reactor.Callback{}}
}

func (r *fakeReactor) Register(fd int, cb reactor.Callback) (reactor.Handle, error) {
	h := &fakeHandle{fd: fd, active: true}
	r.handles[fd] = h
	r.cbs[fd] = cb
	return h, nil
}

// fire invokes the readiness callback the way the reactor would.
func (r *fakeReactor) fire(b *Binding) {
	h := r.handles[b.fd()]
	r.cbs[h.fd](h)
}

type started struct {
	rec Record
	fd  int
}

type fakeLauncher struct {
	decision Decision
	err      error
	nextPID  int
	starts   []started
}

func (l *fakeLauncher) Startable(Record) Decision { return l.decision }

func (l *fakeLauncher) Start(rec Record, fd int) error {
	l.starts = append(l.starts, started{rec: rec, fd: fd})
	if l.err != nil {
		return l.err
	}
	l.nextPID++
	rec.SetPID(l.nextPID)
	return nil
}

type fakeResolver struct {
	iface string
	err   error
}

func (r *fakeResolver) StreamInterface(int) (string, error) { return r.iface, r.err }
func (r *fakeResolver) DatagramInterface(int) (string, error) { return r.iface, r.err }

func testDB() *netdb.Static {
	return netdb.NewStatic(
		[]netdb.Servent{
			{Name: "ssh", Port: 22, Proto: "tcp"},
			{Name: "telnet", Port: 23, Proto: "tcp"},
			{Name: "time", Aliases: []string{"timserver"}, Port: 37, Proto: "tcp"},
			{Name: "time", Aliases: []string{"timserver"}, Port: 37, Proto: "udp"},
			{Name: "discard", Port: 9, Proto: "sctp"},
		},
		[]netdb.Protoent{
			{Name: "tcp", Aliases: []string{"TCP"}, Number: 6},
			{Name: "udp", Aliases: []string{"UDP"}, Number: 17},
			{Name: "sctp", Aliases: []string{"SCTP"}, Number: 132},
		},
	)
}

type harness struct {
	reg      *fakeRegistry
	reactor  *fakeReactor
	launcher *fakeLauncher
	resolver *fakeResolver
	metrics  *metrics.Registry
	mgr      *Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		reg:      &fakeRegistry{},
		reactor:  newFakeReactor(),
		launcher: &fakeLauncher{decision: Start, nextPID: 1000},
		resolver: &fakeResolver{},
		metrics:  metrics.New(),
	}
	h.mgr = NewManager(Deps{
		DB:       testDB(),
		Registry: h.reg,
		Launcher: h.launcher,
		Reactor:  h.reactor,
		Resolver: h.resolver,
		Metrics:  h.metrics,
		Logger:   testutil.Logger(t),
	})
	return h
}

// register adds a record and registers its binding, failing the test on error.
func (h *harness) register(t *testing.T, spec Spec, levels ...int) *fakeRecord {
	t.Helper()
	rec := h.reg.add("/usr/sbin/"+spec.Service+"d", levels...)
	if err := h.mgr.Register(rec.Inetd(), spec); err != nil {
		t.Fatalf("register %+v: %v", spec, err)
	}
	return rec
}
