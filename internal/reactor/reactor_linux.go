//go:build linux

package reactor

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"grimm.is/sockd/internal/logging"
)

const maxEvents = 32

// Reactor multiplexes read-readiness with epoll, level-triggered.
type Reactor struct {
	epfd   int
	wakefd int
	logger *logging.Logger

	// Owned by the Run goroutine.
	watches map[int]*watch

	mu      sync.Mutex
	pending []func()
	closed  bool
}

type watch struct {
	r      *Reactor
	fd     int
	cb     Callback
	active bool
	gone   bool
}

// New creates an epoll instance and its wakeup eventfd.
func New(logger *logging.Logger) (*Reactor, error) {
	if logger == nil {
		logger = logging.WithComponent("reactor")
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("failed to create epoll instance: %w", err)
	}

	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("failed to create eventfd: %w", err)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, fmt.Errorf("failed to watch eventfd: %w", err)
	}

	return &Reactor{
		epfd:    epfd,
		wakefd:  wakefd,
		logger:  logger,
		watches: make(map[int]*watch),
	}, nil
}

// Register adds read interest for fd. Call it from the reactor goroutine, or
// before Run starts.
func (r *Reactor) Register(fd int, cb Callback) (Handle, error) {
	if _, ok := r.watches[fd]; ok {
		return nil, fmt.Errorf("fd %d already registered", fd)
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return nil, fmt.Errorf("failed to add fd %d to epoll: %w", fd, err)
	}

	w := &watch{r: r, fd: fd, cb: cb, active: true}
	r.watches[fd] = w
	r.logger.Debug("Watching descriptor", "fd", fd)
	return w, nil
}

// Post queues fn to run on the reactor goroutine. Safe from any goroutine.
func (r *Reactor) Post(fn func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.pending = append(r.pending, fn)
	r.mu.Unlock()
	r.wake()
}

func (r *Reactor) wake() {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	// EAGAIN means the counter is already non-zero; the loop will wake anyway.
	_, _ = unix.Write(r.wakefd, buf[:])
}

// Run dispatches events until ctx is cancelled.
func (r *Reactor) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, r.wake)
	defer stop()

	events := make([]unix.EpollEvent, maxEvents)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == r.wakefd {
				r.drainWake()
				continue
			}
			w, ok := r.watches[fd]
			if !ok || !w.active {
				continue
			}
			w.cb(w)
		}

		r.runPending()
	}
}

func (r *Reactor) drainWake() {
	var buf [8]byte
	_, _ = unix.Read(r.wakefd, buf[:])
}

func (r *Reactor) runPending() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
}

// Close releases the epoll instance. Registered descriptors are not closed.
func (r *Reactor) Close() error {
	r.mu.Lock()
	r.closed = true
	r.pending = nil
	r.mu.Unlock()

	unix.Close(r.wakefd)
	return unix.Close(r.epfd)
}

func (w *watch) FD() int { return w.fd }

func (w *watch) Active() bool { return w.active && !w.gone }

func (w *watch) Enable() error {
	return w.set(true)
}

func (w *watch) Disable() error {
	return w.set(false)
}

func (w *watch) set(active bool) error {
	if w.gone {
		return fmt.Errorf("fd %d is no longer registered", w.fd)
	}
	if w.active == active {
		return nil
	}

	var events uint32
	if active {
		events = unix.EPOLLIN
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(w.fd)}
	if err := unix.EpollCtl(w.r.epfd, unix.EPOLL_CTL_MOD, w.fd, &ev); err != nil {
		return fmt.Errorf("failed to modify fd %d: %w", w.fd, err)
	}
	w.active = active
	return nil
}

func (w *watch) Close() error {
	if w.gone {
		return nil
	}
	w.gone = true
	w.active = false
	delete(w.r.watches, w.fd)

	if err := unix.EpollCtl(w.r.epfd, unix.EPOLL_CTL_DEL, w.fd, nil); err != nil {
		return fmt.Errorf("failed to remove fd %d from epoll: %w", w.fd, err)
	}
	return nil
}
