package netsvc

import (
	"expvar"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
)

const (
	DefaultListenURL      = "tcp://:8080"
	DefaultReadLimit      = 1460
	DefaultQueueSize      = 64
	DefaultNetworkTimeout = 100 * time.Millisecond
)

var ErrClosing = fmt.Errorf("closing")

type ListenOptions struct {
	StreamURL      string
	NetworkTimeout time.Duration // reply write deadline
	ReadLimit      uint32
	QueueSize      int
}

// TCP accepts stream connections and turns them into events.
type TCP struct {
	alive  *alive.Alive
	log    *log2.Log
	ll     net.Listener
	events chan Event
	seq    uint64
	opt    ListenOptions
	conns  struct {
		sync.Mutex
		m map[uint64]*streamConn
	}
	closeOnce sync.Once
	readBytes expvar.Int // all connections, including dropped payloads
}

var _ Source = &TCP{}

// Listen binds immediately, accept runs in background until Close.
func Listen(log *log2.Log, opt ListenOptions) (*TCP, error) {
	if opt.StreamURL == "" {
		opt.StreamURL = DefaultListenURL
	}
	if opt.ReadLimit == 0 {
		opt.ReadLimit = DefaultReadLimit
	}
	if opt.QueueSize <= 0 {
		opt.QueueSize = DefaultQueueSize
	}
	if opt.NetworkTimeout == 0 {
		opt.NetworkTimeout = DefaultNetworkTimeout
	}
	scheme, hostport, err := parseURI(opt.StreamURL)
	if err != nil {
		return nil, errors.Annotate(err, "parse url")
	}
	switch scheme {
	case "tcp", "tcp4", "tcp6", "unix":
	default:
		return nil, errors.NotSupportedf("listen url=%s", opt.StreamURL)
	}
	ll, err := net.Listen(scheme, hostport)
	if err != nil {
		return nil, errors.Annotatef(err, "net.Listen network=%s address=%s", scheme, hostport)
	}

	s := &TCP{
		alive:  alive.NewAlive(),
		log:    log,
		ll:     ll,
		events: make(chan Event, opt.QueueSize),
		opt:    opt,
	}
	s.conns.m = make(map[uint64]*streamConn)
	s.alive.Add(1)
	go s.acceptLoop()
	s.log.Debugf("listen url=%s addr=%s", opt.StreamURL, s.Addr())
	return s, nil
}

func (s *TCP) Addr() string { return addrString(s.ll.Addr()) }

func (s *TCP) Options() ListenOptions { return s.opt }

func (s *TCP) ReadBytes() int64 { return s.readBytes.Value() }

// Poll returns queued events, at most queue size at once. Never blocks.
func (s *TCP) Poll() []Event {
	var evs []Event
	for i := 0; i < cap(s.events); i++ {
		select {
		case e := <-s.events:
			evs = append(evs, e)
		default:
			return evs
		}
	}
	return evs
}

// Close stops accepting, closes all connections and waits for background goroutines.
func (s *TCP) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.alive.Stop()
		err = s.ll.Close()
		s.conns.Lock()
		for _, c := range s.conns.m {
			_ = c.Close()
		}
		s.conns.Unlock()
		s.alive.Wait()
	})
	return err
}

func (s *TCP) emit(e Event) bool {
	select {
	case s.events <- e:
		return true
	case <-s.alive.StopChan():
		return false
	}
}

func (s *TCP) acceptLoop() {
	defer s.alive.Done()
	for {
		nc, err := s.ll.Accept()
		if !s.alive.IsRunning() {
			if nc != nil {
				_ = nc.Close()
			}
			return
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				s.log.Debugf("accept temporary err=%v", err)
				time.Sleep(10 * time.Millisecond)
				continue
			}
			s.log.Error(errors.Annotatef(err, "accept listen=%s", s.Addr()))
			return
		}

		if !s.alive.Add(1) {
			_ = nc.Close()
			return
		}
		c := &streamConn{id: atomic.AddUint64(&s.seq, 1), nc: nc, addr: addrString(nc.RemoteAddr())}
		s.conns.Lock()
		s.conns.m[c.id] = c
		running := s.alive.IsRunning() // Close sweeps conns after Stop
		s.conns.Unlock()
		if !running || !s.emit(Event{Kind: EventAccepted, Conn: c}) {
			s.forget(c)
			_ = c.Close()
			s.alive.Done()
			return
		}
		go s.readLoop(c)
	}
}

func (s *TCP) readLoop(c *streamConn) {
	defer s.alive.Done()
	defer s.forget(c)
	r := helpers.NewStatReader(c.nc, &s.readBytes, 0)
	for {
		buf := make([]byte, s.opt.ReadLimit)
		n, err := r.Read(buf)
		if n > 0 || err == nil {
			if !s.emit(Event{Kind: EventReceived, Conn: c, Data: buf[:n]}) {
				_ = c.Close()
				return
			}
		}
		if err != nil {
			if !s.alive.IsRunning() {
				err = ErrClosing
			}
			s.emit(Event{Kind: EventClosed, Conn: c, Err: err})
			return
		}
	}
}

func (s *TCP) forget(c *streamConn) {
	s.conns.Lock()
	delete(s.conns.m, c.id)
	s.conns.Unlock()
}

type streamConn struct {
	id     uint64
	nc     net.Conn
	addr   string
	closed uint32
}

func (c *streamConn) ID() uint64                         { return c.id }
func (c *streamConn) String() string                     { return fmt.Sprintf("%d/%s", c.id, c.addr) }
func (c *streamConn) Write(b []byte) (int, error)        { return c.nc.Write(b) }
func (c *streamConn) SetWriteDeadline(t time.Time) error { return c.nc.SetWriteDeadline(t) }

func (c *streamConn) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closed, 0, 1) {
		return nil
	}
	return c.nc.Close()
}
