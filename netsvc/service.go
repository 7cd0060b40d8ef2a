package netsvc

import (
	"fmt"
	"time"

	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/fsae-telemetry/telenode/state"
	"github.com/juju/errors"
)

// ReplyFormat is written back to peer for every received payload.
const ReplyFormat = "Temperature: %.1f °C\n"

func Reply(s *state.Shared) []byte { return []byte(fmt.Sprintf(ReplyFormat, s.Reading)) }

// Service keeps at most one active connection.
// New connection overtakes previous one, payloads from others are dropped.
type Service struct {
	Stat SessionStat

	log          *log2.Log
	src          Source
	active       Conn
	writeTimeout time.Duration
}

func NewService(log *log2.Log, src Source, writeTimeout time.Duration) *Service {
	if writeTimeout <= 0 {
		writeTimeout = DefaultNetworkTimeout
	}
	return &Service{log: log, src: src, writeTimeout: writeTimeout}
}

func (s *Service) Addr() string { return s.src.Addr() }

// Connected reports whether there is an active peer.
func (s *Service) Connected() bool { return s.active != nil }

// Poll drains pending events and applies them to shared state.
// Returns number of payloads accepted into message buffer.
func (s *Service) Poll(now time.Time, sh *state.Shared) int {
	accepted := 0
	for _, e := range s.src.Poll() {
		s.log.Debugf("net event %s", e.String())
		switch e.Kind {
		case EventAccepted:
			s.Stat.Conn.Add(1)
			if s.active != nil {
				s.log.Printf("net overtake previous=%s new=%s", s.active, e.Conn)
				s.Stat.Overtake.Add(1)
				_ = s.active.Close()
			}
			s.active = e.Conn

		case EventReceived:
			if s.active == nil || e.Conn.ID() != s.active.ID() {
				s.Stat.Dropped.Add(1)
				s.log.Debugf("net drop inactive conn=%s len=%d", e.Conn, len(e.Data))
				continue
			}
			s.Stat.Recv.Register(len(e.Data))
			sh.Message.Set(e.Data)
			sh.Mode.Notify(now)
			sh.Messages++
			accepted++
			if err := s.reply(e.Conn, Reply(sh)); err != nil {
				s.log.Debugf("net reply conn=%s err=%v", e.Conn, err)
			}

		case EventClosed:
			_ = e.Conn.Close()
			if s.active != nil && e.Conn.ID() == s.active.ID() {
				s.log.Debugf("net active closed conn=%s err=%v", e.Conn, e.Err)
				s.active = nil
			}

		default:
			s.log.Errorf("code error net event=%s", e.String())
		}
	}
	return accepted
}

func (s *Service) reply(c Conn, b []byte) error {
	if err := c.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return errors.Annotate(err, "set deadline")
	}
	s.Stat.Send.Count.Add(1)
	w := helpers.NewStatWriter(c, &s.Stat.Send.Size, 0)
	return errors.Annotate(helpers.WriteAll(w, b), "write")
}

func (s *Service) Close() error {
	if s.active != nil {
		_ = s.active.Close()
		s.active = nil
	}
	return s.src.Close()
}
