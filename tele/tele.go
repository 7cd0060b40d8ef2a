// Package tele is optional telemetry uplink, node side.
package tele

import (
	"context"
	"expvar"
	"fmt"
	"time"

	"github.com/fsae-telemetry/telenode/log2"
	"github.com/fsae-telemetry/telenode/mode"
	"github.com/fsae-telemetry/telenode/state"
	"github.com/golang/protobuf/proto"
	"github.com/juju/errors"
)

//go:generate protoc --go_out=./ tele.proto

// Teler contract:
// - Init() fails only with invalid config, network issues ignored
// - Report() never blocks on network, returns false when not due or not sent
// - messages may be lost while broker is unreachable
type Teler interface {
	Init(ctx context.Context, log *log2.Log, nodeID string, c state.TeleConfig) error
	Report(now time.Time, t *Telemetry) bool
	Close()
}

type Noop struct{}

var _ Teler = Noop{} // compile-time interface test

func (Noop) Init(context.Context, *log2.Log, string, state.TeleConfig) error { return nil }
func (Noop) Report(time.Time, *Telemetry) bool                              { return false }
func (Noop) Close()                                                         {}

type Stat struct {
	Sent    expvar.Int
	Failed  expvar.Int
	Skipped expvar.Int
}

func (s *Stat) String() string {
	return fmt.Sprintf(`{"sent":%d,"failed":%d,"skipped":%d}`, s.Sent.Value(), s.Failed.Value(), s.Skipped.Value())
}

type tele struct {
	Stat Stat

	config    state.TeleConfig
	log       *log2.Log
	transport Transporter
	interval  time.Duration
	last      time.Time
}

func New() Teler { return &tele{} }
func NewWithTransporter(trans Transporter) Teler {
	return &tele{transport: trans}
}

func (self *tele) Init(ctx context.Context, log *log2.Log, nodeID string, c state.TeleConfig) error {
	self.config = c
	self.log = log
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	self.interval = c.Interval()
	// test code sets .transport
	if self.transport == nil { // production path
		self.transport = &transportMqtt{}
	}
	if err := self.transport.Init(ctx, log, nodeID, c); err != nil {
		return errors.Annotate(err, "tele transport")
	}
	return nil
}

// Report sends t if at least interval passed since last attempt.
// First call after Init is always due.
func (self *tele) Report(now time.Time, t *Telemetry) bool {
	if !self.last.IsZero() && now.Sub(self.last) < self.interval {
		self.Stat.Skipped.Add(1)
		return false
	}
	self.last = now
	payload, err := proto.Marshal(t)
	if err != nil {
		self.log.Errorf("tele marshal err=%v", err)
		return false
	}
	if !self.transport.SendTelemetry(payload) {
		self.Stat.Failed.Add(1)
		self.log.Debugf("tele send failed len=%d", len(payload))
		return false
	}
	self.Stat.Sent.Add(1)
	return true
}

func (self *tele) Close() {
	if self.transport != nil {
		self.transport.CloseTele()
	}
}

// Snapshot builds telemetry message from shared state.
func Snapshot(nodeID string, now time.Time, sh *state.Shared, connected bool) *Telemetry {
	t := &Telemetry{
		NodeId:      nodeID,
		Time:        now.UnixNano(),
		Temperature: float32(sh.Reading),
		Messages:    sh.Messages,
		Connected:   connected,
	}
	if sh.Mode.Current() == mode.ModeMessage {
		t.Mode = 1
	}
	return t
}
