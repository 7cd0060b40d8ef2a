// Package node is the scheduler loop tying sampler, screen, network service,
// mode state, status LED and telemetry together.
//
// All shared state is owned by the goroutine running Tick/Run.
package node

import (
	"context"
	"fmt"
	"time"

	"github.com/fsae-telemetry/telenode/hardware/adc"
	"github.com/fsae-telemetry/telenode/hardware/led"
	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/fsae-telemetry/telenode/mode"
	"github.com/fsae-telemetry/telenode/netsvc"
	"github.com/fsae-telemetry/telenode/sampler"
	"github.com/fsae-telemetry/telenode/screen"
	"github.com/fsae-telemetry/telenode/state"
	"github.com/fsae-telemetry/telenode/tele"
	"github.com/jonboulle/clockwork"
	"github.com/juju/errors"
)

type Node struct {
	Config   *state.Config
	Log      *log2.Log
	Clock    clockwork.Clock
	Hardware Hardware
	Shared   *state.Shared
	Tele     tele.Teler

	sampler *sampler.Sampler
	screen  *screen.Controller
	net     *netsvc.Service
	led     led.RGB
	ledMode mode.Mode
	ticks   uint64
}

const ledUnknown mode.Mode = 0xff

func New(c *state.Config, log *log2.Log) *Node {
	return &Node{
		Config:  c,
		Log:     log,
		Clock:   clockwork.NewRealClock(),
		Shared:  state.NewShared(&c.Node),
		ledMode: ledUnknown,
	}
}

// Start opens hardware, joins network, starts listening and sets LED green.
// Any error is fatal for the node.
func (n *Node) Start(ctx context.Context) error {
	rgb, err := n.LED()
	if err != nil {
		return errors.Annotate(err, "led")
	}
	n.led = rgb

	src, err := n.Sensor()
	if err != nil {
		return errors.Annotate(err, "sensor")
	}
	n.sampler = sampler.New(src, n.samplerConfig())

	frame, err := n.Frame()
	if err != nil {
		return errors.Annotate(err, "display")
	}
	n.screen = screen.New(frame)

	wc := &n.Config.Network.Wifi
	if err = n.Joiner().Join(ctx, wc.SSID, wc.Password, wc.Timeout()); err != nil {
		return errors.Annotatef(err, "wifi join ssid=%s", wc.SSID)
	}

	nc := &n.Config.Node
	lopt := netsvc.ListenOptions{
		StreamURL:      nc.Listen,
		NetworkTimeout: nc.ReplyTimeout(),
		ReadLimit:      uint32(nc.ReadLimit),
	}
	ts, err := netsvc.Listen(n.Log, lopt)
	if err != nil {
		return errors.Annotate(err, "listen")
	}
	n.net = netsvc.NewService(n.Log, ts, ts.Options().NetworkTimeout)
	n.Log.Infof("node id=%s listening on %s", nc.NodeID(), n.net.Addr())

	if n.Tele == nil {
		n.Tele = tele.Noop{}
		if n.Config.Tele.Enable {
			n.Tele = tele.New()
		}
	}
	teleLog := n.Log.Clone(log2.LInfo)
	if err = n.Tele.Init(ctx, teleLog, nc.NodeID(), n.Config.Tele); err != nil {
		return errors.Annotate(err, "tele")
	}

	n.splash()
	n.syncLED()
	return nil
}

func (n *Node) samplerConfig() sampler.Config {
	sc := &n.Config.Hardware.Sensor
	c := sampler.Config{
		Samples:  sc.Samples,
		Settle:   helpers.IntMicrosecondDefault(sc.SettleUs, sampler.DefaultSettle),
		RefVolts: float32(sc.RefVolts),
		Bits:     uint(sc.Bits),
		Scale:    float32(sc.Scale),
		Offset:   float32(sc.Offset),
		Max:      float32(sc.Max),
	}
	if sc.Driver == "ads1115" {
		if c.Bits == 0 {
			c.Bits = adc.ADS1115Bits
		}
		if c.RefVolts == 0 {
			c.RefVolts = adc.ADS1115RefVolts
		}
	}
	return c
}

func (n *Node) splash() {
	dc := &n.Config.Hardware.Display
	if dc.SplashSec <= 0 {
		return
	}
	addr := n.net.Addr()
	lines := []string{n.Config.Node.NodeID(), addr}
	if err := n.screen.Splash(lines, "tcp://"+addr); err != nil {
		n.Log.Debugf("splash err=%v", err)
	}
	n.Clock.Sleep(time.Duration(dc.SplashSec) * time.Second)
}

// Addr is actual listen address, valid after Start.
func (n *Node) Addr() string { return n.net.Addr() }

func (n *Node) NetStat() *netsvc.SessionStat { return &n.net.Stat }

// Tick runs one cycle: sample, render, poll network, check idle, report.
func (n *Node) Tick(ctx context.Context) {
	n.ticks++
	dbg := n.Log.Enabled(log2.LDebug)

	r, err := n.sampler.SampleErr()
	if err != nil {
		n.Log.Debugf("sample err=%v", err)
	}
	n.Shared.Reading = r

	if err := n.screen.Render(n.Shared.Mode.Current(), r, n.Shared.Message.String()); err != nil {
		n.Log.Debugf("display err=%v", err)
	}

	if got := n.net.Poll(n.Clock.Now(), n.Shared); got > 0 && dbg {
		n.Log.Debugf("tick=%d received=%d message='%s'", n.ticks, got, n.Shared.Message.String())
	}

	now := n.Clock.Now()
	if n.Shared.Mode.CheckIdle(now) {
		n.Log.Debugf("tick=%d idle, back to %s", n.ticks, n.Shared.Mode.Current())
	}
	n.syncLED()

	n.Tele.Report(now, tele.Snapshot(n.Config.Node.NodeID(), now, n.Shared, n.net.Connected()))
}

// Run repeats Tick every node.tick_ms until ctx is done.
func (n *Node) Run(ctx context.Context) error {
	interval := n.Config.Node.Tick()
	for {
		n.Tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.Clock.After(interval):
		}
	}
}

func (n *Node) Close() error {
	errs := make([]error, 0, 3)
	if n.net != nil {
		errs = append(errs, n.net.Close())
	}
	if n.Tele != nil {
		n.Tele.Close()
	}
	errs = append(errs, n.closeHardware())
	return helpers.FoldErrors(errs)
}

// Message mode is red, Reading mode is green.
func (n *Node) syncLED() {
	m := n.Shared.Mode.Current()
	if m == n.ledMode {
		return
	}
	n.ledMode = m
	var err error
	switch m {
	case mode.ModeMessage:
		err = n.led.Set(true, false, false)
	default:
		err = n.led.Set(false, true, false)
	}
	if err != nil {
		n.Log.Debugf("led mode=%s err=%v", m, err)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("node id=%s mode=%s reading=%.1f messages=%d",
		n.Config.Node.NodeID(), n.Shared.Mode.Current(), n.Shared.Reading, n.Shared.Messages)
}
