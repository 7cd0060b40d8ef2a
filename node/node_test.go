package node

import (
	"bufio"
	"bytes"
	"context"
	"image"
	"net"
	"testing"
	"time"

	"github.com/fsae-telemetry/telenode/hardware/adc"
	"github.com/fsae-telemetry/telenode/hardware/display"
	"github.com/fsae-telemetry/telenode/hardware/led"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/fsae-telemetry/telenode/mode"
	"github.com/fsae-telemetry/telenode/sampler"
	"github.com/fsae-telemetry/telenode/screen"
	"github.com/fsae-telemetry/telenode/state"
	"github.com/fsae-telemetry/telenode/tele"
	"github.com/jonboulle/clockwork"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tenv struct {
	n       *Node
	clock   *clockwork.FakeClock
	surface *display.MockSurface
	led     *led.Mock
	trans   *tele.MockTransport
}

func newTestNode(t testing.TB, raw ...uint16) *tenv {
	c := &state.Config{}
	c.Node.ID = "test"
	c.Node.Listen = "tcp://127.0.0.1:0"
	c.Tele.IntervalSec = 5
	log := log2.NewTest(t, log2.LDebug)

	env := &tenv{
		clock:   clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
		surface: &display.MockSurface{},
		led:     led.NewMock(),
		trans:   &tele.MockTransport{},
	}
	n := New(c, log)
	n.Clock = env.clock
	n.Hardware.Sensor.Source = adc.NewMock(raw...)
	n.Hardware.Display.Surface = env.surface
	n.Hardware.LED.RGB = env.led
	n.Tele = tele.NewWithTransporter(env.trans)
	env.n = n
	return env
}

func (e *tenv) tickUntil(t testing.TB, f func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		e.n.Tick(context.Background())
		if f() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func expectFrame(m mode.Mode, r sampler.Reading, msg string) []byte {
	f := display.NewFrame(image.Point{X: DefaultWidth, Y: DefaultHeight}, nil)
	_ = screen.New(f).Render(m, r, msg)
	return f.Bytes()
}

func TestScenario(t *testing.T) {
	env := newTestNode(t, 0)
	n := env.n
	require.NoError(t, n.Start(context.Background()))
	defer n.Close()
	assert.Equal(t, []led.State{{}, {G: true}}, env.led.History)

	// fresh start
	n.Tick(context.Background())
	assert.Equal(t, mode.ModeReading, n.Shared.Mode.Current())
	assert.Equal(t, expectFrame(mode.ModeReading, 0, ""), env.surface.Last)
	assert.Equal(t, display.Area{StartColumn: 0, EndColumn: 127, StartPage: 0, EndPage: 7}, env.surface.Area)

	conn, err := net.Dial("tcp", n.Addr())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("hi"))
	require.NoError(t, err)
	env.tickUntil(t, func() bool { return n.Shared.Messages == 1 })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	rd := bufio.NewReader(conn)
	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "Temperature: 0.0 °C\n", line)
	assert.Equal(t, mode.ModeMessage, n.Shared.Mode.Current())
	assert.Equal(t, led.State{R: true}, env.led.Last())

	n.Tick(context.Background())
	assert.Equal(t, expectFrame(mode.ModeMessage, 0, "hi"), env.surface.Last)

	// idle timeout
	env.clock.Advance(29 * time.Second)
	n.Tick(context.Background())
	assert.Equal(t, mode.ModeMessage, n.Shared.Mode.Current())
	env.clock.Advance(time.Second)
	n.Tick(context.Background())
	assert.Equal(t, mode.ModeReading, n.Shared.Mode.Current())
	assert.Equal(t, led.State{G: true}, env.led.Last())
	n.Tick(context.Background())
	assert.Equal(t, expectFrame(mode.ModeReading, 0, ""), env.surface.Last)

	// oversized payload
	_, err = conn.Write(bytes.Repeat([]byte{'x'}, 100))
	require.NoError(t, err)
	env.tickUntil(t, func() bool { return n.Shared.Messages == 2 })
	assert.Equal(t, 63, n.Shared.Message.Len())
	raw := n.Shared.Message.Raw()
	assert.Equal(t, byte(0), raw[63])
	assert.Equal(t, mode.ModeMessage, n.Shared.Mode.Current())
	line, err = rd.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "Temperature: 0.0 °C\n", line)

	// boot report, then one after fake clock moved 29s
	sent := env.trans.Sent()
	assert.Equal(t, 2, len(sent))
	assert.Equal(t, int64(2), n.NetStat().Recv.Count.Value())
}

func TestReadingValue(t *testing.T) {
	// 2048 of 12 bit at 3.3V is 165, above max
	env := newTestNode(t, 2048)
	n := env.n
	require.NoError(t, n.Start(context.Background()))
	defer n.Close()
	n.Tick(context.Background())
	assert.Equal(t, sampler.Reading(150), n.Shared.Reading)
	assert.Equal(t, "node id=test mode=Reading reading=150.0 messages=0", n.String())
}

func TestRun(t *testing.T) {
	env := newTestNode(t, 100)
	n := env.n
	require.NoError(t, n.Start(context.Background()))
	defer n.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errch := make(chan error, 1)
	go func() { errch <- n.Run(ctx) }()
	require.NoError(t, env.clock.BlockUntilContext(ctx, 1))
	env.clock.Advance(time.Second)
	require.NoError(t, env.clock.BlockUntilContext(ctx, 1))
	cancel()
	env.clock.Advance(time.Second)
	select {
	case err := <-errch:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, n.ticks >= 2, "ticks=%d", n.ticks)
}

type failJoiner struct{}

func (failJoiner) Join(context.Context, string, string, time.Duration) error {
	return errors.New("no carrier")
}

func TestStartError(t *testing.T) {
	t.Parallel()
	type Case struct {
		name      string
		prepare   func(*tenv)
		expectErr string
	}
	cases := []Case{
		{"sensor-driver", func(e *tenv) {
			e.n.Hardware.Sensor.Source = nil
			e.n.Config.Hardware.Sensor.Driver = "thermistor"
		}, "sensor: config: unknown hardware.sensor.driver"},
		{"display-driver", func(e *tenv) {
			e.n.Hardware.Display.Surface = nil
			e.n.Config.Hardware.Display.Driver = "hd44780"
		}, "display: config: unknown hardware.display.driver"},
		{"wifi", func(e *tenv) {
			e.n.Hardware.Wifi = failJoiner{}
		}, "wifi join ssid=: no carrier"},
		{"listen", func(e *tenv) {
			e.n.Config.Node.Listen = "udp://127.0.0.1:0"
		}, "listen"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			env := newTestNode(t, 0)
			c.prepare(env)
			err := env.n.Start(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.expectErr)
			assert.NoError(t, env.n.Close())
		})
	}
}
