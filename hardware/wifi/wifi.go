// Package wifi joins wireless network before the node starts listening.
package wifi

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fsae-telemetry/telenode/helpers"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/juju/errors"
)

type Joiner interface {
	Join(ctx context.Context, ssid, password string, timeout time.Duration) error
}

// None is for wired or preconfigured networks.
type None struct{}

func (None) Join(context.Context, string, string, time.Duration) error { return nil }

type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// NetworkManager joins with `nmcli device wifi connect`, retrying until timeout.
type NetworkManager struct {
	Log       *log2.Log
	Interface string
	Run       RunFunc
	Backoff   helpers.Backoff
}

func NewNetworkManager(log *log2.Log, iface string) *NetworkManager {
	return &NetworkManager{
		Log:       log,
		Interface: iface,
		Run:       runCommand,
		Backoff:   helpers.Backoff{Min: 500 * time.Millisecond, Max: 5 * time.Second, K: 2},
	}
}

func (nm *NetworkManager) Join(ctx context.Context, ssid, password string, timeout time.Duration) error {
	if ssid == "" {
		return errors.NotValidf("wifi ssid empty")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	nm.Backoff.Reset()
	for attempt := 1; ; attempt++ {
		wait := timeout / time.Second
		if wait < 1 {
			wait = 1
		}
		args := []string{"--wait", strconv.Itoa(int(wait)), "device", "wifi", "connect", ssid}
		if password != "" {
			args = append(args, "password", password)
		}
		if nm.Interface != "" {
			args = append(args, "ifname", nm.Interface)
		}
		out, err := nm.Run(ctx, "nmcli", args...)
		if err == nil {
			nm.Log.Infof("wifi joined ssid=%s attempt=%d", ssid, attempt)
			return nil
		}
		err = errors.Annotatef(err, "nmcli connect ssid=%s output=%s", ssid, strings.TrimSpace(string(out)))
		delay := nm.Backoff.Failure()
		nm.Log.Debugf("wifi attempt=%d err=%v retry in %v", attempt, err, delay)
		select {
		case <-ctx.Done():
			return errors.Annotatef(err, "wifi join timeout=%v", timeout)
		case <-time.After(delay):
		}
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
