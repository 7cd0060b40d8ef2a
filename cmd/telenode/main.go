package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/fsae-telemetry/telenode/node"
	"github.com/fsae-telemetry/telenode/state"
	"github.com/juju/errors"
)

var log = log2.NewStderr(log2.LDebug)

func main() {
	flagConfig := flag.String("config", "telenode.hcl", "")
	flag.Parse()

	if sdnotify("start") {
		// we're under systemd, assume systemd journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	if !config.Node.LogDebug {
		log.SetLevel(log2.LInfo)
	}
	log.Debugf("config=%+v", config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := node.New(config, log)
	if err := n.Start(ctx); err != nil {
		_ = n.Close()
		log.Fatal(errors.ErrorStack(err))
	}
	sdnotify(daemon.SdNotifyReady)
	log.Infof("running %s", n.String())

	err := n.Run(ctx)
	sdnotify(daemon.SdNotifyStopping)
	log.Infof("stopping reason=%v net=%s", err, n.NetStat().String())
	if err := n.Close(); err != nil {
		log.Error(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
