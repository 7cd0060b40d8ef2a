package main

import (
	"context"
	"flag"
	"os"
	"time"

	prompt "github.com/c-bata/go-prompt"
	"github.com/fsae-telemetry/telenode/helpers/cli"
	"github.com/fsae-telemetry/telenode/log2"
	"github.com/juju/errors"
)

var log = log2.NewStderr(log2.LInfo)

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	addr := cmdline.String("addr", "127.0.0.1:8080", "node address host:port")
	timeout := cmdline.Duration("timeout", 2*time.Second, "dial and reply timeout")
	_ = cmdline.Parse(os.Args[1:])

	log.SetFlags(0)
	ctx := context.WithValue(context.Background(), log2.ContextKey, log)
	s := newSession(*addr, *timeout)
	defer s.close()

	cli.MainLoop("telenode-cli", newExecutor(ctx, s), newCompleter(), s.close)
}

func newCompleter() prompt.Completer {
	suggests := []prompt.Suggest{
		{Text: "/sN", Description: "pause for N ms"},
		{Text: "/loop=N", Description: "send rest of line N times"},
		{Text: "/reconnect", Description: "close and dial again"},
		{Text: "/log=yes", Description: "debug logging"},
		{Text: "/log=no", Description: "info logging"},
		{Text: "/help", Description: "show usage"},
	}
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(suggests, d.GetWordBeforeCursor(), true)
	}
}

func newExecutor(ctx context.Context, s *session) func(string) {
	return func(line string) {
		c, err := parseLine(line)
		if err != nil {
			log.Error(errors.ErrorStack(err))
			return
		}
		if err = s.exec(ctx, c); err != nil {
			log.Error(errors.ErrorStack(err))
		}
	}
}
