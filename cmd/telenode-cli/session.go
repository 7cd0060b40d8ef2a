package main

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fsae-telemetry/telenode/log2"
	"github.com/juju/errors"
)

const usage = `syntax: every line is sent to node as one payload, reply is printed
(meta)
- /sN          pause N milliseconds
- /loop=N text send text N times
- /reconnect   close and dial again
- /log=yes     enable debug logging
- /log=no      disable debug logging
- //text       send "/text"
`

type cmdKind uint8

const (
	cmdNone cmdKind = iota
	cmdSend
	cmdPause
	cmdReconnect
	cmdLog
	cmdHelp
)

type command struct {
	kind cmdKind
	text string
	n    int
	on   bool
}

func parseLine(line string) (command, error) {
	switch {
	case line == "":
		return command{kind: cmdNone}, nil
	case strings.HasPrefix(line, "//"):
		return command{kind: cmdSend, text: line[1:], n: 1}, nil
	case !strings.HasPrefix(line, "/"):
		return command{kind: cmdSend, text: line, n: 1}, nil
	}

	word, rest := line[1:], ""
	if i := strings.IndexByte(word, ' '); i >= 0 {
		word, rest = word[:i], strings.TrimSpace(word[i+1:])
	}
	switch {
	case word == "help":
		return command{kind: cmdHelp}, nil
	case word == "reconnect":
		return command{kind: cmdReconnect}, nil
	case word == "log=yes":
		return command{kind: cmdLog, on: true}, nil
	case word == "log=no":
		return command{kind: cmdLog}, nil
	case strings.HasPrefix(word, "loop="):
		n, err := strconv.Atoi(word[5:])
		if err != nil || n <= 0 {
			return command{}, errors.NotValidf("loop count '%s'", word[5:])
		}
		if rest == "" {
			return command{}, errors.NotValidf("loop without text")
		}
		return command{kind: cmdSend, text: rest, n: n}, nil
	case strings.HasPrefix(word, "s"):
		ms, err := strconv.Atoi(word[1:])
		if err != nil || ms < 0 {
			return command{}, errors.NotValidf("pause '%s'", word)
		}
		return command{kind: cmdPause, n: ms}, nil
	}
	return command{}, errors.NotSupportedf("command '%s'", word)
}

type dialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

type session struct {
	addr    string
	timeout time.Duration
	dial    dialFunc
	conn    net.Conn
	rd      *bufio.Reader
	sleep   func(time.Duration)
}

func newSession(addr string, timeout time.Duration) *session {
	return &session{addr: addr, timeout: timeout, dial: net.DialTimeout, sleep: time.Sleep}
}

func (s *session) connect() error {
	if s.conn != nil {
		return nil
	}
	conn, err := s.dial("tcp", s.addr, s.timeout)
	if err != nil {
		return errors.Annotatef(err, "dial %s", s.addr)
	}
	s.conn = conn
	s.rd = bufio.NewReader(conn)
	return nil
}

func (s *session) close() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn, s.rd = nil, nil
	}
}

// send writes text and waits for one reply line.
// Connection is dropped on any error so next send dials again.
func (s *session) send(text string) (string, error) {
	if err := s.connect(); err != nil {
		return "", err
	}
	if err := s.conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		s.close()
		return "", errors.Trace(err)
	}
	if _, err := s.conn.Write([]byte(text)); err != nil {
		s.close()
		return "", errors.Annotate(err, "write")
	}
	reply, err := s.rd.ReadString('\n')
	if err != nil {
		s.close()
		return "", errors.Annotate(err, "read reply")
	}
	return strings.TrimRight(reply, "\n"), nil
}

func (s *session) exec(ctx context.Context, c command) error {
	log := log2.ContextValueLogger(ctx)
	switch c.kind {
	case cmdNone:
	case cmdHelp:
		log.Infof(usage)
	case cmdPause:
		s.sleep(time.Duration(c.n) * time.Millisecond)
	case cmdReconnect:
		s.close()
		return s.connect()
	case cmdLog:
		if c.on {
			log.SetLevel(log2.LDebug)
		} else {
			log.SetLevel(log2.LInfo)
		}
	case cmdSend:
		for i := 0; i < c.n; i++ {
			log.Debugf("send '%s'", c.text)
			reply, err := s.send(c.text)
			if err != nil {
				return err
			}
			log.Infof("%s", reply)
		}
	}
	return nil
}
