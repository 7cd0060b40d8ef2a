package netsvc

// Values are read and modified atomically, but not consistently.

import (
	"expvar"
	"fmt"
)

type SessionStat struct {
	Conn     expvar.Int // accepted
	Overtake expvar.Int // active connection replaced by new one
	Dropped  expvar.Int // payloads from inactive connections
	Recv     CountSizePair
	Send     CountSizePair
}

func (ss *SessionStat) String() string {
	return fmt.Sprintf(`{"conn":%d,"overtake":%d,"dropped":%d,"recv":%s,"send":%s}`,
		ss.Conn.Value(), ss.Overtake.Value(), ss.Dropped.Value(), ss.Recv.String(), ss.Send.String())
}

type CountSizePair struct {
	Count expvar.Int
	Size  expvar.Int
}

func (csp *CountSizePair) Register(size int) {
	csp.Count.Add(1)
	csp.Size.Add(int64(size))
}

func (csp *CountSizePair) String() string {
	return fmt.Sprintf(`{"count":%d,"size":%d}`, csp.Count.Value(), csp.Size.Value())
}
