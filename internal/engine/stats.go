package engine

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of the engine counters
type Stats struct {
	State State

	EventsReceived  uint64 // accepted into the queue
	EventsProcessed uint64
	EventsDropped   uint64 // queue full, engine stopped or discarded on stop
	EventsFiltered  uint64 // wrong channel
	Unrecognized    uint64 // raw messages or kinds no rule handles

	Gestures        uint64
	Unmatched       uint64
	ActionsExecuted uint64
	ActionsFailed   uint64
	ModeChanges     uint64
	Reloads         uint64

	QueueDepth int
	AvgLatency time.Duration
	Uptime     time.Duration
}

type counters struct {
	received     atomic.Uint64
	processed    atomic.Uint64
	dropped      atomic.Uint64
	filtered     atomic.Uint64
	unrecognized atomic.Uint64
	gestures     atomic.Uint64
	unmatched    atomic.Uint64
	executed     atomic.Uint64
	failed       atomic.Uint64
	modeChanges  atomic.Uint64
	reloads      atomic.Uint64

	// sum of dispatch latencies in nanoseconds, one per executed action
	latencyTotal atomic.Int64
}

func (c *counters) snapshot() Stats {
	s := Stats{
		EventsReceived:  c.received.Load(),
		EventsProcessed: c.processed.Load(),
		EventsDropped:   c.dropped.Load(),
		EventsFiltered:  c.filtered.Load(),
		Unrecognized:    c.unrecognized.Load(),
		Gestures:        c.gestures.Load(),
		Unmatched:       c.unmatched.Load(),
		ActionsExecuted: c.executed.Load(),
		ActionsFailed:   c.failed.Load(),
		ModeChanges:     c.modeChanges.Load(),
		Reloads:         c.reloads.Load(),
	}
	if s.ActionsExecuted > 0 {
		s.AvgLatency = time.Duration(c.latencyTotal.Load() / int64(s.ActionsExecuted))
	}
	return s
}
