// Package engine runs the gesture pipeline: raw MIDI in, gestures detected,
// mappings resolved against the active mode and actions executed.
//
// The transport calls HandleRaw from its own goroutine; events are queued
// without blocking and consumed in arrival order by a single goroutine that
// owns all detector state. The config is an immutable snapshot swapped
// atomically by ReloadConfig; each event is resolved against the one
// snapshot loaded when it is dequeued.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
	"github.com/PixPMusic/gopher-gesture/internal/config"
	"github.com/PixPMusic/gopher-gesture/internal/event"
	"github.com/PixPMusic/gopher-gesture/internal/mapping"
	"github.com/PixPMusic/gopher-gesture/internal/midi"
	"github.com/PixPMusic/gopher-gesture/internal/processor"
)

// State is the lifecycle state of an Engine
type State int32

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// ActionReport describes one executed mapping
type ActionReport struct {
	ID       string
	Gesture  event.ProcessedEvent
	Mode     int
	Mapping  mapping.Mapping
	Scope    mapping.Scope
	Result   actions.Result
	Latency  time.Duration
	Settings config.AdvancedSettings
}

// Engine is the gesture pipeline
type Engine struct {
	cfg  atomic.Pointer[config.Config]
	mode atomic.Int32

	sink   actions.Sink
	env    actions.Environment
	logger *slog.Logger
	now    func() time.Time

	queueSize    int
	tickInterval time.Duration
	events       chan event.MidiEvent

	// proc is owned by the consumer goroutine while running
	proc *processor.Processor

	mu        sync.Mutex // serializes Start and Stop
	state     atomic.Int32
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt atomic.Int64 // unix nanoseconds

	cbMu         sync.RWMutex
	onModeChange []func(from, to int)
	onAction     []func(ActionReport)
	onGesture    []func(event.ProcessedEvent)

	stats counters
}

// New validates cfg and creates a stopped engine that executes actions on
// sink.
func New(cfg *config.Config, sink actions.Sink, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, &Error{Kind: KindConfig, Err: fmt.Errorf("config is nil")}
	}
	if sink == nil {
		return nil, &Error{Kind: KindConfig, Err: fmt.Errorf("action sink is nil")}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Kind: KindConfig, Err: err}
	}

	e := &Engine{
		sink:         sink,
		logger:       slog.Default(),
		now:          time.Now,
		queueSize:    DefaultQueueSize,
		tickInterval: DefaultTickInterval,
		proc:         processor.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.env == nil {
		e.env = clockEnvironment{now: e.now}
	}
	e.events = make(chan event.MidiEvent, e.queueSize)
	e.cfg.Store(cfg)
	return e, nil
}

// Start launches the consumer goroutine
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.CompareAndSwap(int32(Stopped), int32(Starting)) {
		return &Error{Kind: KindAlreadyRunning}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.startedAt.Store(e.now().UnixNano())

	go e.run(ctx, e.done)

	e.state.Store(int32(Running))
	e.logger.Info("engine started",
		"modes", e.cfg.Load().ModeCount(),
		"mode", e.CurrentMode(),
		"queue", e.queueSize)
	return nil
}

// Stop cancels any running action and waits for the consumer to drain the
// queue and exit. Drained events still reach the detectors and gesture
// callbacks but run no actions. It must not be called from a callback.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		return &Error{Kind: KindNotRunning}
	}

	e.cancel()
	<-e.done

	// submits that raced the state change
	discarded := 0
flush:
	for {
		select {
		case <-e.events:
			discarded++
		default:
			break flush
		}
	}
	e.stats.dropped.Add(uint64(discarded))
	e.proc.Reset()

	e.state.Store(int32(Stopped))
	e.logger.Info("engine stopped", "discarded", discarded)
	return nil
}

// State returns the lifecycle state
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Config returns the active config snapshot. It must not be modified.
func (e *Engine) Config() *config.Config {
	return e.cfg.Load()
}

// ReloadConfig validates cfg and swaps it in. On failure the previous
// config stays active. If the active mode no longer exists the engine
// falls back to mode 0.
func (e *Engine) ReloadConfig(cfg *config.Config) error {
	if cfg == nil {
		return &Error{Kind: KindConfig, Err: fmt.Errorf("config is nil")}
	}
	if err := cfg.Validate(); err != nil {
		return &Error{Kind: KindConfig, Err: err}
	}

	e.cfg.Store(cfg)
	e.stats.reloads.Add(1)
	e.logger.Info("config reloaded", "modes", cfg.ModeCount(), "global_mappings", len(cfg.GlobalMappings))

	if old := int(e.mode.Load()); old >= cfg.ModeCount() {
		if e.mode.CompareAndSwap(int32(old), 0) {
			e.modeChanged(old, 0)
		}
	}
	return nil
}

// CurrentMode returns the index of the active mode
func (e *Engine) CurrentMode() int {
	return int(e.mode.Load())
}

// SetMode switches the active mode. Callbacks run on the caller's
// goroutine when the mode actually changes.
func (e *Engine) SetMode(index int) error {
	return e.setMode(e.cfg.Load(), index)
}

func (e *Engine) setMode(cfg *config.Config, index int) error {
	if index < 0 || index >= cfg.ModeCount() {
		return &Error{Kind: KindInvalidMode, Err: fmt.Errorf("mode %d out of range (have %d modes)", index, cfg.ModeCount())}
	}
	old := int(e.mode.Swap(int32(index)))
	if old != index {
		e.modeChanged(old, index)
	}
	return nil
}

func (e *Engine) modeChanged(from, to int) {
	e.stats.modeChanges.Add(1)
	e.logger.Info("mode changed", "from", from, "to", to, "name", e.cfg.Load().ModeName(to))

	e.cbMu.RLock()
	callbacks := e.onModeChange
	e.cbMu.RUnlock()
	for _, cb := range callbacks {
		cb(from, to)
	}
}

// OnModeChange registers a callback fired after every mode change
func (e *Engine) OnModeChange(cb func(from, to int)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.onModeChange = append(e.onModeChange, cb)
}

// OnAction registers a callback fired after every executed mapping. It
// runs on the consumer goroutine and must return quickly.
func (e *Engine) OnAction(cb func(ActionReport)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.onAction = append(e.onAction, cb)
}

// OnGesture registers a callback fired for every detected gesture, matched
// or not. It runs on the consumer goroutine and must return quickly.
func (e *Engine) OnGesture(cb func(event.ProcessedEvent)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.onGesture = append(e.onGesture, cb)
}

// Stats returns a snapshot of the engine counters
func (e *Engine) Stats() Stats {
	s := e.stats.snapshot()
	s.State = e.State()
	s.QueueDepth = len(e.events)
	if s.State == Running {
		s.Uptime = e.now().Sub(time.Unix(0, e.startedAt.Load()))
	}
	return s
}

// HandleRaw is the transport entry point. It decodes one raw message,
// timestamps it and queues it without blocking. Unusable messages are
// counted and dropped.
func (e *Engine) HandleRaw(raw []byte) {
	ev, ok := midi.Decode(raw, e.now())
	if !ok {
		e.stats.unrecognized.Add(1)
		return
	}
	e.Submit(ev)
}

// Submit queues a decoded event without blocking. It reports false when the
// event was dropped because the engine is not running or the queue is full.
func (e *Engine) Submit(ev event.MidiEvent) bool {
	if e.State() != Running {
		e.stats.dropped.Add(1)
		return false
	}
	select {
	case e.events <- ev:
		e.stats.received.Add(1)
		return true
	default:
		e.stats.dropped.Add(1)
		return false
	}
}

func (e *Engine) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.drain()
			return
		case ev := <-e.events:
			if ctx.Err() != nil {
				e.observe(e.cfg.Load(), ev)
				continue
			}
			e.process(ctx, ev)
		case <-ticker.C:
			// Queued events advance the timers to their own timestamps;
			// ticking to wall time first would expire windows they fall in.
			if ctx.Err() != nil || len(e.events) > 0 {
				continue
			}
			cfg := e.cfg.Load()
			e.dispatch(ctx, cfg, e.proc.Tick(e.now(), cfg.Advanced))
		}
	}
}

func (e *Engine) process(ctx context.Context, ev event.MidiEvent) {
	cfg := e.cfg.Load()
	e.dispatch(ctx, cfg, e.detect(cfg, ev))
}

// drain runs the events still queued at stop through the detectors, in
// order, without executing actions
func (e *Engine) drain() {
	cfg := e.cfg.Load()
	drained := 0
	for {
		select {
		case ev := <-e.events:
			drained++
			e.observe(cfg, ev)
		default:
			if drained > 0 {
				e.logger.Debug("drained queue", "events", drained)
			}
			return
		}
	}
}

// observe detects gestures and reports them to the gesture callbacks only
func (e *Engine) observe(cfg *config.Config, ev event.MidiEvent) {
	gestures := e.detect(cfg, ev)
	if len(gestures) == 0 {
		return
	}

	e.cbMu.RLock()
	callbacks := e.onGesture
	e.cbMu.RUnlock()
	for _, g := range gestures {
		e.stats.gestures.Add(1)
		for _, cb := range callbacks {
			cb(g)
		}
	}
}

// detect applies the channel filter and runs one event through the processor
func (e *Engine) detect(cfg *config.Config, ev event.MidiEvent) []event.ProcessedEvent {
	if !cfg.Device.AcceptsChannel(ev.Channel) {
		e.stats.filtered.Add(1)
		return nil
	}

	before := e.proc.Dropped()
	gestures := e.proc.Process(ev, cfg.Advanced)
	if e.proc.Dropped() != before {
		e.stats.unrecognized.Add(1)
	}
	e.stats.processed.Add(1)

	e.logger.Debug("event", "event", ev.String(), "gestures", len(gestures))
	return gestures
}

// dispatch resolves and executes each gesture against one config snapshot
func (e *Engine) dispatch(ctx context.Context, cfg *config.Config, gestures []event.ProcessedEvent) {
	if len(gestures) == 0 {
		return
	}

	e.cbMu.RLock()
	gestureCallbacks := e.onGesture
	actionCallbacks := e.onAction
	e.cbMu.RUnlock()

	for _, g := range gestures {
		e.stats.gestures.Add(1)
		for _, cb := range gestureCallbacks {
			cb(g)
		}

		mode := e.CurrentMode()
		res, ok := cfg.Resolve(g, mode)
		if !ok {
			e.stats.unmatched.Add(1)
			continue
		}

		exec := actions.NewExecutor(e.sink, e.env, snapshotModes{e: e, cfg: cfg}, e.logger)
		result := exec.Execute(ctx, &res.Mapping.Action)
		latency := e.now().Sub(g.Time)

		e.stats.executed.Add(1)
		e.stats.latencyTotal.Add(int64(latency))
		if !result.OK() {
			e.stats.failed.Add(1)
			e.logger.Warn("action failed",
				"mapping", res.Mapping.Label(),
				"scope", res.Scope,
				"gesture", g.String(),
				"error", result.Err)
		} else {
			e.logger.Debug("action executed",
				"mapping", res.Mapping.Label(),
				"scope", res.Scope,
				"gesture", g.String(),
				"latency", latency)
		}

		report := ActionReport{
			ID:       uuid.New().String(),
			Gesture:  g,
			Mode:     mode,
			Mapping:  *res.Mapping,
			Scope:    res.Scope,
			Result:   result,
			Latency:  latency,
			Settings: cfg.Advanced,
		}
		for _, cb := range actionCallbacks {
			cb(report)
		}
	}
}

// snapshotModes validates mode changes against the snapshot the current
// event is being resolved with.
type snapshotModes struct {
	e   *Engine
	cfg *config.Config
}

func (s snapshotModes) CurrentMode() int {
	return s.e.CurrentMode()
}

func (s snapshotModes) SetMode(index int) error {
	return s.e.setMode(s.cfg, index)
}
