package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/go-drift/flow/internal/logging"
	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/errors"
	"github.com/go-drift/flow/pkg/reduce"
	"github.com/go-drift/flow/pkg/tree"
)

const opStep = "engine.Step"

// Event is an opaque value delivered to the composite state.
type Event = reduce.Event

// ViewFunc projects a state into the root Output. A view returning a
// single root component wraps it in core.Single; returning an Output also
// lets the root be a list.
type ViewFunc[S any] func(state S) core.Output

// MountFunc receives a notification for every component mounted into the
// tree. The event carries the component, its root-to-parent ancestors and
// arena handles a backend can keep as back-references.
type MountFunc func(tree.MountEvent)

// PassObserver is called after every pass, including failed ones.
type PassObserver func(PassSample)

// ErrHalted is returned once a pass has failed. The engine keeps the state
// and tree the failed pass left behind for inspection.
var ErrHalted = stderrors.New("engine: halted")

type config struct {
	logger        *slog.Logger
	hooks         []tree.Hooks
	treeOpts      []tree.Option
	traceCapacity int
	slowPass      time.Duration
	observers     []PassObserver
}

// Option configures an Engine.
type Option func(*config)

// WithLogger sets the logger for pass and halt records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHooks adds tree lifecycle observers, e.g. unmount handling for a
// backend or a metrics collector.
func WithHooks(h tree.Hooks) Option {
	return func(c *config) { c.hooks = append(c.hooks, h) }
}

// WithTreeOptions passes options through to the owned tree.
func WithTreeOptions(opts ...tree.Option) Option {
	return func(c *config) { c.treeOpts = append(c.treeOpts, opts...) }
}

// WithTraceCapacity sets how many pass samples are retained.
func WithTraceCapacity(n int) Option {
	return func(c *config) { c.traceCapacity = n }
}

// WithSlowPassThreshold sets the duration above which a pass is logged and
// counted as slow.
func WithSlowPassThreshold(d time.Duration) Option {
	return func(c *config) { c.slowPass = d }
}

// WithPassObserver registers fn to receive every pass sample.
func WithPassObserver(fn PassObserver) Option {
	return func(c *config) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// Engine owns the current state and the persistent tree and runs one
// reconciliation pass per event.
//
// Step and Render are serialized; hooks and views run inside a pass and must
// not call them. Use Post to queue an event from inside a pass.
type Engine[S reduce.State[S]] struct {
	mu        sync.Mutex
	state     S
	view      ViewFunc[S]
	tree      *tree.Tree
	logger    *slog.Logger
	trace     *PassTrace
	observers []PassObserver
	seq       int64
	halted    error

	dispatchMu    sync.Mutex
	dispatchQueue []Event
	wake          chan struct{}
}

// New creates an engine holding initial. No pass runs until Render, Step or
// Run is called.
func New[S reduce.State[S]](initial S, view ViewFunc[S], onMount MountFunc, opts ...Option) *Engine[S] {
	cfg := config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	hooks := tree.Hooks{}
	if onMount != nil {
		hooks.OnMount = func(e tree.MountEvent) { onMount(e) }
	}
	hooks = tree.ChainHooks(append([]tree.Hooks{hooks}, cfg.hooks...)...)
	treeOpts := append([]tree.Option{tree.WithHooks(hooks)}, cfg.treeOpts...)

	return &Engine[S]{
		state:     initial,
		view:      view,
		tree:      tree.New(treeOpts...),
		logger:    cfg.logger,
		trace:     NewPassTrace(cfg.traceCapacity, cfg.slowPass),
		observers: cfg.observers,
		wake:      make(chan struct{}, 1),
	}
}

// Start creates an engine and runs it until events is closed or ctx is done.
func Start[S reduce.State[S]](ctx context.Context, initial S, view ViewFunc[S], onMount MountFunc, events <-chan Event, opts ...Option) error {
	return New(initial, view, onMount, opts...).Run(ctx, events)
}

// Render runs a pass for the current state without reducing. The first
// pass constructs the tree; later ones reconcile against it.
func (e *Engine[S]) Render() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.pass(nil, false); err != nil {
		return err
	}
	return e.drainLocked()
}

// Step reduces ev into the state and runs exactly one pass. Events queued
// with Post during the pass are then processed in order, one pass each.
func (e *Engine[S]) Step(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.pass(ev, true); err != nil {
		return err
	}
	return e.drainLocked()
}

// Run renders the initial state if no pass has run yet, then steps once
// per received event. It returns nil when events is closed, ctx.Err() when
// ctx is done, and the pass error when a pass fails.
func (e *Engine[S]) Run(ctx context.Context, events <-chan Event) error {
	if e.passes() == 0 {
		if err := e.Render(); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
			if err := e.drain(); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := e.Step(ev); err != nil {
				return err
			}
		}
	}
}

// Post queues ev to be stepped after the current pass, or by Run when no
// pass is in flight. It never blocks and is safe to call from hooks.
func (e *Engine[S]) Post(ev Event) {
	e.dispatchMu.Lock()
	e.dispatchQueue = append(e.dispatchQueue, ev)
	e.dispatchMu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// State returns the current state.
func (e *Engine[S]) State() S {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Tree returns the owned tree. It must only be read between passes.
func (e *Engine[S]) Tree() *tree.Tree { return e.tree }

// Inspect runs fn with the tree while holding the pass lock, so fn can read
// the tree from another goroutine. fn must not call Step or Render.
func (e *Engine[S]) Inspect(fn func(t *tree.Tree)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.tree)
}

// Trace returns the pass trace buffer.
func (e *Engine[S]) Trace() *PassTrace { return e.trace }

// Err returns the error that halted the engine, if any.
func (e *Engine[S]) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.halted
}

func (e *Engine[S]) passes() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

func (e *Engine[S]) drain() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drainLocked()
}

func (e *Engine[S]) drainLocked() error {
	for {
		e.dispatchMu.Lock()
		if len(e.dispatchQueue) == 0 {
			e.dispatchMu.Unlock()
			return nil
		}
		ev := e.dispatchQueue[0]
		e.dispatchQueue = e.dispatchQueue[1:]
		e.dispatchMu.Unlock()

		if err := e.pass(ev, true); err != nil {
			return err
		}
	}
}

// pass runs with e.mu held.
func (e *Engine[S]) pass(ev Event, step bool) (err error) {
	if e.halted != nil {
		return fmt.Errorf("%w: %w", ErrHalted, e.halted)
	}

	e.seq++
	start := time.Now()
	sample := PassSample{Seq: e.seq, Timestamp: start.UnixMilli(), Event: renderEventName}
	if step {
		sample.Event = eventName(ev)
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Capture(opStep, r)
		}
		sample.Duration = time.Since(start)
		sample.Nodes = e.tree.Len()
		sample.Failed = err != nil
		slow := e.trace.Add(sample)
		for _, fn := range e.observers {
			fn(sample)
		}
		if err != nil {
			e.halted = err
			e.logger.Error("engine halted", "seq", sample.Seq, "event", sample.Event, "err", err)
			err = fmt.Errorf("%w: %w", ErrHalted, err)
			return
		}
		e.logger.Debug("pass",
			"seq", sample.Seq,
			"event", sample.Event,
			"stats", sample.Stats,
			"duration", sample.Duration,
		)
		if slow {
			e.logger.Warn("slow pass", "seq", sample.Seq, "event", sample.Event, "duration", sample.Duration)
		}
	}()

	if step {
		e.state = e.state.Reduce(ev)
	}
	sample.Reduce = time.Since(start)

	out := e.view(e.state)
	recStart := time.Now()
	stats, err := e.tree.Update(out)
	sample.Reconcile = time.Since(recStart)
	sample.Stats = stats
	return err
}

func eventName(ev Event) string {
	if ev == nil {
		return "<nil>"
	}
	return reflect.TypeOf(ev).String()
}
