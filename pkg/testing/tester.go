package testing

import (
	"sync"
	"testing"

	"github.com/go-drift/flow/pkg/engine"
	"github.com/go-drift/flow/pkg/errors"
	"github.com/go-drift/flow/pkg/reduce"
	"github.com/go-drift/flow/pkg/tree"
)

// Tester drives an engine in a test. Every lifecycle event is captured by
// its Recorder and every pass runs in strict render mode, so a
// non-deterministic render fails the test run that triggered it.
type Tester[S reduce.State[S]] struct {
	engine   *engine.Engine[S]
	recorder *Recorder
	mounts   []tree.MountEvent
	errs     *errorCollector
}

// NewTester creates a tester for initial and view. Contract violations and
// panics are collected on the tester instead of being logged, and the
// global error handler is restored when the test ends.
func NewTester[S reduce.State[S]](t *testing.T, initial S, view engine.ViewFunc[S], opts ...engine.Option) *Tester[S] {
	t.Helper()
	tester := &Tester[S]{recorder: &Recorder{}, errs: &errorCollector{}}
	errors.SetHandler(tester.errs)
	t.Cleanup(func() { errors.SetHandler(nil) })

	opts = append([]engine.Option{
		engine.WithHooks(tester.recorder.Hooks()),
		engine.WithTreeOptions(tree.WithStrictRender(true)),
	}, opts...)
	tester.engine = engine.New(initial, view, func(e tree.MountEvent) {
		tester.mounts = append(tester.mounts, e)
	}, opts...)
	return tester
}

// Render runs a pass without an event.
func (t *Tester[S]) Render() error {
	return t.engine.Render()
}

// Step delivers events in order, one pass each, and stops at the first
// failing pass.
func (t *Tester[S]) Step(events ...reduce.Event) error {
	for _, ev := range events {
		if err := t.engine.Step(ev); err != nil {
			return err
		}
	}
	return nil
}

// Engine returns the driven engine.
func (t *Tester[S]) Engine() *engine.Engine[S] { return t.engine }

// Tree returns the engine's tree.
func (t *Tester[S]) Tree() *tree.Tree { return t.engine.Tree() }

// State returns the current state.
func (t *Tester[S]) State() S { return t.engine.State() }

// Recorder returns the lifecycle recorder.
func (t *Tester[S]) Recorder() *Recorder { return t.recorder }

// MountEvents returns every mount notification the engine delivered.
func (t *Tester[S]) MountEvents() []tree.MountEvent { return t.mounts }

// Find evaluates f against the current tree.
func (t *Tester[S]) Find(f Finder) FinderResult { return Find(t.Tree(), f) }

// Snapshot captures the current tree.
func (t *Tester[S]) Snapshot() *Snapshot { return CaptureSnapshot(t.Tree()) }

// Reported returns the errors reported to the global handler since the
// tester was created.
func (t *Tester[S]) Reported() []error { return t.errs.all() }

// errorCollector is an errors.ErrorHandler that keeps what it receives.
type errorCollector struct {
	mu   sync.Mutex
	errs []error
}

func (c *errorCollector) add(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

func (c *errorCollector) HandleError(err *errors.FlowError) { c.add(err) }

func (c *errorCollector) HandlePanic(err *errors.PanicError) { c.add(err) }

func (c *errorCollector) HandleContract(err *errors.ContractError) { c.add(err) }

func (c *errorCollector) all() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

var _ errors.ErrorHandler = (*errorCollector)(nil)
