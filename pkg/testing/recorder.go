package testing

import (
	"fmt"
	"sync"

	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/tree"
)

// LifecycleKind identifies a recorded lifecycle event.
type LifecycleKind string

const (
	Mount   LifecycleKind = "mount"
	Unmount LifecycleKind = "unmount"
	Update  LifecycleKind = "update"
	Skip    LifecycleKind = "skip"
)

// LifecycleEvent is one recorded tree notification.
type LifecycleEvent struct {
	Kind      LifecycleKind
	Component core.Component
	// Path is nil for unmounts.
	Path tree.Path
}

func (e LifecycleEvent) String() string {
	if e.Kind == Unmount {
		return fmt.Sprintf("%s %s", e.Kind, core.TypeName(e.Component))
	}
	return fmt.Sprintf("%s %s %s", e.Kind, core.TypeName(e.Component), e.Path)
}

// Recorder collects lifecycle events in the order the tree emits them.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []LifecycleEvent
}

// Hooks returns tree observers feeding the recorder.
func (r *Recorder) Hooks() tree.Hooks {
	return tree.Hooks{
		OnMount: func(e tree.MountEvent) {
			r.add(LifecycleEvent{Kind: Mount, Component: e.Component, Path: e.Path})
		},
		OnUnmount: func(e tree.UnmountEvent) {
			r.add(LifecycleEvent{Kind: Unmount, Component: e.Component})
		},
		OnUpdate: func(e tree.UpdateEvent) {
			r.add(LifecycleEvent{Kind: Update, Component: e.Component, Path: e.Path})
		},
		OnSkip: func(e tree.SkipEvent) {
			r.add(LifecycleEvent{Kind: Skip, Component: e.Component, Path: e.Path})
		},
	}
}

func (r *Recorder) add(e LifecycleEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of every recorded event.
func (r *Recorder) Events() []LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LifecycleEvent(nil), r.events...)
}

// Take returns the recorded events and clears the recorder.
func (r *Recorder) Take() []LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// Reset clears the recorder.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind LifecycleKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Churn returns the number of mount and unmount events.
func (r *Recorder) Churn() int {
	return r.Count(Mount) + r.Count(Unmount)
}

// Strings formats every recorded event, e.g. "mount todo.TodoRow /0/1".
func (r *Recorder) Strings() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.String()
	}
	return out
}
