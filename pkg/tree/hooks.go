package tree

import "github.com/go-drift/flow/pkg/core"

// MountEvent describes a component entering the tree. Ancestors lists the
// single-node components above it ordered root to parent; Parent is the
// nearest of them, or the zero NodeID at the root.
type MountEvent struct {
	ID        NodeID
	Parent    NodeID
	Path      Path
	Component core.Component
	Ancestors []core.Component
}

// UnmountEvent describes a component leaving the tree. Its descendants have
// already been unmounted.
type UnmountEvent struct {
	ID        NodeID
	Parent    NodeID
	Component core.Component
}

// UpdateEvent describes a same-variant value change applied in place.
type UpdateEvent struct {
	ID        NodeID
	Path      Path
	Previous  core.Component
	Component core.Component
}

// SkipEvent describes a subtree left untouched because its component was
// equal to the incoming one.
type SkipEvent struct {
	ID        NodeID
	Path      Path
	Component core.Component
}

// Hooks observe a tree's lifecycle. Any field may be nil. Hooks run
// synchronously inside the pass and must not start another pass on the
// same tree.
type Hooks struct {
	OnMount   func(MountEvent)
	OnUnmount func(UnmountEvent)
	OnUpdate  func(UpdateEvent)
	OnSkip    func(SkipEvent)
}

// ChainHooks combines hooks so each event reaches every non-nil observer in
// argument order.
func ChainHooks(hooks ...Hooks) Hooks {
	var out Hooks
	for _, h := range hooks {
		out.OnMount = chain(out.OnMount, h.OnMount)
		out.OnUnmount = chain(out.OnUnmount, h.OnUnmount)
		out.OnUpdate = chain(out.OnUpdate, h.OnUpdate)
		out.OnSkip = chain(out.OnSkip, h.OnSkip)
	}
	return out
}

func chain[E any](first, second func(E)) func(E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(e E) {
		first(e)
		second(e)
	}
}
