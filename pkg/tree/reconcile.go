package tree

import (
	stderrors "errors"
	"fmt"

	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/errors"
)

const (
	opUpdate    = "tree.Update"
	opConstruct = "tree.Construct"
	opReconcile = "tree.Reconcile"
	opRender    = "tree.Render"
)

// ErrFailed is returned by Update once an earlier pass has failed. The tree
// is left as the failed pass found it and must not be reused.
var ErrFailed = stderrors.New("tree: failed by an earlier pass")

// Update reconciles the tree against out. The first call constructs the
// tree; later calls diff against the existing nodes and touch only what
// changed.
//
// A contract violation or a panic raised by a component or a hook stops the
// pass and is returned. The tree is then failed: every later pass returns an
// error wrapping ErrFailed. Starting a pass from inside a running pass is a
// violation that fails the outer pass.
func (t *Tree) Update(out core.Output) (Stats, error) {
	return t.pass(opUpdate, func() {
		if t.root.IsZero() {
			t.root = t.construct(out, NodeID{}, Path{})
			return
		}
		t.root = t.reconcile(t.root, out, Path{})
	})
}

// Reconcile runs a pass over the subtree at id only and returns the node
// occupying its slot afterwards. The caller owns the projection of that
// subtree: the parent is not re-rendered.
func (t *Tree) Reconcile(id NodeID, out core.Output) (NodeID, Stats, error) {
	next := id
	stats, err := t.pass(opReconcile, func() {
		if !t.Contains(id) {
			errors.Violation(opReconcile, "stale node %s", id)
		}
		path := t.PathOf(id)
		parent := t.nodes[id.index].parent
		next = t.reconcile(id, out, path)
		if parent.IsZero() {
			t.root = next
			return
		}
		t.nodes[parent.index].children[path[len(path)-1]] = next
	})
	return next, stats, err
}

func (t *Tree) pass(op string, fn func()) (stats Stats, err error) {
	if t.inPass {
		errors.Violation(op, "reentrant pass on the same tree")
	}
	if t.failed != nil {
		return Stats{}, fmt.Errorf("%w: %w", ErrFailed, t.failed)
	}

	t.inPass = true
	t.stats = Stats{}
	t.cache.Reset()
	defer func() {
		t.inPass = false
		stats = t.stats
		if r := recover(); r != nil {
			t.failed = errors.Capture(op, r)
			err = t.failed
		}
	}()

	fn()
	return t.stats, nil
}

// Cache returns the render cache, or nil when caching is disabled.
func (t *Tree) Cache() *RenderCache { return t.cache }

// construct builds a fresh subtree for out, mounting each single node
// before its children.
func (t *Tree) construct(out core.Output, parent NodeID, path Path) NodeID {
	switch out.Kind() {
	case core.OutputSingle:
		c := out.Component()
		if c == nil {
			errors.Violation(opConstruct, "single output with nil component at %s", path)
		}
		checkDuplicable(opConstruct, c)
		id := t.alloc(node{kind: KindSingle, component: c, parent: parent})
		t.mount(id, path)
		slots := t.render(c)
		children := make([]NodeID, 0, len(slots))
		for i, slot := range slots {
			children = append(children, t.construct(slot, id, path.Child(i)))
		}
		t.nodes[id.index].children = children
		return id

	case core.OutputMulti:
		id := t.alloc(node{kind: KindMulti, parent: parent})
		items := out.Items()
		children := make([]NodeID, 0, len(items))
		for i, item := range items {
			children = append(children, t.construct(item, id, path.Child(i)))
		}
		t.nodes[id.index].children = children
		return id

	default:
		errors.Violation(opConstruct, "invalid output at %s", path)
		return NodeID{}
	}
}

// reconcile brings the subtree at id in line with out and returns the node
// now occupying the slot, which differs from id when the subtree was
// replaced.
func (t *Tree) reconcile(id NodeID, out core.Output, path Path) NodeID {
	if !t.Contains(id) {
		errors.Violation(opReconcile, "stale node %s at %s", id, path)
	}
	if !out.Valid() {
		errors.Violation(opReconcile, "invalid output at %s", path)
	}

	n := &t.nodes[id.index]
	switch {
	case n.kind == KindSingle && out.Kind() == core.OutputSingle:
		next := out.Component()
		if next == nil {
			errors.Violation(opReconcile, "single output with nil component at %s", path)
		}
		prev := n.component
		if core.Equal(prev, next) {
			t.stats.Skipped++
			if t.hooks.OnSkip != nil {
				t.hooks.OnSkip(SkipEvent{ID: id, Path: path, Component: prev})
			}
			return id
		}
		if !core.SameVariant(prev, next) {
			return t.replace(id, out, path)
		}
		checkDuplicable(opReconcile, next)
		n.component = next
		t.stats.Updated++
		if t.hooks.OnUpdate != nil {
			t.hooks.OnUpdate(UpdateEvent{ID: id, Path: path, Previous: prev, Component: next})
		}
		t.reconcileChildren(id, t.render(next), path)
		return id

	case n.kind == KindMulti && out.Kind() == core.OutputMulti:
		t.reconcileChildren(id, out.Items(), path)
		return id

	default:
		return t.replace(id, out, path)
	}
}

// reconcileChildren pairs the children of id with outs by position.
// Paired slots are reconciled, extra outputs are constructed and extra
// nodes are unmounted in ascending index order.
func (t *Tree) reconcileChildren(id NodeID, outs []core.Output, path Path) {
	for i, out := range outs {
		if kids := t.nodes[id.index].children; i < len(kids) {
			next := t.reconcile(kids[i], out, path.Child(i))
			t.nodes[id.index].children[i] = next
			continue
		}
		next := t.construct(out, id, path.Child(i))
		t.nodes[id.index].children = append(t.nodes[id.index].children, next)
	}

	kids := t.nodes[id.index].children
	if len(kids) <= len(outs) {
		return
	}
	for _, extra := range kids[len(outs):] {
		t.unmount(extra)
	}
	t.nodes[id.index].children = kids[:len(outs):len(outs)]
}

// replace discards the subtree at id and constructs out in its slot.
func (t *Tree) replace(id NodeID, out core.Output, path Path) NodeID {
	parent := t.nodes[id.index].parent
	t.unmount(id)
	return t.construct(out, parent, path)
}

// unmount releases the subtree at id, children before parent.
func (t *Tree) unmount(id NodeID) {
	n := t.nodes[id.index]
	for _, child := range n.children {
		t.unmount(child)
	}
	if n.kind == KindSingle {
		n.component.OnUnmount()
		t.stats.Unmounted++
		if t.hooks.OnUnmount != nil {
			t.hooks.OnUnmount(UnmountEvent{ID: id, Parent: t.SingleParent(id), Component: n.component})
		}
	}
	t.release(id)
}

func (t *Tree) mount(id NodeID, path Path) {
	c := t.nodes[id.index].component
	c.OnMount()
	t.stats.Mounted++
	if t.hooks.OnMount != nil {
		t.hooks.OnMount(MountEvent{
			ID:        id,
			Parent:    t.SingleParent(id),
			Path:      path,
			Component: c,
			Ancestors: t.Ancestors(id),
		})
	}
}

func checkDuplicable(op string, c core.Component) {
	if !core.Duplicable(c) {
		errors.NodeViolation(op, core.TypeName(c), "pointer component with unexported fields must implement core.Duplicator")
	}
}

// render projects c through a duplicate so the held instance is never
// touched by Render.
func (t *Tree) render(c core.Component) []core.Output {
	out := t.cache.Get(c, func() core.Output {
		out := core.Duplicate(c).Render()
		t.stats.Rendered++
		if !out.Valid() {
			errors.NodeViolation(opRender, core.TypeName(c), "render returned an invalid output")
		}
		if t.strict && !core.OutputEqual(out, core.Duplicate(c).Render()) {
			errors.NodeViolation(opRender, core.TypeName(c), "render is not deterministic")
		}
		return out
	})
	return out.Slots()
}
