package tree

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-drift/flow/pkg/core"
)

// Kind tags the shape of a persistent node.
type Kind uint8

const (
	// KindInvalid is never stored.
	KindInvalid Kind = iota
	// KindSingle holds one component and the children it renders to.
	KindSingle
	// KindMulti holds ordered sibling nodes.
	KindMulti
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMulti:
		return "multi"
	default:
		return "invalid"
	}
}

// NodeID is a handle to a node in a Tree's arena. The generation makes
// handles to removed nodes detectably stale even after their slot is reused.
// The zero NodeID refers to no node.
type NodeID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id refers to no node.
func (id NodeID) IsZero() bool { return id.gen == 0 }

func (id NodeID) String() string {
	if id.IsZero() {
		return "#none"
	}
	return "#" + strconv.FormatUint(uint64(id.index), 10) + "." + strconv.FormatUint(uint64(id.gen), 10)
}

// Path addresses a node by child indexes from the root. The root's path is
// empty.
type Path []int

// Child returns a new path extending p with index i.
func (p Path) Child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, i := range p {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}

// Stats counts what one pass did.
type Stats struct {
	Mounted   int
	Unmounted int
	Updated   int
	Skipped   int
	Rendered  int
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Mounted:   s.Mounted + o.Mounted,
		Unmounted: s.Unmounted + o.Unmounted,
		Updated:   s.Updated + o.Updated,
		Skipped:   s.Skipped + o.Skipped,
		Rendered:  s.Rendered + o.Rendered,
	}
}

// Churn returns the number of lifecycle notifications in s.
func (s Stats) Churn() int { return s.Mounted + s.Unmounted }

func (s Stats) String() string {
	return fmt.Sprintf("mounted=%d unmounted=%d updated=%d skipped=%d rendered=%d",
		s.Mounted, s.Unmounted, s.Updated, s.Skipped, s.Rendered)
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("mounted", s.Mounted),
		slog.Int("unmounted", s.Unmounted),
		slog.Int("updated", s.Updated),
		slog.Int("skipped", s.Skipped),
		slog.Int("rendered", s.Rendered),
	)
}

type node struct {
	gen       uint32
	live      bool
	kind      Kind
	component core.Component
	children  []NodeID
	parent    NodeID
}

// Tree is the persistent mirror of successive Outputs. It owns its nodes
// in an arena addressed by NodeID and is mutated by one pass at a time.
type Tree struct {
	nodes  []node
	free   []uint32
	live   int
	root   NodeID
	hooks  Hooks
	cache  *RenderCache
	strict bool

	inPass bool
	failed error
	stats  Stats
}

// Option configures a Tree.
type Option func(*Tree)

// WithHooks registers lifecycle observers.
func WithHooks(h Hooks) Option {
	return func(t *Tree) {
		t.hooks = ChainHooks(t.hooks, h)
	}
}

// WithRenderCache enables a pass-scoped render memo admitting up to
// capacity entries per pass.
func WithRenderCache(capacity int) Option {
	return func(t *Tree) {
		if capacity > 0 {
			t.cache = NewRenderCache(capacity)
		} else {
			t.cache = nil
		}
	}
}

// WithStrictRender renders every component twice and halts the pass when
// the two Outputs differ. Defaults to core.DebugMode.
func WithStrictRender(strict bool) Option {
	return func(t *Tree) {
		t.strict = strict
	}
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{strict: core.DebugMode}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the root node, or the zero NodeID before the first pass.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

// Err returns the error that halted a previous pass, if any.
func (t *Tree) Err() error { return t.failed }

// Contains reports whether id refers to a live node.
func (t *Tree) Contains(id NodeID) bool {
	if id.IsZero() || int(id.index) >= len(t.nodes) {
		return false
	}
	n := &t.nodes[id.index]
	return n.live && n.gen == id.gen
}

// Kind returns the shape of node id, or KindInvalid if id is not live.
func (t *Tree) Kind(id NodeID) Kind {
	if !t.Contains(id) {
		return KindInvalid
	}
	return t.nodes[id.index].kind
}

// Component returns the component held by a single node, or nil.
func (t *Tree) Component(id NodeID) core.Component {
	if !t.Contains(id) {
		return nil
	}
	return t.nodes[id.index].component
}

// Children returns a copy of the children of node id.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.Contains(id) {
		return nil
	}
	return append([]NodeID(nil), t.nodes[id.index].children...)
}

// Parent returns the parent of node id, or the zero NodeID for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.Contains(id) {
		return NodeID{}
	}
	return t.nodes[id.index].parent
}

// Ancestors returns the components of the single nodes above id, ordered
// root to parent.
func (t *Tree) Ancestors(id NodeID) []core.Component {
	var out []core.Component
	for p := t.Parent(id); !p.IsZero(); p = t.Parent(p) {
		if n := &t.nodes[p.index]; n.kind == KindSingle {
			out = append(out, n.component)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SingleParent returns the nearest single node above id, skipping multi
// nodes, or the zero NodeID.
func (t *Tree) SingleParent(id NodeID) NodeID {
	for p := t.Parent(id); !p.IsZero(); p = t.Parent(p) {
		if t.nodes[p.index].kind == KindSingle {
			return p
		}
	}
	return NodeID{}
}

// PathOf returns the index path from the root to id, or nil if id is not
// live.
func (t *Tree) PathOf(id NodeID) Path {
	if !t.Contains(id) {
		return nil
	}
	var rev []int
	for cur := id; ; {
		p := t.nodes[cur.index].parent
		if p.IsZero() {
			break
		}
		idx := -1
		for i, c := range t.nodes[p.index].children {
			if c == cur {
				idx = i
				break
			}
		}
		rev = append(rev, idx)
		cur = p
	}
	path := make(Path, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// NodeAt resolves an index path from the root.
func (t *Tree) NodeAt(path Path) (NodeID, bool) {
	cur := t.root
	if !t.Contains(cur) {
		return NodeID{}, false
	}
	for _, i := range path {
		kids := t.nodes[cur.index].children
		if i < 0 || i >= len(kids) {
			return NodeID{}, false
		}
		cur = kids[i]
	}
	return cur, true
}

// Walk visits the tree depth first, left to right, parent before children.
// Returning false from fn skips the children of that node.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	if !t.Contains(t.root) {
		return
	}
	t.walk(t.root, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id.index].children {
		t.walk(c, depth+1, fn)
	}
}

func (t *Tree) alloc(n node) NodeID {
	n.live = true
	t.live++
	if k := len(t.free); k > 0 {
		idx := t.free[k-1]
		t.free = t.free[:k-1]
		n.gen = t.nodes[idx].gen + 1
		t.nodes[idx] = n
		return NodeID{index: idx, gen: n.gen}
	}
	n.gen = 1
	t.nodes = append(t.nodes, n)
	return NodeID{index: uint32(len(t.nodes) - 1), gen: 1}
}

func (t *Tree) release(id NodeID) {
	n := &t.nodes[id.index]
	n.live = false
	n.component = nil
	n.children = nil
	n.parent = NodeID{}
	t.free = append(t.free, id.index)
	t.live--
}
