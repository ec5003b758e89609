package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/flow/pkg/core"
	"github.com/go-drift/flow/pkg/tree"
)

// Finder locates single nodes in a tree.
type Finder interface {
	// Evaluate returns all matching nodes (depth-first pre-order).
	Evaluate(t *tree.Tree) []tree.NodeID
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	tree   *tree.Tree
	nodes  []tree.NodeID
	finder Finder
}

// Find evaluates f against t.
func Find(t *tree.Tree, f Finder) FinderResult {
	return FinderResult{tree: t, nodes: f.Evaluate(t), finder: f}
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() tree.NodeID {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no nodes: %s", r.describe()))
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) tree.NodeID {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.describe()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []tree.NodeID {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

// Component returns the component of the first match. Panics if no matches.
func (r FinderResult) Component() core.Component {
	return r.tree.Component(r.First())
}

// Components returns the components of every match.
func (r FinderResult) Components() []core.Component {
	out := make([]core.Component, len(r.nodes))
	for i, id := range r.nodes {
		out[i] = r.tree.Component(id)
	}
	return out
}

// Path returns the index path of the first match. Panics if no matches.
func (r FinderResult) Path() tree.Path {
	return r.tree.PathOf(r.First())
}

// --- Concrete finders ---

// typeFinder matches nodes whose component is of the specified type.
type typeFinder struct {
	componentType reflect.Type
}

func (f *typeFinder) Evaluate(t *tree.Tree) []tree.NodeID {
	return collectMatches(t, func(c core.Component) bool {
		return reflect.TypeOf(c) == f.componentType
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.componentType)
}

// ByType returns a finder that matches nodes whose component is type T.
func ByType[T core.Component]() Finder {
	return &typeFinder{componentType: reflect.TypeFor[T]()}
}

// valueFinder matches nodes holding a component equal to value.
type valueFinder struct {
	value core.Component
}

func (f *valueFinder) Evaluate(t *tree.Tree) []tree.NodeID {
	return collectMatches(t, func(c core.Component) bool {
		return core.Equal(c, f.value)
	})
}

func (f *valueFinder) Description() string {
	return fmt.Sprintf("ByValue(%+v)", f.value)
}

// ByValue returns a finder that matches nodes whose component is
// core.Equal to value.
func ByValue(value core.Component) Finder {
	return &valueFinder{value: value}
}

// predicateFinder matches nodes satisfying a predicate.
type predicateFinder struct {
	fn   func(core.Component) bool
	desc string
}

func (f *predicateFinder) Evaluate(t *tree.Tree) []tree.NodeID {
	return collectMatches(t, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches components satisfying fn.
func ByPredicate(desc string, fn func(core.Component) bool) Finder {
	return &predicateFinder{fn: fn, desc: desc}
}

func collectMatches(t *tree.Tree, match func(core.Component) bool) []tree.NodeID {
	var out []tree.NodeID
	t.Walk(func(id tree.NodeID, _ int) bool {
		if c := t.Component(id); c != nil && match(c) {
			out = append(out, id)
		}
		return true
	})
	return out
}
