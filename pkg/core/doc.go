// Package core defines the component contract and the declarative Output
// that components render to.
//
// A Component is an immutable value that knows how to project itself into an
// Output. Output is a small closed union: Single holds one component, Multi
// holds ordered sibling outputs. The tree package turns Outputs into a
// persistent tree of mounted components and keeps it in sync across passes.
//
// # Defining Components
//
// Embed Base for no-op lifecycle hooks and implement Render:
//
//	type TodoRow struct {
//	    core.Base
//	    Text      string
//	    Completed bool
//	}
//
//	func (r TodoRow) Render() core.Output {
//	    return core.Single(Label{Text: r.Text, Struck: r.Completed})
//	}
//
// Leaf components render core.Empty(). Lists are built with core.List and
// fixed groups of children with core.Group.
//
// # Identity
//
// The variant of a component is its concrete type. Equal compares variants
// first and fields second (reflect.DeepEqual unless the component implements
// Equaler). Duplicate deep-copies a component preserving its variant; it
// copies exported fields, so components with unexported state implement
// Duplicator.
//
// # Purity
//
// Render must not read hidden state. The engine renders components whenever
// it needs to re-derive structure, and DebugMode makes it verify that two
// renders of the same value agree.
package core
