// Package tree keeps a persistent tree of mounted components in sync with
// successive Outputs.
//
// A Tree owns its nodes in an arena. Each node is either a single node,
// holding one component and the children its render produced, or a multi
// node holding ordered siblings. Nodes are addressed by NodeID handles,
// which go stale when the node is removed, and by Path index paths from the
// root.
//
// # Passes
//
// Update runs one reconciliation pass. The first pass constructs the tree,
// mounting parents before children. Later passes compare each incoming
// component with the held one:
//
//   - equal components are skipped without descending;
//   - same variant with different fields updates the node in place and
//     re-reconciles its children;
//   - a different variant, or a change between single and multi shape,
//     unmounts the old subtree (children first) and constructs the new one.
//
// Sibling lists are matched by position only. Inserting into the middle of a
// list is observed as an update of every following slot plus a mount at the
// tail.
//
// # Failure
//
// A pass presented with input it is not defined for (an invalid Output, a nil
// component, a stale handle, a reentrant call, a non-deterministic render
// under strict mode) fails with a *errors.ContractError. A failed tree
// refuses further passes.
package tree
