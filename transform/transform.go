// Package transform provides the generic plan-tree rewrite helpers shared
// by every analyzer/optimizer/final pass: the Tree identity signal, a
// post-order rewrite (Node) and pre-order read-only walks (Inspect, Count)
// built on logicalplan.Node's
// Children/WithChildren pair. Mirrors the teacher's sql/transform package
// (see vmg-go-mysql-server's TreeIdentity-returning node rewriters).
package transform

import "github.com/brahmand-io/graphplan/logicalplan"

// Tree reports whether a rewrite produced a structurally new node. A pass
// that rebuilds a parent only when a child actually changed uses this to
// avoid needless reallocation further up the tree (spec §3.1 invariant 1,
// §9 design note).
type Tree bool

const (
	SameTree Tree = false
	NewTree  Tree = true
)

// NodeFunc rewrites a single node, reporting whether it produced a new
// value.
type NodeFunc func(n logicalplan.Node) (logicalplan.Node, Tree, error)

// Node applies f to every node in the tree rooted at n, post-order
// (children first, so a pass can see already-rewritten children when it
// decides what to do with the parent). It rebuilds a parent via
// WithChildren only if at least one child came back NewTree or f itself
// returned NewTree for the parent.
func Node(n logicalplan.Node, f NodeFunc) (logicalplan.Node, Tree, error) {
	if n == nil {
		return nil, SameTree, nil
	}

	children := n.Children()
	if len(children) == 0 {
		return f(n)
	}

	newChildren := make([]logicalplan.Node, len(children))
	anyChanged := false
	for i, c := range children {
		rewritten, changed, err := Node(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		newChildren[i] = rewritten
		if changed == NewTree {
			anyChanged = true
		}
	}

	current := n
	if anyChanged {
		rebuilt, err := n.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
		current = rebuilt
	}

	result, changed, err := f(current)
	if err != nil {
		return nil, SameTree, err
	}
	if changed == NewTree || anyChanged {
		return result, NewTree, nil
	}
	return result, SameTree, nil
}

// Inspect walks the tree rooted at n, pre-order, calling f on every node.
// f returns false to stop descending into that node's children. Read-only:
// used by passes that only need to gather information (property
// requirements, query validation, cartesian join extraction's alias
// collection) before deciding how to rewrite.
func Inspect(n logicalplan.Node, f func(logicalplan.Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, f)
	}
}

// Count returns the number of nodes in the tree rooted at n for which
// pred returns true.
func Count(n logicalplan.Node, pred func(logicalplan.Node) bool) int {
	count := 0
	Inspect(n, func(n logicalplan.Node) bool {
		if pred(n) {
			count++
		}
		return true
	})
	return count
}
