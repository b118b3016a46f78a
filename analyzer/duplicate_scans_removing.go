package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// DuplicateScansRemoving replaces every GraphNode/ViewScan/Scan whose
// alias was already seen earlier in the post-order walk with that first
// node (a pattern like "(a)-[:R1]->(b), (a)-[:R2]->(c)" produces two
// independent references to "a" before this pass runs), wherever in the
// tree the repeat occurs, not only under a CartesianProduct (spec §4.3
// step 2). Two scans are considered duplicates when they carry the same
// alias; since every alias is bound exactly once in PlanCtx, this is safe
// regardless of which physical branch happens to appear first.
type DuplicateScansRemoving struct{}

func (DuplicateScansRemoving) Name() string { return string(PassDuplicateScansRemoving) }

func (p DuplicateScansRemoving) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	seen := map[string]logicalplan.Node{}

	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		alias := scanAlias(n)
		if alias == "" {
			return n, transform.SameTree, nil
		}
		if existing, ok := seen[alias]; ok {
			return existing, transform.NewTree, nil
		}
		seen[alias] = n
		return n, transform.SameTree, nil
	})
}

func scanAlias(n logicalplan.Node) string {
	switch n := n.(type) {
	case *logicalplan.GraphNode:
		return n.Alias
	case *logicalplan.ViewScan:
		return n.Alias
	case *logicalplan.Scan:
		return n.Alias
	default:
		return ""
	}
}
