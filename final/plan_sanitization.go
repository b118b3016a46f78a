// Package final implements the C8 passes that run last, after all
// analysis and optimization: they clean up intermediate bookkeeping that
// earlier passes needed but that must not leak into the plan handed to an
// external renderer (spec §4.4).
package final

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// PlanSanitization materializes each GraphNode's final ProjectedColumns
// list from the PropertyAccess entries projection tagging left in its
// TableCtx.ProjectionItems (one entry per distinct property, qualified as
// "alias.property"; filters and property requirements do not contribute),
// so the renderer reads one authoritative list instead of re-deriving it
// from PlanCtx itself (spec §4.4 step 1). A GraphNode with no projected
// properties is left with an empty list: it exists purely to anchor a
// join.
//
// It also wraps a GraphNode carrying unattached TableCtx.Filters (most
// notably the InSubquery filters graph traversal planning records against
// endpoint aliases, spec §4.3 step 1) in a Filter node, so those
// predicates are reachable in the final tree handed to the renderer
// instead of living only in PlanCtx bookkeeping.
type PlanSanitization struct{}

func (PlanSanitization) Name() string { return "plan_sanitization" }

func (p PlanSanitization) Run(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		node, ok := n.(*logicalplan.GraphNode)
		if !ok {
			return n, transform.SameTree, nil
		}
		table, err := ctx.GetNodeTableCtx(node.Alias)
		if err != nil {
			return n, transform.SameTree, nil
		}

		seen := map[string]struct{}{}
		var cols []logicalplan.ProjectedColumn
		for _, item := range table.ProjectionItems {
			pa, ok := item.(logicalexpr.PropertyAccess)
			if !ok {
				continue
			}
			if _, ok := seen[pa.Property]; ok {
				continue
			}
			seen[pa.Property] = struct{}{}
			cols = append(cols, logicalplan.ProjectedColumn{
				CypherProperty:  pa.Property,
				QualifiedColumn: node.Alias + "." + pa.Property,
			})
		}

		var result logicalplan.Node = node
		changed := false
		if len(cols) != len(node.ProjectedColumns) {
			cp := *node
			cp.ProjectedColumns = cols
			result = &cp
			changed = true
		}

		if len(table.Filters) > 0 {
			result = &logicalplan.Filter{Input: result, Predicate: logicalexpr.And(table.Filters...)}
			changed = true
		}

		if !changed {
			return node, transform.SameTree, nil
		}
		return result, transform.NewTree, nil
	})
}
