package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// PropertyRequirements populates PlanCtx.PropertyRequirementsHint by
// scanning every Filter/Projection for PropertyAccess nodes still pointing
// at a relationship alias, recording which properties the query actually
// needs from that relationship before a concrete polymorphic schema
// variant is chosen (spec §4.3 step 10). It runs last in the intermediate
// batch, and no pass in this module reads the hint afterwards; it is left
// on the PlanCtx for the caller.
//
// This pass is read-only: it never rewrites the tree, only the PlanCtx
// side-table, so it always reports SameTree.
type PropertyRequirements struct{}

func (PropertyRequirements) Name() string { return string(PassPropertyRequirements) }

func (p PropertyRequirements) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	transform.Inspect(n, func(n logicalplan.Node) bool {
		var exprs []logicalexpr.Expr
		switch node := n.(type) {
		case *logicalplan.Filter:
			exprs = []logicalexpr.Expr{node.Predicate}
		case *logicalplan.Projection:
			for _, it := range node.Items {
				exprs = append(exprs, it.Expression)
			}
		default:
			return true
		}

		for _, e := range exprs {
			logicalexpr.Inspect(e, func(e logicalexpr.Expr) bool {
				pa, ok := e.(logicalexpr.PropertyAccess)
				if !ok {
					return true
				}
				table, err := ctx.GetTableCtx(pa.Alias)
				if err != nil || !table.IsRelation {
					return true
				}
				if ctx.PropertyRequirementsHint[pa.Alias] == nil {
					ctx.PropertyRequirementsHint[pa.Alias] = map[string]struct{}{}
				}
				ctx.PropertyRequirementsHint[pa.Alias][pa.Property] = struct{}{}
				return true
			})
		}
		return true
	})
	return n, transform.SameTree, nil
}
