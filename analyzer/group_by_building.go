package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// GroupByBuilding wraps a Projection containing at least one aggregate item
// in a GroupBy node whose keys are every non-aggregate projection item
// (spec §4.2 step 10): Cypher has no explicit GROUP BY clause, grouping
// keys are implied by whichever RETURN/WITH items aren't aggregate calls.
type GroupByBuilding struct{}

func (GroupByBuilding) Name() string { return string(PassGroupByBuilding) }

func (p GroupByBuilding) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		proj, ok := n.(*logicalplan.Projection)
		if !ok {
			return n, transform.SameTree, nil
		}

		hasAggregate := false
		var keys []logicalexpr.Expr
		for _, item := range proj.Items {
			if logicalexpr.IsAggregate(item.Expression) {
				hasAggregate = true
				continue
			}
			keys = append(keys, item.Expression)
		}
		if !hasAggregate {
			return proj, transform.SameTree, nil
		}

		return &logicalplan.GroupBy{
			Input:                     proj,
			Expressions:               keys,
			IsMaterializationBoundary: false,
		}, transform.NewTree, nil
	})
}
