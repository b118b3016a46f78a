package optimizer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// CollectUnwindElimination removes the redundant "collect(x) ... UNWIND"
// round trip a WITH/Unwind pair produces when the collected values are
// immediately re-expanded with no intervening aggregation, filter, or
// ordering that depends on the grouping (spec §4.3 step 13): replaces
// Unwind(WithClause(collect(x))) with the WithClause's own Input, since
// collecting into a list only to unwind it back out is a no-op over the
// underlying rows.
type CollectUnwindElimination struct{}

func (CollectUnwindElimination) Name() string { return "collect_unwind_elimination" }

func (p CollectUnwindElimination) Run(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		unwind, ok := n.(*logicalplan.Unwind)
		if !ok {
			return n, transform.SameTree, nil
		}
		with, ok := unwind.Input.(*logicalplan.WithClause)
		if !ok || len(with.Items) != 1 || with.WhereClause != nil || len(with.OrderBy) != 0 {
			return n, transform.SameTree, nil
		}
		item := with.Items[0]
		agg, ok := item.Expression.(logicalexpr.AggregateFuncCall)
		if !ok || agg.Name != "collect" {
			return n, transform.SameTree, nil
		}
		unwindsCollectedItem := false
		if ta, ok := unwind.Expression.(logicalexpr.TableAlias); ok {
			unwindsCollectedItem = ta.Alias == item.ColAlias
		}
		if !unwindsCollectedItem {
			return n, transform.SameTree, nil
		}
		return with.Input, transform.NewTree, nil
	})
}
