package optimizer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// TrivialWithElimination drops a WithClause that exports exactly the same
// aliases its input already provides, unfiltered, unordered and
// undistinguished (every item a bare TableAlias, no WHERE/ORDER
// BY/SKIP/LIMIT/DISTINCT), since materializing it as a CTE buys nothing:
// "MATCH (a) WITH a MATCH (a)-->(b) RETURN a,b" doesn't need a CTE
// boundary between the two MATCH clauses (spec §4.3 step 12).
type TrivialWithElimination struct{}

func (TrivialWithElimination) Name() string { return "trivial_with_elimination" }

func (p TrivialWithElimination) Run(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		with, ok := n.(*logicalplan.WithClause)
		if !ok || !isTrivial(with) {
			return n, transform.SameTree, nil
		}
		return with.Input, transform.NewTree, nil
	})
}

func isTrivial(w *logicalplan.WithClause) bool {
	if w.Distinct || w.WhereClause != nil || len(w.OrderBy) != 0 || w.Skip != nil || w.Limit != nil {
		return false
	}
	for _, item := range w.Items {
		ta, ok := item.Expression.(logicalexpr.TableAlias)
		if !ok {
			return false
		}
		if item.ColAlias != "" && item.ColAlias != ta.Alias {
			return false
		}
	}
	return true
}
