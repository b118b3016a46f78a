package optimizer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// CartesianJoinExtraction looks for a Filter directly wrapping a
// CartesianProduct whose predicate's conjuncts include one that references
// aliases from both branches, and hoists that conjunct into the
// CartesianProduct's JoinCondition, turning an uncorrelated product plus a
// post-filter into a proper equi/theta join shape a renderer can lower to
// JOIN ... ON (spec §4.3 step 11). Conjuncts that don't reference both
// branches stay on the Filter.
type CartesianJoinExtraction struct{}

func (CartesianJoinExtraction) Name() string { return "cartesian_join_extraction" }

func (p CartesianJoinExtraction) Run(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		filter, ok := n.(*logicalplan.Filter)
		if !ok {
			return n, transform.SameTree, nil
		}
		product, ok := filter.Input.(*logicalplan.CartesianProduct)
		if !ok {
			return n, transform.SameTree, nil
		}

		leftAliases := collectAliases(product.Left)
		rightAliases := collectAliases(product.Right)

		var joinConjuncts, remaining []logicalexpr.Expr
		for _, conjunct := range logicalexpr.SplitAnd(filter.Predicate) {
			if referencesBoth(conjunct, leftAliases, rightAliases) {
				joinConjuncts = append(joinConjuncts, conjunct)
			} else {
				remaining = append(remaining, conjunct)
			}
		}
		if len(joinConjuncts) == 0 {
			return n, transform.SameTree, nil
		}

		newProduct := *product
		if product.JoinCondition != nil {
			joinConjuncts = append([]logicalexpr.Expr{product.JoinCondition}, joinConjuncts...)
		}
		newProduct.JoinCondition = logicalexpr.And(joinConjuncts...)

		if len(remaining) == 0 {
			return &newProduct, transform.NewTree, nil
		}
		return &logicalplan.Filter{Input: &newProduct, Predicate: logicalexpr.And(remaining...)}, transform.NewTree, nil
	})
}

func collectAliases(n logicalplan.Node) map[string]struct{} {
	out := map[string]struct{}{}
	transform.Inspect(n, func(n logicalplan.Node) bool {
		switch n := n.(type) {
		case *logicalplan.GraphNode:
			out[n.Alias] = struct{}{}
		case *logicalplan.GraphRel:
			out[n.Alias] = struct{}{}
		case *logicalplan.ViewScan:
			out[n.Alias] = struct{}{}
		}
		return true
	})
	return out
}

func referencesBoth(e logicalexpr.Expr, left, right map[string]struct{}) bool {
	hasLeft, hasRight := false, false
	logicalexpr.Inspect(e, func(e logicalexpr.Expr) bool {
		if c, ok := e.(logicalexpr.ColumnRef); ok {
			if _, ok := left[c.Table]; ok {
				hasLeft = true
			}
			if _, ok := right[c.Table]; ok {
				hasRight = true
			}
		}
		return true
	})
	return hasLeft && hasRight
}
