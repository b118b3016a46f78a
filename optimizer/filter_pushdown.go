// Package optimizer implements the C7 optimization passes: rewrites that
// change the plan's physical shape without changing its schema or result
// set, run as shims interleaved between the C5/C6 analyzer passes per the
// original mod.rs wiring (spec §4.3, SPEC_FULL §4).
package optimizer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// FilterPushdown moves every predicate the analyzer's filter tagging pass
// already attached to a GraphRel's TableCtx down into that GraphRel's
// WherePredicate field, letting the relationship's own table scan apply
// the restriction instead of filtering after the join (spec §4.3 step 10,
// grounded on the old-API pushdown pass in the pack's go-mysql-server
// source).
type FilterPushdown struct{}

func (FilterPushdown) Name() string { return "filter_pushdown" }

func (p FilterPushdown) Run(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		rel, ok := n.(*logicalplan.GraphRel)
		if !ok || rel.WherePredicate != nil {
			return n, transform.SameTree, nil
		}
		table, err := ctx.GetTableCtx(rel.Alias)
		if err != nil || len(table.Filters) == 0 {
			return n, transform.SameTree, nil
		}

		pushed := logicalexpr.And(table.Filters...)
		if pushed == nil {
			return n, transform.SameTree, nil
		}
		cp := *rel
		cp.WherePredicate = pushed
		table.Filters = nil
		return &cp, transform.NewTree, nil
	})
}
