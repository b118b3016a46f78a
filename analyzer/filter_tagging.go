package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// FilterTagging splits a Filter's (already column-resolved) predicate into
// its AND-conjuncts and tags each conjunct onto the single alias's TableCtx
// it exclusively references, so later passes (and eventually the optimizer's
// filter pushdown) know which GraphNode/GraphRel a predicate belongs to
// without re-scanning the whole WHERE tree (spec §4.2 step 7). A conjunct
// that references more than one alias is left attached to the Filter node
// itself and is not tagged.
type FilterTagging struct{}

func (FilterTagging) Name() string { return string(PassFilterTagging) }

func (p FilterTagging) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		filter, ok := n.(*logicalplan.Filter)
		if !ok {
			return n, transform.SameTree, nil
		}

		var untagged []logicalexpr.Expr
		for _, conjunct := range logicalexpr.SplitAnd(filter.Predicate) {
			alias, ok := soleAlias(conjunct)
			if !ok {
				untagged = append(untagged, conjunct)
				continue
			}
			table, err := ctx.GetTableCtx(alias)
			if err != nil {
				return nil, transform.SameTree, err
			}
			table.Filters = append(table.Filters, conjunct)
		}

		if len(untagged) == 0 {
			return filter.Input, transform.NewTree, nil
		}
		cp := *filter
		cp.Predicate = logicalexpr.And(untagged...)
		return &cp, transform.NewTree, nil
	})
}

// soleAlias reports the single table alias a predicate exclusively
// references via ColumnRef, or false if it references zero or several.
func soleAlias(e logicalexpr.Expr) (string, bool) {
	aliases := map[string]struct{}{}
	logicalexpr.Inspect(e, func(e logicalexpr.Expr) bool {
		if c, ok := e.(logicalexpr.ColumnRef); ok && c.Table != "" {
			aliases[c.Table] = struct{}{}
		}
		return true
	})
	if len(aliases) != 1 {
		return "", false
	}
	for a := range aliases {
		return a, true
	}
	return "", false
}
