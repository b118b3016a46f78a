package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// UnwindTupleEnricher fills in Unwind.TupleProperties when the unwound
// expression is a collect()-produced list of tuples (the common
// "UNWIND collect([a.x, a.y]) AS t" idiom): every PropertyAccess item of
// the collected ListExpr is assigned its 1-based position in that list,
// whether or not anything downstream reads it; other items are skipped but
// still count towards the positions (spec §4.3 step 9).
type UnwindTupleEnricher struct{}

func (UnwindTupleEnricher) Name() string { return string(PassUnwindTupleEnricher) }

func (p UnwindTupleEnricher) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		unwind, ok := n.(*logicalplan.Unwind)
		if !ok || len(unwind.TupleProperties) > 0 {
			return n, transform.SameTree, nil
		}

		agg, ok := unwind.Expression.(logicalexpr.AggregateFuncCall)
		if !ok || agg.Name != "collect" {
			return n, transform.SameTree, nil
		}
		list, ok := agg.Arg.(logicalexpr.ListExpr)
		if !ok {
			return n, transform.SameTree, nil
		}

		var props []logicalplan.TupleProperty
		for i, item := range list.Items {
			if pa, ok := item.(logicalexpr.PropertyAccess); ok {
				props = append(props, logicalplan.TupleProperty{Property: pa.Property, Index: i + 1})
			}
		}
		if len(props) == 0 {
			return n, transform.SameTree, nil
		}

		cp := *unwind
		cp.TupleProperties = props
		return &cp, transform.NewTree, nil
	})
}
