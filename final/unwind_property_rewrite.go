package final

import (
	"fmt"

	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// UnwindPropertyRewrite rewrites every PropertyAccess in a Filter or
// Projection against the Alias of an Unwind that carries TupleProperties
// into the tuple-index column the earlier tuple enricher recorded
// (ColumnRef{Table: alias, Column: "[2]"}); a property with no recorded
// index is an error. A PropertyAccess against an Unwind without tuple
// structure is left unchanged. Grounded on unwind_property_rewriter.rs: this has to run
// last because every earlier pass treats an Unwind alias as an opaque
// scalar binding (spec §4.4 step 2).
type UnwindPropertyRewrite struct{}

func (UnwindPropertyRewrite) Name() string { return "unwind_property_rewrite" }

func (p UnwindPropertyRewrite) Run(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	tupleIndex := map[string]map[string]int{}

	result, _, err := transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		unwind, ok := n.(*logicalplan.Unwind)
		if !ok {
			return n, transform.SameTree, nil
		}
		if len(unwind.TupleProperties) > 0 {
			idx := map[string]int{}
			for _, tp := range unwind.TupleProperties {
				idx[tp.Property] = tp.Index
			}
			tupleIndex[unwind.Alias] = idx
		}
		return n, transform.SameTree, nil
	})
	if err != nil {
		return nil, transform.SameTree, err
	}

	rewrite := func(e logicalexpr.Expr) (logicalexpr.Expr, error) {
		pa, ok := e.(logicalexpr.PropertyAccess)
		if !ok {
			return e, nil
		}
		idx, ok := tupleIndex[pa.Alias]
		if !ok {
			return e, nil
		}
		i, ok := idx[pa.Property]
		if !ok {
			return nil, fmt.Errorf("unwind_property_rewrite: %s has no tuple index for %q", pa.Alias, pa.Property)
		}
		return logicalexpr.ColumnRef{Table: pa.Alias, Column: fmt.Sprintf("[%d]", i)}, nil
	}

	return transform.Node(result, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		switch node := n.(type) {
		case *logicalplan.Filter:
			pred, err := logicalexpr.Transform(node.Predicate, rewrite)
			if err != nil {
				return nil, transform.SameTree, err
			}
			cp := *node
			cp.Predicate = pred
			return &cp, transform.NewTree, nil
		case *logicalplan.Projection:
			items := make([]logicalplan.ProjectionItem, len(node.Items))
			for i, it := range node.Items {
				expr, err := logicalexpr.Transform(it.Expression, rewrite)
				if err != nil {
					return nil, transform.SameTree, err
				}
				items[i] = logicalplan.ProjectionItem{Expression: expr, ColAlias: it.ColAlias}
			}
			return node.WithItems(items), transform.NewTree, nil
		default:
			return n, transform.SameTree, nil
		}
	})
}
