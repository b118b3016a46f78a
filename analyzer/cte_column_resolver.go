package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// CTEColumnResolver rewrites every PropertyAccess whose Alias names a
// registered CTE into a physical ColumnRef against that CTE's exported
// column, completing the resolution the variable resolver and the earlier
// projected-columns resolver both deliberately left alone (spec §4.3 step
// 8). A PropertyAccess whose Alias is not a registered CTE is left
// unchanged; a registered CTE with no column for the property is a
// CTEColumnNotFound error.
type CTEColumnResolver struct{}

func (CTEColumnResolver) Name() string { return string(PassCTEColumnResolver) }

func (p CTEColumnResolver) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	changed := false
	rewrite := func(e logicalexpr.Expr) (logicalexpr.Expr, error) {
		pa, ok := e.(logicalexpr.PropertyAccess)
		if !ok || !ctx.CTEs.IsCTE(pa.Alias) {
			return e, nil
		}
		col, ok := ctx.CTEs.ColumnFor(pa.Alias, pa.Property)
		if !ok {
			return nil, KindCTEColumnNotFound.New(pa.Alias, pa.Property)
		}
		changed = true
		return logicalexpr.ColumnRef{Table: pa.Alias, Column: col}, nil
	}

	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		switch node := n.(type) {
		case *logicalplan.Filter:
			changed = false
			pred, err := logicalexpr.Transform(node.Predicate, rewrite)
			if err != nil {
				return nil, transform.SameTree, err
			}
			if !changed {
				return n, transform.SameTree, nil
			}
			cp := *node
			cp.Predicate = pred
			return &cp, transform.NewTree, nil
		case *logicalplan.Projection:
			changed = false
			items := make([]logicalplan.ProjectionItem, len(node.Items))
			for i, it := range node.Items {
				expr, err := logicalexpr.Transform(it.Expression, rewrite)
				if err != nil {
					return nil, transform.SameTree, err
				}
				items[i] = logicalplan.ProjectionItem{Expression: expr, ColAlias: it.ColAlias}
			}
			if !changed {
				return n, transform.SameTree, nil
			}
			return node.WithItems(items), transform.NewTree, nil
		default:
			return n, transform.SameTree, nil
		}
	})
}
