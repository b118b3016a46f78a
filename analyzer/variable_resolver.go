package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// VariableResolver rewrites a bare TableAlias that turns out to name a
// "WITH ... AS x" projection alias into a PropertyAccess chain against the
// enclosing CTE once its column is known, and resolves PropertyAccess
// aliases that reference a CTE export rather than a live pattern alias
// (spec §4.3 step 4). It runs before the CTE column resolver, which then
// maps these CTE-relative PropertyAccess nodes to physical ColumnRefs.
type VariableResolver struct{}

func (VariableResolver) Name() string { return string(PassVariableResolver) }

func (p VariableResolver) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	enclosingCTE := ""

	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		if with, ok := n.(*logicalplan.WithClause); ok && with.CTEName != "" {
			enclosingCTE = with.CTEName
		}
		if enclosingCTE == "" {
			return n, transform.SameTree, nil
		}

		switch node := n.(type) {
		case *logicalplan.Filter:
			pred, changed, err := p.rewriteExpr(ctx, enclosingCTE, node.Predicate)
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
			changedAny := false
			items := make([]logicalplan.ProjectionItem, len(node.Items))
			for i, it := range node.Items {
				rewritten, changed, err := p.rewriteExpr(ctx, enclosingCTE, it.Expression)
				if err != nil {
					return nil, transform.SameTree, err
				}
				items[i] = logicalplan.ProjectionItem{Expression: rewritten, ColAlias: it.ColAlias}
				changedAny = changedAny || changed
			}
			if !changedAny {
				return n, transform.SameTree, nil
			}
			return node.WithItems(items), transform.NewTree, nil
		default:
			return n, transform.SameTree, nil
		}
	})
}

func (p VariableResolver) rewriteExpr(ctx *planctx.PlanCtx, cteName string, e logicalexpr.Expr) (logicalexpr.Expr, bool, error) {
	changed := false
	result, err := logicalexpr.Transform(e, func(e logicalexpr.Expr) (logicalexpr.Expr, error) {
		switch node := e.(type) {
		case logicalexpr.TableAlias:
			if ctx.CTEs.IsProjectionAlias(node.Alias) {
				changed = true
				return logicalexpr.PropertyAccess{Alias: cteName, Property: node.Alias}, nil
			}
			return e, nil
		case logicalexpr.PropertyAccess:
			// A property read off a bare re-exported node/relationship alias
			// ("WITH ... p" then later "p.id") has no single CTE column of
			// its own: it's resolved against a "<alias>.<property>"
			// composite key that the CTE column resolver expands lazily.
			if ctx.CTEs.IsProjectionAlias(node.Alias) {
				changed = true
				return logicalexpr.PropertyAccess{Alias: cteName, Property: node.Alias + "." + node.Property}, nil
			}
			return e, nil
		default:
			return e, nil
		}
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}
