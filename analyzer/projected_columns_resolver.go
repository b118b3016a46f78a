package analyzer

import (
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/patternschema"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// ProjectedColumnsResolver rewrites every PropertyAccess reachable from a
// Filter/Projection/GroupBy/OrderBy/WithClause node into a physical
// ColumnRef, using each alias's resolved patternschema.Strategy (spec §4.2
// step 5). This is the pass that makes every later pass's life easy: after
// it runs, no PropertyAccess survives anywhere outside a still-unresolved
// CTE reference (those wait for the CTE column resolver in C6).
type ProjectedColumnsResolver struct{}

func (ProjectedColumnsResolver) Name() string { return string(PassProjectedColumnsResolver) }

func (p ProjectedColumnsResolver) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return n, transform.SameTree, nil
}

func (p ProjectedColumnsResolver) AnalyzeWithGraphSchema(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	var rewriteErr error
	// enclosingCTE tracks the nearest already-visited (post-order, so
	// "already visited" means "syntactically earlier") WithClause's name.
	// A PropertyAccess whose alias is itself a projection alias exported by
	// some WITH is only a genuine CTE-relative reference once it's read
	// from above that WITH boundary; the WithClause's own items (the
	// expressions that populate the CTE in the first place) still resolve
	// directly against the live pattern alias they read from. Left alone,
	// this pass would otherwise resolve a re-exported alias's later
	// property reads against its original live table instead of deferring
	// them to the variable resolver and CTE column resolver in C6.
	enclosingCTE := ""
	rewrite := func(e logicalexpr.Expr) (logicalexpr.Expr, error) {
		pa, ok := e.(logicalexpr.PropertyAccess)
		if !ok {
			return e, nil
		}
		if ctx.CTEs.IsCTE(pa.Alias) {
			return e, nil
		}
		if enclosingCTE != "" && ctx.CTEs.IsProjectionAlias(pa.Alias) {
			return e, nil
		}
		table, err := ctx.GetTableCtx(pa.Alias)
		if err != nil {
			return nil, err
		}
		col, err := p.resolveColumn(schema, table, pa.Property)
		if err != nil {
			return nil, err
		}
		return logicalexpr.ColumnRef{Table: pa.Alias, Column: col}, nil
	}

	result, tree, err := transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
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

		case *logicalplan.GroupBy:
			exprs := make([]logicalexpr.Expr, len(node.Expressions))
			for i, e := range node.Expressions {
				rewritten, err := logicalexpr.Transform(e, rewrite)
				if err != nil {
					return nil, transform.SameTree, err
				}
				exprs[i] = rewritten
			}
			cp := *node
			cp.Expressions = exprs
			if node.HavingClause != nil {
				having, err := logicalexpr.Transform(node.HavingClause, rewrite)
				if err != nil {
					return nil, transform.SameTree, err
				}
				cp.HavingClause = having
			}
			return &cp, transform.NewTree, nil

		case *logicalplan.OrderBy:
			items := make([]logicalplan.OrderItem, len(node.Items))
			for i, it := range node.Items {
				expr, err := logicalexpr.Transform(it.Expression, rewrite)
				if err != nil {
					return nil, transform.SameTree, err
				}
				items[i] = logicalplan.OrderItem{Expression: expr, Descending: it.Descending}
			}
			cp := *node
			cp.Items = items
			return &cp, transform.NewTree, nil

		case *logicalplan.WithClause:
			items := make([]logicalplan.WithItem, len(node.Items))
			for i, it := range node.Items {
				expr, err := logicalexpr.Transform(it.Expression, rewrite)
				if err != nil {
					return nil, transform.SameTree, err
				}
				items[i] = logicalplan.WithItem{Expression: expr, ColAlias: it.ColAlias}
			}
			cp := *node
			cp.Items = items
			if node.WhereClause != nil {
				where, err := logicalexpr.Transform(node.WhereClause, rewrite)
				if err != nil {
					return nil, transform.SameTree, err
				}
				cp.WhereClause = where
			}
			// Only ancestors (visited after, in this post-order walk) should
			// treat node.CTEName as an enclosing boundary; the items/where
			// just rewritten above still resolved directly, against the old
			// (possibly empty) enclosingCTE.
			enclosingCTE = node.CTEName
			return &cp, transform.NewTree, nil

		default:
			return n, transform.SameTree, nil
		}
	})
	if err != nil {
		rewriteErr = err
	}
	return result, tree, rewriteErr
}

func (p ProjectedColumnsResolver) resolveColumn(schema *catalog.GraphSchema, table *planctx.TableCtx, property string) (string, error) {
	if table.IsRelation {
		relType, err := table.SingleLabel()
		if err != nil {
			return "", err
		}
		relSchema, err := schema.GetRelSchemaWithNodes(relType, table.FromNodeLabel, table.ToNodeLabel)
		if err != nil {
			return "", KindUnknownRelType.New(relType)
		}
		return patternschema.ResolveRelProperty(relSchema, property)
	}

	label, err := table.SingleLabel()
	if err != nil {
		return "", err
	}
	nodeSchema, err := schema.GetNodeSchema(label)
	if err != nil {
		return "", KindUnknownLabel.New(label)
	}
	return patternschema.ResolveNodeProperty(nodeSchema, table.Strategy, property)
}
