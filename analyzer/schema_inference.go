package analyzer

import (
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/patternschema"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// SchemaInference is the first C5 pass: it resolves every GraphNode's and
// GraphRel's single concrete label/type against the catalog, fills in
// IsDenormalized, and computes the pattern-schema access Strategy each
// alias will use for property resolution for the rest of the pipeline
// (spec §4.2 step 1, grounded on view_resolver.rs's strategy selection).
type SchemaInference struct{}

func (SchemaInference) Name() string { return string(PassSchemaInference) }

func (p SchemaInference) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return n, transform.SameTree, nil
}

func (p SchemaInference) AnalyzeWithGraphSchema(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		switch node := n.(type) {
		case *logicalplan.GraphNode:
			return p.resolveNode(ctx, schema, node)
		case *logicalplan.GraphRel:
			return p.resolveRel(ctx, schema, node)
		default:
			return n, transform.SameTree, nil
		}
	})
}

func (p SchemaInference) resolveNode(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, node *logicalplan.GraphNode) (logicalplan.Node, transform.Tree, error) {
	table, err := ctx.GetNodeTableCtx(node.Alias)
	if err != nil {
		return nil, transform.SameTree, err
	}

	label := node.Label
	if label == "" {
		label, err = table.SingleLabel()
		if err != nil {
			return nil, transform.SameTree, err
		}
	}

	nodeSchema, err := schema.GetNodeSchema(label)
	if err != nil {
		return nil, transform.SameTree, KindUnknownLabel.New(label)
	}

	strategy := patternschema.Strategy{Kind: patternschema.OwnTable, Label: label}
	if nodeSchema.IsDenormalized {
		// Role is left at its zero value (RoleNone) here: which side of the
		// enclosing edge this alias occupies isn't known until the rel's
		// FromNodeLabel/ToNodeLabel are resolved, so ResolveNodeProperty
		// falls back to its from-then-to default order for this alias.
		strategy.Kind = patternschema.EmbeddedInEdge
	}
	if !table.IsExplicit && len(table.ProjectionItems) == 0 && len(table.Filters) == 0 {
		strategy.Kind = patternschema.Virtual
	}
	table.Strategy = strategy

	if node.Label == label && node.IsDenormalized == nodeSchema.IsDenormalized {
		return node, transform.SameTree, nil
	}
	cp := *node
	cp.Label = label
	cp.IsDenormalized = nodeSchema.IsDenormalized
	return &cp, transform.NewTree, nil
}

func (p SchemaInference) resolveRel(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, rel *logicalplan.GraphRel) (logicalplan.Node, transform.Tree, error) {
	table, err := ctx.GetRelTableCtx(rel.Alias)
	if err != nil {
		return nil, transform.SameTree, err
	}

	relType, err := table.SingleLabel()
	if err != nil {
		return nil, transform.SameTree, err
	}

	if _, err := schema.GetRelSchemaWithNodes(relType, table.FromNodeLabel, table.ToNodeLabel); err != nil {
		return nil, transform.SameTree, KindUnknownRelType.New(relType)
	}

	if len(rel.Labels) == 1 && rel.Labels[0] == relType {
		return rel, transform.SameTree, nil
	}
	cp := *rel
	cp.Labels = []string{relType}
	return &cp, transform.NewTree, nil
}
