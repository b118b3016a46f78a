package analyzer

import (
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// GraphJoinInference wraps every GraphRel subtree in an explicit GraphJoins
// node describing the relationship-to-endpoint join keys (the catalog's
// FromIDColumn/ToIDColumn on the edge side, the endpoint label's single
// NodeID column on the node side; EdgeID is not consulted, and a composite
// NodeID yields an empty node-side key), replacing the
// implicit connection-alias matching used earlier in the pipeline with the
// concrete join structure a SQL renderer needs (spec §4.3 step 7).
type GraphJoinInference struct{}

func (GraphJoinInference) Name() string { return string(PassGraphJoinInference) }

func (p GraphJoinInference) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return n, transform.SameTree, nil
}

func (p GraphJoinInference) AnalyzeWithGraphSchema(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		rel, ok := n.(*logicalplan.GraphRel)
		if !ok {
			return n, transform.SameTree, nil
		}

		table, err := ctx.GetRelTableCtx(rel.Alias)
		if err != nil {
			return nil, transform.SameTree, err
		}
		relType, err := table.SingleLabel()
		if err != nil {
			return nil, transform.SameTree, err
		}
		relSchema, err := schema.GetRelSchemaWithNodes(relType, table.FromNodeLabel, table.ToNodeLabel)
		if err != nil {
			return nil, transform.SameTree, KindUnknownRelType.New(relType)
		}

		var joins []logicalplan.JoinSpec
		kind := logicalplan.InnerJoin
		if rel.IsOptional {
			kind = logicalplan.LeftJoin
		}
		if rel.LeftConnection != "" {
			joins = append(joins, logicalplan.JoinSpec{
				LeftAlias: rel.LeftConnection, RightAlias: rel.Alias,
				LeftKey: nodeIDColumn(schema, table.FromNodeLabel), RightKey: relSchema.FromIDColumn,
				Kind: kind,
			})
		}
		if rel.RightConnection != "" {
			joins = append(joins, logicalplan.JoinSpec{
				LeftAlias: rel.Alias, RightAlias: rel.RightConnection,
				LeftKey: relSchema.ToIDColumn, RightKey: nodeIDColumn(schema, table.ToNodeLabel),
				Kind: kind,
			})
		}
		if len(joins) == 0 {
			return n, transform.SameTree, nil
		}

		return &logicalplan.GraphJoins{Input: rel, Joins: joins}, transform.NewTree, nil
	})
}

func nodeIDColumn(schema *catalog.GraphSchema, label string) string {
	if label == "" {
		return ""
	}
	n, err := schema.GetNodeSchema(label)
	if err != nil || n.NodeID.IsComposite() {
		return ""
	}
	return n.NodeID.Column
}
