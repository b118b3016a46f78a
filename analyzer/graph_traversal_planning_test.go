package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

func traversalSchema() *catalog.GraphSchema {
	schema := &catalog.GraphSchema{
		Nodes: []*catalog.NodeSchema{
			{Label: "User", TableName: "users", NodeID: catalog.IdentityColumn{Column: "id"}},
		},
		Rels: []*catalog.RelationshipSchema{
			{Type: "FOLLOWS", TableName: "follows", FromNode: "User", ToNode: "User", FromIDColumn: "follower_id", ToIDColumn: "followee_id"},
		},
	}
	schema.Build()
	return schema
}

func followsRelCtx(ctx *planctx.PlanCtx) {
	ctx.GetOrCreateTableCtx("a").AddLabel("User")
	ctx.GetOrCreateTableCtx("b").AddLabel("User")
	r := ctx.GetOrCreateTableCtx("r")
	r.IsRelation = true
	r.AddLabel("FOLLOWS")
}

func TestGraphTraversalPlanningDefaultsAnchorToLeft(t *testing.T) {
	ctx := planctx.New()
	followsRelCtx(ctx)
	rel := &logicalplan.GraphRel{
		Left: logicalplan.Empty{}, Center: logicalplan.Empty{}, Right: logicalplan.Empty{},
		Alias: "r", LeftConnection: "a", RightConnection: "b",
	}

	pass := analyzer.GraphTraversalPlanning{}
	result, tree, err := pass.AnalyzeWithGraphSchema(ctx, traversalSchema(), rel)
	require.NoError(t, err)
	require.True(t, bool(tree))
	require.Equal(t, "a", result.(*logicalplan.GraphRel).AnchorConnection)
}

func TestGraphTraversalPlanningUsesRightWhenMarkedAnchor(t *testing.T) {
	ctx := planctx.New()
	followsRelCtx(ctx)
	rel := &logicalplan.GraphRel{
		Left: logicalplan.Empty{}, Center: logicalplan.Empty{}, Right: logicalplan.Empty{},
		Alias: "r", LeftConnection: "a", RightConnection: "b", IsRelAnchor: true,
	}

	pass := analyzer.GraphTraversalPlanning{}
	result, tree, err := pass.AnalyzeWithGraphSchema(ctx, traversalSchema(), rel)
	require.NoError(t, err)
	require.True(t, bool(tree))
	require.Equal(t, "b", result.(*logicalplan.GraphRel).AnchorConnection)
}

func TestGraphTraversalPlanningBuildsEdgeListSubplan(t *testing.T) {
	ctx := planctx.New()
	followsRelCtx(ctx)
	rel := &logicalplan.GraphRel{
		Left: logicalplan.Empty{}, Center: logicalplan.Empty{}, Right: logicalplan.Empty{},
		Alias: "r", LeftConnection: "a", RightConnection: "b", Direction: logicalplan.Outgoing,
	}

	pass := analyzer.GraphTraversalPlanning{}
	result, tree, err := pass.AnalyzeWithGraphSchema(ctx, traversalSchema(), rel)
	require.NoError(t, err)
	require.True(t, bool(tree))

	center := result.(*logicalplan.GraphRel).Center
	scan, ok := center.(*logicalplan.ViewScan)
	require.True(t, ok)
	require.Equal(t, "follows", scan.SourceTable)
	require.Equal(t, "follower_id", scan.PropertyMapping["from_id"])
	require.Equal(t, "followee_id", scan.PropertyMapping["to_id"])
}

func TestGraphTraversalPlanningUnionsBothOrientationsForEitherDirection(t *testing.T) {
	ctx := planctx.New()
	followsRelCtx(ctx)
	rel := &logicalplan.GraphRel{
		Left: logicalplan.Empty{}, Center: logicalplan.Empty{}, Right: logicalplan.Empty{},
		Alias: "r", LeftConnection: "a", RightConnection: "b", Direction: logicalplan.Either,
	}

	pass := analyzer.GraphTraversalPlanning{}
	result, _, err := pass.AnalyzeWithGraphSchema(ctx, traversalSchema(), rel)
	require.NoError(t, err)

	center := result.(*logicalplan.GraphRel).Center
	union, ok := center.(*logicalplan.Union)
	require.True(t, ok)
	require.Len(t, union.Inputs, 2)
	require.Equal(t, logicalplan.UnionAll, union.UnionType)
}

func TestGraphTraversalPlanningLinksEndpointsWithInSubquery(t *testing.T) {
	ctx := planctx.New()
	followsRelCtx(ctx)
	rel := &logicalplan.GraphRel{
		Left: logicalplan.Empty{}, Center: logicalplan.Empty{}, Right: logicalplan.Empty{},
		Alias: "r", LeftConnection: "a", RightConnection: "b", Direction: logicalplan.Outgoing,
	}

	pass := analyzer.GraphTraversalPlanning{}
	_, _, err := pass.AnalyzeWithGraphSchema(ctx, traversalSchema(), rel)
	require.NoError(t, err)

	left, err := ctx.GetNodeTableCtx("a")
	require.NoError(t, err)
	require.Len(t, left.Filters, 1)
	leftIn, ok := left.Filters[0].(logicalexpr.InSubquery)
	require.True(t, ok)
	require.Equal(t, logicalexpr.ColumnRef{Table: "a", Column: "id"}, leftIn.Expr)
	leftRef, ok := leftIn.Subquery.(analyzer.EdgeListIDRef)
	require.True(t, ok)
	require.Equal(t, "from_id", leftRef.Column)

	right, err := ctx.GetNodeTableCtx("b")
	require.NoError(t, err)
	require.Len(t, right.Filters, 1)
	rightIn, ok := right.Filters[0].(logicalexpr.InSubquery)
	require.True(t, ok)
	rightRef, ok := rightIn.Subquery.(analyzer.EdgeListIDRef)
	require.True(t, ok)
	require.Equal(t, "to_id", rightRef.Column)
}

func TestGraphTraversalPlanningSkipsVariableLengthRels(t *testing.T) {
	ctx := planctx.New()
	followsRelCtx(ctx)
	rel := &logicalplan.GraphRel{
		Left: logicalplan.Empty{}, Center: logicalplan.Empty{}, Right: logicalplan.Empty{},
		Alias: "r", LeftConnection: "a", RightConnection: "b",
		VariableLength: &logicalplan.VariableLengthSpec{},
	}

	pass := analyzer.GraphTraversalPlanning{}
	result, tree, err := pass.AnalyzeWithGraphSchema(ctx, traversalSchema(), rel)
	require.NoError(t, err)
	require.False(t, bool(tree))
	require.Same(t, rel, result)
}
