package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/patternschema"
	"github.com/brahmand-io/graphplan/planctx"
)

func projectedColumnsSchema() *catalog.GraphSchema {
	schema := &catalog.GraphSchema{
		Nodes: []*catalog.NodeSchema{
			{Label: "User", TableName: "users", PropertyMap: map[string]string{"name": "full_name"}},
		},
	}
	schema.Build()
	return schema
}

func TestProjectedColumnsResolverRewritesPropertyAccess(t *testing.T) {
	ctx := planctx.New()
	table := ctx.GetOrCreateTableCtx("u")
	table.AddLabel("User")
	table.Strategy = patternschema.Strategy{Kind: patternschema.OwnTable, Label: "User"}

	proj := &logicalplan.Projection{
		Input: logicalplan.Empty{},
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.PropertyAccess{Alias: "u", Property: "name"}},
		},
	}

	pass := analyzer.ProjectedColumnsResolver{}
	result, tree, err := pass.AnalyzeWithGraphSchema(ctx, projectedColumnsSchema(), proj)
	require.NoError(t, err)
	require.True(t, bool(tree))

	rewritten := result.(*logicalplan.Projection)
	col, ok := rewritten.Items[0].Expression.(logicalexpr.ColumnRef)
	require.True(t, ok)
	require.Equal(t, "u", col.Table)
	require.Equal(t, "full_name", col.Column)
}

func TestProjectedColumnsResolverSkipsCTEAliases(t *testing.T) {
	ctx := planctx.New()
	ctx.CTEs.RegisterExport("with_u_cte_0", map[string]string{"name": "name"}, map[string]string{})

	proj := &logicalplan.Projection{
		Input: logicalplan.Empty{},
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.PropertyAccess{Alias: "with_u_cte_0", Property: "name"}},
		},
	}

	pass := analyzer.ProjectedColumnsResolver{}
	result, _, err := pass.AnalyzeWithGraphSchema(ctx, projectedColumnsSchema(), proj)
	require.NoError(t, err)

	rewritten := result.(*logicalplan.Projection)
	_, stillPropertyAccess := rewritten.Items[0].Expression.(logicalexpr.PropertyAccess)
	require.True(t, stillPropertyAccess)
}
