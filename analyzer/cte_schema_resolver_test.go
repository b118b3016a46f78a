package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

func TestCTESchemaResolverNamesAndRegistersExport(t *testing.T) {
	ctx := planctx.New()
	table := ctx.GetOrCreateTableCtx("u")
	table.IsExplicit = true

	with := &logicalplan.WithClause{
		Input: logicalplan.Empty{},
		Items: []logicalplan.WithItem{
			{Expression: logicalexpr.TableAlias{Alias: "u"}},
		},
	}

	pass := analyzer.CTESchemaResolver{}
	result, _, err := pass.Analyze(ctx, with)
	require.NoError(t, err)

	rewritten, ok := result.(*logicalplan.WithClause)
	require.True(t, ok)
	require.NotEmpty(t, rewritten.CTEName)
	require.Equal(t, []string{"u"}, rewritten.ExportedAliases)

	require.True(t, ctx.CTEs.IsCTE(rewritten.CTEName))
	col, ok := ctx.CTEs.ColumnFor(rewritten.CTEName, "u")
	require.True(t, ok)
	require.Equal(t, "u", col)
	require.True(t, ctx.CTEs.IsProjectionAlias("u"))
}
