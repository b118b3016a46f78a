package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

func TestGroupByBuildingWrapsAggregateProjection(t *testing.T) {
	ctx := planctx.New()
	proj := &logicalplan.Projection{
		Input: logicalplan.Empty{},
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.PropertyAccess{Alias: "u", Property: "country"}},
			{Expression: logicalexpr.AggregateFuncCall{Name: "count", Arg: logicalexpr.ColumnRef{Table: "u", Column: "id"}}},
		},
	}

	pass := analyzer.GroupByBuilding{}
	result, tree, err := pass.Analyze(ctx, proj)
	require.NoError(t, err)
	require.True(t, bool(tree))

	groupBy, ok := result.(*logicalplan.GroupBy)
	require.True(t, ok)
	require.Len(t, groupBy.Expressions, 1)
	require.Equal(t, logicalexpr.PropertyAccess{Alias: "u", Property: "country"}, groupBy.Expressions[0])
	require.Same(t, proj, groupBy.Input)
}

func TestGroupByBuildingLeavesNonAggregateProjectionAlone(t *testing.T) {
	ctx := planctx.New()
	proj := &logicalplan.Projection{
		Input: logicalplan.Empty{},
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.PropertyAccess{Alias: "u", Property: "name"}},
		},
	}

	pass := analyzer.GroupByBuilding{}
	result, tree, err := pass.Analyze(ctx, proj)
	require.NoError(t, err)
	require.False(t, bool(tree))
	require.Same(t, proj, result)
}
