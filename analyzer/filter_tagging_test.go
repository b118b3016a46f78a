package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

func TestFilterTaggingAttachesSingleAliasConjuncts(t *testing.T) {
	ctx := planctx.New()
	ctx.GetOrCreateTableCtx("u")

	predicate := logicalexpr.And(
		logicalexpr.BinaryOp{Op: "=", Left: logicalexpr.ColumnRef{Table: "u", Column: "age"}, Right: logicalexpr.Literal{Value: 30}},
		logicalexpr.BinaryOp{Op: ">", Left: logicalexpr.ColumnRef{Table: "u", Column: "score"}, Right: logicalexpr.Literal{Value: 1}},
	)
	filter := &logicalplan.Filter{Input: logicalplan.Empty{}, Predicate: predicate}

	pass := analyzer.FilterTagging{}
	result, _, err := pass.Analyze(ctx, filter)
	require.NoError(t, err)

	// Both conjuncts reference only "u", so the Filter node collapses away
	// entirely and both land on u's TableCtx.
	require.Equal(t, logicalplan.Empty{}, result)

	table, err := ctx.GetTableCtx("u")
	require.NoError(t, err)
	require.Len(t, table.Filters, 2)
}

func TestFilterTaggingLeavesMultiAliasConjunctsOnFilter(t *testing.T) {
	ctx := planctx.New()
	ctx.GetOrCreateTableCtx("u")
	ctx.GetOrCreateTableCtx("v")

	cross := logicalexpr.BinaryOp{Op: "=", Left: logicalexpr.ColumnRef{Table: "u", Column: "id"}, Right: logicalexpr.ColumnRef{Table: "v", Column: "id"}}
	filter := &logicalplan.Filter{Input: logicalplan.Empty{}, Predicate: cross}

	pass := analyzer.FilterTagging{}
	result, _, err := pass.Analyze(ctx, filter)
	require.NoError(t, err)

	rebuilt, ok := result.(*logicalplan.Filter)
	require.True(t, ok)
	require.Equal(t, cross, rebuilt.Predicate)
}
