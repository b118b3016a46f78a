package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/optimizer"
	"github.com/brahmand-io/graphplan/planctx"
)

func TestCollectUnwindEliminationRemovesRoundTrip(t *testing.T) {
	ctx := planctx.New()
	input := &logicalplan.GraphNode{Input: logicalplan.Empty{}, Alias: "a"}
	with := &logicalplan.WithClause{
		Input: input,
		Items: []logicalplan.WithItem{
			{Expression: logicalexpr.AggregateFuncCall{Name: "collect", Arg: logicalexpr.ColumnRef{Table: "a", Column: "id"}}, ColAlias: "xs"},
		},
	}
	unwind := &logicalplan.Unwind{
		Input:      with,
		Expression: logicalexpr.TableAlias{Alias: "xs"},
		Alias:      "x",
	}

	pass := optimizer.CollectUnwindElimination{}
	result, tree, err := pass.Run(ctx, unwind)
	require.NoError(t, err)
	require.True(t, bool(tree))
	require.Same(t, input, result)
}

func TestCollectUnwindEliminationLeavesUnrelatedUnwindAlone(t *testing.T) {
	ctx := planctx.New()
	input := &logicalplan.GraphNode{Input: logicalplan.Empty{}, Alias: "a"}
	unwind := &logicalplan.Unwind{
		Input:      input,
		Expression: logicalexpr.ColumnRef{Table: "a", Column: "tags"},
		Alias:      "x",
	}

	pass := optimizer.CollectUnwindElimination{}
	result, tree, err := pass.Run(ctx, unwind)
	require.NoError(t, err)
	require.False(t, bool(tree))
	require.Same(t, unwind, result)
}
