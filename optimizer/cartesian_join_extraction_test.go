package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/optimizer"
	"github.com/brahmand-io/graphplan/planctx"
)

func TestCartesianJoinExtractionHoistsCrossBranchConjunct(t *testing.T) {
	ctx := planctx.New()
	left := &logicalplan.GraphNode{Input: logicalplan.Empty{}, Alias: "a"}
	right := &logicalplan.GraphNode{Input: logicalplan.Empty{}, Alias: "b"}
	product := &logicalplan.CartesianProduct{Left: left, Right: right}

	crossPredicate := logicalexpr.BinaryOp{Op: "=", Left: logicalexpr.ColumnRef{Table: "a", Column: "id"}, Right: logicalexpr.ColumnRef{Table: "b", Column: "owner_id"}}
	localPredicate := logicalexpr.BinaryOp{Op: ">", Left: logicalexpr.ColumnRef{Table: "a", Column: "score"}, Right: logicalexpr.Literal{Value: 1}}
	filter := &logicalplan.Filter{Input: product, Predicate: logicalexpr.And(crossPredicate, localPredicate)}

	pass := optimizer.CartesianJoinExtraction{}
	result, tree, err := pass.Run(ctx, filter)
	require.NoError(t, err)
	require.True(t, bool(tree))

	rewrittenFilter, ok := result.(*logicalplan.Filter)
	require.True(t, ok)
	require.Equal(t, localPredicate, rewrittenFilter.Predicate)

	rewrittenProduct, ok := rewrittenFilter.Input.(*logicalplan.CartesianProduct)
	require.True(t, ok)
	require.Equal(t, crossPredicate, rewrittenProduct.JoinCondition)
}

func TestCartesianJoinExtractionNoOpWithoutCrossBranchConjunct(t *testing.T) {
	ctx := planctx.New()
	left := &logicalplan.GraphNode{Input: logicalplan.Empty{}, Alias: "a"}
	right := &logicalplan.GraphNode{Input: logicalplan.Empty{}, Alias: "b"}
	product := &logicalplan.CartesianProduct{Left: left, Right: right}

	localPredicate := logicalexpr.BinaryOp{Op: ">", Left: logicalexpr.ColumnRef{Table: "a", Column: "score"}, Right: logicalexpr.Literal{Value: 1}}
	filter := &logicalplan.Filter{Input: product, Predicate: localPredicate}

	pass := optimizer.CartesianJoinExtraction{}
	_, tree, err := pass.Run(ctx, filter)
	require.NoError(t, err)
	require.False(t, bool(tree))
}
