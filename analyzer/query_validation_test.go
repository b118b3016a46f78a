package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

func TestQueryValidationRejectsAggregateGroupByKey(t *testing.T) {
	ctx := planctx.New()
	groupBy := &logicalplan.GroupBy{
		Input:       logicalplan.Empty{},
		Expressions: []logicalexpr.Expr{logicalexpr.AggregateFuncCall{Name: "count", Arg: logicalexpr.ColumnRef{Table: "u", Column: "id"}}},
	}

	pass := analyzer.QueryValidation{}
	_, _, err := pass.Analyze(ctx, groupBy)
	require.Error(t, err)
}

func TestQueryValidationRejectsAggregateOrderByKey(t *testing.T) {
	ctx := planctx.New()
	orderBy := &logicalplan.OrderBy{
		Input: logicalplan.Empty{},
		Items: []logicalplan.OrderItem{
			{Expression: logicalexpr.AggregateFuncCall{Name: "sum", Arg: logicalexpr.ColumnRef{Table: "u", Column: "score"}}},
		},
	}

	pass := analyzer.QueryValidation{}
	_, _, err := pass.Analyze(ctx, orderBy)
	require.Error(t, err)
}

func TestQueryValidationAllowsPlainKeys(t *testing.T) {
	ctx := planctx.New()
	groupBy := &logicalplan.GroupBy{
		Input:       logicalplan.Empty{},
		Expressions: []logicalexpr.Expr{logicalexpr.ColumnRef{Table: "u", Column: "id"}},
	}

	pass := analyzer.QueryValidation{}
	_, _, err := pass.Analyze(ctx, groupBy)
	require.NoError(t, err)
}
