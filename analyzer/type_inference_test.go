package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

func TestTypeInferenceRejectsAggregateInWhere(t *testing.T) {
	ctx := planctx.New()
	filter := &logicalplan.Filter{
		Input: logicalplan.Empty{},
		Predicate: logicalexpr.BinaryOp{
			Op:    ">",
			Left:  logicalexpr.AggregateFuncCall{Name: "count", Arg: logicalexpr.ColumnRef{Table: "u", Column: "id"}},
			Right: logicalexpr.Literal{Value: 1},
		},
	}

	pass := analyzer.TypeInference{}
	_, _, err := pass.Analyze(ctx, filter)
	require.Error(t, err)
}

func TestTypeInferenceAllowsPlainPredicate(t *testing.T) {
	ctx := planctx.New()
	filter := &logicalplan.Filter{
		Input: logicalplan.Empty{},
		Predicate: logicalexpr.BinaryOp{
			Op:    "=",
			Left:  logicalexpr.ColumnRef{Table: "u", Column: "age"},
			Right: logicalexpr.Literal{Value: 30},
		},
	}

	pass := analyzer.TypeInference{}
	_, _, err := pass.Analyze(ctx, filter)
	require.NoError(t, err)
}
