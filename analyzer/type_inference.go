package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// TypeInference is a lightweight C5 pass: it rejects any aggregate
// function call inside a Filter predicate (an aggregate in WHERE, a common
// parser-to-analyzer boundary mistake) with KindInvalidAggregate and
// otherwise leaves the tree and literal types as the parser produced them;
// it performs no numeric/temporal coercion (matching the teacher's habit
// of keeping type-checking passes narrow and composable).
type TypeInference struct{}

func (TypeInference) Name() string { return string(PassTypeInference) }

func (p TypeInference) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	var checkErr error
	transform.Inspect(n, func(n logicalplan.Node) bool {
		if checkErr != nil {
			return false
		}
		if f, ok := n.(*logicalplan.Filter); ok {
			logicalexpr.Inspect(f.Predicate, func(e logicalexpr.Expr) bool {
				if _, ok := e.(logicalexpr.AggregateFuncCall); ok {
					checkErr = KindInvalidAggregate.New("WHERE")
					return false
				}
				return true
			})
		}
		return true
	})
	if checkErr != nil {
		return nil, transform.SameTree, checkErr
	}
	return n, transform.SameTree, nil
}
