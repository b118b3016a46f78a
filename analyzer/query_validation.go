package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// QueryValidation rejects an aggregate used as a GroupBy key or an OrderBy
// key with KindInvalidAggregate (type_inference already rejects an
// aggregate in WHERE). It checks nothing else: other aggregate positions
// and bare TableAlias items in a Projection are not inspected (spec §4.2
// step 6).
type QueryValidation struct{}

func (QueryValidation) Name() string { return string(PassQueryValidation) }

func (p QueryValidation) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	var validationErr error
	transform.Inspect(n, func(n logicalplan.Node) bool {
		if validationErr != nil {
			return false
		}
		switch node := n.(type) {
		case *logicalplan.GroupBy:
			for _, e := range node.Expressions {
				if logicalexpr.IsAggregate(e) {
					validationErr = KindInvalidAggregate.New("GROUP BY key")
					return false
				}
			}
		case *logicalplan.OrderBy:
			for _, it := range node.Items {
				if logicalexpr.IsAggregate(it.Expression) {
					validationErr = KindInvalidAggregate.New("ORDER BY key")
					return false
				}
			}
		}
		return true
	})
	if validationErr != nil {
		return nil, transform.SameTree, validationErr
	}
	return n, transform.SameTree, nil
}
