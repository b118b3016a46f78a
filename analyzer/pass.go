// Package analyzer implements the C5/C6 analyzer passes: the initial and
// intermediate analysis phases that walk a LogicalPlan tree, attach schema
// and scope information, and progressively rewrite the tree toward a
// physically executable shape. Rewriting passes recurse post-order via
// transform.Node (children before their parent, never parent first) and
// rebuild a parent node only when a child reports a change (spec §4.1,
// §9), mirroring the teacher's DefaultRules/Rule{Name,Fn} batch idiom.
package analyzer

import (
	"github.com/opentracing/opentracing-go"

	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// Pass is one named tree rewrite step. Analyze is required; a pass that
// also needs catalog access implements AnalyzeWithGraphSchema instead (the
// two-method split mirrors the original AnalyzerPass trait's
// analyze/analyze_with_graph_schema default-no-op pair).
type Pass interface {
	Name() string
	Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error)
}

// SchemaPass is a Pass that additionally needs the read-only graph schema
// catalog (schema inference, VLP transitivity checking, join inference).
type SchemaPass interface {
	Pass
	AnalyzeWithGraphSchema(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, transform.Tree, error)
}

// RunBatch executes passes in order over n, tracing each as a child span
// of the caller-supplied parent span (spec SPEC_FULL §2 ADDED: every pass
// is independently traceable). Each pass sees the output of the previous
// one.
func RunBatch(parent opentracing.Span, ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node, passes []Pass) (logicalplan.Node, error) {
	current := n
	for _, p := range passes {
		span := opentracing.StartSpan(p.Name(), opentracing.ChildOf(parent.Context()))
		var (
			next logicalplan.Node
			err  error
		)
		if sp, ok := p.(SchemaPass); ok {
			next, _, err = sp.AnalyzeWithGraphSchema(ctx, schema, current)
		} else {
			next, _, err = p.Analyze(ctx, current)
		}
		if err != nil {
			span.SetTag("error", true)
			span.Finish()
			return nil, &Error{Pass: p.Name(), Cause: err}
		}
		span.Finish()
		current = next
	}
	return current, nil
}
