package graphplan

import (
	"github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/brahmand-io/graphplan/analyzer"
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/final"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/optimizer"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// optimizerShim adapts an optimizer pass (its Name/Run method pair) to the
// analyzer.Pass interface so C7 shims can be interleaved inside the C5/C6
// batches, mirroring the way the original mod.rs calls optimizer functions
// directly inline between analyzer passes rather than keeping them in a
// separate phase.
type optimizerShim struct {
	name string
	run  func(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error)
}

func (o optimizerShim) Name() string { return o.name }
func (o optimizerShim) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return o.run(ctx, n)
}

func shim(name string, run func(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error)) analyzer.Pass {
	return optimizerShim{name: name, run: run}
}

// InitialAnalyze runs the C5 batch, in this order: schema inference, type
// inference, VLP transitivity checking, CTE schema resolution, projection
// tagging, projected-columns resolution, query validation, filter tagging,
// the filter-pushdown optimizer shim, and GROUP BY building (spec §4.2).
func InitialAnalyze(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node, cfg PipelineConfig, properties func(label string) []string) (logicalplan.Node, error) {
	cfg = cfg.withDefaults()
	span := startSpan("InitialAnalyze")
	defer span.Finish()

	fp := optimizer.FilterPushdown{}

	passes := []analyzer.Pass{
		analyzer.SchemaInference{},
		analyzer.TypeInference{},
		analyzer.VLPTransitivityCheck{},
		analyzer.CTESchemaResolver{},
		analyzer.ProjectionTagging{Properties: properties},
		analyzer.ProjectedColumnsResolver{},
		analyzer.QueryValidation{},
		analyzer.FilterTagging{},
		shim(fp.Name(), fp.Run),
		analyzer.GroupByBuilding{},
	}

	result, err := analyzer.RunBatch(span, ctx, schema, n, passes)
	if err != nil {
		logrus.WithError(err).WithField("phase", "initial").Error("analyzer pass failed")
		return nil, err
	}
	return result, nil
}

// IntermediateAnalyze runs the C6 batch: variable-length-path lowering,
// graph traversal planning, duplicate-scan removal, bidirectional union
// rewriting, variable resolution, CTE reference population, graph join
// inference, CTE column resolution, UNWIND tuple enrichment, and
// property-requirements gathering, with the remaining C7 optimizer shims
// (cartesian join extraction, trivial WITH elimination, collect/unwind
// elimination) interleaved at the points the original
// intermediate_analyzing wires them in (spec §4.3).
func IntermediateAnalyze(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, error) {
	span := startSpan("IntermediateAnalyze")
	defer span.Finish()

	cje := optimizer.CartesianJoinExtraction{}
	twe := optimizer.TrivialWithElimination{}
	cue := optimizer.CollectUnwindElimination{}

	passes := []analyzer.Pass{
		analyzer.VariableLengthPathLowering{},
		analyzer.GraphTraversalPlanning{},
		analyzer.DuplicateScansRemoving{},
		analyzer.BidirectionalUnion{},
		analyzer.VariableResolver{},
		shim(twe.Name(), twe.Run),
		analyzer.CTEReferencePopulator{},
		analyzer.GraphJoinInference{},
		shim(cje.Name(), cje.Run),
		analyzer.CTEColumnResolver{},
		analyzer.UnwindTupleEnricher{},
		shim(cue.Name(), cue.Run),
		analyzer.PropertyRequirements{},
	}

	result, err := analyzer.RunBatch(span, ctx, schema, n, passes)
	if err != nil {
		logrus.WithError(err).WithField("phase", "intermediate").Error("analyzer pass failed")
		return nil, err
	}
	return result, nil
}

// FinalAnalyze runs the C8 batch: plan sanitization followed by UNWIND
// property rewriting, the last two passes before the plan is handed to an
// external SQL renderer (spec §4.4).
func FinalAnalyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, error) {
	span := startSpan("FinalAnalyze")
	defer span.Finish()

	sanitize := final.PlanSanitization{}
	rewrite := final.UnwindPropertyRewrite{}

	current := n
	for _, p := range []struct {
		name string
		run  func(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error)
	}{
		{sanitize.Name(), sanitize.Run},
		{rewrite.Name(), rewrite.Run},
	} {
		childSpan := opentracing.StartSpan(p.name, opentracing.ChildOf(span.Context()))
		next, _, err := p.run(ctx, current)
		if err != nil {
			childSpan.SetTag("error", true)
			childSpan.Finish()
			logrus.WithError(err).WithField("phase", "final").WithField("pass", p.name).Error("final pass failed")
			return nil, &analyzer.Error{Pass: p.name, Cause: err}
		}
		childSpan.Finish()
		current = next
	}
	return current, nil
}

func startSpan(name string) opentracing.Span {
	span := opentracing.StartSpan(name)
	span.SetTag("trace_id", uuid.NewV4().String())
	return span
}
