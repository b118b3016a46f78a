package analyzer

import (
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// VLPTransitivityCheck validates a variable-length pattern whose
// relationship type cannot chain with itself: its from/to node sets must
// overlap, or either side must be the $any wildcard (spec §4.2 step 3,
// catalog.RelationshipSchema.IsTransitive). A non-transitive type is only
// a hard error when more than one hop was actually requested
// (min_hops > 1); when MinHops is None or 1, the variable-length spec is
// lowered to a plain single-hop edge instead of being rejected, whatever
// MaxHops says, since a relationship that cannot chain with itself can
// only ever match a single hop.
type VLPTransitivityCheck struct{}

func (VLPTransitivityCheck) Name() string { return string(PassVLPTransitivityCheck) }

func (p VLPTransitivityCheck) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return n, transform.SameTree, nil
}

func isSingleHopBound(b *int) bool {
	return b == nil || *b == 1
}

func (p VLPTransitivityCheck) AnalyzeWithGraphSchema(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		rel, ok := n.(*logicalplan.GraphRel)
		if !ok || rel.VariableLength == nil {
			return n, transform.SameTree, nil
		}
		table, err := ctx.GetRelTableCtx(rel.Alias)
		if err != nil {
			return nil, transform.SameTree, err
		}
		relType, err := table.SingleLabel()
		if err != nil {
			return nil, transform.SameTree, err
		}
		relSchema, err := schema.GetRelSchemaWithNodes(relType, table.FromNodeLabel, table.ToNodeLabel)
		if err != nil {
			return nil, transform.SameTree, KindUnknownRelType.New(relType)
		}
		if relSchema.IsTransitive() {
			return n, transform.SameTree, nil
		}

		spec := rel.VariableLength
		if isSingleHopBound(spec.MinHops) {
			cp := *rel
			cp.VariableLength = nil
			return &cp, transform.NewTree, nil
		}
		return nil, transform.SameTree, KindNonTransitiveVLP.New(relType)
	})
}
