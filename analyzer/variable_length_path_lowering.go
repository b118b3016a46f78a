package analyzer

import (
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// VariableLengthPathLowering rewrites every GraphRel whose VariableLength
// spec survived the transitivity check into a RecursiveRelPath: a
// recursive CTE seeded by the relationship's edge-list subplan and
// extended hop by hop, carrying the MinHops/MaxHops bounds for the
// renderer to apply as a hop_count filter and marking ShortestPath so a
// shortestPath()/allShortestPaths() pattern gets an ORDER BY hop_count
// ASC LIMIT 1 instead of enumerating every path (spec §1, §4.3). Runs
// ahead of graph traversal planning in the intermediate batch, since
// traversal planning only builds the non-recursive edge-list shape for
// fixed-length rels and explicitly skips anything still carrying a
// VariableLength spec.
type VariableLengthPathLowering struct{}

func (VariableLengthPathLowering) Name() string { return string(PassVariableLengthPathLowering) }

func (p VariableLengthPathLowering) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return n, transform.SameTree, nil
}

func (p VariableLengthPathLowering) AnalyzeWithGraphSchema(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		rel, ok := n.(*logicalplan.GraphRel)
		if !ok || rel.VariableLength == nil {
			return n, transform.SameTree, nil
		}
		if _, already := rel.Center.(*logicalplan.RecursiveRelPath); already {
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

		edgeList := edgeListSubplan(relSchema, rel.Alias, rel.Direction)
		cteName := ctx.CTEs.NextCTEName([]string{rel.Alias})

		cp := *rel
		cp.Center = &logicalplan.RecursiveRelPath{
			EdgeList:     edgeList,
			CTEName:      cteName,
			Alias:        rel.Alias,
			MinHops:      rel.VariableLength.MinHops,
			MaxHops:      rel.VariableLength.MaxHops,
			ShortestPath: rel.ShortestPathMode != logicalplan.NoShortestPath,
		}
		return &cp, transform.NewTree, nil
	})
}
