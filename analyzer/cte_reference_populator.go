package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// CTEReferencePopulator records, for every GraphRel whose Left/Right
// connection alias is actually a CTE export rather than a live pattern
// alias, which CTE it resolves against in CTEReferences (spec §4.3 step 6).
// No other pass in this module reads CTEReferences: graph join inference
// and the CTE column resolver work from the catalog and the CTERegistry
// alone, so the map is only carried on the GraphRel in the output plan.
type CTEReferencePopulator struct{}

func (CTEReferencePopulator) Name() string { return string(PassCTEReferencePopulator) }

func (p CTEReferencePopulator) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	// enclosingCTE holds the name of the most recently visited WithClause.
	// transform.Node visits children before their parent, so a WithClause
	// below a GraphRel (the WITH whose exports a later MATCH reads) has
	// already been seen, possibly several levels down, when that GraphRel is
	// visited.
	enclosingCTE := ""

	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		if with, ok := n.(*logicalplan.WithClause); ok && with.CTEName != "" {
			enclosingCTE = with.CTEName
		}

		rel, ok := n.(*logicalplan.GraphRel)
		if !ok {
			return n, transform.SameTree, nil
		}

		refs := map[string]string{}
		for k, v := range rel.CTEReferences {
			refs[k] = v
		}
		changed := false

		for _, conn := range []string{rel.LeftConnection, rel.RightConnection} {
			if conn == "" {
				continue
			}
			if _, already := refs[conn]; already {
				continue
			}
			if enclosingCTE != "" && ctx.CTEs.IsProjectionAlias(conn) {
				refs[conn] = enclosingCTE
				changed = true
			}
		}

		if !changed {
			return n, transform.SameTree, nil
		}
		cp := *rel
		cp.CTEReferences = refs
		return &cp, transform.NewTree, nil
	})
}
