package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// ProjectionTagging expands every bare TableAlias/Star projection item into
// its full set of PropertyAccess items (one per property the catalog
// registers for that alias's label) and records each resolved item on the
// owning alias's TableCtx.ProjectionItems. After this pass, Projection's
// invariant that no item is a bare TableAlias holds (spec §3.1 invariant
// 4), mirroring the rebuild_or_clone recursion shape of the original
// projection_tagging.rs pass.
type ProjectionTagging struct {
	// Properties resolves the full property list for a label, supplied by
	// the pipeline wiring (backed by catalog.NodeSchema.PropertyMap keys).
	Properties func(label string) []string
}

func (ProjectionTagging) Name() string { return string(PassProjectionTagging) }

func (p ProjectionTagging) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		proj, ok := n.(*logicalplan.Projection)
		if !ok {
			return n, transform.SameTree, nil
		}

		var expanded []logicalplan.ProjectionItem
		changed := false
		for _, item := range proj.Items {
			switch e := item.Expression.(type) {
			case logicalexpr.TableAlias:
				if _, err := ctx.GetTableCtx(e.Alias); err != nil && ctx.CTEs.IsProjectionAlias(e.Alias) {
					// A bare reference to a WITH-exported scalar ("WITH ...
					// AS fids" then "RETURN fids") has no TableCtx and
					// nothing to expand into per-property items: it isn't a
					// live pattern alias at all. Left as a bare TableAlias
					// for the variable resolver (C6) to rewrite into the
					// enclosing CTE's column reference.
					expanded = append(expanded, item)
					continue
				}
				changed = true
				expanded = append(expanded, p.expandAlias(ctx, e.Alias)...)
			case logicalexpr.Star:
				changed = true
				for _, alias := range ctx.ExplicitAliases() {
					expanded = append(expanded, p.expandAlias(ctx, alias)...)
				}
			default:
				expanded = append(expanded, item)
				if pa, ok := item.Expression.(logicalexpr.PropertyAccess); ok {
					if table, err := ctx.GetTableCtx(pa.Alias); err == nil {
						table.ProjectionItems = append(table.ProjectionItems, pa)
					}
				}
			}
		}

		if !changed {
			return proj, transform.SameTree, nil
		}
		return proj.WithItems(expanded), transform.NewTree, nil
	})
}

func (p ProjectionTagging) expandAlias(ctx *planctx.PlanCtx, alias string) []logicalplan.ProjectionItem {
	table, err := ctx.GetTableCtx(alias)
	if err != nil {
		return nil
	}
	var items []logicalplan.ProjectionItem
	for _, label := range table.LabelSet() {
		for _, prop := range p.Properties(label) {
			access := logicalexpr.PropertyAccess{Alias: alias, Property: prop}
			table.ProjectionItems = append(table.ProjectionItems, access)
			items = append(items, logicalplan.ProjectionItem{Expression: access})
		}
	}
	return items
}
