package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// CTESchemaResolver names every WithClause with the stable
// "with_<aliases>_cte_<n>" identifier (spec §9) and registers its exported
// Cypher-property -> CTE-column map and per-alias entity type (node vs.
// relationship) in the PlanCtx's CTERegistry, so downstream passes can
// resolve a reference into an enclosing WITH boundary without re-deriving
// its export schema (spec §4.2 step 4). A bare re-exported node or
// relationship alias ("WITH ... p") only gets its column name fixed up
// here for the alias itself; a later property read off it ("p.id") is
// expanded into its own synthetic column by CTERegistry.ColumnFor on first
// reference, since the set of properties such a reference will need isn't
// known until the outer clause that reads them is resolved.
type CTESchemaResolver struct{}

func (CTESchemaResolver) Name() string { return string(PassCTESchemaResolver) }

func (p CTESchemaResolver) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		with, ok := n.(*logicalplan.WithClause)
		if !ok {
			return n, transform.SameTree, nil
		}

		columns := map[string]string{}
		entityTypes := map[string]string{}
		var exported []string

		for _, item := range with.Items {
			alias := item.ColAlias
			if alias == "" {
				if ta, ok := item.Expression.(logicalexpr.TableAlias); ok {
					alias = ta.Alias
				} else if pa, ok := item.Expression.(logicalexpr.PropertyAccess); ok {
					alias = pa.Property
				}
			}
			if alias == "" {
				continue
			}
			ctx.CTEs.MarkProjectionAlias(alias)
			columns[alias] = alias
			exported = append(exported, alias)

			if ta, ok := item.Expression.(logicalexpr.TableAlias); ok {
				if table, err := ctx.GetTableCtx(ta.Alias); err == nil {
					if table.IsRelation {
						entityTypes[alias] = "relationship"
					} else {
						entityTypes[alias] = "node"
					}
				}
			}
		}

		name := ctx.CTEs.NextCTEName(exported)
		ctx.CTEs.RegisterExport(name, columns, entityTypes)

		cp := *with
		cp.CTEName = name
		cp.ExportedAliases = exported
		return &cp, transform.NewTree, nil
	})
}
