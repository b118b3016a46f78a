package analyzer

import (
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// EdgeListIDRef is the payload graph traversal planning stores inside the
// opaque Subquery field of a logicalexpr.InSubquery: a reference to the
// relationship's edge-list subplan together with which of its two
// projected id columns ("from_id" or "to_id") the linked endpoint alias is
// correlated against. Declared here, rather than in logicalexpr, for the
// same reason InSubquery.Subquery is interface{} there: logicalexpr must
// not import logicalplan.
type EdgeListIDRef struct {
	EdgeList logicalplan.Node
	Column   string
}

// GraphTraversalPlanning constructs, for every fixed-length GraphRel, the
// edge-list subplan that traversal proceeds over: a scan of the edge table
// projecting (from_id AS from_id, to_id AS to_id) aliased to the
// relationship alias, unioning the two physical orientations when the
// pattern is undirected (Either), and attaches an InSubquery filter to
// each endpoint node context linking it to the edge-list subplan's
// respective id column (spec §4.3 step 1). It also records in
// AnchorConnection which endpoint traversal starts from: whichever side
// the pattern builder marked IsRelAnchor, falling back to the left
// endpoint when neither side was marked. No later pass in this module
// reads AnchorConnection.
//
// Variable-length relationships are left untouched here: their edge-list
// subplan is a recursive CTE built by the variable-length-path lowering
// pass instead, once the (possibly rewritten) VariableLength spec has
// survived the transitivity check.
type GraphTraversalPlanning struct{}

func (GraphTraversalPlanning) Name() string { return string(PassGraphTraversalPlanning) }

func (p GraphTraversalPlanning) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return n, transform.SameTree, nil
}

func (p GraphTraversalPlanning) AnalyzeWithGraphSchema(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		rel, ok := n.(*logicalplan.GraphRel)
		if !ok || rel.VariableLength != nil {
			return n, transform.SameTree, nil
		}

		cp := *rel
		changed := false

		anchor := rel.LeftConnection
		if rel.IsRelAnchor && rel.RightConnection != "" {
			anchor = rel.RightConnection
		}
		if rel.AnchorConnection == "" && anchor != "" {
			cp.AnchorConnection = anchor
			changed = true
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

		switch cp.Center.(type) {
		case *logicalplan.ViewScan, *logicalplan.Union:
			// Already planned by an earlier run over this subtree.
		default:
			cp.Center = edgeListSubplan(relSchema, rel.Alias, rel.Direction)
			changed = true
		}

		if rel.LeftConnection != "" && linkEndpoint(ctx, schema, rel.LeftConnection, cp.Center, "from_id") {
			changed = true
		}
		if rel.RightConnection != "" && linkEndpoint(ctx, schema, rel.RightConnection, cp.Center, "to_id") {
			changed = true
		}

		if !changed {
			return n, transform.SameTree, nil
		}
		return &cp, transform.NewTree, nil
	})
}

// edgeListSubplan builds the edge-table scan(s) a relationship alias
// traverses over, projecting (from_id, to_id) under the canonical names
// "from_id"/"to_id" regardless of the underlying physical columns. An
// Either-direction pattern unions both physical orientations so a single
// from_id/to_id pair covers traversal in either direction.
func edgeListSubplan(relSchema *catalog.RelationshipSchema, alias string, dir logicalplan.Direction) logicalplan.Node {
	forward := &logicalplan.ViewScan{
		SourceTable: relSchema.QualifiedTable(),
		Alias:       alias,
		PropertyMapping: map[string]string{
			"from_id": relSchema.FromIDColumn,
			"to_id":   relSchema.ToIDColumn,
		},
		Labels: []string{relSchema.Type},
	}
	if dir != logicalplan.Either {
		return forward
	}

	reverse := &logicalplan.ViewScan{
		SourceTable: relSchema.QualifiedTable(),
		Alias:       alias,
		PropertyMapping: map[string]string{
			"from_id": relSchema.ToIDColumn,
			"to_id":   relSchema.FromIDColumn,
		},
		Labels: []string{relSchema.Type},
	}
	return &logicalplan.Union{Inputs: []logicalplan.Node{forward, reverse}, UnionType: logicalplan.UnionAll}
}

// linkEndpoint attaches an InSubquery filter to endpointAlias's TableCtx
// linking its physical id column against edgeList's from_id/to_id column,
// unless the endpoint's node id is composite (nodeIDColumn returns "" in
// that case, and a composite key has no single column to correlate
// against an edge-list id column here). Reports whether it added a new
// filter; idempotent against a rerun over an already-linked alias.
func linkEndpoint(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, endpointAlias string, edgeList logicalplan.Node, edgeColumn string) bool {
	table, err := ctx.GetNodeTableCtx(endpointAlias)
	if err != nil {
		return false
	}
	label, err := table.SingleLabel()
	if err != nil {
		return false
	}
	idCol := nodeIDColumn(schema, label)
	if idCol == "" {
		return false
	}

	ref := EdgeListIDRef{EdgeList: edgeList, Column: edgeColumn}
	filter := logicalexpr.InSubquery{
		Expr:     logicalexpr.ColumnRef{Table: endpointAlias, Column: idCol},
		Subquery: ref,
	}
	for _, existing := range table.Filters {
		if existingIn, ok := existing.(logicalexpr.InSubquery); ok {
			if existingRef, ok := existingIn.Subquery.(EdgeListIDRef); ok && existingRef.Column == edgeColumn && existingIn.Expr == filter.Expr {
				return false
			}
		}
	}
	table.Filters = append(table.Filters, filter)
	return true
}
