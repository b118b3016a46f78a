package analyzer

import (
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

// NodeContext bundles a GraphNode with its resolved schema and TableCtx,
// the unit most passes actually want instead of three separate lookups.
type NodeContext struct {
	Plan   *logicalplan.GraphNode
	Table  *planctx.TableCtx
	Schema *catalog.NodeSchema
}

// RelContext bundles a GraphRel with its resolved schema and TableCtx,
// plus the already-resolved contexts of its two endpoints when available.
type RelContext struct {
	Plan   *logicalplan.GraphRel
	Table  *planctx.TableCtx
	Schema *catalog.RelationshipSchema
	Left   *NodeContext
	Right  *NodeContext
}

// GetNodeContext resolves alias's GraphNode against ctx/schema. Every C5
// pass that needs "what table backs this node alias" goes through here
// instead of re-deriving the lookup chain, mirroring the original
// get_graph_context helper.
func GetNodeContext(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, plan *logicalplan.GraphNode) (*NodeContext, error) {
	table, err := ctx.GetNodeTableCtx(plan.Alias)
	if err != nil {
		return nil, err
	}
	label := plan.Label
	if label == "" {
		label, err = table.SingleLabel()
		if err != nil {
			return nil, err
		}
	}
	nodeSchema, err := schema.GetNodeSchema(label)
	if err != nil {
		return nil, KindUnknownLabel.New(label)
	}
	return &NodeContext{Plan: plan, Table: table, Schema: nodeSchema}, nil
}

// GetRelContext resolves alias's GraphRel against ctx/schema, including its
// endpoint NodeContexts when Left/Right are themselves GraphNode plans
// (they may instead be nested GraphRel/CartesianProduct subplans for
// multi-hop patterns, in which case Left/Right are left nil and the caller
// recurses).
func GetRelContext(ctx *planctx.PlanCtx, schema *catalog.GraphSchema, plan *logicalplan.GraphRel) (*RelContext, error) {
	table, err := ctx.GetRelTableCtx(plan.Alias)
	if err != nil {
		return nil, err
	}

	relType, err := table.SingleLabel()
	if err != nil {
		return nil, err
	}

	relSchema, err := schema.GetRelSchemaWithNodes(relType, table.FromNodeLabel, table.ToNodeLabel)
	if err != nil {
		return nil, KindUnknownRelType.New(relType)
	}

	result := &RelContext{Plan: plan, Table: table, Schema: relSchema}

	if leftNode, ok := plan.Left.(*logicalplan.GraphNode); ok {
		result.Left, err = GetNodeContext(ctx, schema, leftNode)
		if err != nil {
			return nil, err
		}
	}
	if rightNode, ok := plan.Right.(*logicalplan.GraphNode); ok {
		result.Right, err = GetNodeContext(ctx, schema, rightNode)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
