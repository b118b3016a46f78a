package analyzer

import (
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/brahmand-io/graphplan/transform"
)

// BidirectionalUnion rewrites an Either-direction GraphRel into a Union of
// two Outgoing/Incoming branches rather than an OR'd join condition, which
// target SQL optimizers handle far better than a disjunctive join predicate
// (spec §4.3 step 5, SPEC_FULL §9 design note). Each branch is a full copy
// of the original GraphRel with Direction pinned and Left/Right swapped for
// the Incoming branch, since "Incoming" means traversal proceeds from Right
// to Left.
type BidirectionalUnion struct{}

func (BidirectionalUnion) Name() string { return string(PassBidirectionalUnion) }

func (p BidirectionalUnion) Analyze(ctx *planctx.PlanCtx, n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
	return transform.Node(n, func(n logicalplan.Node) (logicalplan.Node, transform.Tree, error) {
		rel, ok := n.(*logicalplan.GraphRel)
		if !ok || rel.Direction != logicalplan.Either {
			return n, transform.SameTree, nil
		}

		outgoing := *rel
		outgoing.Direction = logicalplan.Outgoing

		incoming := *rel
		incoming.Direction = logicalplan.Incoming
		incoming.Left, incoming.Right = rel.Right, rel.Left
		incoming.LeftConnection, incoming.RightConnection = rel.RightConnection, rel.LeftConnection

		return &logicalplan.Union{
			Inputs:    []logicalplan.Node{&outgoing, &incoming},
			UnionType: logicalplan.UnionDistinct,
		}, transform.NewTree, nil
	})
}
