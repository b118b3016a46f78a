// Package planbuilder documents the external boundary between a Cypher
// parser/AST and this module's analyzer pipeline. Parsing Cypher text into
// an AST, and building that AST's first-draft LogicalPlan/PlanCtx pair, are
// both out of scope (spec §1 Non-goals: this module starts from an
// already-built logical plan). This file exists only to name the contract
// a parser-side collaborator must satisfy; it has no implementation.
package planbuilder

import (
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

// AST is an opaque handle to a parsed Cypher query, owned and defined by
// the parser collaborator. This package never inspects it.
type AST interface{}

// Builder is implemented by the external parser/plan-builder collaborator.
// Build must return one GraphNode/GraphRel/... per pattern element named in
// the query, a PlanCtx with every referenced alias already registered via
// GetOrCreateTableCtx, and must leave every property access as a
// logicalexpr.PropertyAccess (never pre-resolved to a ColumnRef) since
// column resolution is this module's job, not the builder's.
type Builder interface {
	Build(ast AST) (logicalplan.Node, *planctx.PlanCtx, error)
}
