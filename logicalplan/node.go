// Package logicalplan implements the immutable, persistent logical plan
// algebra (spec C2): one variant per Cypher clause shape, every variant
// storing its children as shared references so that two parents may
// observe the same child. Rebuilding a node always allocates a new parent;
// nothing in this package mutates a node's fields in place after
// construction (spec §3.1 invariant 1).
package logicalplan

import (
	"fmt"
	"strings"

	"github.com/brahmand-io/graphplan/logicalexpr"
)

// Node is the common interface every LogicalPlan variant implements. The
// generic Children/WithChildren pair exists for passes that only need
// structural recursion (duplicate-scan removal's materialized-alias walk,
// property-requirements' downward traversal, the explain printer); passes
// that need variant-specific fields (schema inference, projection tagging,
// ...) type-switch on the concrete type instead, matching the "exhaustive
// pattern matching over virtual dispatch" design choice of spec §9.
type Node interface {
	fmt.Stringer
	Children() []Node
	WithChildren(children ...Node) (Node, error)
	planNode()
}

// Direction re-exports logicalexpr.Direction so callers of this package
// don't need a second import for the common case of reading
// GraphRel.Direction.
type Direction = logicalexpr.Direction

const (
	Outgoing = logicalexpr.Outgoing
	Incoming = logicalexpr.Incoming
	Either   = logicalexpr.Either
)

// ---- Empty ----------------------------------------------------------------

// Empty is the zero-rows, zero-columns plan (spec §3.1).
type Empty struct{}

func (Empty) planNode()             {}
func (Empty) Children() []Node      { return nil }
func (Empty) String() string        { return "Empty" }
func (e Empty) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("Empty: expected 0 children, got %d", len(children))
	}
	return e, nil
}

// ---- ViewScan --------------------------------------------------------------

// ViewScan reads one backing physical table with its Cypher-property ->
// physical-column map attached (spec §3.1).
type ViewScan struct {
	SourceTable     string
	Alias           string
	PropertyMapping map[string]string
	NodeID          []string
	Labels          []string
	Filters         []logicalexpr.Expr
}

func (*ViewScan) planNode()        {}
func (v *ViewScan) Children() []Node { return nil }
func (v *ViewScan) String() string {
	return fmt.Sprintf("ViewScan(%s AS %s, labels=%v)", v.SourceTable, v.Alias, v.Labels)
}
func (v *ViewScan) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("ViewScan: expected 0 children, got %d", len(children))
	}
	return v, nil
}

// ---- Scan ------------------------------------------------------------------

// Scan is a raw, not-yet-resolved scan of a named table. No pass in this
// module produces one; duplicate-scan removal and explain.RenderSQL
// accept it when a caller's plan contains it.
type Scan struct {
	TableName string
	Alias     string
}

func (*Scan) planNode()          {}
func (s *Scan) Children() []Node { return nil }
func (s *Scan) String() string   { return fmt.Sprintf("Scan(%s AS %s)", s.TableName, s.Alias) }
func (s *Scan) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("Scan: expected 0 children, got %d", len(children))
	}
	return s, nil
}

// ---- GraphNode --------------------------------------------------------------

// ProjectedColumn pairs a Cypher property with the qualified physical
// column that realizes it, filled into GraphNode.ProjectedColumns by
// final.PlanSanitization.
type ProjectedColumn struct {
	CypherProperty  string
	QualifiedColumn string
}

// GraphNode declares an alias as a node-valued binding over Input.
type GraphNode struct {
	Input             Node
	Alias             string
	Label             string // "" until resolved
	IsDenormalized    bool
	ProjectedColumns  []ProjectedColumn // nil until resolved
}

func (*GraphNode) planNode() {}
func (g *GraphNode) Children() []Node { return []Node{g.Input} }
func (g *GraphNode) String() string {
	return fmt.Sprintf("GraphNode(%s:%s)", g.Alias, g.Label)
}
func (g *GraphNode) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("GraphNode: expected 1 child, got %d", len(children))
	}
	cp := *g
	cp.Input = children[0]
	return &cp, nil
}

// WithInput returns a copy of g with a new Input, sharing every other
// field (the standard "rebuild_or_clone" pattern used by every variant).
func (g *GraphNode) WithInput(input Node) *GraphNode {
	cp := *g
	cp.Input = input
	return &cp
}

// ---- GraphRel ---------------------------------------------------------------

// ShortestPathMode marks a variable-length path as a shortestPath()/
// allShortestPaths() query.
type ShortestPathMode int

const (
	NoShortestPath ShortestPathMode = iota
	ShortestPath
	AllShortestPaths
)

// VariableLengthSpec carries the *N..M hop bounds of a variable-length
// relationship pattern.
type VariableLengthSpec struct {
	MinHops *int // nil means unspecified (defaults to 1)
	MaxHops *int // nil means unbounded
}

// GraphRel is a relationship pattern binding (spec §3.1). Center is the
// edge-table subplan; Left/Right are the endpoint node subplans.
type GraphRel struct {
	Left   Node
	Center Node
	Right  Node

	Alias     string
	Direction Direction

	LeftConnection  string
	RightConnection string

	IsRelAnchor bool

	VariableLength   *VariableLengthSpec
	ShortestPathMode ShortestPathMode
	PathVariable     string // "" if unset

	WherePredicate logicalexpr.Expr // nil if unset
	Labels         []string

	IsOptional bool

	AnchorConnection string // "" if unset

	// CTEReferences maps a connection alias (Left/RightConnection) to the
	// name of the enclosing WITH-clause CTE it resolves against, populated
	// by the CTE reference populator (spec §4.3 step 6).
	CTEReferences map[string]string
}

func (*GraphRel) planNode() {}
func (g *GraphRel) Children() []Node { return []Node{g.Left, g.Center, g.Right} }
func (g *GraphRel) String() string {
	return fmt.Sprintf("GraphRel(%s:%s %s)", g.Alias, strings.Join(g.Labels, "|"), g.Direction)
}
func (g *GraphRel) WithChildren(children ...Node) (Node, error) {
	if len(children) != 3 {
		return nil, fmt.Errorf("GraphRel: expected 3 children, got %d", len(children))
	}
	cp := *g
	cp.Left, cp.Center, cp.Right = children[0], children[1], children[2]
	return &cp, nil
}

// WithLeftCenterRight returns a copy of g with new Left/Center/Right,
// sharing every other field.
func (g *GraphRel) WithLeftCenterRight(left, center, right Node) *GraphRel {
	cp := *g
	cp.Left, cp.Center, cp.Right = left, center, right
	return &cp
}

// ---- RecursiveRelPath -----------------------------------------------------

// RecursiveRelPath is the recursive-CTE plan shape a variable-length
// relationship pattern lowers to once it survives the transitivity check
// (spec §4.3 step 1 for fixed-length rels' analogous edge-list subplan;
// §1 names the variable-length-path transformation itself as an in-scope
// core feature). EdgeList is the base, non-recursive edge-table subplan
// (the same scan shape a fixed-length GraphRel's Center would get) that
// seeds the recursive CTE's base case and is rejoined against on every
// recursive step to extend the path by one hop. MinHops/MaxHops mirror
// VariableLengthSpec's bounds (nil MinHops defaults to 1, nil MaxHops is
// unbounded) and are carried through for the renderer to apply as a
// hop_count bound around the CTE. ShortestPath marks a shortestPath()/
// allShortestPaths() traversal, rendered with an ORDER BY hop_count ASC
// LIMIT 1 over the recursive CTE instead of enumerating every path.
type RecursiveRelPath struct {
	EdgeList Node
	CTEName  string
	Alias    string

	MinHops *int
	MaxHops *int

	ShortestPath bool
}

func (*RecursiveRelPath) planNode() {}
func (r *RecursiveRelPath) Children() []Node { return []Node{r.EdgeList} }
func (r *RecursiveRelPath) String() string {
	return fmt.Sprintf("RecursiveRelPath(%s AS %s, shortest=%v)", r.CTEName, r.Alias, r.ShortestPath)
}
func (r *RecursiveRelPath) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("RecursiveRelPath: expected 1 child, got %d", len(children))
	}
	cp := *r
	cp.EdgeList = children[0]
	return &cp, nil
}

// ---- Filter -------------------------------------------------------------

// Filter is relational selection.
type Filter struct {
	Input     Node
	Predicate logicalexpr.Expr
}

func (*Filter) planNode() {}
func (f *Filter) Children() []Node { return []Node{f.Input} }
func (f *Filter) String() string   { return fmt.Sprintf("Filter(%s)", f.Predicate) }
func (f *Filter) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Filter: expected 1 child, got %d", len(children))
	}
	cp := *f
	cp.Input = children[0]
	return &cp, nil
}

func (f *Filter) WithInput(input Node) *Filter {
	cp := *f
	cp.Input = input
	return &cp
}

// ---- Projection -----------------------------------------------------------

// ProjectionItem is one expression in a Projection, optionally aliased.
type ProjectionItem struct {
	Expression logicalexpr.Expr
	ColAlias   string // "" if not aliased
}

// Projection is a column projection (spec §3.1 invariant 4: after
// projection tagging, no item's expression is a bare TableAlias).
type Projection struct {
	Input    Node
	Items    []ProjectionItem
	Distinct bool
}

func (*Projection) planNode() {}
func (p *Projection) Children() []Node { return []Node{p.Input} }
func (p *Projection) String() string {
	parts := make([]string, len(p.Items))
	for i, it := range p.Items {
		parts[i] = it.Expression.String()
	}
	d := ""
	if p.Distinct {
		d = "DISTINCT "
	}
	return fmt.Sprintf("Projection(%s%s)", d, strings.Join(parts, ", "))
}
func (p *Projection) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Projection: expected 1 child, got %d", len(children))
	}
	cp := *p
	cp.Input = children[0]
	return &cp, nil
}

func (p *Projection) WithInput(input Node) *Projection {
	cp := *p
	cp.Input = input
	return &cp
}

func (p *Projection) WithItems(items []ProjectionItem) *Projection {
	cp := *p
	cp.Items = items
	return &cp
}

// ---- GroupBy ----------------------------------------------------------------

// GroupBy wraps a Projection containing aggregates (spec §4.2 step 10).
type GroupBy struct {
	Input                     Node
	Expressions               []logicalexpr.Expr
	HavingClause              logicalexpr.Expr // nil if unset
	IsMaterializationBoundary bool
	ExposedAlias              string // "" if unset
}

func (*GroupBy) planNode() {}
func (g *GroupBy) Children() []Node { return []Node{g.Input} }
func (g *GroupBy) String() string {
	return fmt.Sprintf("GroupBy(%d keys)", len(g.Expressions))
}
func (g *GroupBy) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("GroupBy: expected 1 child, got %d", len(children))
	}
	cp := *g
	cp.Input = children[0]
	return &cp, nil
}

func (g *GroupBy) WithInput(input Node) *GroupBy {
	cp := *g
	cp.Input = input
	return &cp
}

// ---- OrderBy / Skip / Limit -------------------------------------------------

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Expression logicalexpr.Expr
	Descending bool
}

// OrderBy orders Input's rows.
type OrderBy struct {
	Input Node
	Items []OrderItem
}

func (*OrderBy) planNode() {}
func (o *OrderBy) Children() []Node { return []Node{o.Input} }
func (o *OrderBy) String() string   { return fmt.Sprintf("OrderBy(%d keys)", len(o.Items)) }
func (o *OrderBy) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("OrderBy: expected 1 child, got %d", len(children))
	}
	cp := *o
	cp.Input = children[0]
	return &cp, nil
}

func (o *OrderBy) WithInput(input Node) *OrderBy {
	cp := *o
	cp.Input = input
	return &cp
}

// Skip discards the first N rows of Input.
type Skip struct {
	Input Node
	Count int64
}

func (*Skip) planNode() {}
func (s *Skip) Children() []Node { return []Node{s.Input} }
func (s *Skip) String() string   { return fmt.Sprintf("Skip(%d)", s.Count) }
func (s *Skip) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Skip: expected 1 child, got %d", len(children))
	}
	cp := *s
	cp.Input = children[0]
	return &cp, nil
}

func (s *Skip) WithInput(input Node) *Skip {
	cp := *s
	cp.Input = input
	return &cp
}

// Limit caps Input to at most Count rows.
type Limit struct {
	Input Node
	Count int64
}

func (*Limit) planNode() {}
func (l *Limit) Children() []Node { return []Node{l.Input} }
func (l *Limit) String() string   { return fmt.Sprintf("Limit(%d)", l.Count) }
func (l *Limit) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Limit: expected 1 child, got %d", len(children))
	}
	cp := *l
	cp.Input = children[0]
	return &cp, nil
}

func (l *Limit) WithInput(input Node) *Limit {
	cp := *l
	cp.Input = input
	return &cp
}

// ---- Cte --------------------------------------------------------------------

// Cte names a subplan for reuse.
type Cte struct {
	Input Node
	Name  string
}

func (*Cte) planNode() {}
func (c *Cte) Children() []Node { return []Node{c.Input} }
func (c *Cte) String() string   { return fmt.Sprintf("Cte(%s)", c.Name) }
func (c *Cte) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Cte: expected 1 child, got %d", len(children))
	}
	cp := *c
	cp.Input = children[0]
	return &cp, nil
}

func (c *Cte) WithInput(input Node) *Cte {
	cp := *c
	cp.Input = input
	return &cp
}

// ---- GraphJoins ---------------------------------------------------------------

// JoinKind distinguishes inner joins (a shared alias re-referenced within
// one MATCH) from left-correlated ones produced for OPTIONAL MATCH.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

// JoinSpec is one explicit join recorded by graph join inference.
type JoinSpec struct {
	LeftAlias  string
	RightAlias string
	LeftKey    string
	RightKey   string
	Kind       JoinKind
}

// GraphJoins is the explicit join-structure node emitted by join inference
// (spec §4.3 step 7).
type GraphJoins struct {
	Input Node
	Joins []JoinSpec
}

func (*GraphJoins) planNode() {}
func (g *GraphJoins) Children() []Node { return []Node{g.Input} }
func (g *GraphJoins) String() string   { return fmt.Sprintf("GraphJoins(%d joins)", len(g.Joins)) }
func (g *GraphJoins) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("GraphJoins: expected 1 child, got %d", len(children))
	}
	cp := *g
	cp.Input = children[0]
	return &cp, nil
}

func (g *GraphJoins) WithInput(input Node) *GraphJoins {
	cp := *g
	cp.Input = input
	return &cp
}

// ---- Union --------------------------------------------------------------------

// UnionType distinguishes UNION ALL from UNION DISTINCT.
type UnionType int

const (
	UnionAll UnionType = iota
	UnionDistinct
)

// Union combines several inputs with identical output schemas.
type Union struct {
	Inputs    []Node
	UnionType UnionType
}

func (*Union) planNode() {}
func (u *Union) Children() []Node { return u.Inputs }
func (u *Union) String() string   { return fmt.Sprintf("Union(%d branches)", len(u.Inputs)) }
func (u *Union) WithChildren(children ...Node) (Node, error) {
	cp := *u
	cp.Inputs = children
	return &cp, nil
}

func (u *Union) WithInputs(inputs []Node) *Union {
	cp := *u
	cp.Inputs = inputs
	return &cp
}

// ---- WithClause ---------------------------------------------------------------

// WithItem is one exported item of a WITH clause.
type WithItem struct {
	Expression logicalexpr.Expr
	ColAlias   string // "" if not aliased
}

// WithClause is a Cypher WITH boundary, materialized as a CTE downstream
// (spec §3.1).
type WithClause struct {
	Input          Node
	Items          []WithItem
	Distinct       bool
	OrderBy        []OrderItem
	Skip           *int64
	Limit          *int64
	WhereClause    logicalexpr.Expr // nil if unset
	ExportedAliases []string
	CTEReferences  map[string]string
	CTEName        string // "" until the CTE schema resolver names it
}

func (*WithClause) planNode() {}
func (w *WithClause) Children() []Node { return []Node{w.Input} }
func (w *WithClause) String() string   { return fmt.Sprintf("WithClause(%s)", w.CTEName) }
func (w *WithClause) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("WithClause: expected 1 child, got %d", len(children))
	}
	cp := *w
	cp.Input = children[0]
	return &cp, nil
}

func (w *WithClause) WithInput(input Node) *WithClause {
	cp := *w
	cp.Input = input
	return &cp
}

// ---- Unwind -------------------------------------------------------------------

// TupleProperty maps a Cypher property to its 1-based tuple index after
// UNWIND-of-collect enrichment (spec §4.3 step 9).
type TupleProperty struct {
	Property string
	Index    int
}

// Unwind is the list-expanding node.
type Unwind struct {
	Input          Node
	Expression     logicalexpr.Expr
	Alias          string
	Label          string // "" if unset
	TupleProperties []TupleProperty // nil until UNWIND-of-collect enrichment
}

func (*Unwind) planNode() {}
func (u *Unwind) Children() []Node { return []Node{u.Input} }
func (u *Unwind) String() string   { return fmt.Sprintf("Unwind(%s AS %s)", u.Expression, u.Alias) }
func (u *Unwind) WithChildren(children ...Node) (Node, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("Unwind: expected 1 child, got %d", len(children))
	}
	cp := *u
	cp.Input = children[0]
	return &cp, nil
}

func (u *Unwind) WithInput(input Node) *Unwind {
	cp := *u
	cp.Input = input
	return &cp
}

// ---- CartesianProduct -----------------------------------------------------------

// CartesianProduct is an uncorrelated product that may later acquire a
// join condition (spec §4.2 step 8).
type CartesianProduct struct {
	Left          Node
	Right         Node
	IsOptional    bool
	JoinCondition logicalexpr.Expr // nil until Cartesian join extraction
}

func (*CartesianProduct) planNode() {}
func (c *CartesianProduct) Children() []Node { return []Node{c.Left, c.Right} }
func (c *CartesianProduct) String() string   { return "CartesianProduct" }
func (c *CartesianProduct) WithChildren(children ...Node) (Node, error) {
	if len(children) != 2 {
		return nil, fmt.Errorf("CartesianProduct: expected 2 children, got %d", len(children))
	}
	cp := *c
	cp.Left, cp.Right = children[0], children[1]
	return &cp, nil
}

func (c *CartesianProduct) WithLeftRight(left, right Node) *CartesianProduct {
	cp := *c
	cp.Left, cp.Right = left, right
	return &cp
}

// ---- PageRank -------------------------------------------------------------------

// PageRank is the single opaque analytic hook reserved for an external
// collaborator (spec §3.1); the core never interprets it.
type PageRank struct {
	SourceAlias string
	Params      map[string]interface{}
}

func (*PageRank) planNode() {}
func (*PageRank) Children() []Node { return nil }
func (p *PageRank) String() string { return fmt.Sprintf("PageRank(%s)", p.SourceAlias) }
func (p *PageRank) WithChildren(children ...Node) (Node, error) {
	if len(children) != 0 {
		return nil, fmt.Errorf("PageRank: expected 0 children, got %d", len(children))
	}
	return p, nil
}
