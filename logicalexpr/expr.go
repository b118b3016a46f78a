// Package logicalexpr defines the logical expression algebra used inside a
// LogicalPlan: literals, column/property references, operator application,
// function calls and the handful of syntactic forms (CASE, list, lambda,
// subquery) that a Cypher RETURN/WHERE/WITH clause can produce.
//
// Every Expr implementation is immutable; rewriting an expression means
// constructing a new value, never mutating fields in place (mirrors the
// LogicalPlan immutability contract described in logicalplan.Node).
package logicalexpr

import "fmt"

// Expr is the sum type for logical expressions. Analyzer passes type-switch
// on the concrete type rather than relying on virtual dispatch; Go does not
// check such switches for exhaustiveness, so a variant a switch does not
// list reaches its default branch (see logicalplan.Node for the same
// design choice).
type Expr interface {
	fmt.Stringer
	exprNode()
}

// Direction is the traversal direction of a relationship pattern.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Either
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "Outgoing"
	case Incoming:
		return "Incoming"
	case Either:
		return "Either"
	default:
		return "Unknown"
	}
}

// Literal is a constant scalar value carried verbatim from the parser.
type Literal struct {
	Value interface{}
}

func (Literal) exprNode() {}
func (l Literal) String() string { return fmt.Sprintf("%v", l.Value) }

// ColumnRef is a resolved, physical column reference: no further mapping is
// required downstream. Analyzer passes produce these; the parser never does.
type ColumnRef struct {
	Table  string
	Column string
}

func (ColumnRef) exprNode() {}
func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// PropertyAccess is a raw Cypher `alias.prop` reference. Once a pass learns
// the physical column it replaces the whole PropertyAccess with a
// ColumnRef (the projected-columns resolver for pattern aliases, the CTE
// column resolver for CTE exports); the variable resolver is the pass that
// rewrites the Alias of a reference that turns out to read an enclosing
// WITH export.
type PropertyAccess struct {
	Alias    string
	Property string
}

func (PropertyAccess) exprNode() {}
func (p PropertyAccess) String() string { return p.Alias + "." + p.Property }

// TableAlias is a bare alias reference, e.g. the `p` in `RETURN p` before
// projection tagging expands it to `p.*`, or the `x` in `RETURN x` that the
// variable resolver turns into a PropertyAccess against a CTE.
type TableAlias struct {
	Alias string
}

func (TableAlias) exprNode() {}
func (t TableAlias) String() string { return t.Alias }

// Star represents `*` in a projection or inside count(*).
type Star struct{}

func (Star) exprNode() {}
func (Star) String() string { return "*" }

// BinaryOp applies a binary operator (comparison, boolean, arithmetic).
type BinaryOp struct {
	Op    string // "=", "<>", "<", ">", "AND", "OR", "+", ...
	Left  Expr
	Right Expr
}

func (BinaryOp) exprNode() {}
func (b BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// And folds a slice of predicates into a right-leaning tree of BinaryOp
// values with Op == "AND" (nil for no predicates, the predicate itself for
// one), mirroring the teacher's expression.JoinAnd helper.
func And(exprs ...Expr) Expr {
	if len(exprs) == 0 {
		return nil
	}
	result := exprs[len(exprs)-1]
	for i := len(exprs) - 2; i >= 0; i-- {
		result = BinaryOp{Op: "AND", Left: exprs[i], Right: result}
	}
	return result
}

// SplitAnd is the inverse of And: it flattens a conjunction tree back into
// its conjuncts, used by filter tagging and pushdown passes that need to
// examine each conjunct independently.
func SplitAnd(e Expr) []Expr {
	if b, ok := e.(BinaryOp); ok && b.Op == "AND" {
		return append(SplitAnd(b.Left), SplitAnd(b.Right)...)
	}
	return []Expr{e}
}

// UnaryOp applies a unary operator (NOT, IS NULL, DISTINCT-as-modifier).
type UnaryOp struct {
	Op      string
	Operand Expr
}

func (UnaryOp) exprNode() {}
func (u UnaryOp) String() string { return fmt.Sprintf("%s(%s)", u.Op, u.Operand) }

// FuncCall is a scalar function application, e.g. id(n), type(r), labels(n).
type FuncCall struct {
	Name string
	Args []Expr
}

func (FuncCall) exprNode() {}
func (f FuncCall) String() string {
	return fmt.Sprintf("%s(%s)", f.Name, joinExprs(f.Args))
}

// AggregateFuncCall is an aggregate function application, e.g. count(n),
// count(DISTINCT r), collect(p).
type AggregateFuncCall struct {
	Name     string
	Arg      Expr
	Distinct bool
}

func (AggregateFuncCall) exprNode() {}
func (a AggregateFuncCall) String() string {
	distinct := ""
	if a.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", a.Name, distinct, a.Arg)
}

// IsAggregate reports whether an expression tree contains an aggregate
// function call anywhere, used by GROUP BY building to classify projection
// items as aggregate vs. grouping-key items.
func IsAggregate(e Expr) bool {
	found := false
	Inspect(e, func(e Expr) bool {
		if _, ok := e.(AggregateFuncCall); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// CaseWhen is one WHEN/THEN arm of a Case expression.
type CaseWhen struct {
	When Expr
	Then Expr
}

// Case is a CASE WHEN ... THEN ... ELSE ... END expression.
type Case struct {
	Whens []CaseWhen
	Else  Expr
}

func (Case) exprNode() {}
func (c Case) String() string {
	s := "CASE"
	for _, w := range c.Whens {
		s += fmt.Sprintf(" WHEN %s THEN %s", w.When, w.Then)
	}
	if c.Else != nil {
		s += fmt.Sprintf(" ELSE %s", c.Else)
	}
	return s + " END"
}

// ListExpr is a literal list, used both for `labels(n)` results and for
// Cypher list literals in the query text.
type ListExpr struct {
	Items []Expr
}

func (ListExpr) exprNode() {}
func (l ListExpr) String() string { return "[" + joinExprs(l.Items) + "]" }

// Lambda represents a list-comprehension/predicate lambda, e.g. the body of
// `all(x IN list WHERE x.prop > 1)`.
type Lambda struct {
	Param string
	Body  Expr
}

func (Lambda) exprNode() {}
func (l Lambda) String() string { return fmt.Sprintf("(%s -> %s)", l.Param, l.Body) }

// InSubquery represents `expr IN (subquery)`, where Subquery is an opaque
// handle to an external logical plan (declared as interface{} here to avoid
// an import cycle with logicalplan; the analyzer package narrows it).
type InSubquery struct {
	Expr     Expr
	Subquery interface{}
}

func (InSubquery) exprNode() {}
func (i InSubquery) String() string { return fmt.Sprintf("%s IN (subquery)", i.Expr) }

func joinExprs(exprs []Expr) string {
	s := ""
	for i, e := range exprs {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s
}

// Inspect walks e and every expression reachable from it (pre-order),
// calling f on each node; f returns false to stop descending into that
// node's children. Mirrors the teacher's sql.Inspect helper used throughout
// sql/analyzer for read-only tree walks (e.g. exprIsCacheable).
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	for _, child := range children(e) {
		Inspect(child, f)
	}
}

func children(e Expr) []Expr {
	switch e := e.(type) {
	case BinaryOp:
		return []Expr{e.Left, e.Right}
	case UnaryOp:
		return []Expr{e.Operand}
	case FuncCall:
		return e.Args
	case AggregateFuncCall:
		return []Expr{e.Arg}
	case Case:
		var out []Expr
		for _, w := range e.Whens {
			out = append(out, w.When, w.Then)
		}
		if e.Else != nil {
			out = append(out, e.Else)
		}
		return out
	case ListExpr:
		return e.Items
	case Lambda:
		return []Expr{e.Body}
	case InSubquery:
		return []Expr{e.Expr}
	default:
		return nil
	}
}

// Transform rewrites e bottom-up via f, rebuilding every composite parent
// from its transformed children whether or not a child changed (no-op
// detection is not attempted, since Expr variants are small value types),
// and reports no changed/unchanged signal: a caller that needs one must
// track it inside f.
func Transform(e Expr, f func(Expr) (Expr, error)) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	var err error
	switch e := e.(type) {
	case BinaryOp:
		left, lerr := Transform(e.Left, f)
		if lerr != nil {
			return nil, lerr
		}
		right, rerr := Transform(e.Right, f)
		if rerr != nil {
			return nil, rerr
		}
		e.Left, e.Right = left, right
		return f(e)
	case UnaryOp:
		operand, oerr := Transform(e.Operand, f)
		if oerr != nil {
			return nil, oerr
		}
		e.Operand = operand
		return f(e)
	case FuncCall:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i], err = Transform(a, f)
			if err != nil {
				return nil, err
			}
		}
		e.Args = args
		return f(e)
	case AggregateFuncCall:
		arg, aerr := Transform(e.Arg, f)
		if aerr != nil {
			return nil, aerr
		}
		e.Arg = arg
		return f(e)
	case Case:
		whens := make([]CaseWhen, len(e.Whens))
		for i, w := range e.Whens {
			when, werr := Transform(w.When, f)
			if werr != nil {
				return nil, werr
			}
			then, terr := Transform(w.Then, f)
			if terr != nil {
				return nil, terr
			}
			whens[i] = CaseWhen{When: when, Then: then}
		}
		e.Whens = whens
		if e.Else != nil {
			e.Else, err = Transform(e.Else, f)
			if err != nil {
				return nil, err
			}
		}
		return f(e)
	case ListExpr:
		items := make([]Expr, len(e.Items))
		for i, it := range e.Items {
			items[i], err = Transform(it, f)
			if err != nil {
				return nil, err
			}
		}
		e.Items = items
		return f(e)
	case Lambda:
		body, berr := Transform(e.Body, f)
		if berr != nil {
			return nil, berr
		}
		e.Body = body
		return f(e)
	case InSubquery:
		expr, eerr := Transform(e.Expr, f)
		if eerr != nil {
			return nil, eerr
		}
		e.Expr = expr
		return f(e)
	default:
		return f(e)
	}
}
