// Package explain renders a LogicalPlan tree as a human-readable,
// indented tree with a property table per node, for use by the
// graphplan-explain diagnostic binary and by tests asserting a plan's
// shape without a full structural comparison. Borrows the color/table
// pairing (fatih/color for tree decoration, olekukonko/tablewriter for the
// per-node property grid) from the pack's wbrown-janus-datalog debug
// printer idiom.
package explain

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
)

var (
	nodeColor  = color.New(color.FgCyan, color.Bold)
	fieldColor = color.New(color.FgYellow)
)

// Print writes a tree rendering of n to w.
func Print(w io.Writer, n logicalplan.Node) {
	printNode(w, n, "", true)
}

func printNode(w io.Writer, n logicalplan.Node, prefix string, isLast bool) {
	if n == nil {
		return
	}
	connector := "├── "
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└── "
		nextPrefix = prefix + "    "
	}
	fmt.Fprintf(w, "%s%s%s\n", prefix, connector, nodeColor.Sprint(n.String()))

	if fields := detailFields(n); len(fields) > 0 {
		printDetailTable(w, nextPrefix, fields)
	}

	children := n.Children()
	for i, c := range children {
		printNode(w, c, nextPrefix, i == len(children)-1)
	}
}

func printDetailTable(w io.Writer, prefix string, fields [][2]string) {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"field", "value"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, f := range fields {
		table.Append([]string{fieldColor.Sprint(f[0]), f[1]})
	}
	table.Render()

	for _, line := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
		fmt.Fprintf(w, "%s%s\n", prefix, line)
	}
}

// detailFields extracts the fields worth surfacing for a node's variant,
// beyond what its String() already shows.
func detailFields(n logicalplan.Node) [][2]string {
	switch n := n.(type) {
	case *logicalplan.GraphRel:
		var fields [][2]string
		if n.VariableLength != nil {
			fields = append(fields, [2]string{"variable_length", "yes"})
		}
		if n.WherePredicate != nil {
			fields = append(fields, [2]string{"where", n.WherePredicate.String()})
		}
		if n.IsOptional {
			fields = append(fields, [2]string{"optional", "true"})
		}
		return fields
	case *logicalplan.Filter:
		return [][2]string{{"predicate", n.Predicate.String()}}
	case *logicalplan.Cte:
		return [][2]string{{"name", n.Name}}
	case *logicalplan.WithClause:
		return [][2]string{{"cte_name", n.CTEName}}
	default:
		return nil
	}
}

// RenderSQL renders a LogicalPlan tree as a pseudo-SQL fragment: not a
// dialect-correct statement (no real renderer is in scope, spec §1's
// Non-goals), but a textual shape close enough to real SQL that a test can
// assert a plan contains the fragments ("JOIN", "WITH RECURSIVE",
// "hop_count < N", "GROUP BY ...") that distinguish one query shape from
// another. Every LogicalPlan variant defined today has its own case; a
// node type without one falls through to the default case and renders as
// a "/* unrenderable: ... */" comment rather than an empty fragment.
func RenderSQL(n logicalplan.Node) string {
	switch node := n.(type) {
	case nil:
		return ""
	case logicalplan.Empty:
		return "SELECT 1"
	case *logicalplan.ViewScan:
		return renderScanLike(node.SourceTable, node.Alias, node.PropertyMapping)
	case *logicalplan.Scan:
		return fmt.Sprintf("SELECT * FROM %s AS %s", node.TableName, node.Alias)
	case *logicalplan.GraphNode:
		return RenderSQL(node.Input)
	case *logicalplan.GraphRel:
		return renderGraphRel(node)
	case *logicalplan.RecursiveRelPath:
		return renderRecursiveRelPath(node)
	case *logicalplan.Filter:
		return fmt.Sprintf("%s WHERE %s", RenderSQL(node.Input), renderExpr(node.Predicate))
	case *logicalplan.Projection:
		return renderProjection(node)
	case *logicalplan.GroupBy:
		s := fmt.Sprintf("%s GROUP BY %s", RenderSQL(node.Input), exprListString(node.Expressions))
		if node.HavingClause != nil {
			s += " HAVING " + renderExpr(node.HavingClause)
		}
		return s
	case *logicalplan.OrderBy:
		parts := make([]string, len(node.Items))
		for i, it := range node.Items {
			dir := "ASC"
			if it.Descending {
				dir = "DESC"
			}
			parts[i] = fmt.Sprintf("%s %s", renderExpr(it.Expression), dir)
		}
		return fmt.Sprintf("%s ORDER BY %s", RenderSQL(node.Input), strings.Join(parts, ", "))
	case *logicalplan.Skip:
		return fmt.Sprintf("%s OFFSET %d", RenderSQL(node.Input), node.Count)
	case *logicalplan.Limit:
		return fmt.Sprintf("%s LIMIT %d", RenderSQL(node.Input), node.Count)
	case *logicalplan.Cte:
		return fmt.Sprintf("WITH %s AS (%s) SELECT * FROM %s", node.Name, RenderSQL(node.Input), node.Name)
	case *logicalplan.GraphJoins:
		return renderGraphJoins(node)
	case *logicalplan.Union:
		parts := make([]string, len(node.Inputs))
		for i, in := range node.Inputs {
			parts[i] = RenderSQL(in)
		}
		op := " UNION ALL "
		if node.UnionType == logicalplan.UnionDistinct {
			op = " UNION "
		}
		return strings.Join(parts, op)
	case *logicalplan.WithClause:
		return renderWithClause(node)
	case *logicalplan.Unwind:
		return RenderSQL(node.Input)
	case *logicalplan.CartesianProduct:
		s := fmt.Sprintf("(%s) CROSS JOIN (%s)", RenderSQL(node.Left), RenderSQL(node.Right))
		if node.JoinCondition != nil {
			s += " ON " + renderExpr(node.JoinCondition)
		}
		return s
	case *logicalplan.PageRank:
		return fmt.Sprintf("PAGERANK(%s)", node.SourceAlias)
	default:
		return fmt.Sprintf("/* unrenderable: %s */", node)
	}
}

func renderScanLike(sourceTable, alias string, propertyMapping map[string]string) string {
	keys := make([]string, 0, len(propertyMapping))
	for k := range propertyMapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cols := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = fmt.Sprintf("%s AS %s", propertyMapping[k], k)
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	return fmt.Sprintf("SELECT %s FROM %s AS %s", strings.Join(cols, ", "), sourceTable, alias)
}

// renderRecursiveRelPath renders a variable-length path's recursive CTE: a
// base case over the edge-list subplan seeded at hop_count 1, a recursive
// step extending the path by one hop and bounded by MaxHops so the
// recursion itself terminates, and an outer SELECT applying the MinHops
// floor (hop_count > MinHops-1) plus, for a shortestPath()/
// allShortestPaths() pattern, an ORDER BY hop_count ASC LIMIT 1 in place of
// enumerating every path (spec §1, §8 scenarios 2 and 3).
func renderRecursiveRelPath(r *logicalplan.RecursiveRelPath) string {
	edge := RenderSQL(r.EdgeList)
	base := fmt.Sprintf("SELECT from_id, to_id, 1 AS hop_count FROM (%s) AS base_%s", edge, r.Alias)
	step := fmt.Sprintf(
		"SELECT p.from_id, e.to_id, p.hop_count + 1 AS hop_count FROM %s AS p JOIN (%s) AS e ON p.to_id = e.from_id",
		r.CTEName, edge,
	)
	if r.MaxHops != nil {
		step += fmt.Sprintf(" WHERE p.hop_count < %d", *r.MaxHops)
	}

	minHops := 1
	if r.MinHops != nil {
		minHops = *r.MinHops
	}
	outer := fmt.Sprintf("SELECT * FROM %s WHERE hop_count > %d", r.CTEName, minHops-1)
	if r.ShortestPath {
		outer += " ORDER BY hop_count ASC LIMIT 1"
	}

	return fmt.Sprintf("WITH RECURSIVE %s AS (%s UNION ALL %s) %s", r.CTEName, base, step, outer)
}

func renderProjection(p *logicalplan.Projection) string {
	parts := make([]string, len(p.Items))
	for i, it := range p.Items {
		s := renderExpr(it.Expression)
		if it.ColAlias != "" {
			s += " AS " + it.ColAlias
		}
		parts[i] = s
	}
	distinct := ""
	if p.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("SELECT %s%s FROM (%s) AS sub", distinct, strings.Join(parts, ", "), RenderSQL(p.Input))
}

// renderGraphRel renders a relationship's three legs — the left endpoint
// node, the edge-list/recursive center, and the right endpoint node — as
// separate fragments joined by "; ", so every leg's table/CTE reference
// survives into the full plan's rendered text even though GraphJoins (not
// this node) carries the actual join predicates between them.
func renderGraphRel(r *logicalplan.GraphRel) string {
	var parts []string
	for _, leg := range []logicalplan.Node{r.Left, r.Center, r.Right} {
		if s := RenderSQL(leg); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}

func renderGraphJoins(g *logicalplan.GraphJoins) string {
	s := RenderSQL(g.Input)
	for _, j := range g.Joins {
		keyword := "JOIN"
		if j.Kind == logicalplan.LeftJoin {
			keyword = "LEFT JOIN"
		}
		s += fmt.Sprintf(" %s %s ON %s.%s = %s.%s", keyword, j.RightAlias, j.LeftAlias, j.LeftKey, j.RightAlias, j.RightKey)
	}
	return s
}

func renderWithClause(w *logicalplan.WithClause) string {
	parts := make([]string, len(w.Items))
	for i, it := range w.Items {
		s := renderExpr(it.Expression)
		if it.ColAlias != "" {
			s += " AS " + it.ColAlias
		}
		parts[i] = s
	}
	inner := fmt.Sprintf("SELECT %s FROM (%s) AS src", strings.Join(parts, ", "), RenderSQL(w.Input))
	if w.WhereClause != nil {
		inner += " WHERE " + renderExpr(w.WhereClause)
	}
	return fmt.Sprintf("WITH %s AS (%s) SELECT * FROM %s", w.CTEName, inner, w.CTEName)
}

func exprListString(exprs []logicalexpr.Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = renderExpr(e)
	}
	return strings.Join(parts, ", ")
}

// renderExpr is RenderSQL's expression-level counterpart to Expr.String():
// identical for every variant except Literal, where it quotes string values
// so a rendered WHERE fragment reads as real SQL ('Alice') instead of
// String()'s bare Go-value formatting (Alice).
func renderExpr(e logicalexpr.Expr) string {
	switch v := e.(type) {
	case logicalexpr.Literal:
		if s, ok := v.Value.(string); ok {
			return fmt.Sprintf("'%s'", s)
		}
		return v.String()
	case logicalexpr.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", renderExpr(v.Left), v.Op, renderExpr(v.Right))
	case logicalexpr.UnaryOp:
		return fmt.Sprintf("%s(%s)", v.Op, renderExpr(v.Operand))
	case logicalexpr.FuncCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = renderExpr(a)
		}
		return fmt.Sprintf("%s(%s)", v.Name, strings.Join(args, ", "))
	case logicalexpr.AggregateFuncCall:
		distinct := ""
		if v.Distinct {
			distinct = "DISTINCT "
		}
		return fmt.Sprintf("%s(%s%s)", v.Name, distinct, renderExpr(v.Arg))
	case logicalexpr.InSubquery:
		return fmt.Sprintf("%s IN (subquery)", renderExpr(v.Expr))
	default:
		return e.String()
	}
}
