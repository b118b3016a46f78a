// Package planctx implements the per-compilation plan context (spec C3): a
// dictionary keyed by pattern alias holding the scope state the analyzer
// passes read and write as they walk the tree (labels, filters, projection
// items, the CTE registry, WHERE-derived hints). One PlanCtx belongs to
// exactly one compilation unit and is never shared across compilations
// (spec §5).
package planctx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/patternschema"
)

// Error is returned by PlanCtx lookups; when a pass returns it, the
// analyzer package wraps it as analyzer.Error{Pass: ..., Cause: err}.
type Error struct {
	Op    string
	Alias string
}

func (e *Error) Error() string {
	return fmt.Sprintf("plan_ctx: %s: alias %q", e.Op, e.Alias)
}

// TableCtx is the per-alias scope state (spec §3.2).
type TableCtx struct {
	Alias string

	// Labels is a set to allow multi-label relationship patterns like
	// [:R1|R2]. For a node alias it normally holds exactly one label once
	// resolved.
	Labels map[string]struct{}

	// Filters attached to this alias after filter tagging, already
	// rewritten to physical columns.
	Filters []logicalexpr.Expr

	// Projection items attached directly to this alias (used by the
	// wildcard-expansion machinery in projection tagging).
	ProjectionItems []logicalexpr.Expr

	IsRelation bool
	// IsExplicit distinguishes a user-named alias ("MATCH (u:User)") from
	// one synthesized by the plan builder for an anonymous pattern element.
	IsExplicit bool

	// PathVariableRole marks this alias as the path-capturing variable of a
	// shortestPath()/variable-length pattern ("p" in `p = (a)-[*]->(b)`).
	PathVariableRole bool

	// FromNodeLabel / ToNodeLabel cache the polymorphic endpoint labels for
	// a relationship alias once a concrete schema variant is picked.
	FromNodeLabel string
	ToNodeLabel   string

	// Strategy is the resolved pattern-schema access strategy (spec C4),
	// set once schema inference + projected-columns resolution have run.
	Strategy patternschema.Strategy
}

// NewTableCtx creates an empty TableCtx for alias.
func NewTableCtx(alias string) *TableCtx {
	return &TableCtx{Alias: alias, Labels: map[string]struct{}{}}
}

// AddLabel registers a possible label/type for this alias.
func (t *TableCtx) AddLabel(label string) {
	t.Labels[label] = struct{}{}
}

// LabelSet returns the sorted labels currently registered, for
// deterministic output.
func (t *TableCtx) LabelSet() []string {
	out := make([]string, 0, len(t.Labels))
	for l := range t.Labels {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// SingleLabel returns the lone registered label, or an error if the alias
// has zero or more than one (callers use this to detect "not enough
// labels" vs. "ambiguous multi-type" situations).
func (t *TableCtx) SingleLabel() (string, error) {
	labels := t.LabelSet()
	if len(labels) != 1 {
		return "", &Error{Op: "single_label", Alias: t.Alias}
	}
	return labels[0], nil
}

// CTERegistry tracks the export schema of every materialized WITH
// boundary: the Cypher-property -> CTE-column map per CTE name, a
// monotonic counter for stable naming, and which projection aliases were
// introduced by "WITH ... AS x" (spec §3.2, §9).
type CTERegistry struct {
	// Columns maps cteName -> (cypherProperty -> cteColumnName).
	Columns map[string]map[string]string
	// EntityTypes maps cteName -> (exportedAlias -> "node"|"relationship").
	EntityTypes map[string]map[string]string
	counter     int
	// ProjectionAliases is the set of names introduced by "WITH ... AS x".
	ProjectionAliases map[string]struct{}
	// bareExpansions counts, per "cteName\x00alias", how many distinct
	// properties of a bare re-exported node/relationship alias have been
	// resolved against this CTE so far, so each gets a stable 1-based
	// occurrence number in its synthesized column name.
	bareExpansions map[string]int
}

// NewCTERegistry builds an empty registry.
func NewCTERegistry() *CTERegistry {
	return &CTERegistry{
		Columns:           map[string]map[string]string{},
		EntityTypes:       map[string]map[string]string{},
		ProjectionAliases: map[string]struct{}{},
		bareExpansions:    map[string]int{},
	}
}

// NextCTEName builds the stable name "with_<a1>_<a2>..._cte_<counter>" from
// the sorted exported aliases, per spec §9's naming rule: callers MUST use
// this identical rule so renderer column references stay stable.
func (c *CTERegistry) NextCTEName(exportedAliases []string) string {
	sorted := append([]string(nil), exportedAliases...)
	sort.Strings(sorted)
	n := c.counter
	c.counter++
	name := "with"
	for _, a := range sorted {
		name += "_" + a
	}
	return fmt.Sprintf("%s_cte_%d", name, n)
}

// RegisterExport records the export schema for a freshly named CTE.
func (c *CTERegistry) RegisterExport(cteName string, columns map[string]string, entityTypes map[string]string) {
	c.Columns[cteName] = columns
	c.EntityTypes[cteName] = entityTypes
}

// IsCTE reports whether name is a registered CTE.
func (c *CTERegistry) IsCTE(name string) bool {
	_, ok := c.Columns[name]
	return ok
}

// ColumnFor resolves propName to the CTE's exported column name. propName
// may either be a plain exported alias (a "WITH ... AS x" or a passed-through
// property alias, both registered verbatim by CTESchemaResolver) or a
// "<alias>.<property>" composite key naming a single property read off a
// bare re-exported node/relationship alias ("WITH ... p"); the latter has no
// column until first requested, since the exact set of properties an
// outer clause reads off a re-exported entity isn't known when the CTE
// itself is resolved. Composite keys are resolved lazily here and cached,
// so repeated requests for the same alias/property pair return the same
// column name.
func (c *CTERegistry) ColumnFor(cteName, propName string) (string, bool) {
	cols, ok := c.Columns[cteName]
	if !ok {
		return "", false
	}
	if col, ok := cols[propName]; ok {
		return col, true
	}

	alias, prop, isComposite := strings.Cut(propName, ".")
	if !isComposite {
		return "", false
	}
	if _, ok := c.EntityTypes[cteName][alias]; !ok {
		return "", false
	}

	key := cteName + "\x00" + alias
	c.bareExpansions[key]++
	col := fmt.Sprintf("%s%d_%s_%s", alias, c.bareExpansions[key], alias, prop)
	cols[propName] = col
	return col, true
}

// MarkProjectionAlias records that name was introduced by "WITH ... AS
// name", so later passes know it is not a pattern alias.
func (c *CTERegistry) MarkProjectionAlias(name string) { c.ProjectionAliases[name] = struct{}{} }

// IsProjectionAlias reports whether name was introduced by "WITH ... AS
// name".
func (c *CTERegistry) IsProjectionAlias(name string) bool {
	_, ok := c.ProjectionAliases[name]
	return ok
}

// PlanCtx is the mutable, per-compilation scope dictionary (spec §3.2).
type PlanCtx struct {
	tables map[string]*TableCtx
	CTEs   *CTERegistry

	// PropertyRequirementsHint records, per relationship alias, the
	// properties still referenced as PropertyAccess in a Filter or
	// Projection, as gathered by the property-requirements pass at the end
	// of the intermediate batch. No pass in this module reads it.
	PropertyRequirementsHint map[string]map[string]struct{}

	// IDEqualityLabelHints caches id()-equality label constraints per node
	// alias discovered while scanning WHERE, e.g. `id(a) = 1` combined with
	// a schema that can only produce that id for one label.
	IDEqualityLabelHints map[string]string

	aliasCounter int
}

// New creates an empty PlanCtx for one compilation unit.
func New() *PlanCtx {
	return &PlanCtx{
		tables:                   map[string]*TableCtx{},
		CTEs:                     NewCTERegistry(),
		PropertyRequirementsHint: map[string]map[string]struct{}{},
		IDEqualityLabelHints:     map[string]string{},
	}
}

// GetOrCreateTableCtx returns the TableCtx for alias, creating an empty one
// if this is the first reference.
func (p *PlanCtx) GetOrCreateTableCtx(alias string) *TableCtx {
	if t, ok := p.tables[alias]; ok {
		return t
	}
	t := NewTableCtx(alias)
	p.tables[alias] = t
	return t
}

// GetTableCtx returns the TableCtx for alias, or an OrphanAlias-shaped
// error if it was never bound by a MATCH pattern or WITH export.
func (p *PlanCtx) GetTableCtx(alias string) (*TableCtx, error) {
	if t, ok := p.tables[alias]; ok {
		return t, nil
	}
	return nil, &Error{Op: "get_table_ctx", Alias: alias}
}

// GetNodeTableCtx is a GetTableCtx that also asserts the alias is not
// tagged as a relation (used by graph_context-style helpers).
func (p *PlanCtx) GetNodeTableCtx(alias string) (*TableCtx, error) {
	t, err := p.GetTableCtx(alias)
	if err != nil {
		return nil, err
	}
	if t.IsRelation {
		return nil, &Error{Op: "get_node_table_ctx: alias is a relation", Alias: alias}
	}
	return t, nil
}

// GetRelTableCtx is a GetTableCtx that also asserts the alias is tagged as
// a relation.
func (p *PlanCtx) GetRelTableCtx(alias string) (*TableCtx, error) {
	t, err := p.GetTableCtx(alias)
	if err != nil {
		return nil, err
	}
	if !t.IsRelation {
		return nil, &Error{Op: "get_rel_table_ctx: alias is not a relation", Alias: alias}
	}
	return t, nil
}

// Aliases returns every alias currently bound, in a stable (sorted) order.
func (p *PlanCtx) Aliases() []string {
	out := make([]string, 0, len(p.tables))
	for a := range p.tables {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// ExplicitAliases returns every user-named alias, in stable order; used by
// projection tagging to expand "RETURN *".
func (p *PlanCtx) ExplicitAliases() []string {
	var out []string
	for _, a := range p.Aliases() {
		if p.tables[a].IsExplicit {
			out = append(out, a)
		}
	}
	return out
}

// NextGeneratedAlias returns a fresh "_genN" alias (spec SPEC_FULL §3
// ADDED), scoped to this PlanCtx so two concurrent compilations never
// collide.
func (p *PlanCtx) NextGeneratedAlias() string {
	n := p.aliasCounter
	p.aliasCounter++
	return fmt.Sprintf("_gen%d", n)
}
