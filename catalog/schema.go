// Package catalog implements the read-only graph schema catalog (spec C1):
// for every node label and relationship type, the physical table and
// column-level property mapping that realizes it. The catalog is consumed
// by the analyzer passes and never mutated after it is loaded.
package catalog

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v2"
)

// IdentityColumn names the column (or composite columns) that uniquely
// identify a row in a node or relationship table.
type IdentityColumn struct {
	Column  string   `yaml:"column,omitempty"`
	Columns []string `yaml:"columns,omitempty"`
}

// IsComposite reports whether the identity is a multi-column key.
func (c IdentityColumn) IsComposite() bool { return len(c.Columns) > 0 }

// ColumnList returns the identity as a column list regardless of whether it
// was declared as a single column or a composite key.
func (c IdentityColumn) ColumnList() []string {
	if c.IsComposite() {
		return c.Columns
	}
	return []string{c.Column}
}

// NodeSchema describes one node label's physical realization.
type NodeSchema struct {
	Label       string            `yaml:"label"`
	Database    string            `yaml:"database"`
	TableName   string            `yaml:"table"`
	NodeID      IdentityColumn    `yaml:"node_id"`
	PropertyMap map[string]string `yaml:"properties"`

	// IsDenormalized marks a node whose properties live inside an edge
	// table rather than a dedicated node table (spec §3.4, §9).
	IsDenormalized bool `yaml:"denormalized,omitempty"`
	// FromProperties / ToProperties hold the role-specific property->column
	// maps for a denormalized node, selected by the pattern-schema strategy
	// according to whether the alias plays the From or To role in its edge.
	FromProperties map[string]string `yaml:"from_properties,omitempty"`
	ToProperties   map[string]string `yaml:"to_properties,omitempty"`

	// LabelColumn/LabelValue mark a polymorphic "one table, many labels"
	// node: rows are disambiguated by LabelColumn == LabelValue.
	LabelColumn string `yaml:"label_column,omitempty"`
	LabelValue  string `yaml:"label_value,omitempty"`
}

// QualifiedTable returns "database.table", used as a CTE/join-source name.
func (n *NodeSchema) QualifiedTable() string {
	if n.Database == "" {
		return n.TableName
	}
	return n.Database + "." + n.TableName
}

// RelationshipSchema describes one relationship type's physical
// realization, possibly one of several polymorphic variants keyed by
// "TYPE::FROM::TO" in the catalog's index.
type RelationshipSchema struct {
	Type      string `yaml:"type"`
	Database  string `yaml:"database"`
	TableName string `yaml:"table"`

	FromNode string `yaml:"from_node"`
	ToNode   string `yaml:"to_node"`

	FromIDColumn string `yaml:"from_id_column"`
	ToIDColumn   string `yaml:"to_id_column"`

	// EdgeID is an optional composite identity for the edge row itself,
	// used by id(r) resolution and COUNT(DISTINCT r).
	EdgeID *IdentityColumn `yaml:"edge_id,omitempty"`

	// TypeColumn is set when several relationship types share one physical
	// table, disambiguated by TypeColumn's value (spec §4.2 step 9).
	TypeColumn string `yaml:"type_column,omitempty"`

	PropertyMap map[string]string `yaml:"properties"`

	// PolymorphicValues enumerates the TypeColumn values this variant
	// covers, when TypeColumn is set.
	PolymorphicValues []string `yaml:"polymorphic_values,omitempty"`
}

// QualifiedTable returns "database.table".
func (r *RelationshipSchema) QualifiedTable() string {
	if r.Database == "" {
		return r.TableName
	}
	return r.Database + "." + r.TableName
}

// IsTransitive reports whether this relationship type can chain with
// itself for a variable-length path: its from-node set and to-node set
// must overlap (spec §4.2 step 3), or either side is the polymorphic
// AnyLabel wildcard, which trivially overlaps everything.
func (r *RelationshipSchema) IsTransitive() bool {
	if r.FromNode == AnyLabel || r.ToNode == AnyLabel {
		return true
	}
	return r.FromNode == r.ToNode
}

// AnyLabel is the polymorphic wildcard endpoint label (spec GLOSSARY).
const AnyLabel = "$any"

// VariantKey builds the composite catalog key "TYPE::FROM::TO" used to
// disambiguate polymorphic relationship variants (spec §9).
func VariantKey(relType, from, to string) string {
	return fmt.Sprintf("%s::%s::%s", relType, from, to)
}

// GraphSchema is the read-only catalog consumed by the pipeline. It is
// safe for concurrent read-only use across independent compilations
// (spec §5).
type GraphSchema struct {
	Nodes []*NodeSchema          `yaml:"nodes"`
	Rels  []*RelationshipSchema  `yaml:"relationships"`

	nodeIndex map[string]*NodeSchema
	// relIndex is keyed by VariantKey(type, from, to) for concrete
	// variants only; lookups by bare type name go through relVariants.
	relIndex    map[string]*RelationshipSchema
	relVariants map[string][]*RelationshipSchema
}

// Errors returned by catalog lookups. These are the raw lookup errors;
// analyzer passes wrap them into analyzer.Error with a Pass tag.
var (
	ErrNodeLabelNotFound         = fmt.Errorf("node label not found")
	ErrRelationshipTypeNotFound  = fmt.Errorf("relationship type not found")
)

// Build indexes a freshly-decoded GraphSchema for lookup. Must be called
// once after decoding (LoadGraphSchema calls it automatically).
func (g *GraphSchema) Build() {
	g.nodeIndex = make(map[string]*NodeSchema, len(g.Nodes))
	for _, n := range g.Nodes {
		g.nodeIndex[n.Label] = n
	}

	g.relIndex = make(map[string]*RelationshipSchema)
	g.relVariants = make(map[string][]*RelationshipSchema)
	for _, r := range g.Rels {
		g.relVariants[r.Type] = append(g.relVariants[r.Type], r)
		g.relIndex[VariantKey(r.Type, r.FromNode, r.ToNode)] = r
	}
}

// GetNodeSchema looks up a node label.
func (g *GraphSchema) GetNodeSchema(label string) (*NodeSchema, error) {
	if n, ok := g.nodeIndex[label]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNodeLabelNotFound, label)
}

// AllNodeSchemas returns every registered node schema.
func (g *GraphSchema) AllNodeSchemas() []*NodeSchema { return g.Nodes }

// AllRelSchemas returns every registered relationship schema (all variants).
func (g *GraphSchema) AllRelSchemas() []*RelationshipSchema { return g.Rels }

// GetRelSchema looks up a relationship type without endpoint disambiguation.
// If the type has exactly one variant, it is returned; if it has several
// polymorphic variants, the first registered one is returned (callers that
// care about a specific variant should use GetRelSchemaWithNodes).
func (g *GraphSchema) GetRelSchema(relType string) (*RelationshipSchema, error) {
	variants := g.relVariants[relType]
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrRelationshipTypeNotFound, relType)
	}
	return variants[0], nil
}

// Variants returns every polymorphic variant registered for relType.
func (g *GraphSchema) Variants(relType string) []*RelationshipSchema {
	return g.relVariants[relType]
}

// GetRelSchemaWithNodes resolves a relationship type using known endpoint
// labels, following the composite-key disambiguation rule of spec §9: an
// exact (from, to) match wins; failing that, a variant with one side equal
// to AnyLabel ("$any") serves as catch-all.
func (g *GraphSchema) GetRelSchemaWithNodes(relType string, from, to string) (*RelationshipSchema, error) {
	variants := g.relVariants[relType]
	if len(variants) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrRelationshipTypeNotFound, relType)
	}
	if len(variants) == 1 {
		return variants[0], nil
	}

	if from != "" && to != "" {
		if exact, ok := g.relIndex[VariantKey(relType, from, to)]; ok {
			return exact, nil
		}
	}
	// $any catch-all: match whichever side is known against the
	// wildcard-bearing variant.
	for _, v := range variants {
		fromOK := from == "" || v.FromNode == from || v.FromNode == AnyLabel
		toOK := to == "" || v.ToNode == to || v.ToNode == AnyLabel
		if fromOK && toOK {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (from=%q to=%q)", ErrRelationshipTypeNotFound, relType, from, to)
}

// ExpandGenericRelationshipType returns every concrete variant a
// possibly-polymorphic relType could resolve to given optional known
// endpoints; used by bidirectional-union/traversal planning to decide
// whether a pattern needs a union over several physical tables.
func (g *GraphSchema) ExpandGenericRelationshipType(relType string, from, to string) []*RelationshipSchema {
	variants := g.relVariants[relType]
	if len(variants) <= 1 {
		return variants
	}
	var out []*RelationshipSchema
	for _, v := range variants {
		fromOK := from == "" || v.FromNode == from || v.FromNode == AnyLabel
		toOK := to == "" || v.ToNode == to || v.ToNode == AnyLabel
		if fromOK && toOK {
			out = append(out, v)
		}
	}
	return out
}

// IsDenormalizedNode reports whether label's node is embedded in an edge
// table rather than owning its own table.
func (g *GraphSchema) IsDenormalizedNode(label string) bool {
	n, err := g.GetNodeSchema(label)
	if err != nil {
		return false
	}
	return n.IsDenormalized
}

// LoadGraphSchema decodes a YAML catalog document. This is a convenience
// loader for tests and the explain debug binary; the full lifecycle of
// catalog persistence (migrations, hot reload) is an external collaborator
// per spec §1 and is not implemented here.
func LoadGraphSchema(r io.Reader) (*GraphSchema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var schema GraphSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing graph schema yaml: %w", err)
	}
	schema.Build()
	return &schema, nil
}

// String renders a short human-readable summary, used by the explain
// package and in error messages.
func (g *GraphSchema) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GraphSchema{%d nodes, %d relationships}", len(g.Nodes), len(g.Rels))
	return b.String()
}
