// Package patternschema implements the pattern-schema context (spec C4):
// for each pattern alias, which physical table and columns realize it. This
// is the only mechanism analyzer passes use to resolve a property access,
// because a denormalized node's column depends on whether the alias plays
// the From or To role in its enclosing edge (spec §3.4, §9).
package patternschema

import (
	"fmt"

	"github.com/brahmand-io/graphplan/catalog"
)

// Role is the side of an edge a denormalized node alias plays.
type Role int

const (
	RoleNone Role = iota
	RoleLeft
	RoleRight
)

func (r Role) String() string {
	switch r {
	case RoleLeft:
		return "Left"
	case RoleRight:
		return "Right"
	default:
		return "None"
	}
}

// StrategyKind enumerates the three ways a node alias can be physically
// realized.
type StrategyKind int

const (
	// OwnTable: the alias reads from its own dedicated node table.
	OwnTable StrategyKind = iota
	// EmbeddedInEdge: the alias's properties live inside an edge table.
	EmbeddedInEdge
	// Virtual: the alias projects nothing (e.g. an anonymous node used only
	// for traversal, never referenced by RETURN/WHERE).
	Virtual
)

// Strategy is the resolved access strategy for one pattern alias.
type Strategy struct {
	Kind  StrategyKind
	Role  Role // only meaningful when Kind == EmbeddedInEdge
	Label string
}

// ErrPropertyNotFound mirrors spec §7's PropertyNotFound error kind at the
// catalog-resolution layer; the analyzer package wraps it with alias/pass
// context.
type ErrPropertyNotFound struct {
	EntityType string
	EntityName string
	Property   string
}

func (e *ErrPropertyNotFound) Error() string {
	return fmt.Sprintf("property %q not found on %s %q", e.Property, e.EntityType, e.EntityName)
}

// ResolveNodeProperty maps a Cypher node property to its physical column
// using the alias's resolved Strategy, following the resolution order of
// the original view resolver: explicit PropertyMap first, then role-aware
// from/to maps for denormalized nodes, finally an identity fallback (the
// property name doubles as the column name). Virtual aliases never
// resolve a property.
func ResolveNodeProperty(schema *catalog.NodeSchema, strategy Strategy, property string) (string, error) {
	if strategy.Kind == Virtual {
		return "", &ErrPropertyNotFound{EntityType: "node", EntityName: strategy.Label, Property: property}
	}

	if col, ok := schema.PropertyMap[property]; ok {
		return col, nil
	}

	if schema.IsDenormalized {
		switch strategy.Role {
		case RoleLeft:
			if schema.FromProperties != nil {
				if col, ok := schema.FromProperties[property]; ok {
					return col, nil
				}
			}
		case RoleRight:
			if schema.ToProperties != nil {
				if col, ok := schema.ToProperties[property]; ok {
					return col, nil
				}
			}
		default:
			if schema.FromProperties != nil {
				if col, ok := schema.FromProperties[property]; ok {
					return col, nil
				}
			}
			if schema.ToProperties != nil {
				if col, ok := schema.ToProperties[property]; ok {
					return col, nil
				}
			}
		}
	}

	// Identity fallback: wide tables need not enumerate every mapping.
	return property, nil
}

// ResolveRelProperty maps a Cypher relationship property to its physical
// column, with the same explicit-mapping + identity-fallback order (edge
// tables are never denormalized from the node's point of view: there is no
// role ambiguity for an edge's own properties).
func ResolveRelProperty(schema *catalog.RelationshipSchema, property string) (string, error) {
	if col, ok := schema.PropertyMap[property]; ok {
		return col, nil
	}
	return property, nil
}
