package patternschema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/patternschema"
)

func TestResolveNodePropertyExplicitMapping(t *testing.T) {
	schema := &catalog.NodeSchema{
		PropertyMap: map[string]string{"name": "user_name"},
	}
	col, err := patternschema.ResolveNodeProperty(schema, patternschema.Strategy{Kind: patternschema.OwnTable}, "name")
	require.NoError(t, err)
	require.Equal(t, "user_name", col)
}

func TestResolveNodePropertyIdentityFallback(t *testing.T) {
	schema := &catalog.NodeSchema{PropertyMap: map[string]string{}}
	col, err := patternschema.ResolveNodeProperty(schema, patternschema.Strategy{Kind: patternschema.OwnTable}, "age")
	require.NoError(t, err)
	require.Equal(t, "age", col)
}

func TestResolveNodePropertyVirtualAlwaysFails(t *testing.T) {
	schema := &catalog.NodeSchema{PropertyMap: map[string]string{"name": "name"}}
	_, err := patternschema.ResolveNodeProperty(schema, patternschema.Strategy{Kind: patternschema.Virtual}, "name")
	require.Error(t, err)
}

func TestResolveNodePropertyDenormalizedRoleAware(t *testing.T) {
	schema := &catalog.NodeSchema{
		IsDenormalized: true,
		FromProperties: map[string]string{"name": "from_name"},
		ToProperties:   map[string]string{"name": "to_name"},
	}

	left, err := patternschema.ResolveNodeProperty(schema, patternschema.Strategy{Kind: patternschema.EmbeddedInEdge, Role: patternschema.RoleLeft}, "name")
	require.NoError(t, err)
	require.Equal(t, "from_name", left)

	right, err := patternschema.ResolveNodeProperty(schema, patternschema.Strategy{Kind: patternschema.EmbeddedInEdge, Role: patternschema.RoleRight}, "name")
	require.NoError(t, err)
	require.Equal(t, "to_name", right)
}

func TestResolveRelPropertyFallback(t *testing.T) {
	schema := &catalog.RelationshipSchema{PropertyMap: map[string]string{"since": "created_at"}}

	col, err := patternschema.ResolveRelProperty(schema, "since")
	require.NoError(t, err)
	require.Equal(t, "created_at", col)

	col, err = patternschema.ResolveRelProperty(schema, "weight")
	require.NoError(t, err)
	require.Equal(t, "weight", col)
}
