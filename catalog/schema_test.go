package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brahmand-io/graphplan/catalog"
)

const fixtureYAML = `
nodes:
  - label: User
    table: users
    node_id:
      column: id
    properties:
      name: user_name
      age: age
  - label: Post
    table: posts
    node_id:
      column: id
    properties:
      title: title
relationships:
  - type: FOLLOWS
    table: follows
    from_node: User
    to_node: User
    from_id_column: follower_id
    to_id_column: followee_id
    properties:
      since: created_at
  - type: POSTED
    table: posts
    from_node: User
    to_node: Post
    from_id_column: author_id
    to_id_column: id
    properties: {}
  - type: LIKES
    table: likes_user_post
    from_node: User
    to_node: Post
    from_id_column: user_id
    to_id_column: post_id
    properties: {}
  - type: LIKES
    table: likes_user_comment
    from_node: User
    to_node: "$any"
    from_id_column: user_id
    to_id_column: target_id
    properties: {}
`

func loadFixture(t *testing.T) *catalog.GraphSchema {
	t.Helper()
	schema, err := catalog.LoadGraphSchema(strings.NewReader(fixtureYAML))
	require.NoError(t, err)
	return schema
}

func TestGetNodeSchema(t *testing.T) {
	schema := loadFixture(t)

	n, err := schema.GetNodeSchema("User")
	require.NoError(t, err)
	require.Equal(t, "users", n.TableName)

	_, err = schema.GetNodeSchema("Missing")
	require.ErrorIs(t, err, catalog.ErrNodeLabelNotFound)
}

func TestGetRelSchemaWithNodes_ExactMatchWins(t *testing.T) {
	schema := loadFixture(t)

	rel, err := schema.GetRelSchemaWithNodes("LIKES", "User", "Post")
	require.NoError(t, err)
	require.Equal(t, "likes_user_post", rel.TableName)
}

func TestGetRelSchemaWithNodes_AnyCatchAll(t *testing.T) {
	schema := loadFixture(t)

	rel, err := schema.GetRelSchemaWithNodes("LIKES", "User", "Comment")
	require.NoError(t, err)
	require.Equal(t, "likes_user_comment", rel.TableName)
}

func TestIsTransitive(t *testing.T) {
	schema := loadFixture(t)

	follows, err := schema.GetRelSchema("FOLLOWS")
	require.NoError(t, err)
	require.True(t, follows.IsTransitive(), "User->User self-loop must be transitive")

	posted, err := schema.GetRelSchema("POSTED")
	require.NoError(t, err)
	require.False(t, posted.IsTransitive(), "User->Post cannot chain with itself")
}

func TestExpandGenericRelationshipType(t *testing.T) {
	schema := loadFixture(t)

	variants := schema.ExpandGenericRelationshipType("LIKES", "User", "")
	require.Len(t, variants, 2)
}
