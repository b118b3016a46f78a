package graphplan_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	graphplan "github.com/brahmand-io/graphplan"
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/explain"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
)

// scenarioYAML backs every spec §8 end-to-end scenario test with one
// shared catalog: User/Post node tables and the AUTHORED/FOLLOWS
// relationships the six scenarios read. Every property is deliberately
// left at its identity mapping except Post.title, so a scenario's
// required fragment ("a.name", "post_title AS title", ...) can be
// checked as a literal substring of the rendered plan.
const scenarioYAML = `
nodes:
  - label: User
    table: users
    node_id:
      column: id
    properties: {}
  - label: Post
    table: posts
    node_id:
      column: id
    properties:
      title: post_title
relationships:
  - type: AUTHORED
    table: authored
    from_node: User
    to_node: Post
    from_id_column: author_id
    to_id_column: post_id
    properties: {}
  - type: FOLLOWS
    table: follows
    from_node: User
    to_node: User
    from_id_column: follower_id
    to_id_column: followee_id
    properties: {}
`

func loadScenarioSchema(t *testing.T) *catalog.GraphSchema {
	t.Helper()
	schema, err := catalog.LoadGraphSchema(strings.NewReader(scenarioYAML))
	require.NoError(t, err)
	return schema
}

func scenarioProperties(schema *catalog.GraphSchema) func(string) []string {
	return func(label string) []string {
		n, err := schema.GetNodeSchema(label)
		if err != nil {
			return nil
		}
		var props []string
		for p := range n.PropertyMap {
			props = append(props, p)
		}
		return props
	}
}

// runScenario drives a hand-built plan through every analyzer phase
// exactly as the pipeline entry points do, then renders it to pseudo-SQL.
func runScenario(t *testing.T, ctx *planctx.PlanCtx, schema *catalog.GraphSchema, plan logicalplan.Node) string {
	t.Helper()
	cfg := graphplan.DefaultPipelineConfig()

	plan, err := graphplan.InitialAnalyze(ctx, schema, plan, cfg, scenarioProperties(schema))
	require.NoError(t, err)

	plan, err = graphplan.IntermediateAnalyze(ctx, schema, plan)
	require.NoError(t, err)

	plan, err = graphplan.FinalAnalyze(ctx, plan)
	require.NoError(t, err)

	return explain.RenderSQL(plan)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalize collapses whitespace so fragment assertions can be
// whitespace-insensitive, per spec §8's scenario table.
func normalize(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

func requireFragment(t *testing.T, rendered, fragment string) {
	t.Helper()
	require.Contains(t, normalize(rendered), normalize(fragment))
}

func intPtr(n int) *int { return &n }

// Scenario 1: MATCH (u:User)-[]->(p:Post) RETURN p.title
func TestScenarioSimpleMatchAnonymousEdge(t *testing.T) {
	schema := loadScenarioSchema(t)
	ctx := planctx.New()

	u := ctx.GetOrCreateTableCtx("u")
	u.AddLabel("User")
	u.IsExplicit = true

	p := ctx.GetOrCreateTableCtx("p")
	p.AddLabel("Post")
	p.IsExplicit = true

	r := ctx.GetOrCreateTableCtx("r")
	r.AddLabel("AUTHORED")
	r.IsRelation = true
	r.FromNodeLabel = "User"
	r.ToNodeLabel = "Post"

	uNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "u"}, Alias: "u"}
	pNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "posts", Alias: "p"}, Alias: "p"}
	rel := &logicalplan.GraphRel{
		Left: uNode, Center: logicalplan.Empty{}, Right: pNode,
		Alias: "r", Direction: logicalplan.Outgoing,
		LeftConnection: "u", RightConnection: "p", IsRelAnchor: true,
	}

	proj := &logicalplan.Projection{
		Input: rel,
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.PropertyAccess{Alias: "p", Property: "title"}, ColAlias: "title"},
		},
	}

	rendered := runScenario(t, ctx, schema, proj)
	requireFragment(t, rendered, "JOIN")
	requireFragment(t, rendered, "post_title AS title")
	require.NotContains(t, rendered, "WITH RECURSIVE")
}

// Scenario 2: MATCH (a:User)-[:FOLLOWS*1..2]->(b:User)
// WHERE a.name='Alice' AND b.name='David' RETURN b
func TestScenarioVariableLengthPathWithEndpointFilters(t *testing.T) {
	schema := loadScenarioSchema(t)
	ctx := planctx.New()

	a := ctx.GetOrCreateTableCtx("a")
	a.AddLabel("User")
	a.IsExplicit = true

	b := ctx.GetOrCreateTableCtx("b")
	b.AddLabel("User")
	b.IsExplicit = true

	f := ctx.GetOrCreateTableCtx("f")
	f.AddLabel("FOLLOWS")
	f.IsRelation = true

	aNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "a"}, Alias: "a"}
	bNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "b"}, Alias: "b"}
	rel := &logicalplan.GraphRel{
		Left: aNode, Center: logicalplan.Empty{}, Right: bNode,
		Alias: "f", Direction: logicalplan.Outgoing,
		LeftConnection: "a", RightConnection: "b", IsRelAnchor: true,
		VariableLength: &logicalplan.VariableLengthSpec{MinHops: intPtr(1), MaxHops: intPtr(2)},
	}

	filter := &logicalplan.Filter{
		Input: rel,
		Predicate: logicalexpr.BinaryOp{
			Op:   "AND",
			Left: logicalexpr.BinaryOp{Op: "=", Left: logicalexpr.PropertyAccess{Alias: "a", Property: "name"}, Right: logicalexpr.Literal{Value: "Alice"}},
			Right: logicalexpr.BinaryOp{Op: "=", Left: logicalexpr.PropertyAccess{Alias: "b", Property: "name"}, Right: logicalexpr.Literal{Value: "David"}},
		},
	}

	proj := &logicalplan.Projection{
		Input: filter,
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.TableAlias{Alias: "b"}},
		},
	}

	rendered := runScenario(t, ctx, schema, proj)
	requireFragment(t, rendered, "a.name = 'Alice'")
	requireFragment(t, rendered, "b.name = 'David'")
	requireFragment(t, rendered, "hop_count < 2")
	requireFragment(t, rendered, "hop_count > 0")
	requireFragment(t, rendered, "WITH RECURSIVE")
}

// Scenario 3: MATCH p=shortestPath((a:User)-[:FOLLOWS*]->(b:User))
// WHERE a.user_id=1 AND b.user_id=4 RETURN p
func TestScenarioShortestPath(t *testing.T) {
	schema := loadScenarioSchema(t)
	ctx := planctx.New()

	a := ctx.GetOrCreateTableCtx("a")
	a.AddLabel("User")
	a.IsExplicit = true

	b := ctx.GetOrCreateTableCtx("b")
	b.AddLabel("User")
	b.IsExplicit = true

	f := ctx.GetOrCreateTableCtx("f")
	f.AddLabel("FOLLOWS")
	f.IsRelation = true

	p := ctx.GetOrCreateTableCtx("p")
	p.IsExplicit = true
	p.PathVariableRole = true

	aNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "a"}, Alias: "a"}
	bNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "b"}, Alias: "b"}
	rel := &logicalplan.GraphRel{
		Left: aNode, Center: logicalplan.Empty{}, Right: bNode,
		Alias: "f", Direction: logicalplan.Outgoing,
		LeftConnection: "a", RightConnection: "b", IsRelAnchor: true,
		PathVariable:     "p",
		VariableLength:   &logicalplan.VariableLengthSpec{},
		ShortestPathMode: logicalplan.ShortestPath,
	}

	filter := &logicalplan.Filter{
		Input: rel,
		Predicate: logicalexpr.BinaryOp{
			Op:   "AND",
			Left: logicalexpr.BinaryOp{Op: "=", Left: logicalexpr.PropertyAccess{Alias: "a", Property: "user_id"}, Right: logicalexpr.Literal{Value: 1}},
			Right: logicalexpr.BinaryOp{Op: "=", Left: logicalexpr.PropertyAccess{Alias: "b", Property: "user_id"}, Right: logicalexpr.Literal{Value: 4}},
		},
	}

	rendered := runScenario(t, ctx, schema, filter)
	requireFragment(t, rendered, "WITH RECURSIVE")
	requireFragment(t, rendered, "ORDER BY hop_count ASC LIMIT 1")
}

// Scenario 4: MATCH (u:User)-[:FOLLOWS]->(f) RETURN u.name, count(f)
func TestScenarioMixedAggregateProjection(t *testing.T) {
	schema := loadScenarioSchema(t)
	ctx := planctx.New()

	u := ctx.GetOrCreateTableCtx("u")
	u.AddLabel("User")
	u.IsExplicit = true

	// f carries no explicit label in the query; the upstream pattern
	// builder resolves it from the FOLLOWS endpoint before this library
	// ever sees the plan (spec §4.2 step 1 only resolves a label already
	// registered on the alias, it never infers one from an adjacent
	// relationship).
	f := ctx.GetOrCreateTableCtx("f")
	f.AddLabel("User")

	rAlias := ctx.GetOrCreateTableCtx("follows")
	rAlias.AddLabel("FOLLOWS")
	rAlias.IsRelation = true

	uNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "u"}, Alias: "u"}
	fNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "f"}, Alias: "f"}
	rel := &logicalplan.GraphRel{
		Left: uNode, Center: logicalplan.Empty{}, Right: fNode,
		Alias: "follows", Direction: logicalplan.Outgoing,
		LeftConnection: "u", RightConnection: "f", IsRelAnchor: true,
	}

	proj := &logicalplan.Projection{
		Input: rel,
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.PropertyAccess{Alias: "u", Property: "name"}},
			{Expression: logicalexpr.AggregateFuncCall{Name: "count", Arg: logicalexpr.PropertyAccess{Alias: "f", Property: "user_id"}}},
		},
	}

	rendered := runScenario(t, ctx, schema, proj)
	requireFragment(t, rendered, "u.name")
	requireFragment(t, rendered, "count(f.user_id)")
	requireFragment(t, rendered, "GROUP BY u.name")
}

// Scenario 5: MATCH (a:User)-[:FOLLOWS]-(b:User) RETURN a,b
func TestScenarioUndirectedEdge(t *testing.T) {
	schema := loadScenarioSchema(t)
	ctx := planctx.New()

	a := ctx.GetOrCreateTableCtx("a")
	a.AddLabel("User")
	a.IsExplicit = true

	b := ctx.GetOrCreateTableCtx("b")
	b.AddLabel("User")
	b.IsExplicit = true

	f := ctx.GetOrCreateTableCtx("f")
	f.AddLabel("FOLLOWS")
	f.IsRelation = true

	aNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "a"}, Alias: "a"}
	bNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "b"}, Alias: "b"}
	rel := &logicalplan.GraphRel{
		Left: aNode, Center: logicalplan.Empty{}, Right: bNode,
		Alias: "f", Direction: logicalplan.Either,
		LeftConnection: "a", RightConnection: "b", IsRelAnchor: true,
	}

	proj := &logicalplan.Projection{
		Input: rel,
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.TableAlias{Alias: "a"}},
			{Expression: logicalexpr.TableAlias{Alias: "b"}},
		},
	}

	rendered := runScenario(t, ctx, schema, proj)
	requireFragment(t, rendered, "UNION ALL")
}

// Scenario 6: MATCH (u:User)-[:AUTHORED]->(p:Post)
// WITH collect(p.id) AS fids, p RETURN p.id, fids
func TestScenarioWithBoundary(t *testing.T) {
	schema := loadScenarioSchema(t)
	ctx := planctx.New()

	u := ctx.GetOrCreateTableCtx("u")
	u.AddLabel("User")
	u.IsExplicit = true

	p := ctx.GetOrCreateTableCtx("p")
	p.AddLabel("Post")
	p.IsExplicit = true

	r := ctx.GetOrCreateTableCtx("r")
	r.AddLabel("AUTHORED")
	r.IsRelation = true

	uNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "users", Alias: "u"}, Alias: "u"}
	pNode := &logicalplan.GraphNode{Input: &logicalplan.ViewScan{SourceTable: "posts", Alias: "p"}, Alias: "p"}
	rel := &logicalplan.GraphRel{
		Left: uNode, Center: logicalplan.Empty{}, Right: pNode,
		Alias: "r", Direction: logicalplan.Outgoing,
		LeftConnection: "u", RightConnection: "p", IsRelAnchor: true,
	}

	with := &logicalplan.WithClause{
		Input: rel,
		Items: []logicalplan.WithItem{
			{Expression: logicalexpr.AggregateFuncCall{Name: "collect", Arg: logicalexpr.PropertyAccess{Alias: "p", Property: "id"}}, ColAlias: "fids"},
			{Expression: logicalexpr.TableAlias{Alias: "p"}},
		},
	}

	proj := &logicalplan.Projection{
		Input: with,
		Items: []logicalplan.ProjectionItem{
			{Expression: logicalexpr.PropertyAccess{Alias: "p", Property: "id"}},
			{Expression: logicalexpr.TableAlias{Alias: "fids"}},
		},
	}

	rendered := runScenario(t, ctx, schema, proj)
	require.Regexp(t, regexp.MustCompile(`with_fids_p_cte_\d+`), rendered)
	requireFragment(t, rendered, "p1_p_id")
}
