// Command graphplan-explain is a diagnostic binary: given a YAML graph
// schema fixture and a small hand-built logical plan, it runs all three
// analyzer phases and prints the resulting plan tree. It exists to make
// the pipeline's behavior inspectable without a parser front end, which is
// out of this module's scope (SPEC_FULL §9 ADDED).
package main

import (
	"flag"
	"fmt"
	"os"

	graphplan "github.com/brahmand-io/graphplan"
	"github.com/brahmand-io/graphplan/catalog"
	"github.com/brahmand-io/graphplan/explain"
	"github.com/brahmand-io/graphplan/logicalexpr"
	"github.com/brahmand-io/graphplan/logicalplan"
	"github.com/brahmand-io/graphplan/planctx"
	"github.com/sirupsen/logrus"
)

func main() {
	schemaPath := flag.String("schema", "", "path to a YAML graph schema fixture")
	flag.Parse()

	if *schemaPath == "" {
		fmt.Fprintln(os.Stderr, "usage: graphplan-explain -schema schema.yaml")
		os.Exit(2)
	}

	f, err := os.Open(*schemaPath)
	if err != nil {
		logrus.WithError(err).Fatal("opening schema file")
	}
	defer f.Close()

	schema, err := catalog.LoadGraphSchema(f)
	if err != nil {
		logrus.WithError(err).Fatal("loading graph schema")
	}

	ctx := planctx.New()
	plan, alias := sampleMatchReturn(ctx, schema)
	properties := func(label string) []string {
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

	cfg := graphplan.DefaultPipelineConfig()
	plan, err = graphplan.InitialAnalyze(ctx, schema, plan, cfg, properties)
	if err != nil {
		logrus.WithError(err).Fatal("initial analyze")
	}
	plan, err = graphplan.IntermediateAnalyze(ctx, schema, plan)
	if err != nil {
		logrus.WithError(err).Fatal("intermediate analyze")
	}
	plan, err = graphplan.FinalAnalyze(ctx, plan)
	if err != nil {
		logrus.WithError(err).Fatal("final analyze")
	}

	fmt.Printf("-- plan for alias %q --\n", alias)
	explain.Print(os.Stdout, plan)
}

// sampleMatchReturn builds a minimal "MATCH (n:Label) RETURN n" plan by
// hand, registering n's alias in ctx, since this binary has no parser to
// do it for it.
func sampleMatchReturn(ctx *planctx.PlanCtx, schema *catalog.GraphSchema) (logicalplan.Node, string) {
	if len(schema.AllNodeSchemas()) == 0 {
		logrus.Fatal("schema fixture has no node labels to sample")
	}
	label := schema.AllNodeSchemas()[0].Label
	alias := "n"

	table := ctx.GetOrCreateTableCtx(alias)
	table.AddLabel(label)
	table.IsExplicit = true

	node := &logicalplan.GraphNode{Input: logicalplan.Empty{}, Alias: alias}
	projection := &logicalplan.Projection{
		Input: node,
		Items: []logicalplan.ProjectionItem{{Expression: logicalexpr.TableAlias{Alias: alias}}},
	}
	return projection, alias
}
