package analyzer

import (
	"fmt"

	goerrors "gopkg.in/src-d/go-errors.v1"
)

// PassName identifies which C5/C6/C7/C8 pass an error originated in,
// mirroring the original analyzer's Pass enum (errors.rs) so a caller can
// branch on "which phase failed" without string-matching a message.
type PassName string

const (
	PassSchemaInference          PassName = "schema_inference"
	PassTypeInference             PassName = "type_inference"
	PassVLPTransitivityCheck       PassName = "vlp_transitivity_check"
	PassCTESchemaResolver          PassName = "cte_schema_resolver"
	PassProjectedColumnsResolver   PassName = "projected_columns_resolver"
	PassQueryValidation            PassName = "query_validation"
	PassFilterTagging              PassName = "filter_tagging"
	PassProjectionTagging          PassName = "projection_tagging"
	PassGroupByBuilding            PassName = "group_by_building"
	PassVariableLengthPathLowering PassName = "variable_length_path_lowering"
	PassGraphTraversalPlanning     PassName = "graph_traversal_planning"
	PassDuplicateScansRemoving     PassName = "duplicate_scans_removing"
	PassBidirectionalUnion         PassName = "bidirectional_union"
	PassVariableResolver           PassName = "variable_resolver"
	PassCTEReferencePopulator      PassName = "cte_reference_populator"
	PassGraphJoinInference         PassName = "graph_join_inference"
	PassCTEColumnResolver          PassName = "cte_column_resolver"
	PassUnwindTupleEnricher        PassName = "unwind_tuple_enricher"
	PassPropertyRequirements       PassName = "property_requirements"
	PassFilterPushdown             PassName = "filter_pushdown"
	PassCartesianJoinExtraction    PassName = "cartesian_join_extraction"
	PassTrivialWithElimination     PassName = "trivial_with_elimination"
	PassCollectUnwindElimination   PassName = "collect_unwind_elimination"
	PassPlanSanitization           PassName = "plan_sanitization"
	PassUnwindPropertyRewrite      PassName = "unwind_property_rewrite"
)

// Error-kind sentinels, grounded in the closed taxonomy of the original
// AnalyzerError enum. Each is built with go-errors.v1's NewKind so callers
// can match with kind.Is(err), the same idiom the pack's old-API
// go-mysql-server source uses throughout sql/analyzer/rules.go.
var (
	KindUnknownLabel         = goerrors.NewKind("unknown node label %q")
	KindUnknownRelType       = goerrors.NewKind("unknown relationship type %q")
	KindPropertyNotFound     = goerrors.NewKind("property %q not found on %s %q")
	KindOrphanAlias          = goerrors.NewKind("alias %q is not bound by any pattern or WITH clause")
	KindAmbiguousLabel       = goerrors.NewKind("alias %q has no single resolvable label")
	KindNonTransitiveVLP     = goerrors.NewKind("relationship type %q cannot be traversed as a variable-length path")
	KindInvalidAggregate     = goerrors.NewKind("aggregate function used outside of a valid position: %s")
	KindCTENotFound          = goerrors.NewKind("CTE %q is not registered")
	KindCTEColumnNotFound    = goerrors.NewKind("CTE %q has no exported column for %q")
	KindUnsupportedPlanShape = goerrors.NewKind("unsupported plan shape encountered by pass %s: %T")
)

// Error wraps a pass-level failure with the PassName that produced it,
// the public error surface returned by RunBatch and by the pipeline entry
// points (spec §7).
type Error struct {
	Pass  string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analyzer: pass %q: %v", e.Pass, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
