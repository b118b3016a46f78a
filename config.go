// Package graphplan is the top-level entry point: it wires the C5/C6/C7/C8
// pass batches into the three public phases (InitialAnalyze,
// IntermediateAnalyze, FinalAnalyze) an external caller drives in sequence
// (spec §2, §4, grounded on the original analyzer/mod.rs wiring).
package graphplan

// PipelineConfig holds the tunables a caller can set before running the
// pipeline (SPEC_FULL §2 ADDED).
type PipelineConfig struct {
	// MaxVariableLengthHops is a hop limit for variable-length patterns.
	// Defaults to 15. No pass reads it: an unbounded pattern (`*..`) is not
	// capped to it, and a pattern exceeding it is not rejected.
	MaxVariableLengthHops int
}

// DefaultPipelineConfig returns the configuration the pipeline uses when
// the caller passes a zero-value PipelineConfig.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{MaxVariableLengthHops: 15}
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.MaxVariableLengthHops <= 0 {
		c.MaxVariableLengthHops = 15
	}
	return c
}
