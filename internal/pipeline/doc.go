// Package pipeline owns the per-component stage pipeline.
//
// Ownership boundary:
// - stage names and their fixed order
// - component capability contract consumed by the orchestrator
// - stage planning (ordered, truncated, lazy stage sequences)
// - short-circuiting chain execution of stage operations
package pipeline
