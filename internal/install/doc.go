// Package install owns the component install orchestrator.
//
// Ownership boundary:
// - obtaining components from the component factory
// - skip and force handling per component
// - driving the stage planner and chain runner for every eligible component
// - the per-component report and its aggregate status
package install
