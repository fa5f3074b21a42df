// Package components builds pipeline components from recipe specs.
//
// Ownership boundary:
// - command-driven stage implementations (setup, fetch, build, install)
// - per-instance stage info file (hekit.info)
// - component factory used by the install orchestrator
// - listing of component instances under a repo location
package components
