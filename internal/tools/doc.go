// Package tools provides reusable runtime helpers shared by stage implementations.
//
// Ownership boundary:
// - command execution helpers
//
// - exit code normalization for failed commands
package tools
