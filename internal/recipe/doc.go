// Package recipe owns the recipe language.
//
// Ownership boundary:
// - recipe argument parsing (key=value lists)
// - recipe file decoding and validation
// - !arg! and %dir% placeholder substitution
package recipe
