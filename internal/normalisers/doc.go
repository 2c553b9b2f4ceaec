// Package normalisers maps heterogeneous per-supplier product records
// into the canonical product shape.
//
// Supplier feeds disagree on key names (name vs 品項), nesting depth and
// price units. Instead of one mapping function per supplier, a single
// data-driven normaliser resolves each target field through a ranked
// alias table with a three-tier lookup policy: exact key match, then
// case-insensitive substring match, then fuzzy similarity with a floor.
//
// Country names, price units and domain term variants are normalised
// through immutable tables built once at package init.
package normalisers
