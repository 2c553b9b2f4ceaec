// Package domain contains the core business types for the kohi pipeline.
// These types have no dependencies on infrastructure - they represent
// pure business concepts: raw marketplace records, normalised products,
// retrieval chunks, and query results.
package domain
