// Package chunker turns product records into typed retrieval chunks.
//
// Each product yields at most one core_info chunk, a windowed sequence of
// description_segment chunks, one attribute_info chunk per attribute pair
// and one model_variant chunk per priced variant. Chunk identifiers are
// deterministic given identical input, so re-extraction is idempotent.
package chunker
