// Package services contains the core pipeline logic, independent of
// infrastructure.
//
// Services implement the driving ports and depend only on driven port
// interfaces, never on concrete adapters:
//
//   - IndexService: embeds extracted chunks and rebuilds the vector
//     collection by replacement.
//   - RetrieverService: hybrid retrieval combining semantic similarity
//     with direct substring search over the raw product set.
//   - AnswerService: assembles a grounding context from retrieved chunks
//     and delegates answer generation to the language model.
//   - FlattenService: restructures raw marketplace records into flat
//     dictionaries through the language model, order-stable.
//
// Optional driven services (embedding, vector store, LLM) may be nil;
// each service degrades gracefully and reports the corresponding domain
// error only when the missing capability is actually required.
package services
