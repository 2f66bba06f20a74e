// Package domain defines the core business entities for filings.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Filing: A regulatory filing supplied by the acquisition step
//   - Chunk: A section-tagged, retrievable span of a filing
//   - ClassifiedQuery: The routing decision for one incoming question
//   - RetrievalPlan: The category-specific retrieval configuration
//   - EvidenceSet: The deduplicated, ranked evidence for one question
//   - ConversationTurn: One remembered exchange of a conversation
//   - Settings: Validated runtime configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
