// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Index: Chunk upsert and ranked lookup (memory, SQLite FTS5, pgvector)
//   - Tokenizer: Token boundaries for the segmenter (tiktoken, whitespace)
//   - PromptStore: Classification and answer templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CompletionService: Without it, every question is classified with the
//     fallback category and answers are never composed.
//   - EmbeddingService: Only needed by vector index backends.
//   - Normaliser: Without one, raw files are ingested as plain text.
//   - FilingCatalog: Without it, ingested filings are not listed.
//   - ConversationStore: Without it, conversations end with the process.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
