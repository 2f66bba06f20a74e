// Package index groups the driven.Index adapters.
//
//   - memory: in-process lexical index for tests and dry runs
//   - sqlite: local FTS5 index, the default backend
//   - pgvector: Postgres nearest-neighbour index, embeds text itself
//   - resilient: retry and rate-limit decorator for any backend
//
// Every backend returns scores in [0,1] with higher meaning more relevant.
package index
