// Package tokenizers holds the Tokenizer implementations used to size chunks.
//
//   - whitespace: words with their leading whitespace, no external data
//   - tiktoken: BPE token counts matching OpenAI models
package tokenizers
