// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - SettingsStore: TOML-based settings layered with .env and environment
//   - PromptStore: user-editable prompt templates
//   - ConversationStore: JSON conversation turns, one file per conversation
package file
