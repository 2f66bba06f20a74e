// Package mcp provides an MCP (Model Context Protocol) server adapter for filings.
// It lets AI assistants classify financial questions and pull filing evidence.
package mcp

import "errors"

var (
	// ErrMissingQueryService is returned when the query service is not provided.
	ErrMissingQueryService = errors.New("mcp: query service is required")

	// ErrMissingHistory is returned when the context manager is not provided.
	ErrMissingHistory = errors.New("mcp: context manager is required")
)
