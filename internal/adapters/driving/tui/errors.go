package tui

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// ErrMissingHistory is returned when the conversation history is not provided.
var ErrMissingHistory = errors.New("tui: conversation history is required")

// ErrInvalidPorts is returned when no ports are given at all.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
