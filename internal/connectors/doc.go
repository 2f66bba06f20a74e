// Package connectors provides sources that feed filings into ingestion.
// Each connector knows how to discover filing documents in one place
// (the local filesystem today) and report when they change.
package connectors
