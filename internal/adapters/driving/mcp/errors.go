// Package mcp provides an MCP (Model Context Protocol) server adapter for Cartographer.
// It lets AI assistants list clients, analyse files, estimate costs and run extractions.
package mcp

import "errors"

var (
	// ErrMissingScanService is returned when the scan service is not provided.
	ErrMissingScanService = errors.New("mcp: scan service is required")

	// ErrMissingExtractionService is returned when the extraction service is not provided.
	ErrMissingExtractionService = errors.New("mcp: extraction service is required")
)
