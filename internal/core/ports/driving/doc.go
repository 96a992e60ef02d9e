// Package driving defines the services the CLI and MCP server call into:
// scanning clients, analysing uploads, running extractions, managing the
// file cache and reading the history ledger.
//
// Implementations live in internal/core/services.
package driving
