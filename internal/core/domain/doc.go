// Package domain defines the core business entities for Cartographer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A parsed copy document with its detected language
//   - DocumentSet: All documents of one client subtype
//   - DocumentPair: A source/target translation pair derived from a set
//   - ExtractionResult: Generated client rules and guidelines for a subtype
//   - Settings: Explicit runtime configuration
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
