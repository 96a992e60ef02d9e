// Package filesystem provides on-disk implementations of driven port interfaces.
//
//   - FileCache: parsed uploads as {id}.json, each guarded by an {id}.lock advisory lock
//   - ArtifactStore: generated output and debug files under a root directory
package filesystem
