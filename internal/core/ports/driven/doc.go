// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - NormaliserRegistry: Converts input files to plain text
//   - LanguageDetector: Statistical language identification
//   - Tokenizer: Token counting for budgets and cost estimates
//   - TemplateStore: Output template examples for the prompt
//   - ArtifactStore: Output and debug artifact persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMClient: Without it only debug-mode extraction is possible.
//   - PromptStore: Without it the built-in prompt sections are used.
//   - FileCache: Without it uploads cannot be cached.
//   - HistoryStore: Without it runs are not recorded.
//   - Metrics: Without it nothing is exported.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
