// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The extraction pipeline runs scan -> prompt -> model -> parse:
// ScanService builds document sets from client folders, PromptBuilder
// renders them into one prompt, ExtractionService sends it and hands the
// answer to the response parser.
//
// Services are pure Go with no CGO; settings are passed in explicitly.
package services
