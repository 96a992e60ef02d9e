// Package file provides file-based implementations of driven port interfaces.
// These adapters read user-editable files from the local filesystem.
//
// Adapters:
//   - LoadSettings / WriteSettings: TOML, YAML or .env settings with environment overrides
//   - PromptStore: user-editable prompt sections in the instructions directory
//   - TemplateStore: output template examples with embedded fallbacks
package file
