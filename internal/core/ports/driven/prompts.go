package driven

// PromptStore provides access to user-editable prompt sections.
// Implementations may load sections from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt section for the given name.
	// If the section is not found, implementations should return a sensible default
	// or an error, depending on whether the section is required.
	Load(name string) (string, error)

	// Reload clears any cached sections, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt section names.
const (
	// PromptMission opens every extraction prompt and describes both artifacts.
	PromptMission = "mission"

	// PromptContentFocus lists what to ignore and what counts as copy.
	PromptContentFocus = "content_focus"
)

// TemplateStore provides the output template examples shown to the model.
type TemplateStore interface {
	// Load returns the template with the given file name.
	// Returns domain.ErrNotFound when neither the user directory
	// nor the built-in defaults have it.
	Load(name string) (string, error)

	// Exists reports whether the user template directory has the file.
	Exists(name string) bool
}

// Template file names.
const (
	TemplateClientRules          = "client_rules_example.js"
	TemplateClientRulesCondensed = "client_rules_example_condensed.js"
	TemplateGuidelines           = "guidelines_example.md"
	TemplateGuidelinesCondensed  = "guidelines_example_condensed.md"
)
