package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Default settings values.
const (
	DefaultInputDir        = "./input"
	DefaultOutputDir       = "./output"
	DefaultTemplatesDir    = "./templates"
	DefaultInstructionsDir = "./instructions"
	DefaultDebugDir        = "./debug"
	DefaultCacheDir        = "./temp_cache"
	DefaultDataDir         = "./.cartographer"
	DefaultCacheTTL        = time.Hour
	DefaultRequestTimeout  = 10 * time.Minute
)

// Settings is the explicit runtime configuration passed to services at construction.
// There is no process-wide copy; callers build one and hand it down.
type Settings struct {
	// AnthropicAPIKey authenticates LLM calls. Required for non-debug extraction.
	AnthropicAPIKey string

	// Model is the Anthropic model name.
	Model string

	// InputDir holds one folder per client.
	InputDir string

	// OutputDir receives client_rules.js and guidelines.md per subtype.
	OutputDir string

	// TemplatesDir holds the output template examples.
	TemplatesDir string

	// InstructionsDir holds user-editable prompt sections.
	InstructionsDir string

	// DebugDir receives prompts and analysis reports in debug mode.
	DebugDir string

	// DebugMode writes prompts instead of calling the model.
	DebugMode bool

	// BatchProcessing sends all subtypes in one call.
	BatchProcessing bool

	// CacheDir is where uploaded file parses are cached.
	CacheDir string

	// CacheTTL is how long cache entries live.
	CacheTTL time.Duration

	// DataDir holds the extraction history database.
	DataDir string

	// RequestsPerMinute paces LLM calls. Zero disables pacing.
	RequestsPerMinute float64

	// RequestTimeout bounds a single LLM call.
	RequestTimeout time.Duration

	// ExcludePatterns are glob patterns of files to skip when scanning.
	ExcludePatterns []string
}

// DefaultSettings returns settings with every default applied and no API key.
func DefaultSettings() Settings {
	return Settings{
		Model:           DefaultModel,
		InputDir:        DefaultInputDir,
		OutputDir:       DefaultOutputDir,
		TemplatesDir:    DefaultTemplatesDir,
		InstructionsDir: DefaultInstructionsDir,
		DebugDir:        DefaultDebugDir,
		CacheDir:        DefaultCacheDir,
		CacheTTL:        DefaultCacheTTL,
		DataDir:         DefaultDataDir,
		RequestTimeout:  DefaultRequestTimeout,
	}
}

// Normalise trims the API key and fills empty fields with defaults.
func (s Settings) Normalise() Settings {
	d := DefaultSettings()
	s.AnthropicAPIKey = strings.TrimSpace(s.AnthropicAPIKey)
	if s.Model == "" {
		s.Model = d.Model
	}
	if s.InputDir == "" {
		s.InputDir = d.InputDir
	}
	if s.OutputDir == "" {
		s.OutputDir = d.OutputDir
	}
	if s.TemplatesDir == "" {
		s.TemplatesDir = d.TemplatesDir
	}
	if s.InstructionsDir == "" {
		s.InstructionsDir = d.InstructionsDir
	}
	if s.DebugDir == "" {
		s.DebugDir = d.DebugDir
	}
	if s.CacheDir == "" {
		s.CacheDir = d.CacheDir
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = d.CacheTTL
	}
	if s.DataDir == "" {
		s.DataDir = d.DataDir
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = d.RequestTimeout
	}
	return s
}

// Validate checks the settings needed for a live LLM call.
// The API key is never defaulted.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.AnthropicAPIKey) == "" {
		return &ConfigurationError{Field: "ANTHROPIC_API_KEY", Reason: "cannot be empty"}
	}
	if s.Model == "" {
		return &ConfigurationError{Field: "MODEL", Reason: "cannot be empty"}
	}
	if s.RequestsPerMinute < 0 {
		return &ConfigurationError{Field: "REQUESTS_PER_MINUTE", Reason: "must not be negative"}
	}
	return nil
}

// MaskedAPIKey returns the API key with all but the last four characters hidden.
func (s Settings) MaskedAPIKey() string {
	key := strings.TrimSpace(s.AnthropicAPIKey)
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

// ClientDir returns the input folder for a client.
func (s Settings) ClientDir(client string) string {
	return filepath.Join(s.InputDir, client)
}
