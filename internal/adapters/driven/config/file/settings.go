package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// DefaultConfigFile is read when no path is given and the file exists.
const DefaultConfigFile = "cartographer.toml"

// dotEnvFile is read after DefaultConfigFile is found missing.
const dotEnvFile = ".env"

// fileSettings is the on-disk and environment shape of domain.Settings.
// Priority: ENV > file > env-default.
type fileSettings struct {
	AnthropicAPIKey   string   `toml:"anthropic_api_key"   yaml:"anthropic_api_key"   env:"ANTHROPIC_API_KEY"`
	Model             string   `toml:"model"               yaml:"model"               env:"MODEL"               env-default:"claude-opus-4-5-20251101"`
	InputDir          string   `toml:"input_dir"           yaml:"input_dir"           env:"INPUT_DIR"           env-default:"./input"`
	OutputDir         string   `toml:"output_dir"          yaml:"output_dir"          env:"OUTPUT_DIR"          env-default:"./output"`
	TemplatesDir      string   `toml:"templates_dir"       yaml:"templates_dir"       env:"TEMPLATES_DIR"       env-default:"./templates"`
	InstructionsDir   string   `toml:"instructions_dir"    yaml:"instructions_dir"    env:"INSTRUCTIONS_DIR"    env-default:"./instructions"`
	DebugDir          string   `toml:"debug_dir"           yaml:"debug_dir"           env:"DEBUG_DIR"           env-default:"./debug"`
	DebugMode         bool     `toml:"debug_mode"          yaml:"debug_mode"          env:"DEBUG_MODE"`
	BatchProcessing   bool     `toml:"batch_processing"    yaml:"batch_processing"    env:"BATCH_PROCESSING"`
	CacheDir          string   `toml:"cache_dir"           yaml:"cache_dir"           env:"CACHE_DIR"           env-default:"./temp_cache"`
	CacheExpiryHours  int      `toml:"cache_expiry_hours"  yaml:"cache_expiry_hours"  env:"CACHE_EXPIRY_HOURS"  env-default:"1"`
	DataDir           string   `toml:"data_dir"            yaml:"data_dir"            env:"DATA_DIR"            env-default:"./.cartographer"`
	RequestsPerMinute float64  `toml:"requests_per_minute" yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
	RequestTimeout    string   `toml:"request_timeout"     yaml:"request_timeout"     env:"REQUEST_TIMEOUT"     env-default:"10m"`
	ExcludePatterns   []string `toml:"exclude_patterns"    yaml:"exclude_patterns"    env:"EXCLUDE_PATTERNS"    env-separator:","`
}

// LoadSettings reads settings from path and the environment.
//
// With an empty path, cartographer.toml and then .env in the working
// directory are tried; when neither exists only the environment and
// defaults apply. An explicit path must exist. The API key is not
// required here; commands that call the model validate it.
func LoadSettings(path string) (domain.Settings, error) {
	var fs fileSettings

	explicit := path != ""
	if !explicit {
		path = firstExisting(DefaultConfigFile, dotEnvFile)
	}

	switch {
	case path != "" && exists(path):
		if err := cleanenv.ReadConfig(path, &fs); err != nil {
			return domain.Settings{}, fmt.Errorf("read settings %s: %w", path, err)
		}
	case explicit:
		return domain.Settings{}, fmt.Errorf("read settings %s: %w", path, os.ErrNotExist)
	default:
		if err := cleanenv.ReadEnv(&fs); err != nil {
			return domain.Settings{}, fmt.Errorf("read settings from environment: %w", err)
		}
	}

	return fs.toDomain()
}

// WriteSettings writes s as TOML to path with owner-only permissions.
// An existing file is only replaced when force is set.
func WriteSettings(path string, s domain.Settings, force bool) error {
	if !force && exists(path) {
		return fmt.Errorf("write settings %s: %w", path, os.ErrExist)
	}

	data, err := toml.Marshal(fromDomain(s))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

func (fs fileSettings) toDomain() (domain.Settings, error) {
	timeout, err := time.ParseDuration(strings.TrimSpace(fs.RequestTimeout))
	if err != nil {
		return domain.Settings{}, &domain.ConfigurationError{
			Field:  "REQUEST_TIMEOUT",
			Reason: fmt.Sprintf("is not a duration: %q", fs.RequestTimeout),
		}
	}
	if fs.CacheExpiryHours < 0 {
		return domain.Settings{}, &domain.ConfigurationError{Field: "CACHE_EXPIRY_HOURS", Reason: "must not be negative"}
	}

	var patterns []string
	for _, p := range fs.ExcludePatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}

	s := domain.Settings{
		AnthropicAPIKey:   fs.AnthropicAPIKey,
		Model:             fs.Model,
		InputDir:          fs.InputDir,
		OutputDir:         fs.OutputDir,
		TemplatesDir:      fs.TemplatesDir,
		InstructionsDir:   fs.InstructionsDir,
		DebugDir:          fs.DebugDir,
		DebugMode:         fs.DebugMode,
		BatchProcessing:   fs.BatchProcessing,
		CacheDir:          fs.CacheDir,
		CacheTTL:          time.Duration(fs.CacheExpiryHours) * time.Hour,
		DataDir:           fs.DataDir,
		RequestsPerMinute: fs.RequestsPerMinute,
		RequestTimeout:    timeout,
		ExcludePatterns:   patterns,
	}
	return s.Normalise(), nil
}

func fromDomain(s domain.Settings) fileSettings {
	s = s.Normalise()
	return fileSettings{
		AnthropicAPIKey:   s.AnthropicAPIKey,
		Model:             s.Model,
		InputDir:          s.InputDir,
		OutputDir:         s.OutputDir,
		TemplatesDir:      s.TemplatesDir,
		InstructionsDir:   s.InstructionsDir,
		DebugDir:          s.DebugDir,
		DebugMode:         s.DebugMode,
		BatchProcessing:   s.BatchProcessing,
		CacheDir:          s.CacheDir,
		CacheExpiryHours:  int(s.CacheTTL / time.Hour),
		DataDir:           s.DataDir,
		RequestsPerMinute: s.RequestsPerMinute,
		RequestTimeout:    s.RequestTimeout.String(),
		ExcludePatterns:   s.ExcludePatterns,
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if exists(p) {
			return p
		}
	}
	return ""
}
