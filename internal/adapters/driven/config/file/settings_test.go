package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

var settingsEnv = []string{
	"ANTHROPIC_API_KEY", "MODEL", "INPUT_DIR", "OUTPUT_DIR", "TEMPLATES_DIR",
	"INSTRUCTIONS_DIR", "DEBUG_DIR", "DEBUG_MODE", "BATCH_PROCESSING", "CACHE_DIR",
	"CACHE_EXPIRY_HOURS", "DATA_DIR", "REQUESTS_PER_MINUTE", "REQUEST_TIMEOUT",
	"EXCLUDE_PATTERNS",
}

// clearSettingsEnv unsets every settings variable for the duration of the test.
func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range settingsEnv {
		if old, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, old) })
		}
	}
}

func TestLoadSettings_TOMLFile(t *testing.T) {
	clearSettingsEnv(t)
	path := filepath.Join(t.TempDir(), "cartographer.toml")
	content := `
anthropic_api_key = "  sk-file  "
input_dir = "/data/in"
batch_processing = true
cache_expiry_hours = 3
requests_per_minute = 30.0
request_timeout = "90s"
exclude_patterns = ["**/draft_*", " "]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	s, err := LoadSettings(path)

	require.NoError(t, err)
	assert.Equal(t, "sk-file", s.AnthropicAPIKey)
	assert.Equal(t, "/data/in", s.InputDir)
	assert.Equal(t, domain.DefaultOutputDir, s.OutputDir)
	assert.Equal(t, domain.DefaultModel, s.Model)
	assert.True(t, s.BatchProcessing)
	assert.False(t, s.DebugMode)
	assert.Equal(t, 3*time.Hour, s.CacheTTL)
	assert.Equal(t, 30.0, s.RequestsPerMinute)
	assert.Equal(t, 90*time.Second, s.RequestTimeout)
	assert.Equal(t, []string{"**/draft_*"}, s.ExcludePatterns)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	clearSettingsEnv(t)
	path := filepath.Join(t.TempDir(), "cartographer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`model = "claude-sonnet-4-5"`+"\n"), 0600))
	t.Setenv("MODEL", "claude-sonnet-4-20250514")
	t.Setenv("DEBUG_MODE", "true")

	s, err := LoadSettings(path)

	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", s.Model)
	assert.True(t, s.DebugMode)
}

func TestLoadSettings_EnvOnly(t *testing.T) {
	clearSettingsEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-env")
	t.Setenv("EXCLUDE_PATTERNS", "*.bak,~$*")

	s, err := LoadSettings("")

	require.NoError(t, err)
	assert.Equal(t, "sk-env", s.AnthropicAPIKey)
	assert.Equal(t, domain.DefaultInputDir, s.InputDir)
	assert.Equal(t, domain.DefaultCacheTTL, s.CacheTTL)
	assert.Equal(t, domain.DefaultRequestTimeout, s.RequestTimeout)
	assert.Equal(t, []string{"*.bak", "~$*"}, s.ExcludePatterns)
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	clearSettingsEnv(t)

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSettings_BadTimeout(t *testing.T) {
	clearSettingsEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := LoadSettings("")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestWriteSettings_RoundTrip(t *testing.T) {
	clearSettingsEnv(t)
	path := filepath.Join(t.TempDir(), "conf", "cartographer.toml")
	s := domain.DefaultSettings()
	s.InputDir = "/copy/in"
	s.CacheTTL = 2 * time.Hour
	s.ExcludePatterns = []string{"*.tmp"}

	require.NoError(t, WriteSettings(path, s, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/copy/in", loaded.InputDir)
	assert.Equal(t, 2*time.Hour, loaded.CacheTTL)
	assert.Equal(t, domain.DefaultRequestTimeout, loaded.RequestTimeout)
	assert.Equal(t, []string{"*.tmp"}, loaded.ExcludePatterns)
}

func TestWriteSettings_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cartographer.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0600))

	err := WriteSettings(path, domain.DefaultSettings(), false)
	assert.ErrorIs(t, err, os.ErrExist)

	require.NoError(t, WriteSettings(path, domain.DefaultSettings(), true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "input_dir")
}
