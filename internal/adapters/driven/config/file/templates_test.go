package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

func TestTemplateStore_Load_BuiltIn(t *testing.T) {
	store := NewTemplateStore(t.TempDir())

	rules, err := store.Load(driven.TemplateClientRules)
	require.NoError(t, err)
	assert.Contains(t, rules, "module.exports")

	guidelines, err := store.Load(driven.TemplateGuidelines)
	require.NoError(t, err)
	assert.Contains(t, guidelines, "## Brand Voice")

	assert.False(t, store.Exists(driven.TemplateClientRules))
}

func TestTemplateStore_Load_NoCondensedBuiltIn(t *testing.T) {
	store := NewTemplateStore(t.TempDir())

	_, err := store.Load(driven.TemplateClientRulesCondensed)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplateStore_Load_UserDirWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.TemplateClientRules), []byte("// custom"), 0644))
	store := NewTemplateStore(dir)

	rules, err := store.Load(driven.TemplateClientRules)

	require.NoError(t, err)
	assert.Equal(t, "// custom", rules)
	assert.True(t, store.Exists(driven.TemplateClientRules))
}

func TestTemplateStore_WriteDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, driven.TemplateGuidelines), []byte("# mine"), 0644))
	store := NewTemplateStore(dir)

	written, err := store.WriteDefaults()

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, driven.TemplateClientRules)}, written)
	data, err := os.ReadFile(filepath.Join(dir, driven.TemplateGuidelines))
	require.NoError(t, err)
	assert.Equal(t, "# mine", string(data))
}
