package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure TemplateStore implements the interface.
var _ driven.TemplateStore = (*TemplateStore)(nil)

//go:embed defaults/*
var defaultTemplates embed.FS

// TemplateStore reads output template examples from the templates
// directory, falling back to the examples built into the binary.
// Only the full examples are built in; condensed variants come from
// the templates directory alone.
type TemplateStore struct {
	dir string
}

// NewTemplateStore creates a template store rooted at dir.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{dir: dir}
}

// Load returns the named template.
func (s *TemplateStore) Load(name string) (string, error) {
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}

	data, err := defaultTemplates.ReadFile("defaults/" + name)
	if err != nil {
		return "", fmt.Errorf("template %s: %w", name, domain.ErrNotFound)
	}
	return string(data), nil
}

// Exists reports whether the templates directory has the file.
func (s *TemplateStore) Exists(name string) bool {
	if s.dir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && !info.IsDir()
}

// Dir returns the templates directory path.
func (s *TemplateStore) Dir() string {
	return s.dir
}

// WriteDefaults copies the built-in examples into the templates directory,
// keeping files that already exist. It returns the paths written.
func (s *TemplateStore) WriteDefaults() ([]string, error) {
	if s.dir == "" {
		return nil, fmt.Errorf("write templates: %w", domain.ErrConfiguration)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("create templates directory: %w", err)
	}

	entries, err := defaultTemplates.ReadDir("defaults")
	if err != nil {
		return nil, fmt.Errorf("read built-in templates: %w", err)
	}

	var written []string
	for _, e := range entries {
		if s.Exists(e.Name()) {
			continue
		}
		data, err := defaultTemplates.ReadFile("defaults/" + e.Name())
		if err != nil {
			return written, fmt.Errorf("read built-in template %s: %w", e.Name(), err)
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("write template %s: %w", e.Name(), err)
		}
		written = append(written, path)
	}
	return written, nil
}
