package services

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// mapTemplates is an in-memory template store.
type mapTemplates map[string]string

func (m mapTemplates) Load(name string) (string, error) {
	if t, ok := m[name]; ok {
		return t, nil
	}
	return "", domain.ErrNotFound
}

func (m mapTemplates) Exists(name string) bool {
	_, ok := m[name]
	return ok
}

func defaultTestTemplates() mapTemplates {
	return mapTemplates{
		"client_rules_example_condensed.js": "const CLIENT_RULES = { client: '[CLIENT_NAME]' };",
		"guidelines_example_condensed.md":   "# [CLIENT_NAME] Guidelines\n## Voice",
	}
}

// mapPrompts is an in-memory prompt store.
type mapPrompts map[string]string

func (m mapPrompts) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m mapPrompts) Reload() {}

// recordingArtifacts keeps written artifacts in memory.
type recordingArtifacts struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newRecordingArtifacts() *recordingArtifacts {
	return &recordingArtifacts{files: make(map[string][]byte)}
}

func (r *recordingArtifacts) Write(_ context.Context, data []byte, elems ...string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	path := filepath.Join(elems...)
	r.files[path] = append([]byte(nil), data...)
	return path, nil
}

func (r *recordingArtifacts) get(elems ...string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.files[filepath.Join(elems...)]
	return string(data), ok
}

func (r *recordingArtifacts) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name := range r.files {
		names = append(names, name)
	}
	return names
}

func pairedSet(subtype string) domain.DocumentSet {
	return domain.NewDocumentSet("acme", subtype, []domain.Document{
		{Filename: "card_EN.txt", Content: "Buy now!", Language: "EN", PairID: "1", Tokens: 3},
		{Filename: "card_DE.txt", Content: "Jetzt kaufen!", Language: "DE", PairID: "1", Tokens: 4},
		{Filename: "notes.txt", Content: "", Language: "", PairID: domain.UnpairedID, Tokens: 0},
		{Filename: "faq_FR.txt", Content: "Achetez maintenant", Language: "FR", PairID: domain.UnpairedID, Tokens: 5},
	})
}

func unpairedSet(subtype string) domain.DocumentSet {
	return domain.NewDocumentSet("acme", subtype, []domain.Document{
		{Filename: "promo_DE.txt", Content: "Jetzt sparen", Language: "DE", Tokens: 4},
	})
}
