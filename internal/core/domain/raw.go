package domain

import (
	"path/filepath"
	"strings"
)

// RawFile represents the opaque bytes of an input file before normalisation.
type RawFile struct {
	// Path is the location on disk, or the upload name for in-memory files.
	Path string

	// Name is the base file name.
	Name string

	// Content is the raw bytes.
	Content []byte
}

// NewRawFile builds a RawFile whose Name is derived from path.
func NewRawFile(path string, content []byte) *RawFile {
	return &RawFile{
		Path:    path,
		Name:    filepath.Base(path),
		Content: content,
	}
}

// Extension returns the lowercased extension including the dot.
func (f *RawFile) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}
