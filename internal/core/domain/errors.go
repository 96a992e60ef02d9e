package domain

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates missing or invalid settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrClientNotFound indicates the requested client folder does not exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrNoDocuments indicates a folder holds no parseable documents.
	ErrNoDocuments = errors.New("no documents found")

	// ErrDocumentParsing indicates a file could not be converted to text.
	ErrDocumentParsing = errors.New("document parsing failed")

	// ErrUnsupportedFormat indicates a file extension with no normaliser.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtraction indicates the LLM call for a subtype failed.
	ErrExtraction = errors.New("extraction failed")

	// ErrResponseParsing indicates the model answered but the answer was malformed.
	// It is a specialisation of ErrExtraction.
	ErrResponseParsing = errors.New("response parsing failed")

	// ErrLLMUnavailable indicates no LLM client is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// LLM call failure classes.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient indicates a timeout or other retryable failure.
	ErrTransient = errors.New("transient failure")

	// ErrServer indicates any other upstream failure.
	ErrServer = errors.New("server error")

	// Upload limits.

	// ErrFileTooLarge indicates an upload above the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile indicates an upload with no bytes.
	ErrEmptyFile = errors.New("empty file")

	// ErrTooManyFiles indicates a request above the file count limit.
	ErrTooManyFiles = errors.New("too many files")
)

// ConfigurationError reports an invalid or missing setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ClientNotFoundError reports a missing client folder.
type ClientNotFoundError struct {
	Client   string
	InputDir string
}

func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("client folder not found: %s", filepath.Join(e.InputDir, e.Client))
}

// Is matches ErrClientNotFound.
func (e *ClientNotFoundError) Is(target error) bool {
	return target == ErrClientNotFound
}

// NoDocumentsFoundError reports a folder without supported documents.
type NoDocumentsFoundError struct {
	Path string
}

func (e *NoDocumentsFoundError) Error() string {
	return fmt.Sprintf("no documents found in %s", e.Path)
}

// Is matches ErrNoDocuments.
func (e *NoDocumentsFoundError) Is(target error) bool {
	return target == ErrNoDocuments
}

// DocumentParsingError wraps the cause of a failed text extraction.
type DocumentParsingError struct {
	Path string
	Err  error
}

func (e *DocumentParsingError) Error() string {
	return fmt.Sprintf("failed to parse document: %v (file: %s)", e.Err, e.Path)
}

func (e *DocumentParsingError) Unwrap() error {
	return e.Err
}

// Is matches ErrDocumentParsing.
func (e *DocumentParsingError) Is(target error) bool {
	return target == ErrDocumentParsing
}

// UnsupportedFormatError reports a file extension no normaliser handles.
// It also matches ErrDocumentParsing.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s (file: %s)", e.Extension, e.Path)
}

// Is matches ErrUnsupportedFormat and ErrDocumentParsing.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat || target == ErrDocumentParsing
}

// ExtractionError wraps an LLM call failure for a subtype ("batch" for batch calls).
type ExtractionError struct {
	Subtype string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v (subtype: %s)", e.Err, e.Subtype)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// ResponseParsingError wraps a failure to read the model's answer.
// It matches both ErrResponseParsing and ErrExtraction.
type ResponseParsingError struct {
	Subtype string
	Err     error
}

func (e *ResponseParsingError) Error() string {
	return fmt.Sprintf("failed to parse response: %v (subtype: %s)", e.Err, e.Subtype)
}

func (e *ResponseParsingError) Unwrap() error {
	return e.Err
}

// Is matches ErrResponseParsing and ErrExtraction.
func (e *ResponseParsingError) Is(target error) bool {
	return target == ErrResponseParsing || target == ErrExtraction
}
