package driven

// LanguageDetector identifies the language of a text sample.
type LanguageDetector interface {
	// Detect returns an uppercase two-letter code and true,
	// or false when no reliable answer exists.
	Detect(text string) (string, bool)
}

// Tokenizer approximates the token count of text.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	// Count returns the raw token count, before any correction factor.
	Count(text string) int
}
