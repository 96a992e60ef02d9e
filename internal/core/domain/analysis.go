package domain

// ClientInfo lists a client folder and its subtype folders.
type ClientInfo struct {
	Name     string   `json:"name" yaml:"name"`
	Subtypes []string `json:"subtypes" yaml:"subtypes"`
}

// UploadedFile is an in-memory file submitted for analysis.
type UploadedFile struct {
	Filename string
	Content  string
	Tokens   int
}

// DetectedFile is the per-file outcome of language and pair detection.
type DetectedFile struct {
	Filename string `json:"filename" yaml:"filename"`
	Language string `json:"language" yaml:"language"`
	BaseName string `json:"base_name" yaml:"base_name"`
	PairID   string `json:"pair_id" yaml:"pair_id"`
	Tokens   int    `json:"tokens" yaml:"tokens"`
	// Source is "filename" when the language came from the file name, else "content".
	Source string `json:"detected_from" yaml:"detected_from"`
}

// PairSummary names the two files of a detected pair.
type PairSummary struct {
	PairID string `json:"pair_id" yaml:"pair_id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// AnalysisReport is the result of auto-detecting languages and pairs.
type AnalysisReport struct {
	Files         []DetectedFile `json:"files" yaml:"files"`
	Pairs         []PairSummary  `json:"pairs" yaml:"pairs"`
	PairedCount   int            `json:"paired_count" yaml:"paired_count"`
	UnpairedCount int            `json:"unpaired_count" yaml:"unpaired_count"`
}
