package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Document is a parsed copy document with its detected language.
// It is created once its file has been parsed and language-detected;
// only PairID changes afterwards, during pairing.
type Document struct {
	// Filename is the original file name including extension.
	Filename string `json:"filename" yaml:"filename"`

	// Content is the extracted plain text.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Language is a two-letter code such as "EN", or UnknownLanguage.
	Language string `json:"language" yaml:"language"`

	// PairID links the two documents of a translation pair.
	// Empty or UnpairedID means the document is unpaired.
	PairID string `json:"pair_id,omitempty" yaml:"pair_id,omitempty"`

	// Tokens is the estimated token count of Content.
	Tokens int `json:"tokens" yaml:"tokens"`
}

// IsPaired reports whether the document carries a real pair id.
func (d Document) IsPaired() bool {
	return d.PairID != "" && d.PairID != UnpairedID
}

// DocumentPair is a source/target translation pair derived from a DocumentSet.
type DocumentPair struct {
	PairID string
	Source Document
	Target Document
}

// DocumentSet groups every document of one client subtype.
type DocumentSet struct {
	// ClientName is the client (brand) folder name.
	ClientName string `json:"client_name" yaml:"client_name"`

	// Subtype is the content category, e.g. "gift_cards".
	Subtype string `json:"subtype" yaml:"subtype"`

	// Documents are the members of the set in prompt order.
	Documents []Document `json:"documents" yaml:"documents"`

	// TotalTokens is the sum of member token counts.
	TotalTokens int `json:"total_tokens" yaml:"total_tokens"`
}

// NewDocumentSet builds a set and computes its token total.
func NewDocumentSet(clientName, subtype string, docs []Document) DocumentSet {
	set := DocumentSet{
		ClientName: clientName,
		Subtype:    subtype,
		Documents:  docs,
	}
	set.TotalTokens = set.ComputeTotalTokens()
	return set
}

// ComputeTotalTokens sums the token counts of all documents.
func (s DocumentSet) ComputeTotalTokens() int {
	total := 0
	for i := range s.Documents {
		total += s.Documents[i].Tokens
	}
	return total
}

// DocumentCount returns the number of documents in the set.
func (s DocumentSet) DocumentCount() int {
	return len(s.Documents)
}

// PairedDocuments groups paired documents by pair id and returns the groups
// that have both an English-variant source and a non-English target,
// ordered by pair id.
func (s DocumentSet) PairedDocuments() []DocumentPair {
	type slot struct {
		source, target *Document
	}
	groups := make(map[string]*slot)

	for i := range s.Documents {
		doc := &s.Documents[i]
		if !doc.IsPaired() {
			continue
		}
		g, ok := groups[doc.PairID]
		if !ok {
			g = &slot{}
			groups[doc.PairID] = g
		}
		if IsEnglishVariant(doc.Language) {
			g.source = doc
		} else {
			g.target = doc
		}
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ComparePairIDs(ids[i], ids[j]) < 0
	})

	pairs := make([]DocumentPair, 0, len(ids))
	for _, id := range ids {
		g := groups[id]
		if g.source == nil || g.target == nil {
			continue
		}
		pairs = append(pairs, DocumentPair{PairID: id, Source: *g.source, Target: *g.target})
	}
	return pairs
}

// UnpairedDocuments returns the documents that are not part of a complete pair,
// in set order.
func (s DocumentSet) UnpairedDocuments() []Document {
	inPair := make(map[string]struct{})
	for _, p := range s.PairedDocuments() {
		inPair[p.Source.Filename] = struct{}{}
		inPair[p.Target.Filename] = struct{}{}
	}

	var unpaired []Document
	for i := range s.Documents {
		if _, ok := inPair[s.Documents[i].Filename]; !ok {
			unpaired = append(unpaired, s.Documents[i])
		}
	}
	return unpaired
}

// Languages returns the distinct non-empty language codes, sorted.
func (s DocumentSet) Languages() []string {
	seen := make(map[string]struct{})
	var langs []string
	for i := range s.Documents {
		lang := s.Documents[i].Language
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// SourceLanguage returns the first English-variant language, or "".
func (s DocumentSet) SourceLanguage() string {
	for _, lang := range s.Languages() {
		if IsEnglishVariant(lang) {
			return lang
		}
	}
	return ""
}

// TargetLanguage returns the first language that is neither English nor unknown, or "".
func (s DocumentSet) TargetLanguage() string {
	for _, lang := range s.Languages() {
		if !IsEnglishVariant(lang) && !strings.EqualFold(lang, UnknownLanguage) {
			return lang
		}
	}
	return ""
}

// LanguageSituation summarises the language coverage for prompts,
// e.g. "EN → DE (paired)" or "DE (target only)".
func (s DocumentSet) LanguageSituation() string {
	source := s.SourceLanguage()
	target := s.TargetLanguage()

	switch {
	case source != "" && target != "" && len(s.PairedDocuments()) > 0:
		return fmt.Sprintf("%s → %s (paired)", source, target)
	case source != "" && target != "":
		return fmt.Sprintf("%s + %s (unpaired)", source, target)
	case target != "":
		return fmt.Sprintf("%s (target only)", target)
	case source != "":
		return fmt.Sprintf("%s (source only)", source)
	default:
		return "unknown"
	}
}

// ComparePairIDs orders pair ids numerically when both are integers
// and lexically otherwise.
func ComparePairIDs(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// HasPairs reports whether any of the sets contains at least one complete pair.
func HasPairs(sets []DocumentSet) bool {
	for i := range sets {
		if len(sets[i].PairedDocuments()) > 0 {
			return true
		}
	}
	return false
}

// TotalDocuments counts documents across sets.
func TotalDocuments(sets []DocumentSet) int {
	n := 0
	for i := range sets {
		n += len(sets[i].Documents)
	}
	return n
}

// TotalTokens sums TotalTokens across sets.
func TotalTokens(sets []DocumentSet) int {
	n := 0
	for i := range sets {
		n += sets[i].TotalTokens
	}
	return n
}

// Subtypes returns the subtype names of the sets in order.
func Subtypes(sets []DocumentSet) []string {
	names := make([]string, len(sets))
	for i := range sets {
		names[i] = sets[i].Subtype
	}
	return names
}
