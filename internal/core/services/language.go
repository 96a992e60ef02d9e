package services

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// DefaultDetectionSample is the number of characters handed to the detector.
const DefaultDetectionSample = 1000

// Where a document's language came from.
const (
	LanguageFromFilename = "filename"
	LanguageFromContent  = "content"
)

var (
	filenameCodeEnd      = regexp.MustCompile(`[_-]([A-Z]{2})$`)
	filenameCodeBrackets = regexp.MustCompile(`[(\[]([A-Z]{2})[)\]]`)
	filenameCodeBetween  = regexp.MustCompile(`[_-]([A-Z]{2})[_-]`)

	localePrefix     = regexp.MustCompile(`(?i)^[a-z]{2}-[a-z]{2}-?\s*_`)
	delimitedCode    = regexp.MustCompile(`(?i)[_\-(\[](` + strings.Join(domain.LanguageCodes, "|") + `)[_\-)\]]`)
	trailingCode     = regexp.MustCompile(`(?i)[\s_-]*(` + strings.Join(domain.LanguageCodes, "|") + `)[\s_-]*$`)
	repeatedSeps     = regexp.MustCompile(`[\s_-]{2,}`)
	dashesUnderscore = regexp.MustCompile(`-+_`)
)

// DetectLanguage identifies the language of the first sampleSize characters of text.
// It returns domain.UnknownLanguage for blank input, when the detector has no
// reliable answer, or when the detector fails. Detector panics are recovered.
func DetectLanguage(detector driven.LanguageDetector, text string, sampleSize int) (code string) {
	if detector == nil || strings.TrimSpace(text) == "" {
		return domain.UnknownLanguage
	}
	if sampleSize <= 0 {
		sampleSize = DefaultDetectionSample
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Language detection failed: %v", r)
			code = domain.UnknownLanguage
		}
	}()

	lang, ok := detector.Detect(truncateRunes(text, sampleSize))
	if !ok || lang == "" {
		return domain.UnknownLanguage
	}
	return strings.ToUpper(lang)
}

// ExtractLanguageFromFilename reads a language code from a file name.
// Recognised forms are card_EN.txt, card-EN.txt, card(EN).txt, card[EN].txt
// and card_EN_v2.txt. Only whitelisted codes are returned; otherwise "".
func ExtractLanguageFromFilename(filename string) string {
	stem := strings.ToUpper(fileStem(filename))

	for _, re := range []*regexp.Regexp{filenameCodeEnd, filenameCodeBrackets, filenameCodeBetween} {
		m := re.FindStringSubmatch(stem)
		if m == nil {
			continue
		}
		if domain.IsKnownLanguage(m[1]) {
			return m[1]
		}
	}
	return ""
}

// ResolveLanguage returns the language from the file name when present,
// falling back to content detection, together with where it came from.
func ResolveLanguage(detector driven.LanguageDetector, filename, content string) (string, string) {
	if code := ExtractLanguageFromFilename(filename); code != "" {
		logger.Debug("Detected language %s from filename: %s", code, filename)
		return code, LanguageFromFilename
	}
	code := DetectLanguage(detector, content, DefaultDetectionSample)
	logger.Debug("Detected language %s from content: %s", code, filename)
	return code, LanguageFromContent
}

// FindBaseName returns the comparison key of a file name: the stem without
// locale prefixes or language codes, with separators normalised, lowercased.
//
//	card_EN.txt                      -> card
//	gift-cards-DE.docx               -> gift-cards
//	de-DE_amazon__product.docx       -> amazon_product
//	en-MC-_jeton-cash__product.docx  -> jeton-cash_product
func FindBaseName(filename string) string {
	name := fileStem(norm.NFC.String(filename))

	name = localePrefix.ReplaceAllString(name, "")
	name = delimitedCode.ReplaceAllString(name, "")
	name = trailingCode.ReplaceAllString(name, "")
	name = repeatedSeps.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_- ")
	name = dashesUnderscore.ReplaceAllString(name, "_")

	return strings.ToLower(name)
}

// Candidate is a document considered for pairing.
type Candidate struct {
	Filename string
	Language string
	BaseName string
}

// NewCandidate builds a candidate and computes its base name.
func NewCandidate(filename, language string) Candidate {
	return Candidate{Filename: filename, Language: language, BaseName: FindBaseName(filename)}
}

// PairMatcher chooses the translation partner of a document among candidates.
// Implementations must never return a candidate in the query's language.
type PairMatcher interface {
	Match(query Candidate, candidates []Candidate) (Candidate, bool)
}

// ExactBaseNameMatcher pairs documents whose base names are equal and non-empty.
type ExactBaseNameMatcher struct{}

// Match returns the first candidate in another language with the same base name.
func (ExactBaseNameMatcher) Match(query Candidate, candidates []Candidate) (Candidate, bool) {
	if query.BaseName == "" {
		return Candidate{}, false
	}
	for _, c := range candidates {
		if c.Language == query.Language {
			continue
		}
		if c.BaseName != "" && c.BaseName == query.BaseName {
			return c, true
		}
	}
	return Candidate{}, false
}

// FindTranslationPair returns the file name of the partner of filename, or "".
// A nil matcher uses ExactBaseNameMatcher.
func FindTranslationPair(filename, language string, candidates []Candidate, matcher PairMatcher) string {
	if matcher == nil {
		matcher = ExactBaseNameMatcher{}
	}
	match, ok := matcher.Match(NewCandidate(filename, language), candidates)
	if !ok || match.Language == language {
		return ""
	}
	return match.Filename
}

// AssignPairs sets PairID on every document. Partners share a sequential
// id starting at "1"; all other documents get domain.UnpairedID. Documents
// in an unknown language are never paired. It returns the number of pairs.
func AssignPairs(docs []domain.Document, matcher PairMatcher) int {
	if matcher == nil {
		matcher = ExactBaseNameMatcher{}
	}

	index := make(map[string]int, len(docs))
	all := make([]Candidate, len(docs))
	for i := range docs {
		index[docs[i].Filename] = i
		all[i] = NewCandidate(docs[i].Filename, docs[i].Language)
	}

	consumed := make(map[string]bool, len(docs))
	next := 1

	for i := range docs {
		doc := &docs[i]
		if consumed[doc.Filename] {
			continue
		}
		consumed[doc.Filename] = true

		if domain.IsUnknownLanguage(doc.Language) {
			doc.PairID = domain.UnpairedID
			logger.Debug("Skipping unknown language file: %s", doc.Filename)
			continue
		}

		var candidates []Candidate
		for j, c := range all {
			if j == i || consumed[c.Filename] || c.Language == doc.Language || domain.IsUnknownLanguage(c.Language) {
				continue
			}
			candidates = append(candidates, c)
		}

		match, ok := matcher.Match(all[i], candidates)
		if !ok || match.Language == doc.Language {
			doc.PairID = domain.UnpairedID
			continue
		}

		id := strconv.Itoa(next)
		next++
		doc.PairID = id
		docs[index[match.Filename]].PairID = id
		consumed[match.Filename] = true
		logger.Info("Paired: %s <-> %s (pair %s)", doc.Filename, match.Filename, id)
	}

	return next - 1
}

// SortByPair orders paired documents first, by numeric pair id then file name,
// followed by unpaired documents by file name.
func SortByPair(docs []domain.Document) {
	const unpairedRank = int(^uint(0) >> 1)

	rank := func(d domain.Document) int {
		if !d.IsPaired() {
			return unpairedRank
		}
		n, err := strconv.Atoi(d.PairID)
		if err != nil {
			return unpairedRank
		}
		return n
	}

	sort.SliceStable(docs, func(i, j int) bool {
		ri, rj := rank(docs[i]), rank(docs[j])
		if ri != rj {
			return ri < rj
		}
		return docs[i].Filename < docs[j].Filename
	})
}

// FuzzySimilarity scores two strings between 0 and 1: 1 for equal strings,
// 0.8 when one contains the other, otherwise the share of characters of a
// found in b. It is not used by ExactBaseNameMatcher.
func FuzzySimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	common := 0
	for _, r := range a {
		if strings.ContainsRune(b, r) {
			common++
		}
	}
	return float64(common) / float64(max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)))
}

// ContentSimilarity compares two texts by length: the shorter length over the longer.
func ContentSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	return float64(min(la, lb)) / float64(max(la, lb))
}

func fileStem(filename string) string {
	base := filepath.Base(filename)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
		return stem
	}
	return base
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
