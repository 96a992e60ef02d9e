package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
)

// Prompt section names used in token breakdowns.
const (
	SectionMission         = "Mission & Context"
	SectionResponseFormat  = "Response Format"
	SectionContentFocus    = "Content Focus"
	SectionExtractionRules = "Extraction Rules"
	SectionOutputTemplates = "Output Templates"
	SectionDocuments       = "Documents"
)

type sectionMarker struct {
	name string
	re   *regexp.Regexp
}

// sectionMarkers locate section starts, in prompt order. The mission
// always starts the prompt.
var sectionMarkers = []sectionMarker{
	{SectionMission, regexp.MustCompile(`\A`)},
	{SectionResponseFormat, regexp.MustCompile(`(?im)^═+\nRESPONSE FORMAT`)},
	{SectionContentFocus, regexp.MustCompile(`(?i)⚠️ FOCUS ON COPY ONLY`)},
	{SectionExtractionRules, regexp.MustCompile(`(?im)^═+\nEXTRACTION RULES`)},
	{SectionOutputTemplates, regexp.MustCompile(`(?im)^═+\nOUTPUT TEMPLATES`)},
	{SectionDocuments, regexp.MustCompile(`(?im)^═+\nEXTRACTION TASK`)},
}

// SectionTokens is the token count of one prompt section.
type SectionTokens struct {
	Name   string
	Tokens int
}

// SectionBreakdown lists section token counts in prompt order.
type SectionBreakdown []SectionTokens

// Total sums the section counts.
func (b SectionBreakdown) Total() int {
	n := 0
	for _, s := range b {
		n += s.Tokens
	}
	return n
}

// MarshalJSON encodes the breakdown as an object keyed by section name,
// keeping prompt order.
func (b SectionBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(s.Tokens)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by section name, keeping key order.
func (b *SectionBreakdown) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode section breakdown: %w", err)
	}

	var out SectionBreakdown
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode section breakdown: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode section breakdown: unexpected key %v", tok)
		}
		var tokens int
		if err := dec.Decode(&tokens); err != nil {
			return fmt.Errorf("decode section %q: %w", name, err)
		}
		out = append(out, SectionTokens{Name: name, Tokens: tokens})
	}
	*b = out
	return nil
}

// AnalyzeSections splits a built prompt at its section headings and counts
// the tokens of each section found. Each section runs until the next
// section found or the end of the prompt. Sections are searched in order,
// so document text cannot shadow an earlier heading.
func (e *Estimator) AnalyzeSections(prompt string) SectionBreakdown {
	if prompt == "" {
		return nil
	}

	type found struct {
		name  string
		start int
	}
	var starts []found
	offset := 0
	for _, m := range sectionMarkers {
		loc := m.re.FindStringIndex(prompt[offset:])
		if loc == nil {
			continue
		}
		starts = append(starts, found{name: m.name, start: offset + loc[0]})
		offset += loc[0]
	}

	breakdown := make(SectionBreakdown, 0, len(starts))
	for i, f := range starts {
		end := len(prompt)
		if i+1 < len(starts) {
			end = starts[i+1].start
		}
		breakdown = append(breakdown, SectionTokens{Name: f.name, Tokens: e.CountTokens(prompt[f.start:end])})
	}
	return breakdown
}
