package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/logger"
)

var (
	rulesH3 = regexp.MustCompile("(?is)### CLIENT_RULES\\s*```javascript\\s*(.*?)```")
	rulesH2 = regexp.MustCompile("(?is)## CLIENT_RULES\\s*```javascript\\s*(.*?)```")

	guidelinesHeading = regexp.MustCompile(`(?i)###? GUIDELINES`)

	// structureHeading ends a guidelines section: the next subtype block,
	// or another rules or guidelines heading at level 2 or 3.
	structureHeading = regexp.MustCompile(`(?im)^#{2,3} (?:SUBTYPE:|CLIENT_RULES\b|GUIDELINES\b)`)

	nextSubtype     = regexp.MustCompile(`(?i)\n## SUBTYPE:`)
	trailingDivider = regexp.MustCompile(`(?:\n\s*-{3,}\s*)+$`)
)

// errBlankResponse marks an answer with no text at all. Missing parts
// of a non-blank answer are soft failures and yield empty strings.
var errBlankResponse = fmt.Errorf("%w: blank answer", domain.ErrResponseParsing)

// ParseSingleResponse extracts the client rules and guidelines from a
// single subtype answer. Missing parts are returned as empty strings.
// A blank answer yields an error wrapping domain.ErrResponseParsing.
func ParseSingleResponse(text string) (rules, guidelines string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", "", errBlankResponse
	}
	rules, guidelines = parseBlock(text)
	return rules, guidelines, nil
}

// ParseBatchResponse extracts one result per set from a batch answer.
// A subtype without a "## SUBTYPE: <name>" block gets an empty result;
// its siblings are unaffected. Usage is left at zero. A blank answer to
// a non-empty batch yields an error wrapping domain.ErrResponseParsing.
func ParseBatchResponse(text string, sets []domain.DocumentSet) (*domain.Results, error) {
	if len(sets) > 0 && strings.TrimSpace(text) == "" {
		return nil, errBlankResponse
	}

	results := domain.NewResults()
	for i := range sets {
		subtype := sets[i].Subtype

		block, ok := subtypeBlock(text, subtype)
		if !ok {
			logger.Warn("No section found for subtype: %s", subtype)
			results.Set(subtype, domain.ExtractionResult{})
			continue
		}

		rules, guidelines := parseBlock(trailingDivider.ReplaceAllString(block, ""))
		results.Set(subtype, domain.ExtractionResult{ClientRules: rules, Guidelines: guidelines})
		logger.Debug("Parsed subtype %s: %d chars rules, %d chars guidelines", subtype, len(rules), len(guidelines))
	}
	return results, nil
}

// subtypeBlock returns the text between the heading of subtype and the
// next subtype heading or the end of text.
func subtypeBlock(text, subtype string) (string, bool) {
	heading := regexp.MustCompile(`(?i)## SUBTYPE:[ \t]*` + regexp.QuoteMeta(subtype) + `(?:\s|$)`)
	loc := heading.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := text[loc[1]:]
	if end := nextSubtype.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return rest, true
}

func parseBlock(text string) (rules, guidelines string) {
	m := rulesH3.FindStringSubmatch(text)
	if m == nil {
		m = rulesH2.FindStringSubmatch(text)
	}
	if m != nil {
		rules = strings.TrimSpace(m[1])
	}

	loc := guidelinesHeading.FindStringIndex(text)
	if loc == nil {
		return rules, ""
	}
	rest := text[loc[1]:]
	if end := structureHeading.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return rules, strings.TrimSpace(rest)
}
