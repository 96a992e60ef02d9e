package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/logger"
)

var (
	ruleHeavy = strings.Repeat("═", 79)
	ruleTask  = strings.Repeat("═", 78)
	ruleDots  = strings.Repeat("┈", 78)
	boxEdge   = strings.Repeat("─", 78)
)

// maxGuidelineHeaders is how many top-level headers of the full
// guidelines template are shown when no condensed template exists.
const maxGuidelineHeaders = 12

const defaultMission = `You are extracting localization rules from copy documents.

YOUR OUTPUTS:
1. client_rules.js - Machine-readable validation config (consumed by automated Code Checker)
2. guidelines.md - Human-readable style guide (used by LLMs and humans to write new content in the client's voice)

CRITICAL DISTINCTION:
• client_rules.js = STRICT validation rules. Must be precise, evidenced, codifiable. When uncertain, OMIT.
• guidelines.md = QUALITATIVE style guide. Captures tone, voice, nuance even when not codifiable. Can include observations with moderate confidence.`

const defaultContentFocus = `⚠️ FOCUS ON COPY ONLY

Documents may contain elements to IGNORE:
• Internal notes, metadata, version history
• Navigation elements, breadcrumbs
• Formatting artifacts, template markers
• File paths, URLs (unless part of instructions)

Extract rules ONLY from actual copy:
• Headlines (H1, H2)
• Body paragraphs and intro text
• FAQ questions and answers
• Benefit/feature lists
• CTAs and microcopy
• Instructional steps`

const terminologyPaired = `
✓ TERMINOLOGY (source+target pairs available)
  Evidence: 3+ occurrences across ALL document text (includes repetitions within docs)
  Include 'context' field when same source has multiple valid targets`

const terminologyUnpaired = `
⚠ TERMINOLOGY (no source+target pairs)
  Cannot extract without paired documents - leave array empty or minimal`

const extractionRulesBody = `FORBIDDEN_WORDS
  What: Formal address (Sie vs du), competitor names, pressure language
  Evidence: Conspicuous absence across ALL documents

%s

PATTERNS
  What: Currency (€5 vs 5 €), dates (DD.MM vs DD/MM), list endings, numbers
  Evidence: 80%%+ consistency across occurrences

LENGTHS
  What: Meta titles/descriptions, paragraph/FAQ lengths
  Evidence: Observable limits in document structure

STRUCTURE
  What: Required tags/sections
  Evidence: 100%% presence across documents

CLIENT_RULES.JS QUALITY STANDARD:
→ Every rule needs EVIDENCE from documents
→ Uncertain? OMIT from client_rules.js (strict validation requires precision)
→ Patterns must be CONSISTENT, not one-offs

GUIDELINES.MD QUALITY STANDARD:
→ Capture tone, voice, style even if not codifiable
→ Can include observations with moderate confidence
→ Explain WHY for each guideline (helps LLMs generalize)`

const singleResponseBody = `Respond with:

## SUBTYPE: %s

### CLIENT_RULES

` + "```javascript" + `
[Complete client_rules.js following the annotated template above]
` + "```" + `

### GUIDELINES

[Complete guidelines.md following the structure above - NO code fence]`

const batchResponseBody = `You are analyzing MULTIPLE subtypes together. This allows you to identify:
• **COMMON patterns** - Rules that apply across all subtypes
• **SUBTYPE-SPECIFIC patterns** - Rules unique to one subtype

BATCH PROCESSING STRATEGY:

1. **First Pass**: Analyze all documents to identify COMMON patterns
   - Forbidden words used consistently across all subtypes
   - Terminology translated the same way everywhere
   - Patterns (currency, dates) that are universal
   - Tone and voice that's consistent

2. **Second Pass**: Identify SUBTYPE-SPECIFIC patterns
   - Different address forms (du vs Sie in different contexts)
   - Subtype-specific terminology
   - Length constraints that vary by subtype
   - Different structure requirements

3. **Output Decision**: For each rule, decide:
   - If COMMON → Include in EVERY subtype's client_rules.js
   - If SPECIFIC → Include only in the relevant subtype's client_rules.js
   - When uncertain → Err on the side of including (can always remove)

4. **Guidelines Approach**:
   - Core voice/philosophy → Should be COMMON across subtypes
   - Content type variations → May differ by subtype (e.g., "game_card" vs "subscription")
   - When in doubt → Include common guidance, note variations where observed

RESPONSE FORMAT - Separate output for EACH subtype:

## SUBTYPE: [subtype_name]

### CLIENT_RULES

` + "```javascript" + `
[Complete client_rules.js - include both COMMON and SUBTYPE-SPECIFIC rules]
` + "```" + `

### GUIDELINES

[Complete guidelines.md - include common voice plus subtype-specific variations]

---

(Repeat for each subtype: %s)

IMPORTANT: Generate COMPLETE, STANDALONE outputs for each subtype. Don't cross-reference between subtypes in the output.`

const outputTemplatesBody = `Output 1: client_rules.js
` + "```javascript" + `
%s
` + "```" + `

Output 2: guidelines.md (follow this structure and guidance)
` + "```markdown" + `
%s
` + "```" + `

CRITICAL: Replace all placeholders ([CLIENT_NAME], [TARGET_LANGUAGE], etc.) with actual values from the documents you're analyzing.`

// DefaultPromptSections returns the built-in text of the user-editable
// prompt sections, keyed by driven prompt name.
func DefaultPromptSections() map[string]string {
	return map[string]string{
		driven.PromptMission:      defaultMission,
		driven.PromptContentFocus: defaultContentFocus,
	}
}

// PromptBuilder assembles extraction prompts from document sets.
type PromptBuilder struct {
	prompts   driven.PromptStore
	templates driven.TemplateStore
	estimator *Estimator
}

// NewPromptBuilder creates a prompt builder.
// The prompts store is optional; without it the built-in sections are used.
func NewPromptBuilder(prompts driven.PromptStore, templates driven.TemplateStore, estimator *Estimator) *PromptBuilder {
	if estimator == nil {
		estimator = NewEstimator(nil)
	}
	return &PromptBuilder{
		prompts:   prompts,
		templates: templates,
		estimator: estimator,
	}
}

// Build returns the full prompt for sets. One set produces the single
// subtype response format, several sets the batch format. Prompts above
// PromptTokenWarningThreshold are logged but still returned.
func (b *PromptBuilder) Build(clientName string, sets []domain.DocumentSet) (string, error) {
	if len(sets) == 0 {
		return "", fmt.Errorf("build prompt: %w: no document sets", domain.ErrInvalidInput)
	}

	templates, err := b.outputTemplatesSection()
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	sections := []string{
		b.section(driven.PromptMission, defaultMission),
		responseFormatSection(sets),
		"\n" + b.section(driven.PromptContentFocus, defaultContentFocus),
		extractionRulesSection(domain.HasPairs(sets)),
		templates,
		documentsSection(clientName, sets),
	}
	prompt := strings.Join(sections, "\n\n")

	if tokens := b.estimator.CountTokens(prompt); tokens > PromptTokenWarningThreshold {
		logger.Warn("Prompt has %d tokens, exceeding recommended limit of %d. Consider splitting into separate calls.",
			tokens, PromptTokenWarningThreshold)
	}
	return prompt, nil
}

// section loads a user override, falling back to the built-in text.
func (b *PromptBuilder) section(name, fallback string) string {
	if b.prompts == nil {
		return fallback
	}
	text, err := b.prompts.Load(name)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Debug("Using built-in %s section: %v", name, err)
		}
		return fallback
	}
	return strings.TrimSpace(text)
}

func (b *PromptBuilder) outputTemplatesSection() (string, error) {
	if b.templates == nil {
		return "", errors.New("template store not configured")
	}

	rules, err := b.templates.Load(driven.TemplateClientRulesCondensed)
	if err != nil {
		rules, err = b.templates.Load(driven.TemplateClientRules)
		if err != nil {
			return "", fmt.Errorf("load client rules template: %w", err)
		}
	}

	guidelines, err := b.templates.Load(driven.TemplateGuidelinesCondensed)
	if err != nil {
		full, fullErr := b.templates.Load(driven.TemplateGuidelines)
		if fullErr != nil {
			return "", fmt.Errorf("load guidelines template: %w", fullErr)
		}
		guidelines = topLevelHeaders(full, maxGuidelineHeaders)
	}

	return "\n" + ruleHeavy + "\nOUTPUT TEMPLATES\n" + ruleHeavy + "\n\n" +
		fmt.Sprintf(outputTemplatesBody, rules, guidelines), nil
}

// topLevelHeaders keeps the first n "## " header lines of a markdown document.
func topLevelHeaders(markdown string, n int) string {
	var headers []string
	for _, line := range strings.Split(markdown, "\n") {
		if len(headers) == n {
			break
		}
		if strings.HasPrefix(line, "## ") {
			headers = append(headers, line)
		}
	}
	return strings.Join(headers, "\n")
}

func responseFormatSection(sets []domain.DocumentSet) string {
	if len(sets) == 1 {
		return "\n" + ruleHeavy + "\nRESPONSE FORMAT\n" + ruleHeavy + "\n\n" +
			fmt.Sprintf(singleResponseBody, sets[0].Subtype)
	}
	return "\n" + ruleHeavy + "\nRESPONSE FORMAT (BATCH PROCESSING)\n" + ruleHeavy + "\n\n" +
		fmt.Sprintf(batchResponseBody, strings.Join(domain.Subtypes(sets), ", "))
}

func extractionRulesSection(hasPairs bool) string {
	terminology := terminologyUnpaired
	if hasPairs {
		terminology = terminologyPaired
	}
	return "\n" + ruleHeavy + "\nEXTRACTION RULES & EVIDENCE THRESHOLDS\n" + ruleHeavy + "\n\n" +
		fmt.Sprintf(extractionRulesBody, terminology)
}

func documentsSection(clientName string, sets []domain.DocumentSet) string {
	parts := []string{fmt.Sprintf("\n%s\nEXTRACTION TASK\n%s\n\nClient: %s\nSubtypes: %s\nTotal Documents: %d",
		ruleTask, ruleTask, clientName, strings.Join(domain.Subtypes(sets), ", "), domain.TotalDocuments(sets))}

	for i := range sets {
		set := &sets[i]
		parts = append(parts, subtypeBox(set))

		for _, pair := range set.PairedDocuments() {
			parts = append(parts, formatPair(pair))
		}

		unpaired := set.UnpairedDocuments()
		if len(unpaired) == 0 {
			continue
		}
		parts = append(parts, "\n"+ruleDots+"\nUNPAIRED DOCUMENTS\n"+
			"(Extract patterns/forbidden words only - skip terminology without pairs)\n"+ruleDots)
		for _, doc := range unpaired {
			label := "[UNKNOWN]"
			if doc.Language != "" {
				label = "[" + doc.Language + "]"
			}
			parts = append(parts, formatDocument(doc, label))
		}
	}

	return strings.Join(parts, "\n")
}

func subtypeBox(set *domain.DocumentSet) string {
	return fmt.Sprintf("\n┌%s┐\n│ SUBTYPE: %-68s │\n│ LANGUAGE SITUATION: %-56s │\n│ DOCUMENTS: %-65d │\n└%s┘",
		boxEdge, set.Subtype, set.LanguageSituation(), set.DocumentCount(), boxEdge)
}

func formatPair(pair domain.DocumentPair) string {
	return fmt.Sprintf("\n%s\nPAIR %s\n%s\n%s\n%s",
		ruleDots, pair.PairID, ruleDots,
		formatDocument(pair.Source, "SOURCE ["+pair.Source.Language+"]"),
		formatDocument(pair.Target, "TARGET ["+pair.Target.Language+"]"))
}

func formatDocument(doc domain.Document, label string) string {
	return fmt.Sprintf("\n──── %s: %s ────\n%s", label, doc.Filename, doc.Content)
}
