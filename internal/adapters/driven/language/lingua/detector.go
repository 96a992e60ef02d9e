// Package lingua detects the language of copy documents with lingua-go.
package lingua

import (
	"strings"
	"sync"

	lg "github.com/pemistahl/lingua-go"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.LanguageDetector = (*Detector)(nil)

// languages covers every code of domain.LanguageCodes.
// Both written forms of Norwegian report as NO.
var languages = []lg.Language{
	lg.English, lg.German, lg.French, lg.Dutch, lg.Spanish, lg.Italian,
	lg.Portuguese, lg.Polish, lg.Russian, lg.Japanese, lg.Chinese, lg.Korean,
	lg.Arabic, lg.Hebrew, lg.Turkish, lg.Czech, lg.Slovak, lg.Hungarian,
	lg.Romanian, lg.Bulgarian, lg.Croatian, lg.Slovene, lg.Serbian, lg.Ukrainian,
	lg.Danish, lg.Bokmal, lg.Nynorsk, lg.Swedish, lg.Finnish, lg.Greek,
	lg.Thai, lg.Vietnamese, lg.Indonesian, lg.Malay, lg.Tagalog,
}

// Detector wraps a lingua language detector.
type Detector struct {
	mu       sync.Mutex
	detector lg.LanguageDetector
}

// New builds a detector restricted to the supported languages.
// Language models load lazily on first use.
func New() *Detector {
	return &Detector{
		detector: lg.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect returns the uppercase ISO 639-1 code of text.
func (d *Detector) Detect(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	d.mu.Lock()
	lang, ok := d.detector.DetectLanguageOf(text)
	d.mu.Unlock()

	if !ok {
		return "", false
	}
	code := isoCode(lang)
	if !domain.IsKnownLanguage(code) {
		return "", false
	}
	return code, true
}

func isoCode(lang lg.Language) string {
	switch lang {
	case lg.Bokmal, lg.Nynorsk:
		return "NO"
	}
	return strings.ToUpper(lang.IsoCode639_1().String())
}
