package domain

import "strings"

// UnknownLanguage is the language code assigned when detection fails.
const UnknownLanguage = "UNKNOWN"

// UnpairedID marks a document that was considered for pairing but has no partner.
const UnpairedID = "-"

// LanguageCodes is the whitelist of two-letter codes recognised in filenames.
// The order is stable and is used when building filename patterns.
var LanguageCodes = []string{
	"EN", "DE", "FR", "NL", "ES", "IT", "PT", "PL", "RU", "JA",
	"ZH", "KO", "AR", "HE", "TR", "CS", "SK", "HU", "RO", "BG",
	"HR", "SL", "SR", "UK", "DA", "NO", "SV", "FI", "EL", "TH",
	"VI", "ID", "MS", "TL",
}

var languageSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(LanguageCodes))
	for _, code := range LanguageCodes {
		set[code] = struct{}{}
	}
	return set
}()

// IsKnownLanguage reports whether code (any case) is in the whitelist.
func IsKnownLanguage(code string) bool {
	_, ok := languageSet[strings.ToUpper(code)]
	return ok
}

// IsEnglishVariant reports whether code denotes English (EN, EN-GB, en-us, ...).
func IsEnglishVariant(code string) bool {
	return strings.HasPrefix(strings.ToUpper(code), "EN")
}

// IsUnknownLanguage reports whether code is empty or the UNKNOWN marker.
func IsUnknownLanguage(code string) bool {
	return code == "" || strings.EqualFold(code, UnknownLanguage)
}
