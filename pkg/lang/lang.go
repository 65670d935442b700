// Package lang holds the language codes exchanged with the web front end
// and the model backend. Codes are free uppercase tokens; only a handful
// carry meaning of their own.
package lang

import "strings"

const (
	// Auto asks the model to detect the source language.
	Auto = "AUTO"
	// Unknown is reported when detection produced nothing usable.
	Unknown = "UNKNOWN"

	PL = "PL"
	DE = "DE"
	NL = "NL"
	EN = "EN"
)

// Normalize trims and upper-cases a language code.
// An empty code is replaced by fallback. Any other value passes through
// unchanged, so codes the model invents (e.g. "FR") survive the round trip.
// Examples:
//   - " nl " -> "NL"
//   - "fr-be" -> "FR-BE"
//   - "" -> fallback
func Normalize(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback
	}
	return code
}

// Supported reports whether code has its own entry in the reply bank.
func Supported(code string) bool {
	switch code {
	case PL, DE, NL, EN:
		return true
	default:
		return false
	}
}
