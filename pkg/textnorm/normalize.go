// Package textnorm normalizes Spanish product text for search and
// keyword extraction. The accent table is fixed: catalog descriptions
// only ever carry the seven accented characters below.
package textnorm

import (
	"regexp"
	"strings"
)

var whitespaceRegexp = regexp.MustCompile(`\s+`)

// accentReplacer folds the accented characters that appear in catalog
// descriptions to their ASCII equivalents. Lowercase only; Normalize
// lowercases before folding.
var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ñ", "n", "ü", "u",
)

// Normalize lowercases text, folds accented characters to ASCII and
// collapses whitespace runs into single spaces.
//
// Examples:
//   - "Válvula  Esférica" → "valvula esferica"
//   - "CAÑO PVC"          → "cano pvc"
//   - "  agua   fría "    → "agua fria"
//
// Normalize is idempotent: applying it twice gives the same result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = accentReplacer.Replace(text)
	text = whitespaceRegexp.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// sanitizeReplacer covers both cases since error text from drivers and
// HTTP clients is not lowercased first.
var sanitizeReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"ñ", "n", "ü", "u",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U",
	"Ñ", "N", "Ü", "U",
)

// SanitizeASCII folds accented characters out of a message without
// touching case or spacing. Used on error text before logging so log
// pipelines that choke on non-ASCII stay readable.
func SanitizeASCII(msg string) string {
	return sanitizeReplacer.Replace(msg)
}
