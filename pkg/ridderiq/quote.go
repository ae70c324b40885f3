package ridderiq

import (
	"regexp"
	"strings"
)

var (
	numeralPattern  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	funcCallPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\(.*\)$`)

	// Backslashes are escaped too, so a trailing one cannot swallow the closing quote.
	literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// Quote prepares a scalar for embedding in a filter expression. Numerals,
// booleans and function calls pass through; everything else becomes a
// double-quoted string literal with `"` and `\` escaped.
func Quote(value string) string {
	if value == "" {
		return `""`
	}

	if isBareLiteral(value) {
		return value
	}

	return `"` + literalEscaper.Replace(value) + `"`
}

func isBareLiteral(value string) bool {
	if numeralPattern.MatchString(value) {
		return true
	}

	if strings.EqualFold(value, "true") || strings.EqualFold(value, "false") {
		return true
	}

	return funcCallPattern.MatchString(value)
}
