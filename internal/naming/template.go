package naming

import "strings"

// Recognized placeholder tokens. Any other brace-delimited token invalidates
// a template.
const (
	PlaceholderName   = "name"
	PlaceholderNumber = "number"
)

// DefaultTemplate is substituted whenever a template is absent or invalid.
const DefaultTemplate = "{" + PlaceholderName + "}_converted"

// reservedChars are filesystem-reserved characters that must not appear in
// the literal portion of a template.
const reservedChars = `<>:"|?*\/`

// placeholderOrder fixes the precedence used by suggestion lookups.
var placeholderOrder = []string{PlaceholderName, PlaceholderNumber}

// Validate reports whether a naming template is well formed: braces balanced
// and never negative-nested, every brace-delimited token one of the
// recognized placeholders, and no filesystem-reserved characters in the
// literal text. An empty template is valid and means "use the default".
func Validate(template string) bool {
	depth := 0
	var token strings.Builder
	var literal strings.Builder
	for _, r := range template {
		switch r {
		case '{':
			depth++
			if depth > 1 {
				return false
			}
			token.Reset()
		case '}':
			depth--
			if depth < 0 {
				return false
			}
			if !recognizedPlaceholder(token.String()) {
				return false
			}
		default:
			if depth > 0 {
				token.WriteRune(r)
			} else {
				literal.WriteRune(r)
			}
		}
	}
	if depth != 0 {
		return false
	}
	return !strings.ContainsAny(literal.String(), reservedChars)
}

// Sanitize returns the template unchanged when it is non-empty and valid,
// and DefaultTemplate otherwise. Invalid templates are corrected, never
// rejected.
func Sanitize(template string) string {
	if strings.TrimSpace(template) == "" || !Validate(template) {
		return DefaultTemplate
	}
	return template
}

// HasNumberPlaceholder reports whether the template embeds the numeric
// placeholder, which changes how batch indices are applied.
func HasNumberPlaceholder(template string) bool {
	return strings.Contains(template, "{"+PlaceholderNumber+"}")
}

func recognizedPlaceholder(token string) bool {
	for _, name := range placeholderOrder {
		if token == name {
			return true
		}
	}
	return false
}
