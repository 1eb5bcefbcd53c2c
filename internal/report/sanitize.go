package report

import "strings"

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// Sanitize drops angle brackets and surrounding whitespace. It is not an
// HTML sanitizer; rendering layers must still escape output.
func Sanitize(text string) string {
	return strings.TrimSpace(angleBrackets.Replace(text))
}
