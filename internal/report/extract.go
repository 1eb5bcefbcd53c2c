package report

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultTitleLength   = 60
	DefaultSummaryLength = 200

	VoiceTitleFallback = "Voice Report"
	TitleFallback      = "Report"

	summarySentences = 3
	ellipsis         = "..."
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]*`)

// Interjections that open spoken reports and carry no meaning.
var fillerWords = map[string]bool{
	"um": true, "umm": true, "uh": true, "uhh": true, "er": true, "erm": true,
	"ah": true, "oh": true, "well": true, "so": true, "okay": true, "ok": true,
	"hi": true, "hello": true, "hey": true, "yeah": true, "like": true,
}

// ExtractTitle derives a title from the first sentence that has content once
// leading filler words are removed. The result is at most maxLen runes.
func ExtractTitle(text string, maxLen int, fallback string) string {
	if maxLen <= 0 {
		maxLen = DefaultTitleLength
	}

	for _, sentence := range sentences(text) {
		title := stripFiller(strings.TrimRight(sentence, ".!?"))
		if title == "" {
			continue
		}
		return truncate(capitalize(title), maxLen)
	}

	return fallback
}

// ExtractSummary joins the first few sentences of text, capped at maxLen runes.
func ExtractSummary(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultSummaryLength
	}

	parts := sentences(text)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > summarySentences {
		parts = parts[:summarySentences]
	}

	parts[0] = capitalize(stripFiller(parts[0]))
	summary := strings.TrimSpace(strings.Join(parts, " "))

	return truncate(summary, maxLen)
}

func sentences(text string) []string {
	var out []string
	for _, s := range sentencePattern.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if strings.Trim(s, ".!? ") == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func stripFiller(s string) string {
	words := strings.Fields(s)
	i := 0
	for i < len(words) && fillerWords[strings.ToLower(strings.Trim(words[i], ",;:-.!?"))] {
		i++
	}
	return strings.TrimLeft(strings.Join(words[i:], " "), ",;:- ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// truncate cuts s to at most maxLen runes, including a trailing ellipsis.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	cut := maxLen - len(ellipsis)
	if cut <= 0 {
		return string(runes[:maxLen])
	}

	return strings.TrimSpace(string(runes[:cut])) + ellipsis
}
