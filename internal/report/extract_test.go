package report

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLen   int
		fallback string
		want     string
	}{
		{"first sentence", "My manager falsified receipts. It happened twice.", 60, TitleFallback, "My manager falsified receipts"},
		{"filler stripped", "Um, well, hi, there is a gas leak in lab 3! Please help.", 60, VoiceTitleFallback, "There is a gas leak in lab 3"},
		{"filler only sentence skipped", "Uh. Okay. Someone took cash from the till?", 60, VoiceTitleFallback, "Someone took cash from the till"},
		{"empty", "", 60, VoiceTitleFallback, VoiceTitleFallback},
		{"all filler", "um... uh... well", 60, TitleFallback, TitleFallback},
		{"truncated", "the quick brown fox jumps over the lazy dog again and again", 20, TitleFallback, "The quick brown f..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTitle(tt.text, tt.maxLen, tt.fallback)
			if got != tt.want {
				t.Fatalf("ExtractTitle() = %q, want %q", got, tt.want)
			}
			if utf8.RuneCountInString(got) > tt.maxLen {
				t.Fatalf("ExtractTitle() = %q longer than %d", got, tt.maxLen)
			}
		})
	}
}

func TestExtractSummary(t *testing.T) {
	text := "So I saw it happen. The supervisor took the money. He did it again on Friday. Then he laughed about it."

	got := ExtractSummary(text, 200)
	want := "I saw it happen. The supervisor took the money. He did it again on Friday."
	if got != want {
		t.Fatalf("ExtractSummary() = %q, want %q", got, want)
	}

	long := strings.Repeat("word ", 100) + "."
	got = ExtractSummary(long, 200)
	if utf8.RuneCountInString(got) > 200 || !strings.HasSuffix(got, "...") {
		t.Fatalf("ExtractSummary() = %q, expected truncation with ellipsis", got)
	}

	if got := ExtractSummary("   ", 200); got != "" {
		t.Fatalf("ExtractSummary(blank) = %q, want empty", got)
	}
}
