package tts

import (
	"math/rand"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected language.Tag
	}{
		{name: "plain english", input: "Hello world.", expected: language.English},
		{name: "hindi", input: "नमस्ते दुनिया।", expected: language.Hindi},
		{name: "mixed scripts prefer hindi", input: "Hello नमस्ते friends", expected: language.Hindi},
		{name: "devanagari digits", input: "१२३", expected: language.Hindi},
		{name: "empty defaults to english", input: "", expected: language.English},
		{name: "digits and punctuation", input: "12345 !?.", expected: language.English},
		{name: "emoji only", input: "🎉🎶🔊", expected: language.English},
		{name: "latin with diacritics", input: "café au lait", expected: language.English},
		{name: "cyrillic falls back to english", input: "привет мир", expected: language.English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.input); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// DetectLanguage must be total: any rune soup maps to one of the two
// supported tags.
func TestDetectLanguageTotality(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		var b strings.Builder
		for j := rng.Intn(64); j > 0; j-- {
			b.WriteRune(rune(rng.Intn(0x110000)))
		}
		input := b.String()

		got := DetectLanguage(input)
		if got != language.Hindi && got != language.English {
			t.Fatalf("Unexpected tag %v for input %q", got, input)
		}
		for _, r := range input {
			if r >= devanagariLo && r <= devanagariHi {
				if got != language.Hindi {
					t.Fatalf("Expected hindi for input containing %q, got %v", r, got)
				}
				break
			}
		}
	}
}
