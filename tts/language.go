package tts

import "golang.org/x/text/language"

// Devanagari block. Detection is deliberately coarse: any rune in the
// block marks the whole text as Hindi, the closest supported locale for
// Devanagari-script input (including Nepali).
const (
	devanagariLo = 0x0900
	devanagariHi = 0x097F
)

// DetectLanguage classifies text by script. Devanagari wins over Latin
// so mixed Hindi/English prose keeps the Hindi voice; everything else,
// including empty or symbol-only input, maps to English. The function
// is pure and total: it never fails.
func DetectLanguage(text string) language.Tag {
	for _, r := range text {
		if r >= devanagariLo && r <= devanagariHi {
			return language.Hindi
		}
	}
	return language.English
}
