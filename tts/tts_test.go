package tts

import "testing"

func TestSuggestVoice(t *testing.T) {
	voices := []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

	tests := []struct {
		name string
		hint string
		want string
		ok   bool
	}{
		{"close misspelling", "nva", "nova", true},
		{"exact name", "alloy", "alloy", true},
		{"uppercase hint", "ECHO", "echo", true},
		{"empty hint", "", "", false},
		{"nothing close", "qqq", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SuggestVoice(tt.hint, voices)
			if ok != tt.ok {
				t.Fatalf("SuggestVoice(%q) ok = %v, want %v", tt.hint, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("SuggestVoice(%q) = %q, want %q", tt.hint, got, tt.want)
			}
		})
	}

	if _, ok := SuggestVoice("nova", nil); ok {
		t.Error("Expected no suggestion from an empty catalog")
	}
}
