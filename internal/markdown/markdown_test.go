package markdown

import "testing"

func TestSpeakable(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "heading gains a period",
			input:    "# Title\n\nBody text here.",
			expected: "Title. Body text here.",
		},
		{
			name:     "code blocks dropped",
			input:    "Before.\n\n```go\nfmt.Println(\"hi\")\n```\n\nAfter.",
			expected: "Before. After.",
		},
		{
			name:     "inline code kept bare",
			input:    "Run `vaani --help` to begin.",
			expected: "Run vaani --help to begin.",
		},
		{
			name:     "link keeps its label",
			input:    "Read [the docs](https://example.com) first.",
			expected: "Read the docs first.",
		},
		{
			name:     "image dropped",
			input:    "Look: ![diagram](pic.png) done.",
			expected: "Look: done.",
		},
		{
			name:     "list items become sentences",
			input:    "- first point\n- second point",
			expected: "first point. second point.",
		},
		{
			name:     "emphasis unwrapped",
			input:    "This is *very* **important** text.",
			expected: "This is very important text.",
		},
		{
			name:     "blockquote unwrapped",
			input:    "> Quoted wisdom.",
			expected: "Quoted wisdom.",
		},
		{
			name:     "html dropped",
			input:    "<div>skip me</div>\n\nKeep me.",
			expected: "Keep me.",
		},
		{
			name:     "soft line break becomes a space",
			input:    "line one\nline two.",
			expected: "line one line two.",
		},
		{
			name:     "terminal danda respected",
			input:    "## नमस्ते\n\nदुनिया।",
			expected: "नमस्ते. दुनिया।",
		},
		{
			name:     "already punctuated paragraph",
			input:    "Hello!",
			expected: "Hello!",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Speakable(tt.input); got != tt.expected {
				t.Errorf("Speakable() = %q, want %q", got, tt.expected)
			}
		})
	}
}
