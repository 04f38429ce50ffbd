package tts

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSniffFormat(t *testing.T) {
	wav := append([]byte("RIFF"), 0x24, 0x08, 0x00, 0x00)
	wav = append(wav, []byte("WAVE")...)
	avi := append([]byte("RIFF"), 0x24, 0x08, 0x00, 0x00)
	avi = append(avi, []byte("AVI ")...)

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"id3 tagged mp3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), "mp3"},
		{"bare mpeg frame", []byte{0xFF, 0xFB, 0x90, 0x00}, "mp3"},
		{"wav", wav, "wav"},
		{"ogg", []byte("OggS\x00\x02\x00\x00"), "ogg"},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), "flac"},
		{"riff that is not wave", avi, ""},
		{"frame sync bits unset", []byte{0xFF, 0x1B, 0x90, 0x00}, ""},
		{"json body", []byte(`{"error":"denied"}`), ""},
		{"empty", nil, ""},
		{"too short", []byte("ID"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffFormat(tt.data); got != tt.want {
				t.Errorf("SniffFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlausibleAudio(t *testing.T) {
	if PlausibleAudio(validAudio(99), 100) {
		t.Error("Expected 99 bytes to fail a 100 byte floor")
	}
	if !PlausibleAudio(validAudio(100), 100) {
		t.Error("Expected 100 tagged bytes to pass a 100 byte floor")
	}
	if PlausibleAudio(bytes.Repeat([]byte{0x00}, 200), 100) {
		t.Error("Expected untagged bytes to fail whatever their length")
	}
	if PlausibleAudio([]byte(`{"error":"upstream failed"}`), 0) {
		t.Error("Expected a textual body to fail")
	}
}

func TestPayloadPreview(t *testing.T) {
	got := payloadPreview([]byte("{\"error\":\n  \"rate limit exceeded\"}"))
	if got != `{"error": "rate limit exceeded"}` {
		t.Errorf("Expected a collapsed single line, got %q", got)
	}

	if got := payloadPreview([]byte{0xFF, 0xFE, 0x00, 0x01}); got != "" {
		t.Errorf("Expected no preview for binary junk, got %q", got)
	}

	long := payloadPreview([]byte(strings.Repeat("upstream exploded. ", 30)))
	if !strings.HasSuffix(long, "…") {
		t.Errorf("Expected a truncated preview, got %q", long)
	}
	if n := utf8.RuneCountInString(long); n > 60 {
		t.Errorf("Expected at most 60 runes, got %d", n)
	}
}
