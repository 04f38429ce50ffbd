package tts

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// SniffFormat inspects the leading bytes of a payload and returns the
// audio container it announces ("mp3", "wav", "ogg", "flac"), or the
// empty string when no known signature matches.
func SniffFormat(data []byte) string {
	switch {
	case len(data) >= 3 && bytes.Equal(data[:3], []byte("ID3")):
		return "mp3"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// Bare MPEG frame sync, common for streams without an ID3 tag.
		return "mp3"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return "wav"
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")):
		return "ogg"
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("fLaC")):
		return "flac"
	}
	return ""
}

// PlausibleAudio reports whether a backend response can be real audio:
// at least min bytes long and carrying a recognized container
// signature. Backends that fail sometimes answer 200 with a textual
// error body; those fail the signature check.
func PlausibleAudio(data []byte, min int) bool {
	if len(data) < min {
		return false
	}
	return SniffFormat(data) != ""
}

// payloadPreview extracts a short single-line excerpt from a rejected
// payload for diagnostics. Binary junk yields the empty string.
func payloadPreview(data []byte) string {
	const window = 256
	if len(data) > window {
		data = data[:window]
	}
	if !utf8.Valid(data) {
		return ""
	}
	line := strings.Join(strings.Fields(string(data)), " ")
	return runewidth.Truncate(line, 60, "…")
}
