package tts

import (
	"strings"
	"unicode/utf8"
)

// Chunker splits normalized text into ordered segments bounded by a
// maximum rune count. It breaks at sentence boundaries first, falls
// back to word boundaries for oversized sentences, and hard-truncates
// single oversized words, so no segment ever exceeds the cap and the
// process always terminates.
type Chunker struct {
	maxLen     int
	boundaries map[rune]struct{}
}

// NewChunker returns a Chunker with the given segment cap and
// sentence-terminal rune set. Non-positive caps and empty boundary
// sets fall back to the defaults.
func NewChunker(maxLen int, boundaries []rune) *Chunker {
	if maxLen <= 0 {
		maxLen = DefaultMaxSegmentLen
	}
	if len(boundaries) == 0 {
		boundaries = []rune(DefaultBoundaries)
	}
	set := make(map[rune]struct{}, len(boundaries))
	for _, r := range boundaries {
		set[r] = struct{}{}
	}
	return &Chunker{maxLen: maxLen, boundaries: set}
}

// Chunk partitions text into segments. Empty input yields nil; input
// within the cap is returned as a single segment, punctuation intact.
// Lengths are counted in runes, matching the character semantics of
// the synthesis endpoints the cap exists for.
func (c *Chunker) Chunk(text string) []Segment {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) <= c.maxLen {
		return []Segment{{Index: 1, Text: trimmed}}
	}

	var (
		chunks []string
		buf    string
		bufLen int
	)
	flush := func() {
		if buf != "" {
			chunks = append(chunks, buf)
			buf, bufLen = "", 0
		}
	}
	grow := func(piece string, pieceLen int) {
		if buf == "" {
			buf, bufLen = piece, pieceLen
			return
		}
		buf += " " + piece
		bufLen += pieceLen + 1
	}

	for _, sentence := range c.split(trimmed) {
		sLen := utf8.RuneCountInString(sentence)
		if bufLen+sLen+1 > c.maxLen {
			flush()
			if sLen > c.maxLen {
				// Sentence alone exceeds the cap: pack its words
				// instead. The accumulator is shared, so a short
				// tail of words joins the following sentences.
				for _, word := range strings.Fields(sentence) {
					wLen := utf8.RuneCountInString(word)
					if bufLen+wLen+1 > c.maxLen {
						flush()
						if wLen > c.maxLen {
							chunks = append(chunks, truncateRunes(word, c.maxLen))
							continue
						}
					}
					grow(word, wLen)
				}
				continue
			}
		}
		grow(sentence, sLen)
	}
	flush()

	segments := make([]Segment, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		segments = append(segments, Segment{Index: len(segments) + 1, Text: chunk})
	}
	if len(segments) == 0 {
		// Pathological input, e.g. nothing but boundary runes. Keep
		// the run alive with the leading slice of the original text.
		return []Segment{{Index: 1, Text: truncateRunes(trimmed, c.maxLen)}}
	}
	return segments
}

// split cuts text into trimmed sentence candidates, discarding the
// boundary runes themselves and any empty pieces between consecutive
// delimiters.
func (c *Chunker) split(text string) []string {
	fields := strings.FieldsFunc(text, c.isBoundary)
	sentences := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			sentences = append(sentences, f)
		}
	}
	return sentences
}

func (c *Chunker) isBoundary(r rune) bool {
	_, ok := c.boundaries[r]
	return ok
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
