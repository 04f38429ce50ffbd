// Package audio provides container helpers for the byte streams
// synthesis runs produce: WAV stream merging, header rebuilding and
// optional local playback.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const headerSize = 44

// ErrNotWAV reports a payload without a RIFF/WAVE signature.
var ErrNotWAV = errors.New("payload is not a RIFF/WAVE stream")

// Format describes the PCM encoding of a WAV payload.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

type file struct {
	format Format
	pcm    []byte
	size   int // bytes consumed from the stream
}

// Info returns the PCM format of a WAV payload.
func Info(data []byte) (Format, error) {
	f, err := parseWAV(data)
	if err != nil {
		return Format{}, err
	}
	return f.format, nil
}

// Duration reports the play time of a WAV payload.
func Duration(data []byte) (time.Duration, error) {
	f, err := parseWAV(data)
	if err != nil {
		return 0, err
	}
	byteRate := f.format.SampleRate * f.format.Channels * f.format.BitsPerSample / 8
	if byteRate == 0 {
		return 0, errors.New("wav header declares a zero byte rate")
	}
	return time.Duration(float64(len(f.pcm)) / float64(byteRate) * float64(time.Second)), nil
}

// MergeWAV rewrites a back-to-back concatenation of WAV files into one
// playable file: the PCM payloads are spliced together and a fresh
// header is written for the combined length. A single well-formed file
// passes through re-encoded. All files must share one PCM format.
func MergeWAV(data []byte) ([]byte, error) {
	first, err := parseWAV(data)
	if err != nil {
		return nil, err
	}
	pcm := append([]byte(nil), first.pcm...)
	for off := first.size; off < len(data); {
		next, err := parseWAV(data[off:])
		if err != nil {
			return nil, fmt.Errorf("at byte %d: %w", off, err)
		}
		if next.format != first.format {
			return nil, fmt.Errorf("mismatched stream formats: %+v then %+v", first.format, next.format)
		}
		pcm = append(pcm, next.pcm...)
		off += next.size
	}
	return EncodeWAV(pcm, first.format), nil
}

// EncodeWAV wraps raw PCM in a canonical 44-byte WAV header.
func EncodeWAV(pcm []byte, f Format) []byte {
	out := make([]byte, headerSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(f.SampleRate*f.Channels*f.BitsPerSample/8))
	binary.LittleEndian.PutUint16(out[32:34], uint16(f.Channels*f.BitsPerSample/8))
	binary.LittleEndian.PutUint16(out[34:36], uint16(f.BitsPerSample))
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[headerSize:], pcm)
	return out
}

// parseWAV reads one WAV file from the front of a stream. The declared
// RIFF size bounds the file, so several files written back to back can
// be consumed in sequence.
func parseWAV(data []byte) (*file, error) {
	if len(data) < headerSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}
	total := 8 + int(binary.LittleEndian.Uint32(data[4:8]))
	if total > len(data) || total < headerSize {
		// Sloppy writers leave the size field short or overlong;
		// trust the buffer over the header.
		total = len(data)
	}

	f := &file{size: total}
	sawFmt := false
	for off := 12; off+8 <= total; {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		end := body + size
		if end > total {
			end = total
		}
		switch id {
		case "fmt ":
			if size < 16 || body+16 > total {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			f.format = Format{
				Channels:      int(binary.LittleEndian.Uint16(data[body+2 : body+4])),
				SampleRate:    int(binary.LittleEndian.Uint32(data[body+4 : body+8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(data[body+14 : body+16])),
			}
			sawFmt = true
		case "data":
			f.pcm = data[body:end]
		}
		off = end
		if size%2 == 1 {
			off++ // chunks are word aligned
		}
	}
	if !sawFmt || f.pcm == nil {
		return nil, errors.New("wav stream is missing its fmt or data chunk")
	}
	return f, nil
}
