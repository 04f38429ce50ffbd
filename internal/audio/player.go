//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// newPlayerContext opens the process-wide audio device. oto allows one
// context per process, so the first format wins.
func newPlayerContext(f Format) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   f.SampleRate,
			ChannelCount: f.Channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// Play decodes a WAV payload and plays it on the default output device,
// blocking until playback finishes or ctx is cancelled.
func Play(ctx context.Context, wav []byte) error {
	f, err := parseWAV(wav)
	if err != nil {
		return err
	}
	if f.format.BitsPerSample != 16 {
		return fmt.Errorf("unsupported bit depth %d, want 16", f.format.BitsPerSample)
	}

	octx, err := newPlayerContext(f.format)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}

	player := octx.NewPlayer(bytes.NewReader(f.pcm))
	defer player.Close()
	player.Play()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-tick.C:
		}
	}
	return nil
}
