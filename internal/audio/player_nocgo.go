//go:build nocgo
// +build nocgo

package audio

import (
	"context"
	"errors"
)

// Play reports that playback was compiled out.
func Play(ctx context.Context, wav []byte) error {
	return errors.New("audio not available in nocgo build")
}
