package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/gitcha"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/vaani/internal/audio"
	"github.com/dgnsrekt/vaani/tts"
)

var batchIgnorePatterns = []string{"node_modules", ".*"}

var batchCmd = &cobra.Command{
	Use:   "batch [DIR]",
	Short: "Synthesize every speakable file under a directory",
	Long: paragraph(
		fmt.Sprintf("\nFind every %s file under a directory and synthesize each one to a sibling audio file. Outputs newer than their source are skipped.", keyword("markdown or text")),
	),
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("unable to resolve directory: %w", err)
	}

	ch, err := gitcha.FindFilesExcept(dir, speakablePatterns, batchIgnorePatterns)
	if err != nil {
		return fmt.Errorf("unable to search %s: %w", dir, err)
	}

	orch, err := buildOrchestrator()
	if err != nil {
		return err
	}

	var done, skipped, failed int
	var written uint64
	for res := range ch {
		out := siblingOutputPath(res.Path, format)
		if upToDate(res.Path, out) {
			skipped++
			log.Debug("output up to date", "source", res.Path)
			continue
		}
		n, err := synthesizeFile(cmd.Context(), orch, res.Path, out)
		if err != nil {
			failed++
			log.Error("batch item failed", "source", res.Path, "err", err)
			fmt.Fprintf(os.Stderr, "! %s: %v\n", res.Path, err)
			continue
		}
		done++
		written += uint64(n)
		if !quiet {
			fmt.Printf("%s -> %s\n", res.Path, out)
		}
	}

	fmt.Printf("%d synthesized, %d skipped, %d failed (%s written)\n",
		done, skipped, failed, humanize.Bytes(written))
	if done == 0 && failed > 0 {
		return errors.New("all batch items failed")
	}
	return nil
}

// buildOrchestrator assembles the engine and pipeline the way the
// root command does, without the per-run display.
func buildOrchestrator() (*tts.Orchestrator, error) {
	eng, err := buildEngine()
	if err != nil {
		return nil, err
	}
	cfg, err := synthConfig()
	if err != nil {
		return nil, err
	}
	return tts.New(eng, cfg)
}

func siblingOutputPath(src, format string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "." + format
}

// upToDate reports whether out exists and is newer than src.
func upToDate(src, out string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	outInfo, err := os.Stat(out)
	if err != nil {
		return false
	}
	return outInfo.ModTime().After(srcInfo.ModTime())
}

// synthesizeFile speaks one source file into out and reports the
// number of audio bytes written.
func synthesizeFile(ctx context.Context, orch *tts.Orchestrator, src, out string) (int, error) {
	b, err := os.ReadFile(src)
	if err != nil {
		return 0, fmt.Errorf("unable to open file: %w", err)
	}
	text := normalize(string(b), isMarkdownPath(src))

	res, err := orch.Synthesize(ctx, text, voice)
	if err != nil {
		return 0, err
	}
	if res.Format == "wav" {
		if merged, err := audio.MergeWAV(res.Audio); err == nil {
			res.Audio = merged
		}
	}
	if err := os.WriteFile(out, res.Audio, 0o644); err != nil {
		return 0, fmt.Errorf("unable to write audio: %w", err)
	}
	return len(res.Audio), nil
}
