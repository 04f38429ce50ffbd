package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Re-synthesize files in a directory as they change",
	Long: paragraph(
		fmt.Sprintf("\nWatch a directory and synthesize every %s file that is created or written, until interrupted.", keyword("markdown or text")),
	),
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("unable to resolve directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to start watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("unable to watch %s: %w", dir, err)
	}

	orch, err := buildOrchestrator()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if !quiet {
		fmt.Printf("Watching %s (ctrl+c to stop)\n", keyword(dir))
	}

	// Editors fire several events per save; collapse bursts per path.
	recent := make(map[string]time.Time)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isSpeakablePath(event.Name) {
				continue
			}
			if t, seen := recent[event.Name]; seen && time.Since(t) < time.Second {
				continue
			}
			recent[event.Name] = time.Now()

			out := siblingOutputPath(event.Name, format)
			n, err := synthesizeFile(ctx, orch, event.Name, out)
			if err != nil {
				log.Error("watch item failed", "source", event.Name, "err", err)
				fmt.Fprintf(os.Stderr, "! %s: %v\n", event.Name, err)
				continue
			}
			if !quiet {
				fmt.Printf("%s -> %s (%d bytes)\n", event.Name, out, n)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "err", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func isSpeakablePath(p string) bool {
	return isMarkdownPath(p) || strings.EqualFold(filepath.Ext(p), ".txt")
}
