package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// setupLog routes logging so stdout stays clean for envelopes and
// summaries. With VAANI_LOGFILE set everything goes to that file at
// debug level; otherwise logs are discarded until --debug sends them
// to stderr.
func setupLog() (func() error, error) {
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.RFC3339)

	if fp := os.Getenv("VAANI_LOGFILE"); fp != "" {
		f, err := os.OpenFile(fp, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}
