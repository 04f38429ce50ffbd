package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# default voice (alloy, echo, fable, onyx, nova, shimmer)
voice: "alloy"
# speech engine: openai or mock
engine: "openai"
# audio container requested from the engine: mp3, wav, opus, aac, flac
format: "mp3"

# OpenAI-compatible engine configuration
openai:
  # base_url: "https://api.openai.com/v1"
  # api_key: ""  # or set VAANI_API_KEY / OPENAI_API_KEY
  model: "tts-1"
  speed: 1.0
  # client-side throttle, requests per minute
  requests_per_minute: 50

# Synthesis pipeline tuning
synthesis:
  # input ceilings per run
  max_input_chars: 2000
  max_input_bytes: 3000
  # longest text sent in a single request
  max_segment_len: 190
  # sentence-boundary characters for chunking
  # boundaries: ".!?।"
  # attempts per segment before it is recorded as failed
  max_retries: 3
  # per-attempt deadline
  attempt_timeout: "30s"
  # wait between retries; rate-limited retries back off by attempt
  retry_delay: "1s"
  backoff_step: "2s"
  # pause between consecutive segment requests
  pacing_delay: "500ms"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the vaani config file",
	Long:    paragraph(fmt.Sprintf("\n%s the vaani config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("vaani config\nvaani config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Vaani", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
