// Package main provides the entry point for the vaani CLI.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/vaani/internal/audio"
	"github.com/dgnsrekt/vaani/internal/engine"
	"github.com/dgnsrekt/vaani/internal/markdown"
	"github.com/dgnsrekt/vaani/tts"
	"github.com/dgnsrekt/vaani/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile    string
	outputPath    string
	voice         string
	engineName    string
	format        string
	jsonOut       bool
	requestJSON   string
	playAudio     bool
	forceMarkdown bool
	copyAudio     bool
	quiet         bool
	debug         bool

	speakablePatterns = []string{"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown", "*.txt"}

	rootCmd = &cobra.Command{
		Use:   "vaani [SOURCE]",
		Short: "Read text aloud from the CLI",
		Long: paragraph(
			fmt.Sprintf("\nTurn text into speech, %s. Hand it a file, pipe it text, or pass a JSON request.", keyword("right from the command line")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	voice = viper.GetString("voice")
	engineName = viper.GetString("engine")
	format = viper.GetString("format")

	if viper.GetBool("debug") && os.Getenv("VAANI_LOGFILE") == "" {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.DebugLevel)
	}

	// Playback decodes the container, which only works for WAV.
	if playAudio && !cmd.Flags().Changed("format") {
		format = "wav"
	}
	if playAudio && format != "wav" {
		return errors.New("--play requires --format wav")
	}

	// The request contract always answers with an envelope.
	if requestJSON != "" {
		jsonOut = true
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(cmd *cobra.Command, args []string) error {
	if requestJSON != "" {
		return executeRequest(cmd, requestJSON)
	}

	text, name, err := readInput(args)
	if err != nil {
		if jsonOut {
			return writeEnvelope(os.Stdout, envelope{Error: envelopeMessage(err, nil)})
		}
		return err
	}
	return synthesize(cmd.Context(), text, voice, name)
}

// executeRequest serves the argv contract: a single JSON object in,
// a single JSON envelope out, exit code zero either way.
func executeRequest(cmd *cobra.Command, raw string) error {
	req, err := parseRequest(raw)
	if err != nil {
		return writeEnvelope(os.Stdout, envelope{Error: err.Error()})
	}
	v := req.Voice
	if v == "" {
		v = voice
	}
	return synthesize(cmd.Context(), req.Text, v, "request")
}

// readInput resolves the text to speak. A piped stdin wins over
// arguments; otherwise the argument names a file, with markdown
// sources reduced to their speakable text.
func readInput(args []string) (text, name string, err error) {
	if piped, err := stdinIsPipe(); err != nil {
		return "", "", err
	} else if piped || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return normalize(string(b), forceMarkdown), "stdin", nil
	}

	if len(args) == 0 {
		return "", "", errors.New(msgNoInput)
	}

	path, err := homedir.Expand(args[0])
	if err != nil {
		return "", "", fmt.Errorf("unable to expand path: %w", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("unable to open file: %w", err)
	}
	return normalize(string(b), forceMarkdown || isMarkdownPath(path)), path, nil
}

func isMarkdownPath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".md", ".mdown", ".mkdn", ".mkd", ".markdown":
		return true
	}
	return false
}

func normalize(s string, md bool) string {
	if md {
		return markdown.Speakable(s)
	}
	return s
}

// synthesize runs one end-to-end synthesis and renders the outcome in
// the selected mode: JSON envelope, or file plus summary, with a live
// progress view when stdout is a terminal.
func synthesize(ctx context.Context, text, voiceHint, name string) error {
	eng, err := buildEngine()
	if err != nil {
		return fail(err, nil)
	}
	cfg, err := synthConfig()
	if err != nil {
		return fail(err, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interactive := !jsonOut && !quiet && term.IsTerminal(int(os.Stdout.Fd()))

	var opts []tts.Option
	var events chan tts.ProgressEvent
	if interactive {
		events = make(chan tts.ProgressEvent, 32)
		opts = append(opts, tts.WithProgress(func(ev tts.ProgressEvent) {
			// Never block the run on a stalled display.
			select {
			case events <- ev:
			default:
			}
		}))
	}

	orch, err := tts.New(eng, cfg, opts...)
	if err != nil {
		return fail(err, nil)
	}

	var res *tts.SynthesisResult
	var synthErr error
	if interactive {
		done := make(chan struct{})
		go func() {
			defer close(done)
			res, synthErr = orch.Synthesize(ctx, text, voiceHint)
			close(events)
		}()
		if _, err := ui.NewProgram(events).Run(); err != nil {
			log.Error("progress display failed", "err", err)
		}
		// Quitting the display abandons the run.
		cancel()
		<-done
	} else {
		res, synthErr = orch.Synthesize(ctx, text, voiceHint)
	}

	if synthErr == nil && res.Format == "wav" {
		// Segments arrive as separate WAV files back to back; splice
		// them into one playable container.
		if merged, err := audio.MergeWAV(res.Audio); err == nil {
			res.Audio = merged
		} else {
			log.Warn("could not rebuild wav container", "err", err)
		}
	}

	if jsonOut {
		return writeJSONResult(res, synthErr)
	}
	return writeFileResult(res, synthErr, name)
}

// fail reports a pre-run error in the selected mode.
func fail(err error, warnings []tts.SegmentFailure) error {
	if jsonOut {
		return writeEnvelope(os.Stdout, envelope{Error: envelopeMessage(err, warnings), Warnings: warnings})
	}
	return err
}

func writeJSONResult(res *tts.SynthesisResult, synthErr error) error {
	if synthErr != nil {
		return writeEnvelope(os.Stdout, envelope{
			Error:    envelopeMessage(synthErr, res.Warnings),
			Warnings: res.Warnings,
		})
	}

	encoded := base64.StdEncoding.EncodeToString(res.Audio)
	if copyAudio {
		copyToClipboard(encoded)
	}
	if outputPath != "" {
		if err := writeAudioFile(res); err != nil {
			return writeEnvelope(os.Stdout, envelope{Error: err.Error(), Warnings: res.Warnings})
		}
	}
	return writeEnvelope(os.Stdout, envelope{
		Success:  true,
		Audio:    encoded,
		Warnings: res.Warnings,
	})
}

func writeFileResult(res *tts.SynthesisResult, synthErr error, name string) error {
	if synthErr != nil {
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "segment %d failed (%s): %s\n", w.Segment, w.Reason, w.Excerpt)
		}
		return synthErr
	}

	if err := writeAudioFile(res); err != nil {
		return err
	}
	if copyAudio {
		copyToClipboard(base64.StdEncoding.EncodeToString(res.Audio))
	}
	if playAudio {
		if err := playResult(res.Audio); err != nil {
			return fmt.Errorf("unable to play audio: %w", err)
		}
	}
	if !quiet {
		printSummary(res, name)
	}
	return nil
}

func writeAudioFile(res *tts.SynthesisResult) error {
	out, err := resolveOutputPath(res.Format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, res.Audio, 0o644); err != nil {
		return fmt.Errorf("unable to write audio: %w", err)
	}
	return nil
}

func resolveOutputPath(format string) (string, error) {
	out := outputPath
	if out == "" {
		out = "vaani." + format
	}
	out, err := homedir.Expand(out)
	if err != nil {
		return "", fmt.Errorf("unable to expand output path: %w", err)
	}
	return out, nil
}

func playResult(data []byte) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return audio.Play(ctx, data)
}

func printSummary(res *tts.SynthesisResult, name string) {
	out, _ := resolveOutputPath(res.Format)
	fmt.Printf("Wrote %s (%s) from %s\n", keyword(out), humanize.Bytes(uint64(len(res.Audio))), name)
	fmt.Printf("  voice: %s  language: %s  segments: %d\n", res.Voice, res.Language, res.Segments)
	if d, err := audio.Duration(res.Audio); err == nil {
		fmt.Printf("  duration: %s\n", d.Round(100*time.Millisecond))
	}
	for _, w := range res.Warnings {
		fmt.Printf("  ! segment %d failed (%s): %s\n", w.Segment, w.Reason, w.Excerpt)
	}
}

// copyToClipboard puts s on the system clipboard, falling back to an
// OSC52 escape for terminals reached over SSH.
func copyToClipboard(s string) {
	if err := clipboard.WriteAll(s); err != nil {
		termenv.Copy(s)
	}
}

func buildEngine() (tts.Engine, error) {
	cfg := engine.OpenAIConfig{
		BaseURL:           viper.GetString("openai.base_url"),
		APIKey:            viper.GetString("openai.api_key"),
		Model:             viper.GetString("openai.model"),
		ResponseFormat:    format,
		Speed:             viper.GetFloat64("openai.speed"),
		RequestsPerMinute: viper.GetInt("openai.requests_per_minute"),
	}
	return engine.New(engineName, cfg)
}

// synthConfig layers the pipeline configuration: library defaults,
// then VAANI_* environment variables, then the config file, then the
// voice flag.
func synthConfig() (tts.Config, error) {
	cfg, err := env.ParseAs[tts.Config]()
	if err != nil {
		return tts.Config{}, fmt.Errorf("error parsing config: %w", err)
	}

	if v := viper.GetInt("synthesis.max_input_chars"); v > 0 {
		cfg.MaxInputChars = v
	}
	if v := viper.GetInt("synthesis.max_input_bytes"); v > 0 {
		cfg.MaxInputBytes = v
	}
	if v := viper.GetInt("synthesis.max_segment_len"); v > 0 {
		cfg.MaxSegmentLen = v
	}
	if v := viper.GetString("synthesis.boundaries"); v != "" {
		cfg.Boundaries = v
	}
	if v := viper.GetInt("synthesis.max_retries"); v > 0 {
		cfg.MaxRetries = v
	}
	if v := viper.GetDuration("synthesis.attempt_timeout"); v > 0 {
		cfg.AttemptTimeout = v
	}
	if v := viper.GetDuration("synthesis.retry_delay"); v > 0 {
		cfg.RetryDelay = v
	}
	if v := viper.GetDuration("synthesis.backoff_step"); v > 0 {
		cfg.BackoffStep = v
	}
	if v := viper.GetDuration("synthesis.pacing_delay"); v > 0 {
		cfg.PacingDelay = v
	}
	if v := viper.GetString("voice"); v != "" {
		cfg.DefaultVoice = v
	}
	return cfg, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging to stderr")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "audio output path (default vaani.<format>)")
	rootCmd.Flags().StringVar(&voice, "voice", "", "voice to synthesize with")
	rootCmd.Flags().StringVar(&engineName, "engine", "", "speech engine (openai or mock)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "", "audio container to request (mp3, wav, opus, aac, flac)")
	rootCmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "write a JSON envelope to stdout")
	rootCmd.Flags().StringVar(&requestJSON, "request", "", `JSON request object {"text": ..., "voice": ...}`)
	rootCmd.Flags().BoolVarP(&playAudio, "play", "p", false, "play the audio after synthesis (implies --format wav)")
	rootCmd.Flags().BoolVarP(&forceMarkdown, "markdown", "m", false, "treat input as markdown and speak only its text")
	rootCmd.Flags().BoolVar(&copyAudio, "copy", false, "copy base64 audio to the clipboard")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the summary and progress output")

	// Config bindings
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("voice", "alloy")
	viper.SetDefault("engine", "openai")
	viper.SetDefault("format", "mp3")
	viper.SetDefault("openai.model", "tts-1")
	viper.SetDefault("openai.speed", 1.0)
	viper.SetDefault("openai.requests_per_minute", 50)

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd, batchCmd, watchCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "vaani")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "vaani")}, dirs...)
	}

	if c := os.Getenv("VAANI_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("vaani")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("vaani")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "vaani.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
