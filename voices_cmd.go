package main

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/vaani/internal/engine"
)

var voicesCmd = &cobra.Command{
	Use:   "voices [FILTER]",
	Short: "List the available voices",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		voices := engine.DefaultVoices
		if len(args) == 1 && args[0] != "" {
			matches := fuzzy.Find(args[0], voices)
			if len(matches) == 0 {
				return fmt.Errorf("no voice matches %q", args[0])
			}
			filtered := make([]string, 0, len(matches))
			for _, m := range matches {
				filtered = append(filtered, m.Str)
			}
			voices = filtered
		}

		def := viper.GetString("voice")
		for _, v := range voices {
			if v == def {
				fmt.Println(keyword(v) + " (default)")
				continue
			}
			fmt.Println(v)
		}
		return nil
	},
}
