package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/hackwreck/internal/domain/section"
	"github.com/okian/hackwreck/internal/tui"
	"github.com/okian/hackwreck/pkg/logger"
)

var noSpeech bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// The alternate screen owns the terminal; keep logs out of it.
		if err := logger.InitWithOptions(logger.WithWriter(io.Discard)); err != nil {
			return err
		}

		shell := section.NewShell(newClient())
		var opts []tui.Option
		if !noSpeech && len(cfg.PlayerArgs()) > 0 {
			opts = append(opts, tui.WithReadAloud(newReader()))
		}
		return tui.Run(cmd.Context(), shell, opts...)
	},
}

func init() {
	tuiCmd.Flags().BoolVar(&noSpeech, "no-speech", false, "Disable read aloud")
}
