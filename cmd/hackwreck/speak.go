package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/hackwreck/internal/domain/readaloud"
	"github.com/okian/hackwreck/internal/domain/section"
	"github.com/okian/hackwreck/pkg/logger"
)

var (
	speakOut  string
	speakHTML bool
)

var speakCmd = &cobra.Command{
	Use:   "speak [text...]",
	Short: "Read text aloud through the speech endpoint",
	Long: `Synthesize text with the server's text-to-speech endpoint. Text comes
from the arguments or, when none are given, from standard input. With --out the
WAV audio is written to a file; otherwise it is played with player_command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readArgsOrStdin(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		var src readaloud.TextSource = readaloud.PlainText(text)
		if speakHTML {
			src = readaloud.HTMLText(text)
		}
		if speakOut != "" {
			return saveSpeech(cmd.Context(), src, speakOut)
		}

		reader := newReader()
		defer reader.Close()
		if err := reader.Trigger(cmd.Context(), src); err != nil {
			return fmt.Errorf("read aloud: %w", err)
		}

		done := make(chan struct{})
		go func() {
			reader.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

// newReader builds the read-aloud lifecycle over the API speech endpoint.
func newReader() *readaloud.Lifecycle {
	c := newClient()
	return readaloud.New(
		readaloud.SynthesizerFunc(c.TextToSpeech),
		readaloud.ExecPlayer{Command: cfg.PlayerArgs()},
		readaloud.WithMaxChars(cfg.ReadAloudMaxChars),
		readaloud.WithObserver(func(from, to readaloud.State) {
			logger.Get().Debug(context.Background(), "read aloud",
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
	)
}

// saveSpeech writes synthesized audio for src to path. Blank text is a silent
// no-op and creates no file.
func saveSpeech(ctx context.Context, src readaloud.TextSource, path string) error {
	text, err := src.Text()
	if err != nil {
		return err
	}
	text = strings.TrimSpace(readaloud.Truncate(text, cfg.ReadAloudMaxChars))
	if text == "" {
		return nil
	}
	audio, err := newClient().TextToSpeech(ctx, text)
	if err != nil {
		return errors.New(section.Message(err))
	}
	defer audio.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, audio); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	speakCmd.Flags().StringVar(&speakOut, "out", "", "Write WAV audio to this file instead of playing it")
	speakCmd.Flags().BoolVar(&speakHTML, "html", false, "Treat input as HTML and read only its visible text")
}
