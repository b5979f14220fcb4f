package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

const defaultWordWrap = 80

// TerminalOption customizes Terminal.
type TerminalOption func(*terminalOptions)

type terminalOptions struct {
	width int
	style string
}

// WithWidth sets the word-wrap width.
func WithWidth(width int) TerminalOption {
	return func(o *terminalOptions) {
		if width > 0 {
			o.width = width
		}
	}
}

// WithStyle picks a glamour standard style ("dark", "light", "notty", ...).
// The default detects the terminal background.
func WithStyle(style string) TerminalOption {
	return func(o *terminalOptions) {
		o.style = style
	}
}

// Terminal renders narrative markdown for a terminal.
func Terminal(src string, opts ...TerminalOption) (string, error) {
	o := terminalOptions{width: defaultWordWrap}
	for _, opt := range opts {
		opt(&o)
	}

	styleOpt := glamour.WithAutoStyle()
	if o.style != "" {
		styleOpt = glamour.WithStandardStyle(o.style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(o.width))
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(src)
	if err != nil {
		return "", fmt.Errorf("render terminal: %w", err)
	}
	return out, nil
}
