// Package tui is the interactive terminal shell over the catalogue sections.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/okian/hackwreck/internal/domain/readaloud"
	"github.com/okian/hackwreck/internal/domain/render"
	"github.com/okian/hackwreck/internal/domain/section"
	"github.com/okian/hackwreck/pkg/logger"
)

// Messages produced by commands.
type (
	settledMsg struct{ tab int }
	statsMsg   struct{}
	speechMsg  struct{ err error }
)

// Model is the bubbletea model of the shell.
type Model struct {
	ctx    context.Context
	shell  *section.Shell
	reader *readaloud.Lifecycle
	tabs   []*tab
	styles Styles
	log    logger.Logger

	active  int
	focus   int
	pending map[int]bool
	speech  string
	notice  string

	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
}

// Option configures a Model.
type Option func(*Model)

// WithReadAloud enables the read-aloud toggle.
func WithReadAloud(l *readaloud.Lifecycle) Option {
	return func(m *Model) { m.reader = l }
}

// WithStyles overrides the default styles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// New builds the shell model over shell.
func New(ctx context.Context, shell *section.Shell, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:      ctx,
		shell:    shell,
		tabs:     buildTabs(shell),
		styles:   DefaultStyles(),
		log:      logger.GetOrNop().Named("tui"),
		pending:  map[int]bool{},
		spinner:  sp,
		viewport: viewport.New(80, 12),
		width:    80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.tabs[0].inputs[0].Focus()
	return m
}

// Init loads the stats header and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStats(), m.spinner.Tick, textinput.Blink)
}

func (m Model) loadStats() tea.Cmd {
	return func() tea.Msg {
		m.shell.Stats.Submit(m.ctx)
		return statsMsg{}
	}
}

func (m Model) submit(idx int) tea.Cmd {
	f := m.tabs[idx].form
	return func() tea.Msg {
		f.Submit(m.ctx)
		return settledMsg{tab: idx}
	}
}

func (m Model) toggleSpeech() tea.Cmd {
	text := m.speech
	return func() tea.Msg {
		return speechMsg{err: m.reader.Trigger(m.ctx, readaloud.PlainText(text))}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-14, 5)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case settledMsg:
		delete(m.pending, msg.tab)
		t := m.tabs[msg.tab]
		t.sync()
		if msg.tab == m.active {
			m.refresh()
		}
		return m, nil

	case statsMsg:
		return m, nil

	case speechMsg:
		if msg.err != nil {
			m.notice = "Read aloud failed: " + msg.err.Error()
			m.log.Warn(m.ctx, "read aloud failed", logger.Error(msg.err))
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.tabs[m.active]
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.reader != nil {
			m.reader.Close()
		}
		return m, tea.Quit

	case "ctrl+n", "ctrl+right":
		m.switchTab(m.active + 1)
		return m, nil

	case "ctrl+p", "ctrl+left":
		m.switchTab(m.active - 1)
		return m, nil

	case "tab", "down":
		m.moveFocus(1)
		return m, nil

	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil

	case "ctrl+r":
		m.notice = ""
		if m.reader == nil {
			m.notice = "Read aloud is not configured."
			return m, nil
		}
		if m.speech == "" && m.reader.State() == readaloud.Idle {
			m.notice = "Nothing to read on this tab."
			return m, nil
		}
		return m, m.toggleSpeech()

	case "enter":
		if m.pending[m.active] || t.form.InFlight() {
			return m, nil
		}
		if !t.form.CanSubmit() {
			// Submit only marks the invalid fields here.
			t.form.Submit(m.ctx)
			return m, nil
		}
		m.pending[m.active] = true
		m.notice = ""
		return m, tea.Batch(m.submit(m.active), m.spinner.Tick)

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if len(t.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	t.inputs[m.focus], cmd = t.inputs[m.focus].Update(msg)
	t.form.Edit(t.form.Fields()[m.focus].Name, t.inputs[m.focus].Value())
	return m, cmd
}

func (m *Model) switchTab(idx int) {
	n := len(m.tabs)
	m.tabs[m.active].inputs[m.focus].Blur()
	m.active = (idx%n + n) % n
	m.focus = 0
	m.tabs[m.active].inputs[0].Focus()
	m.notice = ""
	m.refresh()
}

func (m *Model) moveFocus(delta int) {
	t := m.tabs[m.active]
	n := len(t.inputs)
	t.inputs[m.focus].Blur()
	m.focus = ((m.focus+delta)%n + n) % n
	t.inputs[m.focus].Focus()
}

// refresh re-renders the active tab's result into the viewport.
func (m *Model) refresh() {
	body, speech := m.tabs[m.active].result(max(m.width-4, 20))
	m.speech = speech
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
}

// View renders the shell.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render(m.statsLine()))
	sb.WriteByte('\n')

	var tabs []string
	for i, t := range m.tabs {
		style := m.styles.Tab
		if i == m.active {
			style = m.styles.ActiveTab
		}
		tabs = append(tabs, style.Render(t.title))
	}
	sb.WriteString(strings.Join(tabs, " "))
	sb.WriteString("\n\n")

	t := m.tabs[m.active]
	for i, field := range t.form.Fields() {
		label := field.Label
		if field.Required {
			label += " *"
		}
		sb.WriteString(m.styles.Label.Render(label))
		sb.WriteByte('\n')
		sb.WriteString(t.inputs[i].View())
		sb.WriteByte('\n')
		if msg := t.form.FieldError(field.Name); msg != "" {
			sb.WriteString(m.styles.FieldErr.Render(msg))
			sb.WriteByte('\n')
		}
	}
	sb.WriteByte('\n')

	switch {
	case m.pending[m.active] || t.form.InFlight():
		sb.WriteString(m.spinner.View() + m.styles.Disabled.Render(" Working..."))
	case t.form.Phase() == section.Failed:
		sb.WriteString(m.styles.Failure.Render(t.form.Err()))
	case t.form.Phase() == section.Succeeded && t.title == "Submit":
		sb.WriteString(m.styles.Success.Render(m.viewport.View()))
	}
	sb.WriteString("\n\n")

	if t.form.Phase() == section.Succeeded && t.title != "Submit" {
		sb.WriteString(m.viewport.View())
		sb.WriteString("\n")
	}
	if m.notice != "" {
		sb.WriteString(m.styles.Failure.Render(m.notice))
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.Help.Render(m.help()))
	return sb.String()
}

func (m Model) statsLine() string {
	st, ok := m.shell.Stats.Result()
	switch {
	case ok:
		return "HackWreck · " + render.StatsLine(st)
	case m.shell.Stats.Phase() == section.Failed:
		return "HackWreck · stats unavailable"
	}
	return "HackWreck · loading stats..."
}

func (m Model) help() string {
	parts := []string{"enter submit", "tab next field", "ctrl+n/ctrl+p section", "pgup/pgdn scroll"}
	if m.reader != nil {
		switch m.reader.State() {
		case readaloud.Playing:
			parts = append(parts, "ctrl+r stop reading")
		case readaloud.Loading:
			parts = append(parts, "loading audio...")
		default:
			parts = append(parts, "ctrl+r read aloud")
		}
	}
	parts = append(parts, "esc quit")
	return strings.Join(parts, " · ")
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, shell *section.Shell, opts ...Option) error {
	_, err := tea.NewProgram(New(ctx, shell, opts...), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
