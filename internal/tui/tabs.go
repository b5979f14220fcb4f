package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/okian/hackwreck/internal/domain/render"
	"github.com/okian/hackwreck/internal/domain/section"
)

// form is the type-erased view of a section machine the shell drives.
type form interface {
	Name() string
	Fields() []section.Field
	Edit(name, value string)
	Value(name string) string
	FieldError(name string) string
	CanSubmit() bool
	Submit(ctx context.Context) bool
	InFlight() bool
	Phase() section.Phase
	Err() string
}

// tab is one section with its inputs and result renderer.
type tab struct {
	title  string
	form   form
	inputs []textinput.Model
	// result renders the last success and returns the text read aloud, if any.
	result func(width int) (body, speech string)
}

func newTab(title string, f form, result func(width int) (string, string)) *tab {
	t := &tab{title: title, form: f, result: result}
	for _, field := range f.Fields() {
		in := textinput.New()
		in.Prompt = "› "
		in.Placeholder = field.Label
		in.CharLimit = 2000
		in.SetValue(f.Value(field.Name))
		t.inputs = append(t.inputs, in)
	}
	return t
}

// sync copies machine values back into the inputs, e.g. after a reset.
func (t *tab) sync() {
	for i, field := range t.form.Fields() {
		if v := t.form.Value(field.Name); v != t.inputs[i].Value() {
			t.inputs[i].SetValue(v)
		}
	}
}

func buildTabs(shell *section.Shell) []*tab {
	return []*tab{
		newTab("Submit", shell.Submission, func(int) (string, string) {
			res, ok := shell.Submission.Result()
			if !ok {
				return "", ""
			}
			return fmt.Sprintf("%s: %s", res.Message, res.ProjectName), ""
		}),
		newTab("Search", shell.Search, func(int) (string, string) {
			res, ok := shell.Search.Result()
			if !ok {
				return "", ""
			}
			return fmt.Sprintf("%d result(s)\n\n%s", res.Count, render.Projects(res.Projects)), ""
		}),
		newTab("Trends", shell.Trends, func(width int) (string, string) {
			res, ok := shell.Trends.Result()
			if !ok {
				return "", ""
			}
			return markdown(res.Analysis, width), render.Markdown(res.Analysis).Text()
		}),
		newTab("Optimize", shell.Optimize, func(width int) (string, string) {
			res, ok := shell.Optimize.Result()
			if !ok {
				return "", ""
			}
			view := render.Analysis(res)
			return view.Text(), view.Suggestions.Text()
		}),
	}
}

// markdown renders with glamour, falling back to the source on failure.
func markdown(src string, width int) string {
	out, err := render.Terminal(src, render.WithWidth(width))
	if err != nil {
		return src
	}
	return out
}
