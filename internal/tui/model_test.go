package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/section"
)

type fakeAPI struct {
	mu      sync.Mutex
	stats   int
	inserts []model.InsertRequest
}

func (f *fakeAPI) Stats(context.Context) (model.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats++
	return model.Stats{TotalProjects: 3 + len(f.inserts), TotalWinners: 2, TotalParticipants: 1 + len(f.inserts), AvgWinnerScore: 8.1}, nil
}

func (f *fakeAPI) Search(context.Context, model.SearchRequest) (model.SearchResponse, error) {
	return model.SearchResponse{Projects: []model.Project{{ID: 1, Name: "MediBot", Place: "Winner"}}, Count: 1}, nil
}

func (f *fakeAPI) Insert(_ context.Context, req model.InsertRequest) (model.InsertResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, req)
	return model.InsertResponse{Success: true, Message: "Project successfully added", ProjectName: "Widget"}, nil
}

func (f *fakeAPI) Trends(context.Context, model.TrendRequest) (model.TrendResponse, error) {
	return model.TrendResponse{Success: true, Analysis: "## WHAT WINNERS DO\n\nShip a demo."}, nil
}

func (f *fakeAPI) AnalyzeProject(context.Context, model.AnalyzeRequest) (model.AnalysisResult, error) {
	return model.AnalysisResult{Success: true, Suggestions: "Add tests."}, nil
}

// run executes cmd and feeds every message except blink and tick back into m.
func run(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(m, c)
		}
	case settledMsg, statsMsg, speechMsg:
		next, more := m.Update(msg)
		m = run(next.(Model), more)
	}
	return m
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func TestModel(t *testing.T) {
	Convey("Given a shell over a fake API", t, func() {
		api := &fakeAPI{}
		m := New(context.Background(), section.NewShell(api))

		Convey("The header shows stats once loaded", func() {
			So(m.View(), ShouldContainSubstring, "loading stats")
			m = run(m, m.loadStats())
			So(m.View(), ShouldContainSubstring, "3 projects")
		})

		Convey("Typing a bad link shows the inline error and enter makes no call", func() {
			m = typeText(m, "github.com/nope")
			So(m.shell.Submission.Value(section.FieldGitHubURL), ShouldEqual, "github.com/nope")
			So(m.View(), ShouldContainSubstring, "Please enter a valid GitHub repository URL")

			var cmd tea.Cmd
			m, cmd = press(m, tea.KeyEnter)
			So(cmd, ShouldBeNil)
			So(api.inserts, ShouldBeEmpty)
			So(m.shell.Submission.Phase(), ShouldEqual, section.Idle)
		})

		Convey("A valid submission resets the form and refreshes stats", func() {
			m = typeText(m, "https://github.com/acme/widget")
			var cmd tea.Cmd
			m, cmd = press(m, tea.KeyEnter)
			So(cmd, ShouldNotBeNil)
			So(m.pending[0], ShouldBeTrue)

			m = run(m, cmd)
			So(api.inserts, ShouldResemble, []model.InsertRequest{{GitHubURL: "https://github.com/acme/widget", Status: "Winner"}})
			So(m.pending[0], ShouldBeFalse)
			So(m.tabs[0].inputs[0].Value(), ShouldEqual, "")
			So(api.stats, ShouldEqual, 1)
			So(m.View(), ShouldContainSubstring, "Project successfully added: Widget")
			So(m.View(), ShouldContainSubstring, "4 projects")
		})

		Convey("Trends results become the read-aloud text", func() {
			m, _ = press(m, tea.KeyCtrlN)
			m, _ = press(m, tea.KeyCtrlN)
			So(m.tabs[m.active].title, ShouldEqual, "Trends")

			m = typeText(m, "Healthcare")
			m, _ = press(m, tea.KeyTab)
			m = typeText(m, "React")
			m, _ = press(m, tea.KeyTab)
			m = typeText(m, "triage bot")
			var cmd tea.Cmd
			m, cmd = press(m, tea.KeyEnter)
			m = run(m, cmd)

			So(m.shell.Trends.Phase(), ShouldEqual, section.Succeeded)
			So(m.speech, ShouldContainSubstring, "WHAT WINNERS DO")
			So(strings.Contains(m.speech, "##"), ShouldBeFalse)
		})

		Convey("Read aloud without a player explains itself", func() {
			m, _ = press(m, tea.KeyCtrlR)
			So(m.notice, ShouldEqual, "Read aloud is not configured.")
		})

		Convey("Escape quits", func() {
			_, cmd := press(m, tea.KeyEsc)
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldHaveSameTypeAs, tea.QuitMsg{})
		})
	})
}
