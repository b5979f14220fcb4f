package render_test

import (
	"fmt"
	"testing"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/render"
	"github.com/okian/hackwreck/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnalysisView(t *testing.T) {
	Convey("Given an optimization result", t, func() {
		result := model.AnalysisResult{
			Success: true,
			Assessment: model.Assessment{
				Name:         "Campus Nav",
				Framework:    "React, Node",
				Topic:        "AI",
				Description:  "A campus navigation bot.",
				Strengths:    []string{"clear README"},
				CurrentScore: 6.46,
			},
			Suggestions:   "## STATUS: 6/10 → 8/10\n- Add a demo",
			HackathonName: "HackMIT",
		}

		Convey("When the result has no related winners or weaknesses", func() {
			view := render.Analysis(result)

			Convey("Then the badge shows one decimal and a tier", func() {
				So(view.Badge.Label, ShouldEqual, "6.5/10")
				So(view.Badge.Tier, ShouldEqual, scoring.TierGood)
			})

			Convey("Then absent lists default to empty and related cards are hidden", func() {
				So(view.Weaknesses, ShouldNotBeNil)
				So(len(view.Weaknesses), ShouldEqual, 0)
				So(view.ShowRelated, ShouldBeFalse)
				So(view.Text(), ShouldNotContainSubstring, "Related winners")
				So(view.Text(), ShouldContainSubstring, "(none)")
			})

			Convey("Then the grid falls back to the General theme", func() {
				So(view.Grid[4], ShouldResemble, render.GridRow{Key: "Theme", Value: "General"})
				So(view.Grid[3].Value, ShouldEqual, "HackMIT")
			})

			Convey("Then suggestions are rendered without markers", func() {
				So(view.Suggestions.Headings(), ShouldResemble, []string{"STATUS: 6/10 → 8/10"})
				So(view.Text(), ShouldContainSubstring, "• Add a demo")
			})
		})

		Convey("When there are more related winners than the cap", func() {
			for i := 0; i < 11; i++ {
				result.RelatedWinners = append(result.RelatedWinners, model.RelatedRecord{Name: fmt.Sprintf("w%d", i), Score: 9})
			}
			view := render.Analysis(result)

			Convey("Then at most eight cards are shown", func() {
				So(view.ShowRelated, ShouldBeTrue)
				So(len(view.Related), ShouldEqual, model.MaxRelated)
				So(view.Text(), ShouldContainSubstring, "w7")
				So(view.Text(), ShouldNotContainSubstring, "w8")
			})
		})
	})
}

func TestCatalogue(t *testing.T) {
	Convey("Given catalogue data", t, func() {
		Convey("When there are no projects", func() {
			So(render.Projects(nil), ShouldEqual, "No projects found.")
		})

		Convey("When there are projects", func() {
			out := render.Projects([]model.Project{
				{ID: 1, Name: "Widget", Place: "Winner", Framework: "Go", Score: model.Float(8.3)},
				{ID: 2, Name: "Gadget", Place: "Participant"},
			})
			So(out, ShouldContainSubstring, "Widget")
			So(out, ShouldContainSubstring, "Participant")
			So(out, ShouldContainSubstring, "8.3")
		})

		Convey("When rendering stats", func() {
			s := model.Stats{TotalProjects: 12, TotalWinners: 5, TotalParticipants: 7, AvgWinnerScore: 7.8,
				TopFrameworks: []model.FrameworkCount{{Framework: "React", Count: 3}}}
			So(render.StatsLine(s), ShouldEqual, "12 projects · 5 winners · 7 participants · avg winner score 7.8")
			So(render.StatsDetail(s), ShouldContainSubstring, "Top frameworks")
			So(render.StatsDetail(s), ShouldNotContainSubstring, "Top categories")
		})
	})
}
