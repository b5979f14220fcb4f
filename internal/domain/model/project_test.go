package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/okian/hackwreck/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseOutcome(t *testing.T) {
	convey.Convey("Given outcome strings", t, func() {
		convey.Convey("When parsing any casing of the two outcomes", func() {
			for _, in := range []string{"winner", "Winner", " WINNER ", "1st Place Winner"} {
				o, err := model.ParseOutcome(in)
				convey.So(err, convey.ShouldBeNil)
				convey.So(o, convey.ShouldEqual, model.OutcomeWinner)
			}
			o, err := model.ParseOutcome("Participant")
			convey.So(err, convey.ShouldBeNil)
			convey.So(o, convey.ShouldEqual, model.OutcomeParticipant)
		})

		convey.Convey("When parsing an unknown outcome", func() {
			_, err := model.ParseOutcome("finalist")
			convey.So(errors.Is(err, model.ErrUnknownOutcome), convey.ShouldBeTrue)
		})

		convey.Convey("Then the place form is capitalised", func() {
			convey.So(model.OutcomeWinner.Place(), convey.ShouldEqual, "Winner")
			convey.So(model.OutcomeParticipant.Place(), convey.ShouldEqual, "Participant")
		})
	})
}

func TestProjectValidate(t *testing.T) {
	convey.Convey("Given a project record", t, func() {
		p := model.Project{Name: "Widget", Place: "Winner", Score: model.Float(7.5)}

		convey.Convey("When every invariant holds", func() {
			convey.So(p.Validate(), convey.ShouldBeNil)
			convey.So(p.Outcome().IsWinner(), convey.ShouldBeTrue)
		})

		convey.Convey("When the score is absent", func() {
			p.Score = nil
			convey.So(p.Validate(), convey.ShouldBeNil)
			convey.So(p.ScoreValue(), convey.ShouldEqual, 0)
		})

		convey.Convey("When the score is outside [0,10]", func() {
			for _, s := range []float64{-0.1, 10.01} {
				p.Score = model.Float(s)
				convey.So(errors.Is(p.Validate(), model.ErrScoreRange), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When the bounds are hit exactly", func() {
			for _, s := range []float64{0, 10} {
				p.Score = model.Float(s)
				convey.So(p.Validate(), convey.ShouldBeNil)
			}
		})

		convey.Convey("When the place is unknown", func() {
			p.Place = "judge"
			convey.So(errors.Is(p.Validate(), model.ErrUnknownOutcome), convey.ShouldBeTrue)
		})

		convey.Convey("When the name is blank", func() {
			p.Name = "  "
			convey.So(errors.Is(p.Validate(), model.ErrEmptyName), convey.ShouldBeTrue)
		})
	})
}

func TestProjectWireNames(t *testing.T) {
	convey.Convey("Given a stored project", t, func() {
		raw := `{"id":3,"name":"Nav","framework":"React","githubLink":"https://github.com/a/b","place":"Participant","topic":"AI","descriptions":"bot","ai_score":null,"ai_reasoning":""}`

		convey.Convey("When decoding the persisted column names", func() {
			var p model.Project
			convey.So(json.Unmarshal([]byte(raw), &p), convey.ShouldBeNil)
			convey.So(p.ID, convey.ShouldEqual, 3)
			convey.So(p.GitHubLink, convey.ShouldEqual, "https://github.com/a/b")
			convey.So(p.Description, convey.ShouldEqual, "bot")
			convey.So(p.Score, convey.ShouldBeNil)
			convey.So(p.Outcome(), convey.ShouldEqual, model.OutcomeParticipant)
		})
	})
}
