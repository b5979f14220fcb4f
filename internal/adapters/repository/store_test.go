package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hackwreck/internal/domain/model"
)

func seed() []model.Project {
	return []model.Project{
		{Name: "MediBot", Framework: "React, Flask", GitHubLink: "https://github.com/a/medibot", Place: "Winner", Topic: "Healthcare", Description: "triage assistant", Score: model.Float(9)},
		{Name: "CareMap", Framework: "Flutter", GitHubLink: "https://github.com/a/caremap", Place: "1st Place Winner", Topic: "Healthcare", Description: "clinic finder", Score: model.Float(7.5)},
		{Name: "GreenGrid", Framework: "React/Next.js", GitHubLink: "https://github.com/a/greengrid", Place: "Winner", Topic: "Climate", Description: "energy dashboard", Score: model.Float(8)},
		{Name: "TodoAgain", Framework: "Vue", GitHubLink: "https://github.com/a/todo", Place: "Participant", Topic: "Productivity", Description: "yet another todo list", Score: model.Float(3)},
		{Name: "Unscored", Framework: "React", GitHubLink: "https://github.com/a/unscored", Place: "Winner", Topic: "Education"},
	}
}

func names(ps []model.Project) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

// storeContract exercises behaviour every backend must share.
func storeContract(newStore func() Store) {
	ctx := context.Background()

	Convey("Given a store seeded with projects", func() {
		s := newStore()
		Reset(func() { _ = s.Close() })
		ids := map[string]int64{}
		for _, p := range seed() {
			id, err := s.Insert(ctx, p)
			So(err, ShouldBeNil)
			ids[p.Name] = id
		}

		Convey("Insert assigns increasing ids and normalises place", func() {
			So(ids["CareMap"], ShouldBeGreaterThan, ids["MediBot"])
			p, err := s.FindByLink(ctx, "https://github.com/a/caremap")
			So(err, ShouldBeNil)
			So(p.Place, ShouldEqual, "Winner")
			So(*p.Score, ShouldEqual, 7.5)
		})

		Convey("Insert rejects a nameless project", func() {
			_, err := s.Insert(ctx, model.Project{Place: "Winner"})
			So(err, ShouldNotBeNil)
		})

		Convey("FindByLink reports unknown links", func() {
			_, err := s.FindByLink(ctx, "https://github.com/a/missing")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("Delete returns the name and forgets the project", func() {
			name, err := s.Delete(ctx, ids["TodoAgain"])
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "TodoAgain")
			n, _ := s.Count(ctx)
			So(n, ShouldEqual, 4)

			_, err = s.Delete(ctx, ids["TodoAgain"])
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("List is ordered by id and Winners filters by place", func() {
			all, err := s.List(ctx)
			So(err, ShouldBeNil)
			So(names(all), ShouldResemble, []string{"MediBot", "CareMap", "GreenGrid", "TodoAgain", "Unscored"})
			winners, err := s.Winners(ctx)
			So(err, ShouldBeNil)
			So(names(winners), ShouldResemble, []string{"MediBot", "CareMap", "GreenGrid", "Unscored"})
		})

		Convey("TopWinners ranks scored projects first", func() {
			top, err := s.TopWinners(ctx, 10)
			So(err, ShouldBeNil)
			So(names(top), ShouldResemble, []string{"MediBot", "GreenGrid", "CareMap", "Unscored"})
			top, _ = s.TopWinners(ctx, 2)
			So(names(top), ShouldResemble, []string{"MediBot", "GreenGrid"})
		})

		Convey("Category queries include and exclude by topic", func() {
			in, err := s.WinnersByCategory(ctx, "health", 10)
			So(err, ShouldBeNil)
			So(names(in), ShouldResemble, []string{"MediBot", "CareMap"})
			out, err := s.WinnersExcludingCategory(ctx, "healthcare", 10)
			So(err, ShouldBeNil)
			So(names(out), ShouldResemble, []string{"GreenGrid", "Unscored"})
		})

		Convey("Framework queries match on the first listed framework", func() {
			got, err := s.WinnersByFramework(ctx, "React, FastAPI", 10)
			So(err, ShouldBeNil)
			So(names(got), ShouldResemble, []string{"MediBot", "GreenGrid", "Unscored"})
		})

		Convey("Participants excludes winners", func() {
			got, err := s.Participants(ctx, 5)
			So(err, ShouldBeNil)
			So(names(got), ShouldResemble, []string{"TodoAgain"})
		})

		Convey("Search requires every term to match some field", func() {
			got, err := s.Search(ctx, "react dashboard", 10)
			So(err, ShouldBeNil)
			So(names(got), ShouldResemble, []string{"GreenGrid"})
			got, err = s.Search(ctx, "HEALTHCARE", 10)
			So(err, ShouldBeNil)
			So(names(got), ShouldResemble, []string{"MediBot", "CareMap"})
			got, err = s.Search(ctx, "", 2)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
		})

		Convey("Limits must be positive", func() {
			_, err := s.Search(ctx, "x", 0)
			So(err, ShouldEqual, ErrInvalidLimit)
			_, err = s.TopWinners(ctx, -1)
			So(err, ShouldEqual, ErrInvalidLimit)
		})

		Convey("Stats counts winners and ranks breakdowns", func() {
			st, err := s.Stats(ctx)
			So(err, ShouldBeNil)
			So(st.TotalProjects, ShouldEqual, 5)
			So(st.TotalWinners, ShouldEqual, 4)
			So(st.TotalParticipants, ShouldEqual, 1)
			So(st.AvgWinnerScore, ShouldAlmostEqual, 24.5/3, 1e-9)
			So(st.TopCategories[0], ShouldResemble, model.CategoryCount{Category: "Healthcare", Count: 2})
			So(len(st.TopFrameworks), ShouldEqual, 4)
		})

		Convey("Ping succeeds", func() {
			So(s.Ping(ctx), ShouldBeNil)
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("SQLiteStore", t, func() {
		storeContract(func() Store {
			s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "db", "hacks.db"))
			So(err, ShouldBeNil)
			return s
		})
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("MemoryStore", t, func() {
		storeContract(func() Store { return NewMemoryStore() })
	})
}

func TestOpen(t *testing.T) {
	Convey("Given Open", t, func() {
		ctx := context.Background()

		Convey("memory needs no dsn", func() {
			s, err := Open(ctx, DriverMemory, "")
			So(err, ShouldBeNil)
			So(s, ShouldHaveSameTypeAs, &MemoryStore{})
		})

		Convey("unknown drivers are rejected", func() {
			_, err := Open(ctx, "mysql", "")
			So(errors.Is(err, ErrUnknownDriver), ShouldBeTrue)
		})

		Convey("a malformed postgres dsn fails before dialing", func() {
			_, err := Open(ctx, DriverPostgres, "://nope")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFrameworkKey(t *testing.T) {
	Convey("FrameworkKey keeps the first listed framework", t, func() {
		So(FrameworkKey("React, Flask"), ShouldEqual, "React")
		So(FrameworkKey("Next.js/Tailwind"), ShouldEqual, "Next.js")
		So(FrameworkKey("  Django "), ShouldEqual, "Django")
		So(FrameworkKey(""), ShouldEqual, "")
	})
}
