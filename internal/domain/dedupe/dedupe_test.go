package dedupe_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/hackwreck/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGuard(t *testing.T) {
	Convey("Given a new in-flight guard", t, func() {
		ctx := context.Background()
		g := dedupe.NewGuard()

		Convey("When a repository is claimed for the first time", func() {
			seen, err := g.SeenAndRecord(ctx, "https://github.com/acme/widget")

			Convey("Then it is recorded", func() {
				So(err, ShouldBeNil)
				So(seen, ShouldBeFalse)
				So(g.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the same repository is claimed twice", func() {
			_, _ = g.SeenAndRecord(ctx, "https://github.com/acme/widget")
			seen, err := g.SeenAndRecord(ctx, "https://github.com/acme/widget")

			Convey("Then the second claim reports it as in flight", func() {
				So(err, ShouldBeNil)
				So(seen, ShouldBeTrue)
				So(g.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a claim is released", func() {
			_, _ = g.SeenAndRecord(ctx, "k")
			g.Unrecord(ctx, "k")
			g.Unrecord(ctx, "missing")

			Convey("Then the key can be claimed again", func() {
				So(g.Size(), ShouldEqual, 0)
				seen, err := g.SeenAndRecord(ctx, "k")
				So(err, ShouldBeNil)
				So(seen, ShouldBeFalse)
			})
		})
	})
}

func TestGuardBounds(t *testing.T) {
	Convey("Given a bounded guard", t, func() {
		ctx := context.Background()
		g := dedupe.NewGuard(dedupe.WithMaxSize(2))
		_, _ = g.SeenAndRecord(ctx, "a")
		_, _ = g.SeenAndRecord(ctx, "b")

		Convey("When it is full", func() {
			_, err := g.SeenAndRecord(ctx, "c")

			Convey("Then new keys are refused without evicting", func() {
				So(errors.Is(err, dedupe.ErrBusy), ShouldBeTrue)
				seen, err := g.SeenAndRecord(ctx, "a")
				So(err, ShouldBeNil)
				So(seen, ShouldBeTrue)
			})
		})

		Convey("When it is unbounded", func() {
			u := dedupe.NewGuard(dedupe.WithMaxSize(0))
			for i := 0; i < 5000; i++ {
				_, err := u.SeenAndRecord(ctx, fmt.Sprintf("repo-%d", i))
				So(err, ShouldBeNil)
			}
			So(u.Size(), ShouldEqual, 5000)
		})
	})
}

func TestGuardConcurrency(t *testing.T) {
	Convey("Given many goroutines racing for one repository", t, func() {
		ctx := context.Background()
		g := dedupe.NewGuard()
		var winners atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if seen, err := g.SeenAndRecord(ctx, "https://github.com/acme/widget"); err == nil && !seen {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one claim succeeds", func() {
			So(winners.Load(), ShouldEqual, 1)
		})
	})
}
