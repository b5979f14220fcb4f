package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hackwreck/internal/domain/validate"
)

func TestVerifier(t *testing.T) {
	Convey("Given a fake GitHub API", t, func() {
		var gotPath string
		status := http.StatusOK
		body := `{"name":"widget"}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		Reset(srv.Close)

		v := NewVerifier(srv.URL + "/")
		ref := validate.RepoRef{Owner: "acme", Repo: "widget"}
		ctx := context.Background()

		Convey("an existing repository passes", func() {
			So(v.Exists(ctx, ref), ShouldBeNil)
			So(gotPath, ShouldEqual, "/repos/acme/widget")
		})

		Convey("404 is not found", func() {
			status = http.StatusNotFound
			err := v.Exists(ctx, ref)
			So(errors.Is(err, ErrRepoNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "acme/widget (404)")
		})

		Convey("403 is allowed through", func() {
			status = http.StatusForbidden
			body = `{"message":"API rate limit exceeded"}`
			So(v.Exists(ctx, ref), ShouldBeNil)
		})

		Convey("other statuses are unverified", func() {
			status = http.StatusBadGateway
			err := v.Exists(ctx, ref)
			So(errors.Is(err, ErrUnverified), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "HTTP 502")
		})

		Convey("a document without a name is not a repository", func() {
			body = `{"login":"acme"}`
			So(v.Exists(ctx, ref), ShouldEqual, ErrNotARepository)
		})
	})

	Convey("Given an unreachable API", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		err := NewVerifier(srv.URL).Exists(context.Background(), validate.RepoRef{Owner: "a", Repo: "b"})
		So(errors.Is(err, ErrUnverified), ShouldBeTrue)
	})
}
