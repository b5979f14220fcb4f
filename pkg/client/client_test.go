package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/client"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClientRequests(t *testing.T) {
	Convey("Given a client pointed at a test server", t, func() {
		var gotMethod, gotPath, gotRequestID string
		var gotBody map[string]any
		mux := http.NewServeMux()
		record := func(w http.ResponseWriter, r *http.Request) {
			gotMethod, gotPath = r.Method, r.URL.Path
			gotRequestID = r.Header.Get(client.HeaderRequestID)
			gotBody = nil
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
			record(w, r)
			_, _ = io.WriteString(w, `{"total_projects":3,"total_winners":1,"total_participants":2,"avg_winner_score":8.5}`)
		})
		mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
			record(w, r)
			_, _ = io.WriteString(w, `{"projects":[{"id":1,"name":"Nav","place":"Winner","ai_score":8.5}],"count":1}`)
		})
		mux.HandleFunc("/api/trends", func(w http.ResponseWriter, r *http.Request) {
			record(w, r)
			_, _ = io.WriteString(w, `{"success":true,"analysis":"## Advice\n- Use maps"}`)
		})
		mux.HandleFunc("/api/projects/7", func(w http.ResponseWriter, r *http.Request) {
			record(w, r)
			_, _ = io.WriteString(w, `{"success":true,"message":"Successfully deleted project 'Nav' (ID: 7)","project_name":"Nav"}`)
		})
		mux.HandleFunc("/api/text-to-speech", func(w http.ResponseWriter, r *http.Request) {
			record(w, r)
			w.Header().Set("Content-Type", "audio/wav")
			_, _ = w.Write([]byte("RIFFdata"))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		c := client.New(client.Config{BaseURL: srv.URL + "///", SearchPath: "search"})
		ctx := context.Background()

		Convey("Then the base URL is trimmed of trailing slashes", func() {
			So(c.BaseURL(), ShouldEqual, srv.URL)
		})

		Convey("When fetching stats", func() {
			stats, err := c.Stats(ctx)
			So(err, ShouldBeNil)
			So(gotMethod, ShouldEqual, http.MethodGet)
			So(stats.TotalProjects, ShouldEqual, 3)
			So(stats.AvgWinnerScore, ShouldEqual, 8.5)
			So(gotRequestID, ShouldNotBeEmpty)
		})

		Convey("When searching on a configured path", func() {
			res, err := c.Search(ctx, model.SearchRequest{Query: "maps"})
			So(err, ShouldBeNil)
			So(gotPath, ShouldEqual, "/search")
			So(gotBody["query"], ShouldEqual, "maps")
			So(res.Count, ShouldEqual, 1)
			So(*res.Projects[0].Score, ShouldEqual, 8.5)
		})

		Convey("When requesting trends", func() {
			res, err := c.Trends(ctx, model.TrendRequest{Category: "AI", Framework: "React", Description: "a campus nav bot"})
			So(err, ShouldBeNil)
			So(gotMethod, ShouldEqual, http.MethodPost)
			So(gotBody["category"], ShouldEqual, "AI")
			So(res.Analysis, ShouldEqual, "## Advice\n- Use maps")
		})

		Convey("When deleting a project", func() {
			res, err := c.DeleteProject(ctx, 7)
			So(err, ShouldBeNil)
			So(gotMethod, ShouldEqual, http.MethodDelete)
			So(res.ProjectName, ShouldEqual, "Nav")
		})

		Convey("When synthesizing speech", func() {
			rc, err := c.TextToSpeech(ctx, "hello")
			So(err, ShouldBeNil)
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			So(string(data), ShouldEqual, "RIFFdata")
			So(gotBody["text"], ShouldEqual, "hello")
		})
	})
}

func TestClientErrors(t *testing.T) {
	Convey("Given a server that fails requests", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/trends", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"detail":"rate limited"}`)
		})
		mux.HandleFunc("/api/insert", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `<html>bad gateway</html>`)
		})
		mux.HandleFunc("/api/stats", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		})
		mux.HandleFunc("/api/analyze-project", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"detail":[{"msg":"field required"}]}`)
		})
		srv := httptest.NewServer(mux)
		c := client.New(client.Config{BaseURL: srv.URL})
		ctx := context.Background()

		Convey("When the body carries a detail", func() {
			_, err := c.Trends(ctx, model.TrendRequest{})
			var apiErr *client.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusTooManyRequests)
			So(apiErr.Detail, ShouldEqual, "rate limited")
		})

		Convey("When the body has no parseable detail", func() {
			_, err := c.Insert(ctx, model.InsertRequest{})
			var apiErr *client.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Detail, ShouldBeEmpty)
		})

		Convey("When the detail is structured", func() {
			_, err := c.AnalyzeProject(ctx, model.AnalyzeRequest{})
			var apiErr *client.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Detail, ShouldContainSubstring, "field required")
		})

		Convey("When a 2xx body is not JSON", func() {
			_, err := c.Stats(ctx)
			So(errors.Is(err, client.ErrDecode), ShouldBeTrue)
		})

		Convey("When the server is unreachable", func() {
			srv.Close()
			_, err := c.Stats(ctx)
			So(errors.Is(err, client.ErrTransport), ShouldBeTrue)
			So(client.IsTransport(err), ShouldBeTrue)
		})

		Reset(srv.Close)
	})
}
