package batch_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hackwreck/internal/batch"
	"github.com/okian/hackwreck/internal/domain/model"
)

func TestParseLines(t *testing.T) {
	Convey("Given a line manifest", t, func() {
		src := strings.Join([]string{
			"# winners of spring",
			"https://github.com/a/one, winner",
			"",
			"https://github.com/a/two",
			"   https://github.com/a/three ,  Participant  ",
			"https://github.com/a/four, 1st Place, Winner",
		}, "\n")

		Convey("With a default status", func() {
			m, err := batch.ParseLines(strings.NewReader(src), "participant")

			Convey("Then bare urls take the default and places are normalized", func() {
				So(err, ShouldBeNil)
				So(m.Rejected, ShouldBeEmpty)
				So(m.Items, ShouldResemble, []model.BatchItem{
					{GitHubURL: "https://github.com/a/one", Status: "Winner"},
					{GitHubURL: "https://github.com/a/two", Status: "Participant"},
					{GitHubURL: "https://github.com/a/three", Status: "Participant"},
					{GitHubURL: "https://github.com/a/four", Status: "Winner"},
				})
			})
		})

		Convey("Without a default status", func() {
			m, err := batch.ParseLines(strings.NewReader(src), "")

			Convey("Then bare urls are rejected with their line number", func() {
				So(err, ShouldBeNil)
				So(len(m.Items), ShouldEqual, 3)
				So(m.Rejected, ShouldResemble, []batch.Rejected{{Line: 4, GitHubURL: "https://github.com/a/two", Reason: batch.ReasonNoStatus}})
				So(m.Total(), ShouldEqual, 4)
			})
		})

		Convey("An unrecognized status is passed through for the server to judge", func() {
			m, err := batch.ParseLines(strings.NewReader("https://github.com/a/b, finalist"), "")
			So(err, ShouldBeNil)
			So(m.Items[0].Status, ShouldEqual, "finalist")
		})

		Convey("Only comments is an empty manifest", func() {
			_, err := batch.ParseLines(strings.NewReader("# nothing\n\n"), "Winner")
			So(errors.Is(err, batch.ErrEmptyManifest), ShouldBeTrue)
		})
	})
}

func TestParseYAML(t *testing.T) {
	Convey("Given a YAML manifest", t, func() {
		src := `
default_status: participant
items:
  - github_url: https://github.com/a/one
    status: Winner
  - github_url: https://github.com/a/two
`
		Convey("Items without status take the file default", func() {
			m, err := batch.ParseYAML(strings.NewReader(src), "")
			So(err, ShouldBeNil)
			So(m.Items[1].Status, ShouldEqual, "Participant")
		})

		Convey("An explicit default wins over the file default", func() {
			m, err := batch.ParseYAML(strings.NewReader(src), "winner")
			So(err, ShouldBeNil)
			So(m.Items[1].Status, ShouldEqual, "Winner")
		})

		Convey("Malformed YAML is a parse error", func() {
			_, err := batch.ParseYAML(strings.NewReader("items: [unclosed"), "")
			So(errors.Is(err, batch.ErrParse), ShouldBeTrue)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given files on disk", t, func() {
		dir := t.TempDir()
		txt := filepath.Join(dir, "hacks.txt")
		yml := filepath.Join(dir, "hacks.yml")
		So(os.WriteFile(txt, []byte("https://github.com/a/b, Winner\n"), 0o600), ShouldBeNil)
		So(os.WriteFile(yml, []byte("items:\n  - github_url: https://github.com/a/c\n    status: Participant\n"), 0o600), ShouldBeNil)

		Convey("The format follows the extension", func() {
			m, err := batch.Load(txt, "")
			So(err, ShouldBeNil)
			So(m.Items[0].GitHubURL, ShouldEqual, "https://github.com/a/b")

			m, err = batch.Load(yml, "")
			So(err, ShouldBeNil)
			So(m.Items[0].GitHubURL, ShouldEqual, "https://github.com/a/c")
		})

		Convey("A missing file is a parse error", func() {
			_, err := batch.Load(filepath.Join(dir, "nope.txt"), "")
			So(errors.Is(err, batch.ErrParse), ShouldBeTrue)
		})
	})
}

// fakeAPI settles every job after a fixed number of polls.
type fakeAPI struct {
	mu        sync.Mutex
	jobs      map[string]model.BatchJob
	polls     map[string]int
	settleIn  int
	submitted []int
}

func newFakeAPI(settleIn int) *fakeAPI {
	return &fakeAPI{jobs: map[string]model.BatchJob{}, polls: map[string]int{}, settleIn: settleIn}
}

func (f *fakeAPI) SubmitBatch(_ context.Context, req model.BatchRequest) (model.BatchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("job-%d", len(f.submitted)+1)
	f.submitted = append(f.submitted, len(req.Items))
	job := model.BatchJob{ID: id, State: model.BatchPending, Total: len(req.Items)}
	for _, it := range req.Items {
		res := model.BatchItemResult{GitHubURL: it.GitHubURL, State: model.BatchDone, ProjectName: "P"}
		if strings.HasSuffix(it.GitHubURL, "/dup") {
			res = model.BatchItemResult{GitHubURL: it.GitHubURL, State: model.BatchDuplicate, Error: "Duplicate project - already exists in database"}
		}
		if strings.HasSuffix(it.GitHubURL, "/bad") {
			res = model.BatchItemResult{GitHubURL: it.GitHubURL, State: model.BatchFailed, Error: "Repository not found: a/bad (404)"}
		}
		job.Items = append(job.Items, res)
	}
	f.jobs[id] = job
	return model.BatchJob{ID: id, State: model.BatchPending, Total: job.Total}, nil
}

func (f *fakeAPI) BatchStatus(_ context.Context, id string) (model.BatchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return model.BatchJob{}, errors.New("not found")
	}
	f.polls[id]++
	if f.polls[id] < f.settleIn {
		return model.BatchJob{ID: id, State: model.BatchRunning, Total: job.Total, Completed: f.polls[id]}, nil
	}
	job.State = model.BatchDone
	job.Completed = job.Total
	return job, nil
}

func TestRunner(t *testing.T) {
	Convey("Given a runner over a fake API", t, func() {
		api := newFakeAPI(2)
		var seen []model.BatchState
		r := batch.NewRunner(api,
			batch.WithInterval(time.Millisecond),
			batch.WithProgress(func(job model.BatchJob) { seen = append(seen, job.State) }),
		)

		Convey("When running a mixed manifest", func() {
			m := batch.Manifest{
				Items: []model.BatchItem{
					{GitHubURL: "https://github.com/a/ok", Status: "Winner"},
					{GitHubURL: "https://github.com/a/dup", Status: "Winner"},
					{GitHubURL: "https://github.com/a/bad", Status: "Winner"},
				},
				Rejected: []batch.Rejected{{Line: 4, GitHubURL: "https://github.com/a/nostatus", Reason: batch.ReasonNoStatus}},
			}
			report, err := r.Run(context.Background(), m)

			Convey("Then the report counts each outcome", func() {
				So(err, ShouldBeNil)
				So(seen, ShouldResemble, []model.BatchState{model.BatchRunning, model.BatchDone})
				So(report.Total(), ShouldEqual, 4)
				So(report.Count(model.BatchDone), ShouldEqual, 1)
				So(report.Count(model.BatchDuplicate), ShouldEqual, 1)

				summary := report.Summary()
				So(summary, ShouldStartWith, "Batch insert complete: 1/4 successful (1 duplicate)")
				So(summary, ShouldContainSubstring, "Failed (2):")
				So(summary, ShouldContainSubstring, "https://github.com/a/bad: Repository not found: a/bad (404)")
				So(summary, ShouldContainSubstring, "https://github.com/a/nostatus: No status")
			})
		})

		Convey("When the manifest exceeds one chunk", func() {
			items := make([]model.BatchItem, batch.MaxChunk+1)
			for i := range items {
				items[i] = model.BatchItem{GitHubURL: fmt.Sprintf("https://github.com/a/r%d", i), Status: "Winner"}
			}
			report, err := r.Run(context.Background(), batch.Manifest{Items: items})

			Convey("Then it is split into sequential jobs", func() {
				So(err, ShouldBeNil)
				So(api.submitted, ShouldResemble, []int{batch.MaxChunk, 1})
				So(len(report.Items), ShouldEqual, batch.MaxChunk+1)
			})
		})
	})

	Convey("Given a job that never settles", t, func() {
		r := batch.NewRunner(newFakeAPI(1<<30), batch.WithInterval(time.Millisecond), batch.WithTimeout(20*time.Millisecond))
		_, err := r.Run(context.Background(), batch.Manifest{Items: []model.BatchItem{{GitHubURL: "https://github.com/a/b", Status: "Winner"}}})
		So(errors.Is(err, batch.ErrTimeout), ShouldBeTrue)
	})
}
