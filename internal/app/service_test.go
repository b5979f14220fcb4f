package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hackwreck/internal/adapters/cache"
	"github.com/okian/hackwreck/internal/adapters/github"
	"github.com/okian/hackwreck/internal/adapters/llm"
	"github.com/okian/hackwreck/internal/adapters/repository"
	service "github.com/okian/hackwreck/internal/app"
	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/validate"
	"github.com/okian/hackwreck/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeAnalyzer answers from fixed data and counts calls.
type fakeAnalyzer struct {
	mu        sync.Mutex
	profiles  map[string]model.RepoProfile
	fail      error
	gate      chan struct{}
	calls     map[string]int
	lastTrend llm.TrendInput
	lastPlan  llm.SuggestionInput
	spoken    string
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{profiles: map[string]model.RepoProfile{}, calls: map[string]int{}}
}

func (f *fakeAnalyzer) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAnalyzer) record(op string) error {
	f.mu.Lock()
	f.calls[op]++
	gate, err := f.gate, f.fail
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeAnalyzer) AnalyzeRepo(_ context.Context, url, place string) (model.RepoProfile, error) {
	if err := f.record(llm.OpAnalyzeRepo); err != nil {
		return model.RepoProfile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[url]; ok {
		return p, nil
	}
	return model.RepoProfile{Name: "Repo " + url[len("https://github.com/"):], Framework: "Go", Topic: "Tools", Score: 6}, nil
}

func (f *fakeAnalyzer) AssessProject(_ context.Context, url string) (model.Assessment, error) {
	if err := f.record(llm.OpAssessProject); err != nil {
		return model.Assessment{}, err
	}
	return model.Assessment{Name: "Mine", Framework: "React, Flask", Topic: "Healthcare", CurrentScore: 5,
		Strengths: []string{"idea"}, Weaknesses: []string{"tests"}}, nil
}

func (f *fakeAnalyzer) Suggest(_ context.Context, in llm.SuggestionInput) (string, error) {
	if err := f.record(llm.OpSuggest); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.lastPlan = in
	f.mu.Unlock()
	return "## STATUS: 5/10 → 8/10", nil
}

func (f *fakeAnalyzer) Trends(_ context.Context, in llm.TrendInput) (string, error) {
	if err := f.record(llm.OpTrends); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.lastTrend = in
	f.mu.Unlock()
	return "## WHAT WINNERS DO", nil
}

func (f *fakeAnalyzer) WreckMe(context.Context) (string, error) {
	if err := f.record(llm.OpWreckMe); err != nil {
		return "", err
	}
	return "## IDEA: Test", nil
}

func (f *fakeAnalyzer) Speak(_ context.Context, text string) ([]byte, error) {
	if err := f.record(llm.OpSpeak); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.spoken = text
	f.mu.Unlock()
	return llm.EncodeWAV([]byte{0, 0}, 24000, 1, 16), nil
}

func (f *fakeAnalyzer) Ping(context.Context) error { return nil }

type fakeVerifier struct {
	missing map[string]bool
}

func (v fakeVerifier) Exists(_ context.Context, ref validate.RepoRef) error {
	if v.missing[ref.String()] {
		return fmt.Errorf("%w: %s (404)", github.ErrRepoNotFound, ref)
	}
	return nil
}

func seedStore(ctx context.Context, store repository.Store) {
	for _, p := range []model.Project{
		{Name: "MediBot", Framework: "React, Flask", GitHubLink: "https://github.com/a/medibot", Place: "Winner", Topic: "Healthcare", Score: model.Float(9)},
		{Name: "CareMap", Framework: "Flutter", GitHubLink: "https://github.com/a/caremap", Place: "Winner", Topic: "Healthcare", Score: model.Float(7.25)},
		{Name: "GreenGrid", Framework: "React", GitHubLink: "https://github.com/a/greengrid", Place: "Winner", Topic: "Climate", Score: model.Float(8)},
		{Name: "TodoAgain", Framework: "Vue", GitHubLink: "https://github.com/a/todo", Place: "Participant", Topic: "Productivity", Score: model.Float(3)},
	} {
		if _, err := store.Insert(ctx, p); err != nil {
			panic(err)
		}
	}
}

func TestService_Ingest(t *testing.T) {
	Convey("Given a service over an empty catalogue", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		ai := newFakeAnalyzer()
		svc := service.New(store, ai, service.WithVerifier(fakeVerifier{missing: map[string]bool{"acme/ghost": true}}))

		Convey("When archiving a new repository", func() {
			ai.profiles["https://github.com/acme/widget"] = model.RepoProfile{Name: "Widget", Framework: "Go", Topic: "DevTools", Score: 8.5}
			resp, err := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://github.com/acme/widget.git/", Status: "winner"})

			Convey("Then it is stored under the normalized link", func() {
				So(err, ShouldBeNil)
				So(resp, ShouldResemble, model.InsertResponse{Success: true, Message: service.MsgArchived, ProjectName: "Widget"})
				p, err := store.FindByLink(ctx, "https://github.com/acme/widget")
				So(err, ShouldBeNil)
				So(p.Place, ShouldEqual, "Winner")
				So(*p.Score, ShouldEqual, 8.5)
			})

			Convey("And when archiving it again", func() {
				resp, err := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://www.github.com/acme/widget", Status: "Participant"})

				Convey("Then it is reported as a duplicate without another analysis", func() {
					So(err, ShouldBeNil)
					So(resp.Success, ShouldBeFalse)
					So(resp.Message, ShouldEqual, service.MsgDuplicate)
					So(ai.count(llm.OpAnalyzeRepo), ShouldEqual, 1)
				})
			})
		})

		Convey("When the link is malformed", func() {
			_, err := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://gitlab.com/a/b", Status: "Winner"})

			Convey("Then it is an input error", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Expected: https://github.com/username/repo")
			})
		})

		Convey("When the status is unknown", func() {
			_, err := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://github.com/a/b", Status: "finalist"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When the repository does not exist", func() {
			_, err := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://github.com/acme/ghost", Status: "Winner"})

			Convey("Then the verifier message is surfaced and nothing is analyzed", func() {
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
				So(err.Error(), ShouldStartWith, "Repository not found: acme/ghost")
				So(ai.count(llm.OpAnalyzeRepo), ShouldEqual, 0)
			})
		})

		Convey("When the analyzer fails", func() {
			ai.fail = errors.New("quota exceeded")
			_, err := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://github.com/a/b", Status: "Winner"})

			Convey("Then the error is an analysis failure and the guard is released", func() {
				So(errors.Is(err, service.ErrAnalysis), ShouldBeTrue)
				So(svc.InFlight(), ShouldEqual, int64(0))
				n, _ := store.Count(ctx)
				So(n, ShouldEqual, 0)
			})
		})

		Convey("When the same repository is submitted concurrently", func() {
			ai.gate = make(chan struct{})
			first := make(chan model.InsertResponse, 1)
			go func() {
				resp, _ := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://github.com/a/slow", Status: "Winner"})
				first <- resp
			}()
			for svc.InFlight() == 0 {
				time.Sleep(time.Millisecond)
			}
			second, err := svc.Ingest(ctx, model.InsertRequest{GitHubURL: "https://github.com/a/slow/", Status: "Winner"})
			close(ai.gate)

			Convey("Then the second is refused while the first completes", func() {
				So(err, ShouldBeNil)
				So(second.Message, ShouldEqual, service.MsgInProgress)
				So((<-first).Success, ShouldBeTrue)
				So(ai.count(llm.OpAnalyzeRepo), ShouldEqual, 1)
			})
		})
	})
}

func TestService_Catalogue(t *testing.T) {
	Convey("Given a seeded catalogue", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seedStore(ctx, store)
		svc := service.New(store, newFakeAnalyzer())

		Convey("Stats rounds the winner average", func() {
			st, err := svc.Stats(ctx)
			So(err, ShouldBeNil)
			So(st.TotalProjects, ShouldEqual, 4)
			So(st.TotalParticipants, ShouldEqual, 1)
			So(st.AvgWinnerScore, ShouldEqual, 8.1)
		})

		Convey("Search requires a query", func() {
			_, err := svc.Search(ctx, model.SearchRequest{Query: "  "})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)

			res, err := svc.Search(ctx, model.SearchRequest{Query: "healthcare"})
			So(err, ShouldBeNil)
			So(res.Count, ShouldEqual, 2)
			So(res.Projects[0].Name, ShouldEqual, "MediBot")
		})

		Convey("Delete reports missing ids", func() {
			_, err := svc.Delete(ctx, 99)
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "Project with ID 99 not found")

			resp, err := svc.Delete(ctx, 1)
			So(err, ShouldBeNil)
			So(resp.Message, ShouldEqual, "Successfully deleted project 'MediBot' (ID: 1)")
		})

		Convey("List and Winners", func() {
			all, _ := svc.List(ctx)
			winners, _ := svc.Winners(ctx)
			So(len(all), ShouldEqual, 4)
			So(len(winners), ShouldEqual, 3)
		})
	})
}

func TestService_Narratives(t *testing.T) {
	Convey("Given a seeded catalogue and a cache", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seedStore(ctx, store)
		ai := newFakeAnalyzer()
		svc := service.New(store, ai, service.WithCache(cache.NewMemory(), time.Minute), service.WithSpeechLimit(5))

		Convey("Trends gathers context and caches the answer", func() {
			req := model.TrendRequest{Category: "Healthcare", Framework: "React", Description: "triage"}
			res, err := svc.Trends(ctx, req)
			So(err, ShouldBeNil)
			So(res.Analysis, ShouldEqual, "## WHAT WINNERS DO")
			So(len(ai.lastTrend.CategoryWinners), ShouldEqual, 2)
			So(len(ai.lastTrend.OtherWinners), ShouldEqual, 1)
			So(len(ai.lastTrend.Participants), ShouldEqual, 1)

			req.Category = " healthcare "
			_, err = svc.Trends(ctx, req)
			So(err, ShouldBeNil)
			So(ai.count(llm.OpTrends), ShouldEqual, 1)
		})

		Convey("Trends requires a category and description", func() {
			_, err := svc.Trends(ctx, model.TrendRequest{Framework: "React"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Analyze merges related winners by name", func() {
			res, err := svc.Analyze(ctx, model.AnalyzeRequest{GitHubURL: "https://github.com/me/mine", HackathonName: "HackMIT"})
			So(err, ShouldBeNil)
			So(res.Success, ShouldBeTrue)
			names := []string{}
			for _, r := range res.RelatedWinners {
				names = append(names, r.Name)
			}
			So(names, ShouldResemble, []string{"MediBot", "GreenGrid", "CareMap"})
			So(res.RelatedWinners[0].Score, ShouldEqual, 9.0)
			So(res.Suggestions, ShouldStartWith, "## STATUS")
			So(len(ai.lastPlan.TopWinners), ShouldEqual, 3)
		})

		Convey("Analyze validates its inputs", func() {
			_, err := svc.Analyze(ctx, model.AnalyzeRequest{GitHubURL: "nope", HackathonName: "x"})
			So(err.Error(), ShouldEqual, validate.MsgRepoMalformed)
			_, err = svc.Analyze(ctx, model.AnalyzeRequest{GitHubURL: "https://github.com/a/b"})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("Speak truncates text and rejects blanks", func() {
			audio, err := svc.Speak(ctx, model.SpeechRequest{Text: "Hello world"})
			So(err, ShouldBeNil)
			So(string(audio[:4]), ShouldEqual, "RIFF")
			So(ai.spoken, ShouldEqual, "Hello")

			_, err = svc.Speak(ctx, model.SpeechRequest{Text: "   "})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("WreckMe passes the pitch through", func() {
			res, err := svc.WreckMe(ctx)
			So(err, ShouldBeNil)
			So(res.Analysis, ShouldStartWith, "## IDEA")
		})
	})

	Convey("Given no API key", t, func() {
		svc := service.New(repository.NewMemoryStore(), nil)
		_, err := svc.WreckMe(context.Background())
		So(errors.Is(err, llm.ErrNoAPIKey), ShouldBeTrue)
	})
}

func TestService_Batch(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		seedStore(ctx, store)
		svc := service.New(store, newFakeAnalyzer(), service.WithWorkerCount(2), service.WithQueueSize(8))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { _ = svc.Stop(ctx) })

		Convey("When submitting a mixed batch", func() {
			job, err := svc.SubmitBatch(ctx, model.BatchRequest{Items: []model.BatchItem{
				{GitHubURL: "https://github.com/new/one", Status: "Winner"},
				{GitHubURL: "https://github.com/a/medibot", Status: "Winner"},
				{GitHubURL: "not a url", Status: "Participant"},
			}})
			So(err, ShouldBeNil)
			So(job.Total, ShouldEqual, 3)

			Convey("Then every item settles with its own outcome", func() {
				var final model.BatchJob
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					final, err = svc.BatchStatus(ctx, job.ID)
					if final.State == model.BatchDone {
						break
					}
					time.Sleep(5 * time.Millisecond)
				}
				So(err, ShouldBeNil)
				So(final.State, ShouldEqual, model.BatchDone)
				So(final.Completed, ShouldEqual, 3)
				So(final.Items[0].State, ShouldEqual, model.BatchDone)
				So(final.Items[0].ProjectName, ShouldEqual, "Repo new/one")
				So(final.Items[1].State, ShouldEqual, model.BatchDuplicate)
				So(final.Items[2].State, ShouldEqual, model.BatchFailed)
				So(final.Items[2].Error, ShouldContainSubstring, "Invalid GitHub URL format")
			})
		})

		Convey("When a batch has an invalid status", func() {
			_, err := svc.SubmitBatch(ctx, model.BatchRequest{Items: []model.BatchItem{{GitHubURL: "https://github.com/a/b", Status: "maybe"}}})
			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
		})

		Convey("When a batch does not fit the queue", func() {
			items := make([]model.BatchItem, 9)
			for i := range items {
				items[i] = model.BatchItem{GitHubURL: fmt.Sprintf("https://github.com/a/r%d", i), Status: "Winner"}
			}
			_, err := svc.SubmitBatch(ctx, model.BatchRequest{Items: items})
			So(errors.Is(err, service.ErrQueueFull), ShouldBeTrue)
		})

		Convey("When asking for an unknown job", func() {
			_, err := svc.BatchStatus(ctx, "nope")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New(repository.NewMemoryStore(), newFakeAnalyzer())
		_, err := svc.SubmitBatch(context.Background(), model.BatchRequest{Items: []model.BatchItem{{GitHubURL: "https://github.com/a/b", Status: "Winner"}}})
		So(err, ShouldEqual, service.ErrNotStarted)
	})
}
