package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/hackwreck/internal/adapters/repository"
	"github.com/okian/hackwreck/internal/domain/dedupe"
	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/validate"
	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// User-facing ingest messages.
const (
	MsgArchived      = "Project successfully added"
	MsgDuplicate     = "Duplicate project - already exists in database"
	MsgInProgress    = "Project is already being analyzed"
	msgInvalidRepo   = "Invalid GitHub URL format. Expected: https://github.com/username/repo"
	msgInvalidStatus = "Status must be Winner or Participant"
)

// Ingest validates, analyzes and archives one repository. A duplicate is not
// an error: it yields Success=false with MsgDuplicate.
func (s *Service) Ingest(ctx context.Context, req model.InsertRequest) (model.InsertResponse, error) {
	start := time.Now()

	outcome, err := model.ParseOutcome(req.Status)
	if err != nil {
		return model.InsertResponse{}, invalid(msgInvalidStatus)
	}
	link, err := validate.NormalizeRepoURL(req.GitHubURL)
	if err != nil {
		return model.InsertResponse{}, invalid(msgInvalidRepo)
	}
	ref, _ := validate.ParseRepo(link)

	if s.verifier != nil {
		if err := s.verifier.Exists(ctx, ref); err != nil {
			s.logger.Info(ctx, "repository rejected", logger.String("repo", ref.String()), logger.Error(err))
			return model.InsertResponse{}, invalid(capitalize(err.Error()))
		}
	}

	seen, err := s.guard.SeenAndRecord(ctx, link)
	if errors.Is(err, dedupe.ErrBusy) {
		return model.InsertResponse{}, fmt.Errorf("%w: %w", ErrQueueFull, err)
	}
	if seen {
		metrics.RecordDuplicateSubmission()
		return model.InsertResponse{Success: false, Message: MsgInProgress}, nil
	}
	defer s.guard.Unrecord(ctx, link)

	existing, err := s.store.FindByLink(ctx, link)
	switch {
	case err == nil:
		metrics.RecordDuplicateSubmission()
		s.logger.Info(ctx, "duplicate submission",
			logger.String("repo", ref.String()),
			logger.Int64("id", existing.ID),
			logger.String("name", existing.Name),
		)
		return model.InsertResponse{Success: false, Message: MsgDuplicate}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return model.InsertResponse{}, err
	}

	profile, err := s.analyzer.AnalyzeRepo(ctx, link, outcome.Place())
	if err != nil {
		return model.InsertResponse{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	if profile.Name == "" {
		return model.InsertResponse{}, fmt.Errorf("%w: no project name for %s", ErrAnalysis, ref)
	}

	project := model.Project{
		Name:        profile.Name,
		Framework:   profile.Framework,
		GitHubLink:  link,
		Place:       outcome.Place(),
		Topic:       profile.Topic,
		Description: profile.Description,
		Score:       model.Float(profile.Score),
		Reasoning:   profile.Reasoning,
	}
	id, err := s.store.Insert(ctx, project)
	if err != nil {
		return model.InsertResponse{}, err
	}

	metrics.RecordProjectArchived(string(outcome))
	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateProjectsTotal(n)
	}
	s.logger.Info(ctx, "project archived",
		logger.Int64("id", id),
		logger.String("name", project.Name),
		logger.String("place", project.Place),
		logger.Float64("score", profile.Score),
		logger.Duration("took", time.Since(start)),
	)
	return model.InsertResponse{Success: true, Message: MsgArchived, ProjectName: project.Name}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
