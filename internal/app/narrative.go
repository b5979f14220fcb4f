package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hackwreck/internal/adapters/cache"
	"github.com/okian/hackwreck/internal/adapters/llm"
	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/readaloud"
	"github.com/okian/hackwreck/internal/domain/validate"
	"github.com/okian/hackwreck/pkg/logger"
)

// Query sizes for the context handed to the model.
const (
	trendCategoryLimit    = 10
	trendOtherLimit       = 10
	trendParticipantLimit = 5
	relatedPerQueryLimit  = 5
	topWinnerLimit        = 5
)

// Trends compares an idea against catalogue winners. Answers are cached per
// (category, framework, description) when a cache is configured.
func (s *Service) Trends(ctx context.Context, req model.TrendRequest) (model.TrendResponse, error) {
	req.Category = strings.TrimSpace(req.Category)
	req.Framework = strings.TrimSpace(req.Framework)
	req.Description = strings.TrimSpace(req.Description)
	if req.Category == "" || req.Description == "" {
		return model.TrendResponse{}, invalid("Category and description are required")
	}

	key := cache.Key("trends", req.Category, req.Framework, req.Description)
	if text, ok := s.cached(ctx, key); ok {
		return model.TrendResponse{Success: true, Analysis: text}, nil
	}

	in := llm.TrendInput{Category: req.Category, Framework: req.Framework, Description: req.Description}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.CategoryWinners, err = s.store.WinnersByCategory(gctx, req.Category, trendCategoryLimit)
		return err
	})
	g.Go(func() (err error) {
		in.OtherWinners, err = s.store.WinnersExcludingCategory(gctx, req.Category, trendOtherLimit)
		return err
	})
	g.Go(func() (err error) {
		in.Participants, err = s.store.Participants(gctx, trendParticipantLimit)
		return err
	})
	g.Go(func() (err error) {
		in.Stats, err = s.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TrendResponse{}, err
	}

	text, err := s.analyzer.Trends(ctx, in)
	if err != nil {
		return model.TrendResponse{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	s.remember(ctx, key, text)
	return model.TrendResponse{Success: true, Analysis: text}, nil
}

// WreckMe pitches a random idea. It is never cached.
func (s *Service) WreckMe(ctx context.Context) (model.TrendResponse, error) {
	text, err := s.analyzer.WreckMe(ctx)
	if err != nil {
		return model.TrendResponse{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	return model.TrendResponse{Success: true, Analysis: text}, nil
}

// Analyze assesses a repository and builds an improvement plan for a hackathon
// from related and top winners.
func (s *Service) Analyze(ctx context.Context, req model.AnalyzeRequest) (model.AnalysisResult, error) {
	if msg := validate.GitHubRepo(strings.TrimSpace(req.GitHubURL)); msg != "" {
		return model.AnalysisResult{}, invalid(msg)
	}
	if strings.TrimSpace(req.HackathonName) == "" {
		return model.AnalysisResult{}, invalid("Hackathon name is required")
	}

	assessment, err := s.analyzer.AssessProject(ctx, strings.TrimSpace(req.GitHubURL))
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	var byFramework, byTopic, top []model.Project
	var stats model.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		byFramework, err = s.store.WinnersByFramework(gctx, strings.ToLower(assessment.Framework), relatedPerQueryLimit)
		return err
	})
	g.Go(func() (err error) {
		byTopic, err = s.store.WinnersByCategory(gctx, strings.ToLower(assessment.Topic), relatedPerQueryLimit)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.store.TopWinners(gctx, topWinnerLimit)
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.store.Stats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.AnalysisResult{}, err
	}

	related := mergeRelated(byFramework, byTopic)
	suggestions, err := s.analyzer.Suggest(ctx, llm.SuggestionInput{
		HackathonName:  req.HackathonName,
		HackathonTheme: req.HackathonTheme,
		Assessment:     assessment,
		Related:        related,
		TopWinners:     top,
		TopFrameworks:  stats.TopFrameworks,
	})
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	records := make([]model.RelatedRecord, 0, len(related))
	for _, p := range related {
		records = append(records, model.RelatedRecord{Name: p.Name, Framework: p.Framework, Topic: p.Topic, Score: p.ScoreValue()})
	}
	return model.AnalysisResult{
		Success:        true,
		Assessment:     assessment,
		Suggestions:    suggestions,
		RelatedWinners: records,
		HackathonName:  req.HackathonName,
		HackathonTheme: req.HackathonTheme,
	}, nil
}

// mergeRelated concatenates framework and topic matches, dropping repeated
// names, capped at model.MaxRelated.
func mergeRelated(lists ...[]model.Project) []model.Project {
	seen := map[string]bool{}
	out := []model.Project{}
	for _, list := range lists {
		for _, p := range list {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
			if len(out) == model.MaxRelated {
				return out
			}
		}
	}
	return out
}

// Speak synthesizes text as WAV, truncated to the speech limit.
func (s *Service) Speak(ctx context.Context, req model.SpeechRequest) ([]byte, error) {
	text := strings.TrimSpace(readaloud.Truncate(req.Text, s.speechLimit))
	if text == "" {
		return nil, invalid("Text is required")
	}
	audio, err := s.analyzer.Speak(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	return audio, nil
}

func (s *Service) cached(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	text, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "cache read failed", logger.Error(err))
		return "", false
	}
	return text, ok
}

func (s *Service) remember(ctx context.Context, key, text string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, text, s.cacheTTL); err != nil {
		s.logger.Warn(ctx, "cache write failed", logger.Error(err))
	}
}
