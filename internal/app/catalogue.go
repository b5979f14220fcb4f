package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/hackwreck/internal/adapters/repository"
	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/scoring"
	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// Stats returns aggregate counters with the winner average rounded to one decimal.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	st.AvgWinnerScore = scoring.Round1(st.AvgWinnerScore)
	if st.TopFrameworks == nil {
		st.TopFrameworks = []model.FrameworkCount{}
	}
	if st.TopCategories == nil {
		st.TopCategories = []model.CategoryCount{}
	}
	return st, nil
}

// Search runs a keyword query across name, framework, topic and description.
func (s *Service) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return model.SearchResponse{}, invalid("Search query is required")
	}
	projects, err := s.store.Search(ctx, q, s.searchLimit)
	if err != nil {
		return model.SearchResponse{}, err
	}
	return model.SearchResponse{Projects: projects, Count: len(projects)}, nil
}

// List returns every project by id.
func (s *Service) List(ctx context.Context) ([]model.Project, error) {
	return s.store.List(ctx)
}

// Winners returns every winning project by id.
func (s *Service) Winners(ctx context.Context) ([]model.Project, error) {
	return s.store.Winners(ctx)
}

// Delete removes a project by id.
func (s *Service) Delete(ctx context.Context, id int64) (model.DeleteResponse, error) {
	name, err := s.store.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.DeleteResponse{}, &NotFoundError{Message: fmt.Sprintf("Project with ID %d not found", id)}
	}
	if err != nil {
		return model.DeleteResponse{}, err
	}
	metrics.RecordProjectDeleted()
	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateProjectsTotal(n)
	}
	s.logger.Info(ctx, "project deleted", logger.Int64("id", id), logger.String("name", name))
	return model.DeleteResponse{
		Success:     true,
		Message:     fmt.Sprintf("Successfully deleted project '%s' (ID: %d)", name, id),
		ProjectName: name,
	}, nil
}
