package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/metrics"
)

const projectColumns = "id, name, framework, githubLink, place, topic, descriptions, ai_score, ai_reasoning"

// winnerClause matches any place that mentions a win, e.g. "Winner" or "1st Place Winner".
const winnerClause = "LOWER(COALESCE(place, '')) LIKE '%winner%'"

// bestFirst orders scored rows before unscored ones.
const bestFirst = "ORDER BY ai_score IS NULL, ai_score DESC, id"

type row interface {
	Scan(dest ...any) error
}

type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// conn abstracts database/sql and pgxpool so both stores share one query set.
type conn interface {
	query(ctx context.Context, q string, args ...any) (rows, error)
	queryRow(ctx context.Context, q string, args ...any) row
	exec(ctx context.Context, q string, args ...any) (int64, error)
}

// sqlStore implements the catalogue queries over a conn.
type sqlStore struct {
	db conn
	// ph renders the n-th (1-based) bind placeholder.
	ph func(n int) string
}

func observe(query string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(query, float64(time.Since(start).Microseconds())/1000)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

func (s *sqlStore) Insert(ctx context.Context, p model.Project) (int64, error) {
	defer observe("insert", time.Now())
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO hacks (name, framework, githubLink, place, topic, descriptions, ai_score, ai_reasoning)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s) RETURNING id`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6), s.ph(7), s.ph(8))
	var id int64
	err := s.db.queryRow(ctx, q,
		p.Name, p.Framework, p.GitHubLink, p.Outcome().Place(), p.Topic, p.Description, p.Score, p.Reasoning,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}
	return id, nil
}

func (s *sqlStore) FindByLink(ctx context.Context, link string) (model.Project, error) {
	defer observe("find_by_link", time.Now())
	q := fmt.Sprintf("SELECT %s FROM hacks WHERE githubLink = %s LIMIT 1", projectColumns, s.ph(1))
	p, err := scanProject(s.db.queryRow(ctx, q, link))
	if isNoRows(err) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func (s *sqlStore) Delete(ctx context.Context, id int64) (string, error) {
	defer observe("delete", time.Now())
	var name string
	err := s.db.queryRow(ctx, fmt.Sprintf("SELECT name FROM hacks WHERE id = %s", s.ph(1)), id).Scan(&name)
	if isNoRows(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("delete project %d: %w", id, err)
	}
	n, err := s.db.exec(ctx, fmt.Sprintf("DELETE FROM hacks WHERE id = %s", s.ph(1)), id)
	if err != nil {
		return "", fmt.Errorf("delete project %d: %w", id, err)
	}
	if n == 0 {
		return "", ErrNotFound
	}
	return name, nil
}

func (s *sqlStore) List(ctx context.Context) ([]model.Project, error) {
	defer observe("list", time.Now())
	return s.projects(ctx, fmt.Sprintf("SELECT %s FROM hacks ORDER BY id", projectColumns))
}

func (s *sqlStore) Winners(ctx context.Context) ([]model.Project, error) {
	defer observe("winners", time.Now())
	return s.projects(ctx, fmt.Sprintf("SELECT %s FROM hacks WHERE %s ORDER BY id", projectColumns, winnerClause))
}

func (s *sqlStore) Search(ctx context.Context, query string, limit int) ([]model.Project, error) {
	defer observe("search", time.Now())
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	terms := strings.Fields(strings.ToLower(query))
	var where []string
	var args []any
	for _, term := range terms {
		p := s.ph(len(args) + 1)
		where = append(where, fmt.Sprintf(
			"(LOWER(name) LIKE %[1]s OR LOWER(framework) LIKE %[1]s OR LOWER(topic) LIKE %[1]s OR LOWER(descriptions) LIKE %[1]s)", p))
		args = append(args, "%"+term+"%")
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	q := fmt.Sprintf("SELECT %s FROM hacks %s %s LIMIT %s", projectColumns, clause, bestFirst, s.ph(len(args)))
	return s.projects(ctx, q, args...)
}

func (s *sqlStore) WinnersByCategory(ctx context.Context, category string, limit int) ([]model.Project, error) {
	defer observe("winners_by_category", time.Now())
	q := fmt.Sprintf("SELECT %s FROM hacks WHERE %s AND LOWER(topic) LIKE %s %s LIMIT %s",
		projectColumns, winnerClause, s.ph(1), bestFirst, s.ph(2))
	return s.limited(ctx, q, limit, like(category))
}

func (s *sqlStore) WinnersExcludingCategory(ctx context.Context, category string, limit int) ([]model.Project, error) {
	defer observe("winners_excluding_category", time.Now())
	q := fmt.Sprintf("SELECT %s FROM hacks WHERE %s AND LOWER(COALESCE(topic, '')) NOT LIKE %s %s LIMIT %s",
		projectColumns, winnerClause, s.ph(1), bestFirst, s.ph(2))
	return s.limited(ctx, q, limit, like(category))
}

func (s *sqlStore) WinnersByFramework(ctx context.Context, framework string, limit int) ([]model.Project, error) {
	defer observe("winners_by_framework", time.Now())
	q := fmt.Sprintf("SELECT %s FROM hacks WHERE %s AND LOWER(framework) LIKE %s %s LIMIT %s",
		projectColumns, winnerClause, s.ph(1), bestFirst, s.ph(2))
	return s.limited(ctx, q, limit, like(FrameworkKey(framework)))
}

func (s *sqlStore) Participants(ctx context.Context, limit int) ([]model.Project, error) {
	defer observe("participants", time.Now())
	q := fmt.Sprintf("SELECT %s FROM hacks WHERE NOT (%s) %s LIMIT %s", projectColumns, winnerClause, bestFirst, s.ph(1))
	return s.limited(ctx, q, limit)
}

func (s *sqlStore) TopWinners(ctx context.Context, limit int) ([]model.Project, error) {
	defer observe("top_winners", time.Now())
	q := fmt.Sprintf("SELECT %s FROM hacks WHERE %s %s LIMIT %s", projectColumns, winnerClause, bestFirst, s.ph(1))
	return s.limited(ctx, q, limit)
}

func (s *sqlStore) Count(ctx context.Context) (int, error) {
	defer observe("count", time.Now())
	var n int64
	if err := s.db.queryRow(ctx, "SELECT COUNT(*) FROM hacks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return int(n), nil
}

func (s *sqlStore) Stats(ctx context.Context) (model.Stats, error) {
	defer observe("stats", time.Now())
	var st model.Stats
	var total, winners int64
	if err := s.db.queryRow(ctx, "SELECT COUNT(*) FROM hacks").Scan(&total); err != nil {
		return st, fmt.Errorf("stats total: %w", err)
	}
	if err := s.db.queryRow(ctx, "SELECT COUNT(*) FROM hacks WHERE "+winnerClause).Scan(&winners); err != nil {
		return st, fmt.Errorf("stats winners: %w", err)
	}
	var avg sql.NullFloat64
	if err := s.db.queryRow(ctx, "SELECT AVG(ai_score) FROM hacks WHERE "+winnerClause).Scan(&avg); err != nil {
		return st, fmt.Errorf("stats average: %w", err)
	}
	st.TotalProjects = int(total)
	st.TotalWinners = int(winners)
	st.TotalParticipants = int(total - winners)
	st.AvgWinnerScore = avg.Float64

	frameworks, err := s.breakdown(ctx, "framework")
	if err != nil {
		return st, err
	}
	for _, b := range frameworks {
		st.TopFrameworks = append(st.TopFrameworks, model.FrameworkCount{Framework: b.key, Count: b.count})
	}
	categories, err := s.breakdown(ctx, "topic")
	if err != nil {
		return st, err
	}
	for _, b := range categories {
		st.TopCategories = append(st.TopCategories, model.CategoryCount{Category: b.key, Count: b.count})
	}
	return st, nil
}

type bucket struct {
	key   string
	count int
}

// breakdown counts winners grouped by column; column is a fixed identifier.
func (s *sqlStore) breakdown(ctx context.Context, column string) ([]bucket, error) {
	q := fmt.Sprintf("SELECT %[1]s, COUNT(*) AS cnt FROM hacks WHERE %[2]s GROUP BY %[1]s ORDER BY cnt DESC, %[1]s LIMIT %[3]d",
		column, winnerClause, TopBreakdownLimit)
	rs, err := s.db.query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", column, err)
	}
	defer rs.Close()
	var out []bucket
	for rs.Next() {
		var key sql.NullString
		var n int64
		if err := rs.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("stats %s: %w", column, err)
		}
		out = append(out, bucket{key: key.String, count: int(n)})
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("stats %s: %w", column, err)
	}
	return out, nil
}

// limited runs q with args followed by limit as the final bind value.
func (s *sqlStore) limited(ctx context.Context, q string, limit int, args ...any) ([]model.Project, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	return s.projects(ctx, q, append(args, limit)...)
}

func (s *sqlStore) projects(ctx context.Context, q string, args ...any) ([]model.Project, error) {
	rs, err := s.db.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rs.Close()
	out := []model.Project{}
	for rs.Next() {
		p, err := scanProject(rs)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	return out, nil
}

func scanProject(r row) (model.Project, error) {
	var (
		p                                                      model.Project
		framework, link, place, topic, description, reasoning sql.NullString
		score                                                  sql.NullFloat64
	)
	if err := r.Scan(&p.ID, &p.Name, &framework, &link, &place, &topic, &description, &score, &reasoning); err != nil {
		return model.Project{}, err
	}
	p.Framework = framework.String
	p.GitHubLink = link.String
	p.Place = place.String
	p.Topic = topic.String
	p.Description = description.String
	p.Reasoning = reasoning.String
	if score.Valid {
		p.Score = model.Float(score.Float64)
	}
	return p, nil
}

// FrameworkKey extracts the first framework of a comma or slash separated list.
func FrameworkKey(framework string) string {
	key, _, _ := strings.Cut(framework, ",")
	key, _, _ = strings.Cut(key, "/")
	return strings.TrimSpace(key)
}

func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
