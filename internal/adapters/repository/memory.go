package repository

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/metrics"
)

// MemoryStore is an in-process Store. Projects are indexed in a treap ordered
// best-first: scored before unscored, score DESC, then id ASC. In-order
// traversal therefore yields the ranking the SQL stores produce with bestFirst.
type MemoryStore struct {
	mu     sync.RWMutex
	root   *node
	byID   map[int64]model.Project
	nextID int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]model.Project)}
}

// rankKey positions a project in the treap.
type rankKey struct {
	scored bool
	score  float64
	id     int64
}

func keyOf(p model.Project) rankKey {
	if p.Score == nil {
		return rankKey{id: p.ID}
	}
	return rankKey{scored: true, score: *p.Score, id: p.ID}
}

// before reports whether a ranks ahead of b.
func (a rankKey) before(b rankKey) bool {
	if a.scored != b.scored {
		return a.scored
	}
	if a.scored && a.score != b.score {
		return a.score > b.score
	}
	return a.id < b.id
}

type node struct {
	key   rankKey
	prio  uint64
	left  *node
	right *node
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	return y
}

func insert(n *node, k rankKey) *node {
	if n == nil {
		return &node{key: k, prio: rand.Uint64()}
	}
	if k.before(n.key) {
		n.left = insert(n.left, k)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

func deleteNode(n *node, k rankKey) *node {
	if n == nil {
		return nil
	}
	switch {
	case k == n.key:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case k.before(n.key):
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	return n
}

// walk visits keys best-first until visit returns false.
func walk(n *node, visit func(rankKey) bool) bool {
	if n == nil {
		return true
	}
	return walk(n.left, visit) && visit(n.key) && walk(n.right, visit)
}

func (s *MemoryStore) Insert(_ context.Context, p model.Project) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	p.Place = p.Outcome().Place()
	s.byID[p.ID] = p
	s.root = insert(s.root, keyOf(p))
	metrics.UpdateProjectsTotal(len(s.byID))
	return p.ID, nil
}

func (s *MemoryStore) FindByLink(_ context.Context, link string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.sortedIDs() {
		if p := s.byID[id]; p.GitHubLink == link {
			return p, nil
		}
	}
	return model.Project{}, ErrNotFound
}

func (s *MemoryStore) Delete(_ context.Context, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return "", ErrNotFound
	}
	s.root = deleteNode(s.root, keyOf(p))
	delete(s.byID, id)
	metrics.UpdateProjectsTotal(len(s.byID))
	return p.Name, nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, 0, len(s.byID))
	for _, id := range s.sortedIDs() {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *MemoryStore) Winners(_ context.Context) ([]model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Project{}
	for _, id := range s.sortedIDs() {
		if p := s.byID[id]; isWinner(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) Search(_ context.Context, query string, limit int) ([]model.Project, error) {
	terms := strings.Fields(strings.ToLower(query))
	return s.ranked(limit, func(p model.Project) bool {
		for _, term := range terms {
			if !contains(p.Name, term) && !contains(p.Framework, term) &&
				!contains(p.Topic, term) && !contains(p.Description, term) {
				return false
			}
		}
		return true
	})
}

func (s *MemoryStore) WinnersByCategory(_ context.Context, category string, limit int) ([]model.Project, error) {
	needle := strings.ToLower(strings.TrimSpace(category))
	return s.ranked(limit, func(p model.Project) bool {
		return isWinner(p) && contains(p.Topic, needle)
	})
}

func (s *MemoryStore) WinnersExcludingCategory(_ context.Context, category string, limit int) ([]model.Project, error) {
	needle := strings.ToLower(strings.TrimSpace(category))
	return s.ranked(limit, func(p model.Project) bool {
		return isWinner(p) && !contains(p.Topic, needle)
	})
}

func (s *MemoryStore) WinnersByFramework(_ context.Context, framework string, limit int) ([]model.Project, error) {
	needle := strings.ToLower(FrameworkKey(framework))
	return s.ranked(limit, func(p model.Project) bool {
		return isWinner(p) && contains(p.Framework, needle)
	})
}

func (s *MemoryStore) Participants(_ context.Context, limit int) ([]model.Project, error) {
	return s.ranked(limit, func(p model.Project) bool { return !isWinner(p) })
}

func (s *MemoryStore) TopWinners(_ context.Context, limit int) ([]model.Project, error) {
	return s.ranked(limit, isWinner)
}

func (s *MemoryStore) Stats(_ context.Context) (model.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st model.Stats
	frameworks := map[string]int{}
	categories := map[string]int{}
	var sum float64
	var scored int
	for _, p := range s.byID {
		st.TotalProjects++
		if !isWinner(p) {
			continue
		}
		st.TotalWinners++
		frameworks[p.Framework]++
		categories[p.Topic]++
		if p.Score != nil {
			sum += *p.Score
			scored++
		}
	}
	st.TotalParticipants = st.TotalProjects - st.TotalWinners
	if scored > 0 {
		st.AvgWinnerScore = sum / float64(scored)
	}
	for _, b := range top(frameworks) {
		st.TopFrameworks = append(st.TopFrameworks, model.FrameworkCount{Framework: b.key, Count: b.count})
	}
	for _, b := range top(categories) {
		st.TopCategories = append(st.TopCategories, model.CategoryCount{Category: b.key, Count: b.count})
	}
	return st, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// ranked returns up to limit matching projects best-first.
func (s *MemoryStore) ranked(limit int, match func(model.Project) bool) ([]model.Project, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	defer observe("memory_ranked", time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Project{}
	walk(s.root, func(k rankKey) bool {
		if p := s.byID[k.id]; match(p) {
			out = append(out, p)
		}
		return len(out) < limit
	})
	return out, nil
}

func (s *MemoryStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func top(counts map[string]int) []bucket {
	out := make([]bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, bucket{key: k, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	if len(out) > TopBreakdownLimit {
		out = out[:TopBreakdownLimit]
	}
	return out
}

func isWinner(p model.Project) bool {
	return strings.Contains(strings.ToLower(p.Place), "winner")
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}
