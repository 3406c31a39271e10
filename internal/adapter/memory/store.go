// Package memory provides an in-memory domain.Repository for tests and demos.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

// Store implements domain.Repository using maps guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	userOrder   []string
	environment map[domain.River]domain.EnvironmentalData
	progress    map[string]domain.QuizProgress
	activities  []domain.UserActivity
	published   map[int64]bool
	nextID      int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[string]domain.User)
	s.userOrder = nil
	s.environment = make(map[domain.River]domain.EnvironmentalData)
	s.progress = make(map[string]domain.QuizProgress)
	s.activities = nil
	s.published = make(map[int64]bool)
	s.nextID = 0
}

func cloneUser(u domain.User) domain.User {
	u.Badges = slices.Clone(u.Badges)
	if u.Badges == nil {
		u.Badges = []string{}
	}
	return u
}

func (s *Store) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("user %s: %w", u.ID, domain.ErrConflict)
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
		}
	}
	s.users[u.ID] = cloneUser(u)
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if u := s.users[id]; u.Email == email {
			return cloneUser(u), nil
		}
	}
	return domain.User{}, fmt.Errorf("email %s: %w", email, domain.ErrNotFound)
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, cloneUser(s.users[id]))
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u = cloneUser(patch.Apply(u))
	s.users[id] = u
	return cloneUser(u), nil
}

func (s *Store) GetEnvironmentalData(_ context.Context, river domain.River) (domain.EnvironmentalData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.environment[river]
	if !ok {
		return domain.EnvironmentalData{}, fmt.Errorf("environment %s: %w", river, domain.ErrNotFound)
	}
	return e, nil
}

func (s *Store) SaveEnvironmentalData(_ context.Context, e domain.EnvironmentalData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.environment[e.River] = e
	return nil
}

func (s *Store) GetQuizProgress(_ context.Context, userID string) (domain.QuizProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[userID]
	if !ok {
		return domain.QuizProgress{}, fmt.Errorf("quiz progress %s: %w", userID, domain.ErrNotFound)
	}
	p.CompletedQuizzes = slices.Clone(p.CompletedQuizzes)
	return p, nil
}

func (s *Store) SaveQuizProgress(_ context.Context, p domain.QuizProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.CompletedQuizzes = slices.Clone(p.CompletedQuizzes)
	s.progress[p.UserID] = p
	return nil
}

func (s *Store) AddActivity(_ context.Context, a domain.UserActivity) (domain.UserActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	a.ID = s.nextID
	s.activities = append(s.activities, a)

	if u, ok := s.users[a.UserID]; ok {
		u.Credit(a.Points)
		s.users[a.UserID] = u
	}
	return a, nil
}

func (s *Store) ListActivities(_ context.Context) ([]domain.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.activities), nil
}

func (s *Store) ListUserActivities(_ context.Context, userID string) ([]domain.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.UserActivity{}
	for _, a := range s.activities {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) UnpublishedActivities(_ context.Context, limit int) ([]domain.UserActivity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.UserActivity
	for _, a := range s.activities {
		if len(out) >= limit {
			break
		}
		if !s.published[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) MarkActivitiesPublished(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.published[id] = true
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }
