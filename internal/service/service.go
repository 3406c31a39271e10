// Package service implements the application operations behind the HTTP API:
// users, environmental data, quiz, simulator, farmer tools, predictions and
// community events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/couchcryptid/breathing-rivers/internal/observability"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Service coordinates the repository and the NASA data source.
type Service struct {
	repo    domain.Repository
	nasa    domain.NASASource
	rnd     domain.Random
	logger  *slog.Logger
	metrics *observability.Metrics
	newID   func() string

	// quizMu serializes read-modify-write cycles on quiz progress.
	quizMu sync.Mutex
}

// New creates a Service. rnd drives the simulated fallbacks.
func New(repo domain.Repository, nasa domain.NASASource, rnd domain.Random, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		repo:    repo,
		nasa:    nasa,
		rnd:     rnd,
		logger:  logger,
		metrics: metrics,
		newID:   uuid.NewString,
	}
}

// CheckReadiness reports whether the repository is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	return nil
}

// SeedSampleData loads the sample environmental records and users. It does
// nothing when users already exist and reports whether it seeded.
func (s *Service) SeedSampleData(ctx context.Context) (bool, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("list users: %w", err)
	}
	if len(users) > 0 {
		return false, nil
	}

	for _, e := range domain.SampleEnvironment() {
		if err := s.repo.SaveEnvironmentalData(ctx, e); err != nil {
			return false, fmt.Errorf("seed %s: %w", e.River, err)
		}
	}
	sample := domain.SampleUsers(s.newID)
	for _, u := range sample {
		if err := s.repo.CreateUser(ctx, u); err != nil {
			return false, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	s.logger.InfoContext(ctx, "sample data seeded", "users", len(sample))
	return true, nil
}

// Reset removes all stored data.
func (s *Service) Reset(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// validateInput runs struct validation and maps failures to ErrInvalidInput.
func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s", domain.ErrInvalidInput, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// record appends an activity and counts it.
func (s *Service) record(ctx context.Context, a domain.UserActivity) (domain.UserActivity, error) {
	saved, err := s.repo.AddActivity(ctx, a)
	if err != nil {
		return domain.UserActivity{}, fmt.Errorf("record %s activity: %w", a.Type, err)
	}
	s.metrics.ActivitiesRecorded.WithLabelValues(string(a.Type)).Inc()
	return saved, nil
}

func (s *Service) requireUser(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, fmt.Errorf("%w: missing user id", domain.ErrInvalidInput)
	}
	return s.repo.GetUser(ctx, userID)
}
