package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
)

// RegisterInput is the payload for creating a user.
type RegisterInput struct {
	Name          string       `json:"name" validate:"required,max=100"`
	Email         string       `json:"email" validate:"required,email"`
	Role          domain.Role  `json:"role" validate:"required,oneof=adult student farmer"`
	SelectedRiver domain.River `json:"selectedRiver" validate:"required,oneof=nile amazon yangtze"`
}

// Register creates a user. Emails are unique; a duplicate returns
// domain.ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}

	u := domain.NewUser(s.newID(), in.Name, in.Email, in.Role, in.SelectedRiver)
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID, "role", u.Role, "river", u.SelectedRiver)
	return u, nil
}

// Login returns the user registered under email. The password is not
// checked.
func (s *Service) Login(ctx context.Context, email, _ string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: missing email", domain.ErrInvalidInput)
	}
	return s.repo.FindUserByEmail(ctx, email)
}

// CurrentUser returns the user identified by userID.
func (s *Service) CurrentUser(ctx context.Context, userID string) (domain.User, error) {
	return s.requireUser(ctx, userID)
}

// Activities returns the user's activity log in insertion order.
func (s *Service) Activities(ctx context.Context, userID string) ([]domain.UserActivity, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	acts, err := s.repo.ListUserActivities(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acts == nil {
		acts = []domain.UserActivity{}
	}
	return acts, nil
}

// Leaderboard ranks users by points.
func (s *Service) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	acts, err := s.repo.ListActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return domain.BuildLeaderboard(users, acts), nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
