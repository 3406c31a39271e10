package domain

import (
	"fmt"
	"time"
)

// Role selects which dashboard a user sees.
type Role string

const (
	RoleAdult   Role = "adult"
	RoleStudent Role = "student"
	RoleFarmer  Role = "farmer"
)

// ParseRole validates a role identifier.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdult, RoleStudent, RoleFarmer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// User is a registered player.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	SelectedRiver River     `json:"selectedRiver"`
	JoinedAt      time.Time `json:"joinedAt"`
	Points        int       `json:"points"`
	Level         int       `json:"level"`
	Badges        []string  `json:"badges"`
}

// NewUser builds a fresh user with no points at level 1.
func NewUser(id, name, email string, role Role, river River) User {
	return User{
		ID:            id,
		Name:          name,
		Email:         email,
		Role:          role,
		SelectedRiver: river,
		JoinedAt:      Now(),
		Level:         1,
		Badges:        []string{},
	}
}

// LevelForPoints returns floor(points/100) + 1.
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/100 + 1
}

// Credit adds points to u and recomputes the level.
func (u *User) Credit(points int) {
	u.Points += points
	u.Level = LevelForPoints(u.Points)
}

// UserPatch is a partial update. Nil fields are left unchanged.
type UserPatch struct {
	Name          *string
	Role          *Role
	SelectedRiver *River
	Points        *int
	Level         *int
	Badges        []string
}

// Apply merges p into u.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.SelectedRiver != nil {
		u.SelectedRiver = *p.SelectedRiver
	}
	if p.Points != nil {
		u.Points = *p.Points
	}
	if p.Level != nil {
		u.Level = *p.Level
	}
	if p.Badges != nil {
		u.Badges = append([]string(nil), p.Badges...)
	}
	return u
}
