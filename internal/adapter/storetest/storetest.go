// Package storetest is a behavioural test suite shared by every
// domain.Repository implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var joined = time.Date(2025, time.October, 1, 9, 30, 0, 0, time.UTC)

func user(id, email string, points int) domain.User {
	return domain.User{
		ID:            id,
		Name:          "User " + id,
		Email:         email,
		Role:          domain.RoleStudent,
		SelectedRiver: domain.Nile,
		JoinedAt:      joined,
		Points:        points,
		Level:         1,
		Badges:        []string{},
	}
}

// Run exercises newRepo against the repository contract. newRepo must return
// an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) domain.Repository) {
	t.Run("users", func(t *testing.T) { testUsers(t, newRepo(t)) })
	t.Run("update user", func(t *testing.T) { testUpdateUser(t, newRepo(t)) })
	t.Run("environmental data", func(t *testing.T) { testEnvironment(t, newRepo(t)) })
	t.Run("quiz progress", func(t *testing.T) { testQuizProgress(t, newRepo(t)) })
	t.Run("activities credit users", func(t *testing.T) { testActivities(t, newRepo(t)) })
	t.Run("outbox", func(t *testing.T) { testOutbox(t, newRepo(t)) })
	t.Run("clear", func(t *testing.T) { testClear(t, newRepo(t)) })
}

func testUsers(t *testing.T, repo domain.Repository) {
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, user("u1", "one@example.com", 0)))
	require.NoError(t, repo.CreateUser(ctx, user("u2", "two@example.com", 10)))

	err := repo.CreateUser(ctx, user("u3", "one@example.com", 0))
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user("u1", "one@example.com", 0), got)

	got, err = repo.FindUserByEmail(ctx, "two@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.ID)

	_, err = repo.GetUser(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.FindUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u1", users[0].ID, "users are listed in registration order")
	assert.Equal(t, "u2", users[1].ID)
}

func testUpdateUser(t *testing.T, repo domain.Repository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, user("u1", "one@example.com", 0)))

	river := domain.Yangtze
	updated, err := repo.UpdateUser(ctx, "u1", domain.UserPatch{
		SelectedRiver: &river,
		Badges:        []string{domain.BadgeWaterSaver},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Yangtze, updated.SelectedRiver)
	assert.Equal(t, []string{domain.BadgeWaterSaver}, updated.Badges)

	got, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = repo.UpdateUser(ctx, "missing", domain.UserPatch{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func testEnvironment(t *testing.T, repo domain.Repository) {
	ctx := context.Background()

	_, err := repo.GetEnvironmentalData(ctx, domain.Amazon)
	require.ErrorIs(t, err, domain.ErrNotFound)

	e := domain.EnvironmentalData{
		River: domain.Amazon, Temperature: 26, Vegetation: 85, Pollution: 25, WaterLevel: 90,
		LastUpdated: joined, DataSource: domain.SourceSimulated,
	}
	require.NoError(t, repo.SaveEnvironmentalData(ctx, e))

	got, err := repo.GetEnvironmentalData(ctx, domain.Amazon)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	sync := joined.Add(time.Hour)
	e.Temperature = 27.5
	e.DataSource = domain.SourceNASA
	e.NASALastSync = &sync
	require.NoError(t, repo.SaveEnvironmentalData(ctx, e))

	got, err = repo.GetEnvironmentalData(ctx, domain.Amazon)
	require.NoError(t, err)
	assert.Equal(t, 27.5, got.Temperature)
	assert.Equal(t, domain.SourceNASA, got.DataSource)
	require.NotNil(t, got.NASALastSync)
	assert.True(t, sync.Equal(*got.NASALastSync))
}

func testQuizProgress(t *testing.T, repo domain.Repository) {
	ctx := context.Background()

	_, err := repo.GetQuizProgress(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	p := domain.QuizProgress{UserID: "u1", CorrectAnswers: 3, TotalQuestions: 4, RiverHealth: 55, CompletedQuizzes: []string{"q1", "q2"}}
	require.NoError(t, repo.SaveQuizProgress(ctx, p))

	got, err := repo.GetQuizProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	p.RiverHealth = 57
	p.CompletedQuizzes = append(p.CompletedQuizzes, "q3")
	require.NoError(t, repo.SaveQuizProgress(ctx, p))

	got, err = repo.GetQuizProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 57, got.RiverHealth)
	assert.Equal(t, []string{"q1", "q2", "q3"}, got.CompletedQuizzes)
}

func testActivities(t *testing.T, repo domain.Repository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, user("u1", "one@example.com", 95)))

	a, err := repo.AddActivity(ctx, domain.UserActivity{
		UserID: "u1", Type: domain.ActivityCleanup, Points: 50, Timestamp: joined,
		Details: map[string]any{"qrCode": "BR_EVENT_1_CLEANUP_1"},
	})
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	got, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 145, got.Points)
	assert.Equal(t, 2, got.Level)

	// Activities for unknown users are still logged.
	_, err = repo.AddActivity(ctx, domain.UserActivity{UserID: "ghost", Type: domain.ActivityQuiz, Points: 10, Timestamp: joined})
	require.NoError(t, err)

	b, err := repo.AddActivity(ctx, domain.UserActivity{UserID: "u1", Type: domain.ActivitySimulation, Points: 0, Timestamp: joined.Add(time.Minute)})
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)

	all, err := repo.ListActivities(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.ListUserActivities(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, domain.ActivityCleanup, mine[0].Type)
	assert.Equal(t, "BR_EVENT_1_CLEANUP_1", mine[0].Details["qrCode"])
	assert.True(t, joined.Equal(mine[0].Timestamp))
	assert.Equal(t, domain.ActivitySimulation, mine[1].Type)

	none, err := repo.ListUserActivities(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testOutbox(t *testing.T, repo domain.Repository) {
	ctx := context.Background()

	var ids []int64
	for i := range 5 {
		a, err := repo.AddActivity(ctx, domain.UserActivity{UserID: "u1", Type: domain.ActivityQuiz, Points: i, Timestamp: joined})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	batch, err := repo.UnpublishedActivities(ctx, 3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, ids[0], batch[0].ID)

	require.NoError(t, repo.MarkActivitiesPublished(ctx, []int64{batch[0].ID, batch[1].ID, batch[2].ID}))

	batch, err = repo.UnpublishedActivities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, ids[3], batch[0].ID)
	assert.Equal(t, ids[4], batch[1].ID)

	require.NoError(t, repo.MarkActivitiesPublished(ctx, nil))
}

func testClear(t *testing.T, repo domain.Repository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, user("u1", "one@example.com", 0)))
	require.NoError(t, repo.SaveEnvironmentalData(ctx, domain.EnvironmentalData{River: domain.Nile, LastUpdated: joined, DataSource: domain.SourceSimulated}))
	require.NoError(t, repo.SaveQuizProgress(ctx, domain.NewQuizProgress("u1")))
	_, err := repo.AddActivity(ctx, domain.UserActivity{UserID: "u1", Type: domain.ActivityQuiz, Points: 10, Timestamp: joined})
	require.NoError(t, err)

	require.NoError(t, repo.Clear(ctx))

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	_, err = repo.GetEnvironmentalData(ctx, domain.Nile)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetQuizProgress(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	activities, err := repo.ListActivities(ctx)
	require.NoError(t, err)
	assert.Empty(t, activities)

	// The store is usable after clearing.
	require.NoError(t, repo.CreateUser(ctx, user("u1", "one@example.com", 0)))
	require.NoError(t, repo.Ping(ctx))
}
