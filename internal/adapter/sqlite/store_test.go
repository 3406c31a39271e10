package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/breathing-rivers/internal/adapter/storetest"
	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "rivers.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Repository {
		return openTestStore(t)
	})
}

func TestOpen_CreatesDirectoryAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "rivers.db")
	ctx := context.Background()

	s, err := Open(path, discardLogger())
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(ctx, domain.NewUser("u1", "Lina", "lina@example.com", domain.RoleFarmer, domain.Yangtze)))
	require.NoError(t, s.Close())

	reopened, err := Open(path, discardLogger())
	require.NoError(t, err)
	defer reopened.Close()

	u, err := reopened.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Lina", u.Name)
	assert.Equal(t, domain.RoleFarmer, u.Role)
	assert.Empty(t, u.Badges)
}

func TestStore_DetailsRoundTripAsJSON(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.AddActivity(ctx, domain.UserActivity{
		UserID: "u1", Type: domain.ActivitySimulation, Points: 5, Timestamp: domain.Now(),
		Details: map[string]any{"waterUsage": 50, "energyUsage": 50.5},
	})
	require.NoError(t, err)

	got, err := s.ListUserActivities(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	// JSON numbers decode as float64.
	assert.Equal(t, 50.0, got[0].Details["waterUsage"])
	assert.Equal(t, 50.5, got[0].Details["energyUsage"])
}

func TestStore_RejectsUnknownActivityType(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (user_id, type, points, timestamp) VALUES (?, ?, ?, ?)`,
		"u1", "sabotage", 5, formatTime(domain.Now()))
	require.NoError(t, err)

	_, err = s.ListUserActivities(ctx, "u1")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
