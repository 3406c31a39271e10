package domain

import "context"

// Repository persists users, environmental records, quiz progress and the
// activity log. Lookups of missing rows return ErrNotFound.
type Repository interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (User, error)

	GetEnvironmentalData(ctx context.Context, river River) (EnvironmentalData, error)
	SaveEnvironmentalData(ctx context.Context, e EnvironmentalData) error

	GetQuizProgress(ctx context.Context, userID string) (QuizProgress, error)
	SaveQuizProgress(ctx context.Context, p QuizProgress) error

	// AddActivity appends a to the log and credits its points to the owning
	// user, recomputing the level. It returns the activity with its id set.
	AddActivity(ctx context.Context, a UserActivity) (UserActivity, error)
	ListActivities(ctx context.Context) ([]UserActivity, error)
	ListUserActivities(ctx context.Context, userID string) ([]UserActivity, error)

	// UnpublishedActivities returns up to limit activities not yet marked
	// published, oldest first.
	UnpublishedActivities(ctx context.Context, limit int) ([]UserActivity, error)
	MarkActivitiesPublished(ctx context.Context, ids []int64) error

	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
