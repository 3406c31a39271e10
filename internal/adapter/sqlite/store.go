// Package sqlite provides a domain.Repository backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/breathing-rivers/internal/domain"
	"github.com/mattn/go-sqlite3"
)

// Store implements domain.Repository using SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer; serialize access through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info("sqlite store opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

// --- users ---

const userColumns = `id, name, email, role, selected_river, joined_at, points, level, badges`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u        domain.User
		role     string
		river    string
		joinedAt string
		badges   string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &river, &joinedAt, &u.Points, &u.Level, &badges); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.SelectedRiver = domain.River(river)

	t, err := parseTime(joinedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("parse joined_at: %w", err)
	}
	u.JoinedAt = t

	u.Badges = []string{}
	if err := json.Unmarshal([]byte(badges), &u.Badges); err != nil {
		return domain.User{}, fmt.Errorf("decode badges: %w", err)
	}
	return u, nil
}

func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	badges, err := encodeStrings(u.Badges)
	if err != nil {
		return fmt.Errorf("encode badges: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users(`+userColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, string(u.Role), string(u.SelectedRiver), formatTime(u.JoinedAt), u.Points, u.Level, badges,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", u.Email, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) getUser(ctx context.Context, q queryer, where string, arg any) (domain.User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.getUser(ctx, s.db, "id = ?", id)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getUser(ctx, s.db, "email = ?", email)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	u, err := s.getUser(ctx, tx, "id = ?", id)
	if err != nil {
		return domain.User{}, err
	}
	u = patch.Apply(u)

	badges, err := encodeStrings(u.Badges)
	if err != nil {
		return domain.User{}, fmt.Errorf("encode badges: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET name = ?, role = ?, selected_river = ?, points = ?, level = ?, badges = ? WHERE id = ?`,
		u.Name, string(u.Role), string(u.SelectedRiver), u.Points, u.Level, badges, id,
	); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, fmt.Errorf("commit transaction: %w", err)
	}
	return u, nil
}

// --- environmental data ---

func (s *Store) GetEnvironmentalData(ctx context.Context, river domain.River) (domain.EnvironmentalData, error) {
	var (
		e           domain.EnvironmentalData
		riverID     string
		lastUpdated string
		source      string
		lastSync    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT river, temperature, vegetation, pollution, water_level, last_updated, data_source, nasa_last_sync
		 FROM environmental_data WHERE river = ?`, string(river),
	).Scan(&riverID, &e.Temperature, &e.Vegetation, &e.Pollution, &e.WaterLevel, &lastUpdated, &source, &lastSync)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EnvironmentalData{}, fmt.Errorf("environment %s: %w", river, domain.ErrNotFound)
	}
	if err != nil {
		return domain.EnvironmentalData{}, fmt.Errorf("select environmental data: %w", err)
	}

	e.River = domain.River(riverID)
	e.DataSource = domain.DataSource(source)
	if e.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return domain.EnvironmentalData{}, fmt.Errorf("parse last_updated: %w", err)
	}
	if lastSync.Valid {
		t, err := parseTime(lastSync.String)
		if err != nil {
			return domain.EnvironmentalData{}, fmt.Errorf("parse nasa_last_sync: %w", err)
		}
		e.NASALastSync = &t
	}
	return e, nil
}

func (s *Store) SaveEnvironmentalData(ctx context.Context, e domain.EnvironmentalData) error {
	var lastSync sql.NullString
	if e.NASALastSync != nil {
		lastSync = sql.NullString{String: formatTime(*e.NASALastSync), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO environmental_data(river, temperature, vegetation, pollution, water_level, last_updated, data_source, nasa_last_sync)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(river) DO UPDATE SET
		temperature=excluded.temperature,
		vegetation=excluded.vegetation,
		pollution=excluded.pollution,
		water_level=excluded.water_level,
		last_updated=excluded.last_updated,
		data_source=excluded.data_source,
		nasa_last_sync=excluded.nasa_last_sync`,
		string(e.River), e.Temperature, e.Vegetation, e.Pollution, e.WaterLevel,
		formatTime(e.LastUpdated), string(e.DataSource), lastSync,
	)
	if err != nil {
		return fmt.Errorf("upsert environmental data for %s: %w", e.River, err)
	}
	return nil
}

// --- quiz progress ---

func (s *Store) GetQuizProgress(ctx context.Context, userID string) (domain.QuizProgress, error) {
	var (
		p         domain.QuizProgress
		completed string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, correct_answers, total_questions, river_health, completed_quizzes FROM quiz_progress WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &p.CorrectAnswers, &p.TotalQuestions, &p.RiverHealth, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizProgress{}, fmt.Errorf("quiz progress %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.QuizProgress{}, fmt.Errorf("select quiz progress: %w", err)
	}
	p.CompletedQuizzes = []string{}
	if err := json.Unmarshal([]byte(completed), &p.CompletedQuizzes); err != nil {
		return domain.QuizProgress{}, fmt.Errorf("decode completed quizzes: %w", err)
	}
	return p, nil
}

func (s *Store) SaveQuizProgress(ctx context.Context, p domain.QuizProgress) error {
	completed, err := encodeStrings(p.CompletedQuizzes)
	if err != nil {
		return fmt.Errorf("encode completed quizzes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_progress(user_id, correct_answers, total_questions, river_health, completed_quizzes)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		correct_answers=excluded.correct_answers,
		total_questions=excluded.total_questions,
		river_health=excluded.river_health,
		completed_quizzes=excluded.completed_quizzes`,
		p.UserID, p.CorrectAnswers, p.TotalQuestions, p.RiverHealth, completed,
	)
	if err != nil {
		return fmt.Errorf("upsert quiz progress for %s: %w", p.UserID, err)
	}
	return nil
}

// --- activities ---

const activityColumns = `id, user_id, type, points, timestamp, details`

func scanActivity(row rowScanner) (domain.UserActivity, error) {
	var (
		a       domain.UserActivity
		typ     string
		ts      string
		details sql.NullString
	)
	if err := row.Scan(&a.ID, &a.UserID, &typ, &a.Points, &ts, &details); err != nil {
		return domain.UserActivity{}, err
	}
	var err error
	if a.Type, err = domain.ParseActivityType(typ); err != nil {
		return domain.UserActivity{}, fmt.Errorf("activity %d: %w", a.ID, err)
	}

	t, err := parseTime(ts)
	if err != nil {
		return domain.UserActivity{}, fmt.Errorf("parse timestamp: %w", err)
	}
	a.Timestamp = t

	if details.Valid && strings.TrimSpace(details.String) != "" {
		if err := json.Unmarshal([]byte(details.String), &a.Details); err != nil {
			return domain.UserActivity{}, fmt.Errorf("decode details: %w", err)
		}
	}
	return a, nil
}

// AddActivity inserts the activity and credits the owning user in one transaction.
func (s *Store) AddActivity(ctx context.Context, a domain.UserActivity) (domain.UserActivity, error) {
	var details sql.NullString
	if a.Details != nil {
		b, err := json.Marshal(a.Details)
		if err != nil {
			return domain.UserActivity{}, fmt.Errorf("encode details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.UserActivity{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx,
		`INSERT INTO activities(user_id, type, points, timestamp, details) VALUES(?, ?, ?, ?, ?)`,
		a.UserID, string(a.Type), a.Points, formatTime(a.Timestamp), details,
	)
	if err != nil {
		return domain.UserActivity{}, fmt.Errorf("insert activity: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return domain.UserActivity{}, fmt.Errorf("activity id: %w", err)
	}

	var points int
	err = tx.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, a.UserID).Scan(&points)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.Warn("activity recorded for unknown user", "user_id", a.UserID, "type", a.Type)
	case err != nil:
		return domain.UserActivity{}, fmt.Errorf("select user points: %w", err)
	default:
		points += a.Points
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET points = ?, level = ? WHERE id = ?`,
			points, domain.LevelForPoints(points), a.UserID,
		); err != nil {
			return domain.UserActivity{}, fmt.Errorf("credit user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.UserActivity{}, fmt.Errorf("commit transaction: %w", err)
	}
	return a, nil
}

func (s *Store) listActivities(ctx context.Context, query string, args ...any) ([]domain.UserActivity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []domain.UserActivity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListActivities(ctx context.Context) ([]domain.UserActivity, error) {
	return s.listActivities(ctx, `SELECT `+activityColumns+` FROM activities ORDER BY id`)
}

func (s *Store) ListUserActivities(ctx context.Context, userID string) ([]domain.UserActivity, error) {
	return s.listActivities(ctx, `SELECT `+activityColumns+` FROM activities WHERE user_id = ? ORDER BY id`, userID)
}

func (s *Store) UnpublishedActivities(ctx context.Context, limit int) ([]domain.UserActivity, error) {
	return s.listActivities(ctx, `SELECT `+activityColumns+` FROM activities WHERE published = 0 ORDER BY id LIMIT ?`, limit)
}

func (s *Store) MarkActivitiesPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `UPDATE activities SET published = 1 WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("mark activity %d published: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Clear deletes every row from every table.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"activities", "quiz_progress", "environmental_data", "users"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
