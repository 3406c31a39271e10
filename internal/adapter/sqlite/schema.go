package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	email          TEXT NOT NULL UNIQUE,
	role           TEXT NOT NULL,
	selected_river TEXT NOT NULL,
	joined_at      TEXT NOT NULL,
	points         INTEGER NOT NULL DEFAULT 0,
	level          INTEGER NOT NULL DEFAULT 1,
	badges         TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS environmental_data (
	river          TEXT PRIMARY KEY,
	temperature    REAL NOT NULL,
	vegetation     REAL NOT NULL,
	pollution      REAL NOT NULL,
	water_level    REAL NOT NULL,
	last_updated   TEXT NOT NULL,
	data_source    TEXT NOT NULL,
	nasa_last_sync TEXT
);

CREATE TABLE IF NOT EXISTS quiz_progress (
	user_id           TEXT PRIMARY KEY,
	correct_answers   INTEGER NOT NULL,
	total_questions   INTEGER NOT NULL,
	river_health      INTEGER NOT NULL,
	completed_quizzes TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS activities (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id   TEXT NOT NULL,
	type      TEXT NOT NULL,
	points    INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	details   TEXT,
	published INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id);
CREATE INDEX IF NOT EXISTS idx_activities_published ON activities(published, id);`
