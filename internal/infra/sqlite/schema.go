package sqlite

import "context"

func (s *Store) initSchema(ctx context.Context) error {
	// Timestamps are unix nanoseconds so retention comparisons stay exact.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			question_duration INTEGER NOT NULL DEFAULT 20,
			created_at_unix_nano INTEGER NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL REFERENCES games (id),
			text TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			options_json TEXT NOT NULL,
			correct_answer INTEGER NOT NULL,
			position INTEGER NOT NULL,
			UNIQUE (game_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			game_id TEXT NOT NULL REFERENCES games (id),
			score INTEGER NOT NULL DEFAULT 0,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			total_answers INTEGER NOT NULL DEFAULT 0,
			average_time INTEGER NOT NULL DEFAULT 0,
			completed_at_unix_nano INTEGER,
			UNIQUE (game_id, name, phone)
		);`,
		`CREATE TABLE IF NOT EXISTS player_answers (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL REFERENCES players (id),
			question_id TEXT NOT NULL REFERENCES questions (id),
			selected_answer INTEGER NOT NULL,
			is_correct INTEGER NOT NULL,
			time_spent REAL NOT NULL,
			points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
			UNIQUE (player_id, question_id)
		);`,
		`CREATE TABLE IF NOT EXISTS site_stats (
			id TEXT PRIMARY KEY,
			visitors INTEGER NOT NULL DEFAULT 0,
			updated_at_unix_nano INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_created_at ON games(created_at_unix_nano);`,
		`CREATE INDEX IF NOT EXISTS idx_players_game_score ON players(game_id, score DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
