package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the sqlite database at dbPath and
// ensures the schema exists. The returned handle is passed to
// repositories by the caller; nothing in this package holds it.
func Open(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err = createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY,
        username TEXT UNIQUE NOT NULL,
        email TEXT UNIQUE,
        password_hash TEXT NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS artifacts (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title TEXT NOT NULL,
        kind TEXT NOT NULL,
        parent_id INTEGER,
        child_index INTEGER,
        duration INTEGER DEFAULT 0,
        release_date TEXT,
        description TEXT,
        FOREIGN KEY (parent_id) REFERENCES artifacts(id)
    );

    CREATE TABLE IF NOT EXISTS artifact_genres (
        artifact_id INTEGER NOT NULL,
        genre TEXT NOT NULL,
        PRIMARY KEY (artifact_id, genre),
        FOREIGN KEY (artifact_id) REFERENCES artifacts(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS artifact_tags (
        artifact_id INTEGER NOT NULL,
        tag TEXT NOT NULL,
        PRIMARY KEY (artifact_id, tag),
        FOREIGN KEY (artifact_id) REFERENCES artifacts(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS artifact_links (
        artifact_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        url TEXT NOT NULL,
        PRIMARY KEY (artifact_id, name),
        FOREIGN KEY (artifact_id) REFERENCES artifacts(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS artifact_ratings (
        artifact_id INTEGER NOT NULL,
        source TEXT NOT NULL,
        value REAL NOT NULL,
        PRIMARY KEY (artifact_id, source),
        FOREIGN KEY (artifact_id) REFERENCES artifacts(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS user_states (
        user_id TEXT NOT NULL,
        artifact_id INTEGER NOT NULL,
        status TEXT,
        score REAL,
        start_date TIMESTAMP,
        end_date TIMESTAMP,
        updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (user_id, artifact_id),
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        FOREIGN KEY (artifact_id) REFERENCES artifacts(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS backlogs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL,
        kind TEXT NOT NULL,
        title TEXT NOT NULL,
        ranking_type TEXT NOT NULL DEFAULT 'RANK',
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS backlog_entries (
        backlog_id INTEGER NOT NULL,
        artifact_id INTEGER NOT NULL,
        rank INTEGER,
        elo REAL NOT NULL DEFAULT 1200,
        date_added TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        tags TEXT,
        PRIMARY KEY (backlog_id, artifact_id),
        FOREIGN KEY (backlog_id) REFERENCES backlogs(id) ON DELETE CASCADE,
        FOREIGN KEY (artifact_id) REFERENCES artifacts(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS wishlist_rankings (
        user_id TEXT NOT NULL,
        artifact_id INTEGER NOT NULL,
        elo REAL NOT NULL DEFAULT 1200,
        rank INTEGER,
        PRIMARY KEY (user_id, artifact_id),
        FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
        FOREIGN KEY (artifact_id) REFERENCES artifacts(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_artifacts_title ON artifacts(title);
    CREATE INDEX IF NOT EXISTS idx_artifacts_kind ON artifacts(kind);
    CREATE INDEX IF NOT EXISTS idx_artifacts_parent ON artifacts(parent_id);
    CREATE INDEX IF NOT EXISTS idx_user_states_user ON user_states(user_id);
    CREATE INDEX IF NOT EXISTS idx_backlog_entries_artifact ON backlog_entries(artifact_id);
    `

	_, err := db.Exec(schema)
	return err
}
