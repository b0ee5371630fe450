package main

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// OpenDB opens (or creates) the SQLite event log
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_type_time ON analytics_events(event_type, created_at);
	CREATE INDEX IF NOT EXISTS idx_events_player ON analytics_events(player_id);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// EventRow is one persisted event
type EventRow struct {
	Type      string `json:"type"`
	PlayerID  string `json:"player_id"`
	Data      string `json:"data,omitempty"`
	CreatedAt string `json:"created_at"`
}

// PlayerEvents returns the most recent events of a player, newest first
func (db *DB) PlayerEvents(playerID string, limit int) ([]EventRow, error) {
	rows, err := db.conn.Query(`
		SELECT event_type, COALESCE(player_id, ''), COALESCE(data, ''), created_at
		FROM analytics_events
		WHERE player_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]EventRow, 0)
	for rows.Next() {
		var r EventRow
		if err := rows.Scan(&r.Type, &r.PlayerID, &r.Data, &r.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
