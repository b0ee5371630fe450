package main

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtSessionStart     = "session_start"
	EvtSessionEnd       = "session_end"
	EvtBlobFired        = "blob_fired"
	EvtPlayerHit        = "player_hit"
	EvtPlayerEliminated = "player_eliminated"
)

const (
	analyticsBuffer     = 1024
	analyticsBatchSize  = 50
	analyticsFlushEvery = 5 * time.Second
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	PlayerID  string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// HitData is the payload of hit and elimination events
type HitData struct {
	Blob  int64   `json:"blob"`
	Owner string  `json:"owner"`
	Mass  float64 `json:"mass"`
}

// FireData is the payload of blob_fired events
type FireData struct {
	Blob  int64   `json:"blob"`
	Angle float64 `json:"angle"`
}

// eventData marshals an event payload. Unencodable payloads are dropped
// and the event is kept without data.
func eventData(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Debug("analytics: encode event data")
		return ""
	}
	return string(b)
}

// Analytics journals gameplay events with batched background writes.
// A nil *Analytics, or one without a database, accepts and discards events.
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, analyticsBuffer),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType, playerID, data string) {
	if a == nil || a.db == nil {
		return
	}
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		PlayerID:  playerID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full, drop the event instead of blocking a game loop
	}
}

// Stop flushes pending events and shuts down the writer
func (a *Analytics) Stop() {
	if a == nil {
		return
	}
	a.once.Do(func() { close(a.stop) })
	a.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, analyticsBatchSize)
	ticker := time.NewTicker(analyticsFlushEvery)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// Drain what is already queued; late Track calls are dropped
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events in one transaction
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.WithError(err).Warn("analytics: begin tx")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_id, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		log.WithError(err).Warn("analytics: prepare")
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullString{String: evt.PlayerID, Valid: evt.PlayerID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.WithError(err).Warn("analytics: insert")
		}
	}
	if err := tx.Commit(); err != nil {
		log.WithError(err).Warn("analytics: commit")
	}
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			return nil, err
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// TopEliminators returns owners whose blobs eliminated the most players
func (a *Analytics) TopEliminators(limit int) ([]EliminatorCount, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT json_extract(data, '$.owner') AS owner, COUNT(*) AS cnt
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data)
		GROUP BY owner ORDER BY cnt DESC LIMIT ?
	`, EvtPlayerEliminated, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EliminatorCount
	for rows.Next() {
		var e EliminatorCount
		if err := rows.Scan(&e.PlayerID, &e.Eliminations); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// EliminatorCount holds eliminations credited to one player
type EliminatorCount struct {
	PlayerID     string `json:"player_id"`
	Eliminations int    `json:"eliminations"`
}
