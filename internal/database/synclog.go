package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Sync log statuses.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

const syncTimeLayout = "2006-01-02 15:04:05"

// RecordRun appends one entry to the sync log. The log is append-only: past
// entries are never mutated, so it doubles as a full audit trail.
func (db *DB) RecordRun(runID, entity string, recordsAffected int, status string, notes string) error {
	var n *string
	if notes != "" {
		n = &notes
	}
	_, err := db.conn.Exec(
		`INSERT INTO sync_log (run_id, entity, ran_at, records_affected, status, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, entity, time.Now().UTC().Format(syncTimeLayout), recordsAffected, status, n,
	)
	if err != nil {
		return fmt.Errorf("recording sync run for %s: %w", entity, err)
	}
	return nil
}

// LastSuccess returns the timestamp of the most recent successful run for an
// entity. When no successful run exists the configured default lookback is
// applied instead, so a fresh database still gets a bounded fetch window.
func (db *DB) LastSuccess(entity string, defaultLookback time.Duration) (time.Time, error) {
	var ranAt string
	err := db.conn.QueryRow(
		`SELECT ran_at FROM sync_log
		WHERE entity = ? AND status = ?
		ORDER BY ran_at DESC, id DESC LIMIT 1`,
		entity, StatusSuccess,
	).Scan(&ranAt)
	if err == sql.ErrNoRows {
		return time.Now().UTC().Add(-defaultLookback), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading last success for %s: %w", entity, err)
	}

	t, err := time.Parse(syncTimeLayout, ranAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing sync timestamp %q: %w", ranAt, err)
	}
	return t, nil
}

// RecentRuns returns the newest sync log entries, most recent first.
func (db *DB) RecentRuns(limit int) ([]SyncRun, error) {
	rows, err := db.conn.Query(
		`SELECT id, run_id, entity, ran_at, records_affected, status, notes
		FROM sync_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		if err := rows.Scan(&r.ID, &r.RunID, &r.Entity, &r.RanAt, &r.RecordsAffected, &r.Status, &r.Notes); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
