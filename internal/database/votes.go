package database

// InsertVote appends a vote event. Votes are insert-only; the synthetic
// natural key on (politician, bill, date, category, position) absorbs
// re-ingestion of the same roll call under retried or overlapping runs.
// Returns true if a new row was inserted, false on duplicate.
func (db *DB) InsertVote(v *VoteEvent) (bool, error) {
	result, err := db.conn.Exec(
		`INSERT INTO votes (politician_id, bill_id, date, vote_position, vote_category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(politician_id, bill_id, date, vote_category, vote_position) DO NOTHING`,
		v.PoliticianID, v.BillID, v.Date, v.Position, v.Category,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountVotes returns the number of vote rows for a bill.
func (db *DB) CountVotes(billID int64) (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM votes WHERE bill_id = ?", billID).Scan(&n)
	return n, err
}
