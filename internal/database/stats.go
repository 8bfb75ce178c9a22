package database

// GetStats returns aggregate row counts for the status command.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM politicians", &s.Politicians},
		{"SELECT COUNT(*) FROM bills", &s.Bills},
		{"SELECT COUNT(*) FROM bill_cosponsors", &s.Cosponsors},
		{"SELECT COUNT(*) FROM votes", &s.Votes},
		{"SELECT COUNT(*) FROM committees", &s.Committees},
		{"SELECT COUNT(*) FROM committee_assignments", &s.Assignments},
		{"SELECT COUNT(*) FROM donors", &s.Donors},
		{"SELECT COUNT(*) FROM donations", &s.Donations},
		{"SELECT COUNT(*) FROM sync_log", &s.SyncRuns},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return s, nil
}
