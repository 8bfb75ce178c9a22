package database

// UpsertCosponsor merges a cosponsorship edge on (bill, politician).
// Only the sponsorship date and original-cosponsor flag are refreshed on
// conflict. Returns true if a new row was inserted.
func (db *DB) UpsertCosponsor(c *Cosponsorship) (bool, error) {
	var exists int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM bill_cosponsors WHERE bill_id = ? AND politician_id = ?",
		c.BillID, c.PoliticianID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	original := 0
	if c.IsOriginalCosponsor {
		original = 1
	}
	_, err = db.conn.Exec(
		`INSERT INTO bill_cosponsors (bill_id, politician_id, sponsorship_date, is_original_cosponsor)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(bill_id, politician_id) DO UPDATE SET
			sponsorship_date = excluded.sponsorship_date,
			is_original_cosponsor = excluded.is_original_cosponsor`,
		c.BillID, c.PoliticianID, c.SponsorshipDate, original,
	)
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}

// GetCosponsors returns all cosponsorship edges for a bill.
func (db *DB) GetCosponsors(billID int64) ([]Cosponsorship, error) {
	rows, err := db.conn.Query(
		`SELECT bill_id, politician_id, sponsorship_date, is_original_cosponsor
		FROM bill_cosponsors WHERE bill_id = ?`, billID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Cosponsorship
	for rows.Next() {
		var c Cosponsorship
		var original int
		if err := rows.Scan(&c.BillID, &c.PoliticianID, &c.SponsorshipDate, &original); err != nil {
			return nil, err
		}
		c.IsOriginalCosponsor = original != 0
		edges = append(edges, c)
	}
	return edges, rows.Err()
}
