package database

import "database/sql"

// GetOrCreateDonor resolves a donor by its composite source key, creating
// the row on first sighting. Donors are the one entity whose identity is
// inferred from the ingest stream itself rather than a canonical registry.
func (db *DB) GetOrCreateDonor(d *Donor) (int64, error) {
	var id int64
	err := db.conn.QueryRow(
		"SELECT donor_id FROM donors WHERE donor_source_key = ?", d.SourceKey,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := db.conn.Exec(
		`INSERT INTO donors (donor_source_key, name, city, state, zip_code, employer, occupation)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(donor_source_key) DO NOTHING`,
		d.SourceKey, d.Name, d.City, d.State, d.ZipCode, d.Employer, d.Occupation,
	)
	if err != nil {
		return 0, err
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return result.LastInsertId()
	}

	// Lost a race with another writer; the row exists now.
	err = db.conn.QueryRow(
		"SELECT donor_id FROM donors WHERE donor_source_key = ?", d.SourceKey,
	).Scan(&id)
	return id, err
}

// InsertDonation appends a contribution event. Donations are insert-only;
// the best-effort natural key absorbs re-ingestion of the same extract row.
// Returns true if a new row was inserted, false on duplicate.
func (db *DB) InsertDonation(d *Donation) (bool, error) {
	result, err := db.conn.Exec(
		`INSERT INTO donations (donor_id, committee_id, amount, transaction_date, transaction_type, fec_filing_id, memo_text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(donor_id, committee_id, transaction_date, amount, fec_filing_id) DO NOTHING`,
		d.DonorID, d.CommitteeID, d.Amount, d.TransactionDate, d.TransactionType, d.FilingID, d.MemoText,
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
