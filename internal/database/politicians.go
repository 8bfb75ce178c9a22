package database

import "database/sql"

// InsertPolitician adds a legislator row. The sync engine never calls this;
// it exists for the bootstrap path and for tests.
func (db *DB) InsertPolitician(p *Politician) (int64, error) {
	active := 0
	if p.IsActive {
		active = 1
	}
	result, err := db.conn.Exec(
		`INSERT INTO politicians (bioguide_id, first_name, last_name, party, state, chamber, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.BioguideID, p.FirstName, p.LastName, p.Party, p.State, p.Chamber, active,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetPoliticianID resolves a legislator's surrogate id from the external
// bioguide code. Returns 0 if unknown.
func (db *DB) GetPoliticianID(bioguideID string) (int64, error) {
	var id int64
	err := db.conn.QueryRow(
		"SELECT politician_id FROM politicians WHERE bioguide_id = ?", bioguideID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// PoliticianCodeMap returns a bioguide-code -> surrogate-id map over all
// legislators, used to build the identity snapshot at job start.
func (db *DB) PoliticianCodeMap() (map[string]int64, error) {
	rows, err := db.conn.Query(
		"SELECT politician_id, bioguide_id FROM politicians WHERE bioguide_id IS NOT NULL",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var id int64
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, err
		}
		m[code] = id
	}
	return m, rows.Err()
}
