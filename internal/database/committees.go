package database

// UpsertCommittee merges a committee on its external id. All descriptive
// columns refresh on conflict; the id itself never changes. Returns true if
// a new row was inserted.
func (db *DB) UpsertCommittee(c *Committee) (bool, error) {
	var exists int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM committees WHERE committee_id = ?", c.ID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	_, err = db.conn.Exec(
		`INSERT INTO committees (committee_id, name, chamber, type, url, parent_committee_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(committee_id) DO UPDATE SET
			name = excluded.name,
			chamber = excluded.chamber,
			type = excluded.type,
			url = excluded.url,
			parent_committee_id = excluded.parent_committee_id`,
		c.ID, c.Name, c.Chamber, c.Type, c.URL, c.ParentID,
	)
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}

// CommitteeExists reports whether a committee id is known.
func (db *DB) CommitteeExists(id string) (bool, error) {
	var n int
	if err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM committees WHERE committee_id = ?", id,
	).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertAssignment merges a committee seat on (politician, committee,
// congress), refreshing rank, role and majority/minority party on conflict.
// Returns true if a new row was inserted.
func (db *DB) UpsertAssignment(a *Assignment) (bool, error) {
	var exists int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM committee_assignments
		WHERE politician_id = ? AND committee_id = ? AND congress = ?`,
		a.PoliticianID, a.CommitteeID, a.Congress,
	).Scan(&exists)
	if err != nil {
		return false, err
	}

	_, err = db.conn.Exec(
		`INSERT INTO committee_assignments (politician_id, committee_id, congress, rank, role, party)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(politician_id, committee_id, congress) DO UPDATE SET
			rank = excluded.rank,
			role = excluded.role,
			party = excluded.party`,
		a.PoliticianID, a.CommitteeID, a.Congress, a.Rank, a.Role, a.Party,
	)
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}

// GetCommittees returns all committees ordered by id.
func (db *DB) GetCommittees() ([]Committee, error) {
	rows, err := db.conn.Query(
		`SELECT committee_id, name, chamber, type, url, parent_committee_id
		FROM committees ORDER BY committee_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var committees []Committee
	for rows.Next() {
		var c Committee
		if err := rows.Scan(&c.ID, &c.Name, &c.Chamber, &c.Type, &c.URL, &c.ParentID); err != nil {
			return nil, err
		}
		committees = append(committees, c)
	}
	return committees, rows.Err()
}
