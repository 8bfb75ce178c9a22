package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS politicians (
    politician_id INTEGER PRIMARY KEY AUTOINCREMENT,
    bioguide_id TEXT UNIQUE NOT NULL,
    first_name TEXT,
    last_name TEXT,
    party TEXT,
    state TEXT,
    chamber TEXT,
    is_active INTEGER DEFAULT 1
);

CREATE TABLE IF NOT EXISTS bills (
    bill_id INTEGER PRIMARY KEY AUTOINCREMENT,
    official_bill_number TEXT NOT NULL,
    congress INTEGER NOT NULL,
    bill_type TEXT,
    title TEXT,
    summary TEXT,
    date_introduced TEXT,
    status TEXT,
    sponsor_id INTEGER REFERENCES politicians(politician_id),
    UNIQUE(official_bill_number, congress)
);

CREATE TABLE IF NOT EXISTS bill_cosponsors (
    bill_id INTEGER NOT NULL REFERENCES bills(bill_id),
    politician_id INTEGER NOT NULL REFERENCES politicians(politician_id),
    sponsorship_date TEXT,
    is_original_cosponsor INTEGER DEFAULT 0,
    PRIMARY KEY (bill_id, politician_id)
);

CREATE TABLE IF NOT EXISTS votes (
    vote_id INTEGER PRIMARY KEY AUTOINCREMENT,
    politician_id INTEGER NOT NULL REFERENCES politicians(politician_id),
    bill_id INTEGER NOT NULL REFERENCES bills(bill_id),
    date TEXT,
    vote_position TEXT,
    vote_category TEXT,
    UNIQUE(politician_id, bill_id, date, vote_category, vote_position)
);

CREATE TABLE IF NOT EXISTS committees (
    committee_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    chamber TEXT,
    type TEXT,
    url TEXT,
    parent_committee_id TEXT REFERENCES committees(committee_id)
);

CREATE TABLE IF NOT EXISTS committee_assignments (
    politician_id INTEGER NOT NULL REFERENCES politicians(politician_id),
    committee_id TEXT NOT NULL REFERENCES committees(committee_id),
    congress INTEGER NOT NULL,
    rank INTEGER,
    role TEXT,
    party TEXT,
    PRIMARY KEY (politician_id, committee_id, congress)
);

CREATE TABLE IF NOT EXISTS donors (
    donor_id INTEGER PRIMARY KEY AUTOINCREMENT,
    donor_source_key TEXT UNIQUE NOT NULL,
    name TEXT,
    city TEXT,
    state TEXT,
    zip_code TEXT,
    employer TEXT,
    occupation TEXT
);

CREATE TABLE IF NOT EXISTS donations (
    donation_id INTEGER PRIMARY KEY AUTOINCREMENT,
    donor_id INTEGER NOT NULL REFERENCES donors(donor_id),
    committee_id TEXT,
    amount REAL,
    transaction_date TEXT,
    transaction_type TEXT,
    fec_filing_id TEXT,
    memo_text TEXT,
    UNIQUE(donor_id, committee_id, transaction_date, amount, fec_filing_id)
);

CREATE TABLE IF NOT EXISTS sync_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    entity TEXT NOT NULL,
    ran_at TEXT NOT NULL DEFAULT (datetime('now')),
    records_affected INTEGER DEFAULT 0,
    status TEXT NOT NULL,
    notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_bills_natural ON bills(official_bill_number, congress);
CREATE INDEX IF NOT EXISTS idx_bills_sponsor ON bills(sponsor_id);
CREATE INDEX IF NOT EXISTS idx_votes_bill ON votes(bill_id);
CREATE INDEX IF NOT EXISTS idx_votes_politician ON votes(politician_id);
CREATE INDEX IF NOT EXISTS idx_donations_donor ON donations(donor_id);
CREATE INDEX IF NOT EXISTS idx_assignments_committee ON committee_assignments(committee_id);
CREATE INDEX IF NOT EXISTS idx_sync_log_entity ON sync_log(entity, status, ran_at);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
