package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// BillKey builds the composite natural key used for bill identity lookups.
func BillKey(officialNumber string, congress int) string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(officialNumber), congress)
}

// UpsertBill merges a bill on its natural key (official number + congress).
// New bills are inserted whole; existing bills only have their mutable
// descriptive columns refreshed — identity columns are never overwritten.
// Returns true if a new row was inserted.
func (db *DB) UpsertBill(b *Bill) (bool, error) {
	existing, err := db.GetBillID(b.OfficialNumber, b.Congress)
	if err != nil {
		return false, err
	}

	_, err = db.conn.Exec(
		`INSERT INTO bills (official_bill_number, congress, bill_type, title, summary, date_introduced, status, sponsor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(official_bill_number, congress) DO UPDATE SET
			title = COALESCE(excluded.title, title),
			summary = COALESCE(excluded.summary, summary),
			status = COALESCE(excluded.status, status)`,
		b.OfficialNumber, b.Congress, b.BillType, b.Title, b.Summary, b.DateIntroduced, b.Status, b.SponsorID,
	)
	if err != nil {
		return false, err
	}
	return existing == 0, nil
}

// GetBillID resolves a bill's surrogate id from its natural key.
// Returns 0 if the bill is unknown.
func (db *DB) GetBillID(officialNumber string, congress int) (int64, error) {
	var id int64
	err := db.conn.QueryRow(
		"SELECT bill_id FROM bills WHERE official_bill_number = ? AND congress = ?",
		officialNumber, congress,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// SetBillSponsor patches the sponsor reference and introduced date on an
// existing bill. A nil sponsorID clears nothing: the column is only written
// when a resolvable sponsor was found.
func (db *DB) SetBillSponsor(billID int64, sponsorID *int64, dateIntroduced *string) error {
	if sponsorID == nil {
		_, err := db.conn.Exec(
			"UPDATE bills SET date_introduced = COALESCE(?, date_introduced) WHERE bill_id = ?",
			dateIntroduced, billID,
		)
		return err
	}
	_, err := db.conn.Exec(
		"UPDATE bills SET sponsor_id = ?, date_introduced = COALESCE(?, date_introduced) WHERE bill_id = ?",
		sponsorID, dateIntroduced, billID,
	)
	return err
}

// SetBillSummary stores the latest summary text for a bill.
func (db *DB) SetBillSummary(billID int64, summary string) error {
	_, err := db.conn.Exec("UPDATE bills SET summary = ? WHERE bill_id = ?", summary, billID)
	return err
}

// BillKeyMap returns a natural-key -> surrogate-id map over all bills,
// used to build the identity snapshot at job start.
func (db *DB) BillKeyMap() (map[string]int64, error) {
	rows, err := db.conn.Query("SELECT bill_id, official_bill_number, congress FROM bills")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int64)
	for rows.Next() {
		var id int64
		var num string
		var congress int
		if err := rows.Scan(&id, &num, &congress); err != nil {
			return nil, err
		}
		m[BillKey(num, congress)] = id
	}
	return m, rows.Err()
}

// GetBillsWithSummaries returns bills whose summary is long enough to be
// worth embedding.
func (db *DB) GetBillsWithSummaries(minLength int) ([]Bill, error) {
	rows, err := db.conn.Query(
		`SELECT bill_id, official_bill_number, congress, bill_type, title, summary, date_introduced, status, sponsor_id
		FROM bills WHERE summary IS NOT NULL AND length(summary) > ?
		ORDER BY bill_id`, minLength,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBills(rows)
}

// GetBillsWithoutSummaries returns bills from the given congress missing
// summary text, oldest first.
func (db *DB) GetBillsWithoutSummaries(congress int) ([]Bill, error) {
	rows, err := db.conn.Query(
		`SELECT bill_id, official_bill_number, congress, bill_type, title, summary, date_introduced, status, sponsor_id
		FROM bills WHERE (summary IS NULL OR summary = '') AND congress = ?
		ORDER BY bill_id`, congress,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBills(rows)
}

// GetBillsWithoutSponsor returns bills from the given congress whose
// sponsor reference has not been resolved yet.
func (db *DB) GetBillsWithoutSponsor(congress int) ([]Bill, error) {
	rows, err := db.conn.Query(
		`SELECT bill_id, official_bill_number, congress, bill_type, title, summary, date_introduced, status, sponsor_id
		FROM bills WHERE sponsor_id IS NULL AND congress = ?
		ORDER BY bill_id`, congress,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBills(rows)
}

// GetBillsIntroducedSince returns bills introduced on or after the given
// date (YYYY-MM-DD), used by the cosponsor job to scope its fetch.
func (db *DB) GetBillsIntroducedSince(date string, congress int) ([]Bill, error) {
	rows, err := db.conn.Query(
		`SELECT bill_id, official_bill_number, congress, bill_type, title, summary, date_introduced, status, sponsor_id
		FROM bills WHERE congress = ? AND date_introduced >= ?
		ORDER BY date_introduced`, congress, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBills(rows)
}

func scanBills(rows *sql.Rows) ([]Bill, error) {
	var bills []Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.OfficialNumber, &b.Congress, &b.BillType,
			&b.Title, &b.Summary, &b.DateIntroduced, &b.Status, &b.SponsorID); err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}
