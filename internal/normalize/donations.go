package normalize

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// DonationRow is the canonical form of one bulk-extract contribution row.
// The donor key composes name and location, the only donor identity the
// extract provides.
type DonationRow struct {
	DonorKey        string
	DonorName       string
	DonorCity       *string
	DonorState      *string
	DonorZip        *string
	DonorEmployer   *string
	DonorOccupation *string
	CommitteeID     *string
	Amount          float64
	TransactionDate *string
	TransactionType *string
	FilingID        *string
	MemoText        *string
}

// ParseHeaderColumns parses the separately published header-definition
// file into the bulk extract's column names.
func ParseHeaderColumns(data []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	columns, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("parsing header definition: %w", err)
	}
	return columns, nil
}

// DonationReader streams pipe-delimited contribution rows one at a time.
// The extract is far too large to buffer, so rows are decoded directly off
// the wire.
type DonationReader struct {
	csv     *csv.Reader
	columns map[string]int
}

// NewDonationReader wraps a raw extract stream. columns comes from
// ParseHeaderColumns; the extract itself carries no header row.
func NewDonationReader(r io.Reader, columns []string) *DonationReader {
	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	return &DonationReader{csv: cr, columns: index}
}

// Next returns the next contribution row. A structurally invalid row
// yields (nil, nil) so the caller can count it as a skip and continue;
// io.EOF signals the end of the stream.
func (d *DonationReader) Next() (*DonationRow, error) {
	fields, err := d.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		// Malformed line, not end of stream.
		return nil, nil
	}

	name := d.field(fields, "NAME")
	if name == "" {
		return nil, nil
	}

	city := d.field(fields, "CITY")
	state := d.field(fields, "STATE")
	zip := d.field(fields, "ZIP_CODE")

	row := &DonationRow{
		DonorKey:        fmt.Sprintf("%s_%s_%s_%s", name, city, state, zip),
		DonorName:       name,
		DonorCity:       optional(city),
		DonorState:      optional(state),
		DonorZip:        optional(zip),
		DonorEmployer:   optional(d.field(fields, "EMPLOYER")),
		DonorOccupation: optional(d.field(fields, "OCCUPATION")),
		CommitteeID:     optional(d.field(fields, "CMTE_ID")),
		TransactionType: optional(d.field(fields, "TRANSACTION_TP")),
		FilingID:        optional(d.field(fields, "SUB_ID")),
		MemoText:        optional(d.field(fields, "MEMO_TEXT")),
	}

	if amount, err := strconv.ParseFloat(d.field(fields, "TRANSACTION_AMT"), 64); err == nil {
		row.Amount = amount
	}

	// Transaction dates arrive as MMDDYYYY.
	if raw := d.field(fields, "TRANSACTION_DT"); raw != "" {
		if t, err := time.Parse("01022006", raw); err == nil {
			formatted := t.Format("2006-01-02")
			row.TransactionDate = &formatted
		}
	}
	return row, nil
}

func (d *DonationReader) field(fields []string, column string) string {
	i, ok := d.columns[column]
	if !ok || i >= len(fields) {
		return ""
	}
	return fields[i]
}
