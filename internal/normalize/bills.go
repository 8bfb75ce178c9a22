// Package normalize converts source-specific payloads into canonical
// records. Every parser returns nil (or skips the row) on structurally
// invalid input instead of failing; callers count nils as skips.
package normalize

import "encoding/json"

// BillRecord is the canonical form of one bill list entry.
type BillRecord struct {
	OfficialNumber string
	BillType       string
	Congress       int
	Title          *string
	Status         *string
	IntroducedDate *string
}

// billListItem mirrors one entry of the legislative API's bill list.
type billListItem struct {
	Number         string `json:"number"`
	Type           string `json:"type"`
	Congress       int    `json:"congress"`
	Title          string `json:"title"`
	IntroducedDate string `json:"introducedDate"`
	LatestAction   *struct {
		Text string `json:"text"`
	} `json:"latestAction"`
}

// ParseBillListItem extracts a canonical bill from a raw list entry.
// Number, type and congress are mandatory; the official number is their
// composition (e.g. "HR1234"). Returns nil on invalid input.
func ParseBillListItem(raw json.RawMessage) *BillRecord {
	var item billListItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil
	}
	if item.Number == "" || item.Type == "" || item.Congress == 0 {
		return nil
	}

	rec := &BillRecord{
		OfficialNumber: item.Type + item.Number,
		BillType:       item.Type,
		Congress:       item.Congress,
	}
	if item.Title != "" {
		rec.Title = &item.Title
	}
	if item.IntroducedDate != "" {
		rec.IntroducedDate = &item.IntroducedDate
	}
	if item.LatestAction != nil && item.LatestAction.Text != "" {
		rec.Status = &item.LatestAction.Text
	}
	return rec
}
