package normalize

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// RollCall is the canonical form of one roll-call vote document: the bill
// it concerns plus every legislator's recorded position.
type RollCall struct {
	BillKey  string
	Category string
	Date     *string
	Votes    []RecordedVote
}

// RecordedVote is a single legislator's position in a roll call.
type RecordedVote struct {
	BioguideID string
	Position   string
}

// rollCallDoc mirrors a flat JSON vote record. The votes object maps each
// position label to its voter list; voters can also be bare strings (the
// vice president's tie-break entry), which carry no bioguide id.
type rollCallDoc struct {
	Category string `json:"category"`
	Date     string `json:"date"`
	Bill     *struct {
		Type     string      `json:"type"`
		Number   json.Number `json:"number"`
		Congress int         `json:"congress"`
	} `json:"bill"`
	Votes map[string][]json.RawMessage `json:"votes"`
}

type voterEntry struct {
	ID string `json:"id"`
}

// ParseRollCall extracts a canonical roll call from a vote document.
// Nominations and votes not tied to a bill return nil, as do documents
// missing the bill identity. Positions are emitted in sorted label order
// so repeated parses yield the same sequence.
func ParseRollCall(data []byte) *RollCall {
	var doc rollCallDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	if doc.Category == "nomination" || doc.Bill == nil {
		return nil
	}
	if doc.Bill.Type == "" || doc.Bill.Number.String() == "" || doc.Bill.Congress == 0 {
		return nil
	}

	rc := &RollCall{
		BillKey:  strings.ToUpper(doc.Bill.Type) + doc.Bill.Number.String() + "-" + strconv.Itoa(doc.Bill.Congress),
		Category: doc.Category,
	}
	if doc.Date != "" {
		d := doc.Date
		rc.Date = &d
	}

	positions := make([]string, 0, len(doc.Votes))
	for position := range doc.Votes {
		positions = append(positions, position)
	}
	sort.Strings(positions)

	for _, position := range positions {
		for _, raw := range doc.Votes[position] {
			var voter voterEntry
			if err := json.Unmarshal(raw, &voter); err != nil || voter.ID == "" {
				continue
			}
			rc.Votes = append(rc.Votes, RecordedVote{
				BioguideID: voter.ID,
				Position:   position,
			})
		}
	}
	return rc
}
