package normalize

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillListItem(t *testing.T) {
	raw := json.RawMessage(`{
		"number": "1234",
		"type": "HR",
		"congress": 119,
		"title": "An Act",
		"introducedDate": "2025-03-14",
		"latestAction": {"text": "Referred to committee."}
	}`)

	rec := ParseBillListItem(raw)
	require.NotNil(t, rec)
	assert.Equal(t, "HR1234", rec.OfficialNumber)
	assert.Equal(t, 119, rec.Congress)
	assert.Equal(t, "An Act", *rec.Title)
	assert.Equal(t, "Referred to committee.", *rec.Status)
	assert.Equal(t, "2025-03-14", *rec.IntroducedDate)
}

func TestParseBillListItemMissingMandatoryFields(t *testing.T) {
	assert.Nil(t, ParseBillListItem(json.RawMessage(`{"type":"HR","congress":119}`)))
	assert.Nil(t, ParseBillListItem(json.RawMessage(`{"number":"1","congress":119}`)))
	assert.Nil(t, ParseBillListItem(json.RawMessage(`{"number":"1","type":"HR"}`)))
	assert.Nil(t, ParseBillListItem(json.RawMessage(`not json`)))
}

const billStatusXML = `<?xml version="1.0"?>
<billStatus>
  <bill>
    <congress>119</congress>
    <type>HR</type>
    <number>42</number>
    <introducedDate>2025-01-15</introducedDate>
    <sponsors>
      <item><bioguideId>A000001</bioguideId></item>
    </sponsors>
    <cosponsors>
      <item>
        <bioguideId>B000002</bioguideId>
        <sponsorshipDate>2025-01-20</sponsorshipDate>
        <isOriginalCosponsor>True</isOriginalCosponsor>
      </item>
      <item>
        <bioguideId>C000003</bioguideId>
        <sponsorshipDate>2025-02-01</sponsorshipDate>
        <isOriginalCosponsor>False</isOriginalCosponsor>
      </item>
    </cosponsors>
    <summaries>
      <summary><cdata><text>First version.</text></cdata></summary>
      <summary><cdata><text>Latest version.</text></cdata></summary>
    </summaries>
  </bill>
</billStatus>`

func TestParseBillStatus(t *testing.T) {
	status := ParseBillStatus([]byte(billStatusXML))
	require.NotNil(t, status)
	assert.Equal(t, "HR42", status.OfficialNumber)
	assert.Equal(t, 119, status.Congress)
	assert.Equal(t, "2025-01-15", *status.IntroducedDate)
	require.NotNil(t, status.SponsorBioguide)
	assert.Equal(t, "A000001", *status.SponsorBioguide)

	require.Len(t, status.Cosponsors, 2)
	assert.True(t, status.Cosponsors[0].IsOriginal)
	assert.False(t, status.Cosponsors[1].IsOriginal)
	assert.Equal(t, "2025-01-20", *status.Cosponsors[0].SponsorshipDate)

	require.NotNil(t, status.Summary)
	assert.Equal(t, "Latest version.", *status.Summary)
}

func TestParseBillStatusOptionalSections(t *testing.T) {
	// No sponsor, cosponsor or summary section: still a valid bill.
	minimal := `<billStatus><bill>
		<congress>119</congress><type>S</type><number>7</number>
	</bill></billStatus>`

	status := ParseBillStatus([]byte(minimal))
	require.NotNil(t, status)
	assert.Equal(t, "S7", status.OfficialNumber)
	assert.Nil(t, status.SponsorBioguide)
	assert.Empty(t, status.Cosponsors)
	assert.Nil(t, status.Summary)
}

func TestParseBillStatusInvalid(t *testing.T) {
	assert.Nil(t, ParseBillStatus([]byte(`<billStatus><bill><type>HR</type></bill></billStatus>`)))
	assert.Nil(t, ParseBillStatus([]byte(`not xml at all <<`)))
}

const committeeManifest = `
- name: House Committee on Agriculture
  type: house
  chamber: standing
  thomas_id: HSAG
  url: https://agriculture.house.gov/
  subcommittees:
    - name: Conservation and Forestry
      thomas_id: "15"
    - name: Commodity Markets
      thomas_id: "22"
- name: Joint Economic Committee
  type: joint
  thomas_id: JSEC
`

func TestFlattenCommittees(t *testing.T) {
	records, err := FlattenCommittees([]byte(committeeManifest))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "HSAG", records[0].ID)
	assert.Nil(t, records[0].ParentID)
	assert.Equal(t, "house", *records[0].Chamber)
	assert.Equal(t, "standing", *records[0].Type)

	assert.Equal(t, "HSAG15", records[1].ID)
	require.NotNil(t, records[1].ParentID)
	assert.Equal(t, "HSAG", *records[1].ParentID)
	// Subcommittees inherit the parent's chamber.
	assert.Equal(t, "house", *records[1].Chamber)

	assert.Equal(t, "HSAG22", records[2].ID)
	assert.Equal(t, "JSEC", records[3].ID)
}

func TestFlattenCommitteesDeterministic(t *testing.T) {
	first, err := FlattenCommittees([]byte(committeeManifest))
	require.NoError(t, err)
	second, err := FlattenCommittees([]byte(committeeManifest))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseMemberships(t *testing.T) {
	manifest := `
HSAG:
  - name: Some Member
    bioguide: A000001
    rank: 1
    title: Chair
    party: majority
  - name: Other Member
    bioguide: B000002
    rank: 2
    party: minority
  - name: No Bioguide
    rank: 3
`
	records, err := ParseMemberships([]byte(manifest))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A000001", records[0].BioguideID)
	assert.Equal(t, "Chair", records[0].Role)
	assert.Equal(t, 1, *records[0].Rank)
	assert.Equal(t, "majority", *records[0].Party)

	// Missing title defaults to Member.
	assert.Equal(t, "Member", records[1].Role)
}

func TestDonationReaderStreams(t *testing.T) {
	columns, err := ParseHeaderColumns([]byte("CMTE_ID,AMNDT_IND,NAME,CITY,STATE,ZIP_CODE,EMPLOYER,OCCUPATION,TRANSACTION_DT,TRANSACTION_AMT,TRANSACTION_TP,MEMO_TEXT,SUB_ID\n"))
	require.NoError(t, err)

	extract := strings.Join([]string{
		"C00123456|N|DOE, JANE|SPRINGFIELD|IL|62704|ACME|ENGINEER|03142025|500|15|MEMO|4031420251234",
		"C00123456|N||SPRINGFIELD|IL|62704|||03142025|250|15||4031420255678",
		"C00999999|N|ROE, RICHARD|PORTLAND|OR|97201|||bogus|abc|15||4031420259999",
	}, "\n")

	reader := NewDonationReader(strings.NewReader(extract), columns)

	row, err := reader.Next()
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "DOE, JANE_SPRINGFIELD_IL_62704", row.DonorKey)
	assert.Equal(t, 500.0, row.Amount)
	assert.Equal(t, "2025-03-14", *row.TransactionDate)
	assert.Equal(t, "C00123456", *row.CommitteeID)
	assert.Equal(t, "4031420251234", *row.FilingID)

	// Missing donor name: skipped, not fatal.
	row, err = reader.Next()
	require.NoError(t, err)
	assert.Nil(t, row)

	// Unparseable date and amount degrade to absent/zero.
	row, err = reader.Next()
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Nil(t, row.TransactionDate)
	assert.Equal(t, 0.0, row.Amount)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParseRollCall(t *testing.T) {
	doc := `{
		"category": "passage",
		"date": "2025-06-01T14:00:00-04:00",
		"bill": {"type": "hr", "number": 42, "congress": 119},
		"votes": {
			"Yea": [{"id": "A000001"}, {"id": "B000002"}],
			"Nay": [{"id": "C000003"}, "VP"]
		}
	}`

	rc := ParseRollCall([]byte(doc))
	require.NotNil(t, rc)
	assert.Equal(t, "HR42-119", rc.BillKey)
	assert.Equal(t, "passage", rc.Category)

	// Positions come out in sorted label order, bare string voters dropped.
	require.Len(t, rc.Votes, 3)
	assert.Equal(t, RecordedVote{BioguideID: "C000003", Position: "Nay"}, rc.Votes[0])
	assert.Equal(t, RecordedVote{BioguideID: "A000001", Position: "Yea"}, rc.Votes[1])
}

func TestParseRollCallSkipsNominationsAndBillless(t *testing.T) {
	assert.Nil(t, ParseRollCall([]byte(`{"category":"nomination","votes":{}}`)))
	assert.Nil(t, ParseRollCall([]byte(`{"category":"passage","votes":{}}`)))
	assert.Nil(t, ParseRollCall([]byte(`{"category":"passage","bill":{"type":"hr"}}`)))
}
