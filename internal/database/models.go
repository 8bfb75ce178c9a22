package database

// Politician represents a row in the politicians table. The table is
// populated by a separate bootstrap and is read-only to the sync engine.
type Politician struct {
	ID         int64
	BioguideID string
	FirstName  *string
	LastName   *string
	Party      *string
	State      *string
	Chamber    *string
	IsActive   bool
}

// Bill represents a row in the bills table.
type Bill struct {
	ID             int64
	OfficialNumber string
	Congress       int
	BillType       *string
	Title          *string
	Summary        *string
	DateIntroduced *string
	Status         *string
	SponsorID      *int64
}

// Cosponsorship is a bill/politician edge.
type Cosponsorship struct {
	BillID              int64
	PoliticianID        int64
	SponsorshipDate     *string
	IsOriginalCosponsor bool
}

// VoteEvent is a single legislator's recorded position on a bill.
type VoteEvent struct {
	PoliticianID int64
	BillID       int64
	Date         *string
	Position     string
	Category     *string
}

// Committee represents a committee or subcommittee. Subcommittees carry a
// ParentID composed into their own committee id.
type Committee struct {
	ID       string
	Name     string
	Chamber  *string
	Type     *string
	URL      *string
	ParentID *string
}

// Assignment is a politician's seat on a committee for a congress.
type Assignment struct {
	PoliticianID int64
	CommitteeID  string
	Congress     int
	Rank         *int
	Role         *string
	Party        *string
}

// Donor is created lazily on first sighting in the donation stream.
type Donor struct {
	ID         int64
	SourceKey  string
	Name       *string
	City       *string
	State      *string
	ZipCode    *string
	Employer   *string
	Occupation *string
}

// Donation is an append-only contribution event.
type Donation struct {
	DonorID         int64
	CommitteeID     *string
	Amount          float64
	TransactionDate *string
	TransactionType *string
	FilingID        *string
	MemoText        *string
}

// SyncRun is one row of the append-only sync log.
type SyncRun struct {
	ID              int64
	RunID           string
	Entity          string
	RanAt           string
	RecordsAffected int
	Status          string
	Notes           *string
}

// MergeStats reports the outcome of an upsert batch.
type MergeStats struct {
	Inserted int
	Updated  int
}

// Total returns the number of rows touched.
func (m MergeStats) Total() int {
	return m.Inserted + m.Updated
}

// Stats contains aggregate database statistics for the status command.
type Stats struct {
	Politicians int
	Bills       int
	Cosponsors  int
	Votes       int
	Committees  int
	Assignments int
	Donors      int
	Donations   int
	SyncRuns    int
}
