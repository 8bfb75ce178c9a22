// Package resolve maps external natural keys to internal surrogate ids.
//
// Legislator and bill identity is externally authoritative: lookups are
// read-only against a snapshot taken at job start, and an unresolvable
// reference means "skip this record", never "create a placeholder". Donors
// are the one exception — the donation stream is their only registry, so
// they are created on first sighting.
package resolve

import (
	"fmt"

	"github.com/TobiSchelling/legisync/internal/database"
)

// Resolver translates external identifiers into surrogate ids.
type Resolver struct {
	db          *database.DB
	politicians map[string]int64
	bills       map[string]int64
}

// NewResolver snapshots the politician and bill identity maps. The
// snapshot is immutable for the resolver's lifetime; jobs that insert new
// bills and need to resolve against them take a fresh resolver afterwards.
func NewResolver(db *database.DB) (*Resolver, error) {
	politicians, err := db.PoliticianCodeMap()
	if err != nil {
		return nil, fmt.Errorf("loading politician map: %w", err)
	}
	bills, err := db.BillKeyMap()
	if err != nil {
		return nil, fmt.Errorf("loading bill map: %w", err)
	}
	return &Resolver{db: db, politicians: politicians, bills: bills}, nil
}

// Politician resolves a bioguide code to a surrogate id.
func (r *Resolver) Politician(bioguideID string) (int64, bool) {
	id, ok := r.politicians[bioguideID]
	return id, ok
}

// Bill resolves a composite bill key (see database.BillKey) to a
// surrogate id.
func (r *Resolver) Bill(key string) (int64, bool) {
	id, ok := r.bills[key]
	return id, ok
}

// AddBill extends the snapshot with a bill inserted during the current
// run, so records later in the same stream can resolve against it.
func (r *Resolver) AddBill(key string, id int64) {
	r.bills[key] = id
}

// ResolveOrCreateDonor returns the surrogate id for a donor identity,
// creating the donor on first sighting.
func (r *Resolver) ResolveOrCreateDonor(d *database.Donor) (int64, error) {
	return r.db.GetOrCreateDonor(d)
}
