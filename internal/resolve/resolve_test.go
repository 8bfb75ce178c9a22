package resolve

import (
	"path/filepath"
	"testing"

	"github.com/TobiSchelling/legisync/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestResolverLookups(t *testing.T) {
	db := openTestDB(t)

	first := "Jane"
	polID, err := db.InsertPolitician(&database.Politician{BioguideID: "A000001", FirstName: &first})
	if err != nil {
		t.Fatalf("seeding politician: %v", err)
	}

	if _, err := db.UpsertBill(&database.Bill{OfficialNumber: "HR1", Congress: 119}); err != nil {
		t.Fatalf("seeding bill: %v", err)
	}
	billID, err := db.GetBillID("HR1", 119)
	if err != nil {
		t.Fatalf("looking up bill: %v", err)
	}

	r, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	if id, ok := r.Politician("A000001"); !ok || id != polID {
		t.Errorf("expected politician id %d, got %d (ok=%v)", polID, id, ok)
	}
	if _, ok := r.Politician("Z999999"); ok {
		t.Error("unknown bioguide code should not resolve")
	}

	key := database.BillKey("HR1", 119)
	if id, ok := r.Bill(key); !ok || id != billID {
		t.Errorf("expected bill id %d, got %d (ok=%v)", billID, id, ok)
	}
	if _, ok := r.Bill(database.BillKey("S99", 119)); ok {
		t.Error("unknown bill key should not resolve")
	}
}

func TestResolverSnapshotIsStable(t *testing.T) {
	db := openTestDB(t)

	r, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	// A bill inserted after the snapshot is invisible until added
	// explicitly.
	if _, err := db.UpsertBill(&database.Bill{OfficialNumber: "HR2", Congress: 119}); err != nil {
		t.Fatalf("inserting bill: %v", err)
	}
	key := database.BillKey("HR2", 119)
	if _, ok := r.Bill(key); ok {
		t.Error("snapshot should not see bills inserted after construction")
	}

	billID, err := db.GetBillID("HR2", 119)
	if err != nil {
		t.Fatalf("looking up bill: %v", err)
	}
	r.AddBill(key, billID)
	if id, ok := r.Bill(key); !ok || id != billID {
		t.Errorf("expected added bill to resolve to %d, got %d (ok=%v)", billID, id, ok)
	}
}

func TestResolveOrCreateDonor(t *testing.T) {
	db := openTestDB(t)

	r, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	name := "DOE, JANE"
	donor := &database.Donor{SourceKey: "DOE, JANE_SPRINGFIELD_IL_62704", Name: &name}

	id1, err := r.ResolveOrCreateDonor(donor)
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	id2, err := r.ResolveOrCreateDonor(donor)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same donor key resolved to different ids: %d vs %d", id1, id2)
	}
}
