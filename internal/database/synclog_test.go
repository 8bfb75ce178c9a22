package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLastSuccessDefaultLookback(t *testing.T) {
	db := openTestDB(t)

	lookback := 30 * 24 * time.Hour
	got, err := db.LastSuccess("bills", lookback)
	if err != nil {
		t.Fatalf("LastSuccess: %v", err)
	}

	want := time.Now().UTC().Add(-lookback)
	if diff := got.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected default lookback ~30d ago, got %v (diff %v)", got, diff)
	}
}

func TestLastSuccessSkipsFailedRuns(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordRun(uuid.NewString(), "bills", 10, StatusSuccess, ""); err != nil {
		t.Fatal(err)
	}
	success, err := db.LastSuccess("bills", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	// A later failed run is logged but must not advance the watermark.
	if err := db.RecordRun(uuid.NewString(), "bills", 0, StatusError, "source unreachable"); err != nil {
		t.Fatal(err)
	}
	after, err := db.LastSuccess("bills", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if !after.Equal(success) {
		t.Errorf("failed run advanced watermark: %v -> %v", success, after)
	}

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected both runs in audit log, got %d", len(runs))
	}
	if runs[0].Status != StatusError || runs[0].Notes == nil {
		t.Errorf("expected newest entry to be the failed run with notes, got %+v", runs[0])
	}
}

func TestWatermarkMonotonicAcrossRuns(t *testing.T) {
	db := openTestDB(t)

	var prev time.Time
	for i := 0; i < 3; i++ {
		if err := db.RecordRun(uuid.NewString(), "votes", i, StatusSuccess, ""); err != nil {
			t.Fatal(err)
		}
		cur, err := db.LastSuccess("votes", time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		if cur.Before(prev) {
			t.Errorf("watermark regressed: %v -> %v", prev, cur)
		}
		prev = cur
	}
}

func TestLastSuccessPerEntity(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordRun(uuid.NewString(), "bills", 5, StatusSuccess, ""); err != nil {
		t.Fatal(err)
	}

	// Another entity with no history falls back to its own lookback.
	lookback := 7 * 24 * time.Hour
	got, err := db.LastSuccess("cosponsors", lookback)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Now().UTC().Add(-lookback)
	if diff := got.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected 7d fallback for cosponsors, got %v", got)
	}
}
