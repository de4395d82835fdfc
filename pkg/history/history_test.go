package history

import (
	"fmt"
	"testing"

	"wabridge/pkg/models"
)

func rec(id string, ts int64) models.MessageRecord {
	return models.MessageRecord{ID: id, ChatJID: "123@s.whatsapp.net", TS: ts}
}

func TestAppendNeverExceedsCapacity(t *testing.T) {
	s := New(10)
	for i := 0; i < 35; i++ {
		s.Append(rec(fmt.Sprintf("m%d", i), int64(i)))
		if s.Size() > 10 {
			t.Fatalf("size %d exceeds capacity after %d appends", s.Size(), i+1)
		}
	}
	if s.Size() != 10 {
		t.Fatalf("expected size 10 got %d", s.Size())
	}
	// everything evicted must be absent from the index
	for i := 0; i < 25; i++ {
		if _, ok := s.Lookup(fmt.Sprintf("m%d", i)); ok {
			t.Fatalf("evicted id m%d still resolvable", i)
		}
	}
	for i := 25; i < 35; i++ {
		got, ok := s.Lookup(fmt.Sprintf("m%d", i))
		if !ok {
			t.Fatalf("live id m%d not resolvable", i)
		}
		if got.TS != int64(i) {
			t.Fatalf("lookup m%d returned ts %d", i, got.TS)
		}
	}
}

func TestEvictionScenarioAtDefaultCapacity(t *testing.T) {
	s := New(200)
	for i := 1; i <= 200; i++ {
		s.Append(rec(fmt.Sprintf("m%d", i), int64(i)))
	}
	s.Append(rec("m201", 201))

	if s.Size() != 200 {
		t.Fatalf("expected size 200 got %d", s.Size())
	}
	if _, ok := s.Lookup("m1"); ok {
		t.Fatal("m1 should have been evicted")
	}
	if got, ok := s.Lookup("m201"); !ok || got.TS != 201 {
		t.Fatalf("m201 lookup = %+v %v", got, ok)
	}
	all := s.Recent(200)
	if all[0].ID != "m2" || all[len(all)-1].ID != "m201" {
		t.Fatalf("expected history m2..m201, got %s..%s", all[0].ID, all[len(all)-1].ID)
	}
}

func TestRecentReturnsSuffixInArrivalOrder(t *testing.T) {
	s := New(50)
	for i := 0; i < 30; i++ {
		s.Append(rec(fmt.Sprintf("m%d", i), int64(i)))
	}
	got := s.Recent(10)
	if len(got) != 10 {
		t.Fatalf("expected 10 records got %d", len(got))
	}
	for i, r := range got {
		want := fmt.Sprintf("m%d", 20+i)
		if r.ID != want {
			t.Fatalf("record %d = %s, want %s", i, r.ID, want)
		}
	}
}

func TestRecentClampsLimit(t *testing.T) {
	s := New(20)
	for i := 0; i < 20; i++ {
		s.Append(rec(fmt.Sprintf("m%d", i), int64(i)))
	}
	if got := s.Recent(9999); len(got) != 20 {
		t.Fatalf("limit above capacity should clamp to 20, got %d", len(got))
	}
	if got := s.Recent(-3); len(got) != 20 {
		// default limit (50) still clamps to size
		t.Fatalf("invalid limit should fall back to default, got %d records", len(got))
	}
	if got := s.Recent(5); len(got) != 5 {
		t.Fatalf("expected 5 records got %d", len(got))
	}
}

func TestRecordsWithoutIDAreStoredButNotIndexed(t *testing.T) {
	s := New(5)
	s.Append(models.MessageRecord{ChatJID: "x@s.whatsapp.net", TS: 1})
	if s.Size() != 1 {
		t.Fatalf("expected size 1 got %d", s.Size())
	}
	if _, ok := s.Lookup(""); ok {
		t.Fatal("empty id must never resolve")
	}
}

func TestLookupAfterWrapAround(t *testing.T) {
	s := New(3)
	for i := 0; i < 8; i++ {
		s.Append(rec(fmt.Sprintf("m%d", i), int64(i)))
	}
	// live window is m5..m7
	for i := 5; i < 8; i++ {
		got, ok := s.Lookup(fmt.Sprintf("m%d", i))
		if !ok || got.TS != int64(i) {
			t.Fatalf("m%d lookup after wrap = %+v %v", i, got, ok)
		}
	}
}
