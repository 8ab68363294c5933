package power

import "testing"

func TestLookupPrefersExactMatch(t *testing.T) {
	recs := []Record{{Name: "RTX 3060 Ti", Watts: 200}, {Name: "RTX 3060", Watts: 170}}
	r, ok := Lookup(recs, "RTX 3060")
	if !ok || r.Name != "RTX 3060" {
		t.Fatalf("expected exact match RTX 3060, got %+v (%v)", r, ok)
	}
}

func TestLookupSubstringFirstInCatalogOrder(t *testing.T) {
	recs := []Record{{Name: "RTX 3060", Watts: 170}, {Name: "RTX 3060 Ti", Watts: 200}}
	r, ok := Lookup(recs, "rtx 30")
	if !ok || r.Name != "RTX 3060" {
		t.Fatalf("expected first substring match, got %+v (%v)", r, ok)
	}

	reordered := []Record{recs[1], recs[0]}
	r, ok = Lookup(reordered, "rtx 30")
	if !ok || r.Name != "RTX 3060 Ti" {
		t.Fatalf("expected catalog order to decide, got %+v (%v)", r, ok)
	}
}

func TestLookupExactIsCaseSensitive(t *testing.T) {
	recs := []Record{{Name: "Ryzen 5 5600X", Watts: 65}, {Name: "ryzen", Watts: 1}}
	r, ok := Lookup(recs, "ryzen")
	if !ok || r.Watts != 1 {
		t.Fatalf("expected exact lowercase record, got %+v", r)
	}
	r, ok = Lookup(recs, "RYZEN 5")
	if !ok || r.Watts != 65 {
		t.Fatalf("expected case-insensitive substring match, got %+v", r)
	}
}

func TestLookupNoMatch(t *testing.T) {
	recs := []Record{{Name: "Core i5-12400", Watts: 65}}
	if _, ok := Lookup(recs, ""); ok {
		t.Fatalf("empty query must not match")
	}
	if _, ok := Lookup(recs, "Threadripper"); ok {
		t.Fatalf("unexpected match")
	}
	if _, ok := Lookup(nil, "anything"); ok {
		t.Fatalf("nil catalog must not match")
	}
}
