package state

import "testing"

func TestPreferenceStoreAddAndList(t *testing.T) {
	s := tempDB(t)
	rec, err := s.CreateSession("s1", "linear", []string{"f1", "f2"}, []float64{0, 0}, []float64{1, 1})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	ps, err := NewPreferenceStore(s.DB())
	if err != nil {
		t.Fatalf("NewPreferenceStore: %v", err)
	}

	first := PreferenceRecord{SessionID: rec.SessionID, Step: 1, Source: "initial", Method: 1, Info: []float64{1, 2}, Factors: []float64{1, 0.5}}
	if err := ps.Add(first); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Identical resubmission of the latest record is skipped.
	if err := ps.Add(first); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if err := ps.Add(PreferenceRecord{SessionID: rec.SessionID, Step: 2, Source: "new_preference", Method: 2, Info: []float64{30, 70}, Factors: []float64{1 / 0.3, 1 / 0.7}}); err != nil {
		t.Fatalf("Add second: %v", err)
	}

	prefs, err := ps.List(rec.SessionID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("expected 2 preferences, got %d", len(prefs))
	}
	if prefs[0].Source != "initial" || !equalVec(prefs[0].Info, []float64{1, 2}) || !equalVec(prefs[0].Factors, []float64{1, 0.5}) {
		t.Errorf("unexpected first record %+v", prefs[0])
	}
	if prefs[1].Method != 2 || prefs[1].Step != 2 {
		t.Errorf("unexpected second record %+v", prefs[1])
	}
	if prefs[0].CreatedAt.IsZero() {
		t.Error("expected created_at to round-trip")
	}

	other, err := ps.List("missing")
	if err != nil {
		t.Fatalf("List missing: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no preferences for unknown session, got %d", len(other))
	}
}
