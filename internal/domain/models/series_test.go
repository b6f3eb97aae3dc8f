package models

import (
	"encoding/json"
	"testing"
)

func TestDayJSONRoundTrip(t *testing.T) {
	d := MustDay("2020-03-11")

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2020-03-11"` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var back Day
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Fatalf("round trip changed value: %s != %s", back, d)
	}
}

func TestSeriesValidate(t *testing.T) {
	ok := Series{
		Term:   "anxiety",
		Dates:  []Day{MustDay("2020-01-01"), MustDay("2020-01-02")},
		Values: []float64{1, 2},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}

	dup := ok
	dup.Dates = []Day{MustDay("2020-01-01"), MustDay("2020-01-01")}
	if err := dup.Validate(); err == nil {
		t.Fatal("duplicate dates accepted")
	}

	mismatch := ok
	mismatch.Values = []float64{1}
	if err := mismatch.Validate(); err == nil {
		t.Fatal("length mismatch accepted")
	}

	negative := ok
	negative.Values = []float64{1, -2}
	if err := negative.Validate(); err == nil {
		t.Fatal("negative value accepted")
	}
}

func TestSeriesSliceHalfOpen(t *testing.T) {
	s := Series{Term: "t"}
	for i := 0; i < 10; i++ {
		s.Dates = append(s.Dates, MustDay("2020-01-01").AddDays(i))
		s.Values = append(s.Values, float64(i))
	}

	got := s.Slice(MustDay("2020-01-03"), MustDay("2020-01-06"))
	if got.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", got.Len())
	}
	if got.Dates[0] != MustDay("2020-01-03") || got.Dates[2] != MustDay("2020-01-05") {
		t.Fatalf("unexpected bounds %s..%s", got.Dates[0], got.Dates[2])
	}

	open := s.Slice(MustDay("2020-01-08"), Day{})
	if open.Len() != 3 {
		t.Fatalf("open-ended slice expected 3 points, got %d", open.Len())
	}
}
