package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseDateShortForm(t *testing.T) {
	got, ok := ParseDate("2020-03-11")
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Year() != 2020 || got.Month() != time.March || got.Day() != 11 {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseDate(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseDate(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseDateDefault("", def); !got.Equal(def) {
		t.Fatalf("expected default, got %v", got)
	}
	if got := ParseDateDefault("garbage", def); !got.Equal(def) {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2020, 3, 1, 23, 0, 0, 0, time.UTC)
	b := time.Date(2020, 3, 15, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 14 {
		t.Fatalf("expected 14 days, got %d", got)
	}
	if got := DaysBetween(b, a); got != -14 {
		t.Fatalf("expected -14 days, got %d", got)
	}
}
