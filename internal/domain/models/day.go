package models

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for calendar dates.
const DayFormat = "2006-01-02"

// Day is a calendar date with day granularity, normalized to UTC midnight.
// It marshals to/from "YYYY-MM-DD" in JSON and YAML.
type Day struct {
	time.Time
}

// NewDay truncates t to UTC midnight.
func NewDay(t time.Time) Day {
	u := t.UTC()
	return Day{time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a "YYYY-MM-DD" string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return Day{t}, nil
}

// MustDay parses a "YYYY-MM-DD" string and panics on failure.
// Intended for constants and tests.
func MustDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// AddDays returns the day shifted by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day{d.Time.AddDate(0, 0, n)}
}

// String formats the day as "YYYY-MM-DD".
func (d Day) String() string {
	return d.Time.Format(DayFormat)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Day) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("day: invalid JSON value %s", s)
	}
	parsed, err := ParseDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Day) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Day) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
