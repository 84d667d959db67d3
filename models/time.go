package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Location is where date-only and zone-less timestamps from the lending API
// are anchored. It is set once at startup from config.
var Location = time.Local

const dateLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Time is a timestamp as exchanged with the lending API. The API mixes plain
// dates ("2006-01-02") with full timestamps; plain dates round-trip as plain
// dates.
type Time struct {
	time.Time
	dateOnly bool
}

// Date returns a date-only value at midnight in Location.
func Date(year int, month time.Month, day int) Time {
	return Time{Time: time.Date(year, month, day, 0, 0, 0, 0, Location), dateOnly: true}
}

// DateOf truncates t to its calendar day in Location.
func DateOf(t time.Time) Time {
	t = t.In(Location)
	return Date(t.Year(), t.Month(), t.Day())
}

// At wraps a full timestamp.
func At(t time.Time) Time { return Time{Time: t} }

func (t Time) DateOnly() bool { return t.dateOnly }

// ParseTime accepts every format the lending API is known to emit.
func ParseTime(s string) (Time, error) {
	if s == "" {
		return Time{}, nil
	}
	if d, err := time.ParseInLocation(dateLayout, s, Location); err == nil {
		return Time{Time: d, dateOnly: true}, nil
	}
	for _, layout := range timeLayouts {
		if v, err := time.ParseInLocation(layout, s, Location); err == nil {
			return Time{Time: v}, nil
		}
	}
	return Time{}, fmt.Errorf("unrecognized time %q", s)
}

func (t Time) String() string {
	if t.IsZero() {
		return ""
	}
	if t.dateOnly {
		return t.Time.Format(dateLayout)
	}
	return t.Time.Format(time.RFC3339)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}
