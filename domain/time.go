package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the wire format of history timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// storedTimeLayouts are the textual forms SQLite and Postgres hand back for
// DATE and DATETIME columns.
var storedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	TimestampLayout,
	"2006-01-02T15:04:05",
	DateLayout,
}

func scanTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseStoredTime(v)
	case []byte:
		return parseStoredTime(string(v))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("cannot scan %T into time", src)
	}
}

func parseStoredTime(s string) (time.Time, error) {
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time value %q", s)
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	t, err := scanTime(src)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON accepts a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Timestamp is an event time serialized as YYYY-MM-DD HH:MM:SS.
type Timestamp struct {
	time.Time
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	t, err := scanTime(src)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Format(TimestampLayout))
}

// UnmarshalJSON accepts any of the stored time layouts.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := parseStoredTime(s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}
