package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a medicine expiry date.
const DateLayout = "2006-01-02"

type Medicine struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Batch    string `db:"batch" json:"batch"`
	Expiry   Date   `db:"expiry" json:"expiry"`
	Brand    string `db:"brand" json:"brand"`
	Supplier string `db:"supplier" json:"supplier"`
	Quantity int64  `db:"quantity" json:"quantity"`
}

// StockInput is a request to bring quantity units of a (name, batch) pair
// into stock.
type StockInput struct {
	Name     string
	Batch    string
	Expiry   string
	Brand    string
	Supplier string
	Quantity int64
}

// Validate checks every field in a fixed order and reports the first
// violation. On success Expiry is normalized to DateLayout.
func (in *StockInput) Validate() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"name", &in.Name},
		{"batch", &in.Batch},
		{"expiry", &in.Expiry},
		{"brand", &in.Brand},
		{"supplier", &in.Supplier},
	}
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return Invalid(f.name, "Field "+f.name+" cannot be empty")
		}
	}
	if in.Quantity <= 0 {
		return Invalid("quantity", "Quantity must be greater than 0")
	}
	expiry, err := ParseDate(in.Expiry)
	if err != nil {
		return Invalid("expiry", "Expiry must be a valid date (YYYY-MM-DD)")
	}
	in.Expiry = expiry.Format(DateLayout)
	return nil
}

// DispenseResult describes a completed dispense.
type DispenseResult struct {
	Medicine  string `json:"medicine"`
	Quantity  int64  `json:"quantity"`
	Remaining int64  `json:"remaining"`
}

// Report is a best-effort snapshot of current stock and recent movements.
type Report struct {
	Stock   []Medicine     `json:"stock"`
	History []HistoryEntry `json:"history"`
}

// ParseDate accepts a plain date or a date prefixed timestamp, the way
// browsers and spreadsheets tend to send expiry values.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && (s[len(DateLayout)] == 'T' || s[len(DateLayout)] == ' ') {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}
