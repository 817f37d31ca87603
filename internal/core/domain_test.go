package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2024, 3, 15), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 3, 15)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip changed date: %v != %v", back, d)
	}
}

func TestDateUnmarshalBareDate(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-15"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 15 {
		t.Fatalf("got %v", d)
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Food", Food, true},
		{" Housing ", Housing, true},
		{"Transportation", Transportation, true},
		{"food", "", false}, // case sensitive, closed set
		{"Groceries", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got (%q, %v), want %q", i, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error for %q", i, tc.in)
		}
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Date:        NewDate(2024, 3, 15),
		Description: "Lunch",
		Amount:      decimal.RequireFromString("42.50"),
		Category:    Food,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Zero amount is allowed: the invariant is amount >= 0.
	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should validate, got %v", err)
	}

	bads := []struct {
		name string
		d    Draft
		want error
	}{
		{"missing date", Draft{Description: "a", Amount: decimal.Zero, Category: Food}, ErrMissingDate},
		{"empty description", Draft{Date: NewDate(2024, 1, 1), Description: "  ", Amount: decimal.Zero, Category: Food}, ErrEmptyDescription},
		{"negative amount", Draft{Date: NewDate(2024, 1, 1), Description: "a", Amount: decimal.RequireFromString("-1"), Category: Food}, ErrInvalidAmount},
		{"unknown category", Draft{Date: NewDate(2024, 1, 1), Description: "a", Amount: decimal.Zero, Category: "Groceries"}, ErrUnknownCategory},
	}
	for _, tc := range bads {
		if err := tc.d.Validate(); err != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestExpenseDraftStripsID(t *testing.T) {
	e := Expense{
		ID:          "abc-123",
		Date:        NewDate(2024, 3, 15),
		Description: "Lunch",
		Amount:      decimal.RequireFromString("42.50"),
		Category:    Food,
	}
	d := e.Draft()
	if d.Description != e.Description || !d.Amount.Equal(e.Amount) || d.Category != e.Category || !d.Date.Equal(e.Date.Time) {
		t.Fatalf("draft lost fields: %+v", d)
	}
}
