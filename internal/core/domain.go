package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Food           Category = "Food"
	Housing        Category = "Housing"
	Transportation Category = "Transportation"
	Entertainment  Category = "Entertainment"
	Other          Category = "Other"
)

// Categories is the closed set, in display order.
var Categories = []Category{Food, Housing, Transportation, Entertainment, Other}

type (
	Category string

	Date struct {
		time.Time
	}

	// Expense mirrors one backend record. ID is assigned by the backend
	// and is never set or changed on this side.
	Expense struct {
		ID          string
		Date        Date
		Description string
		Amount      decimal.Decimal
		Category    Category
	}

	// Draft is the body of a create or update request: an expense
	// without an id.
	Draft struct {
		Date        Date
		Description string
		Amount      decimal.Decimal
		Category    Category
	}
)

var (
	ErrMissingDate      = errors.New("missing date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownCategory  = errors.New("unknown category")
)

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches a wire string against the closed set.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.IsValid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// MarshalJSON writes the date as an ISO-8601 timestamp, which is what
// the backend expects in request bodies.
func (d Date) MarshalJSON() ([]byte, error) {
	return d.Time.MarshalJSON()
}

// UnmarshalJSON accepts a full ISO-8601 timestamp or a bare calendar
// date ("2024-03-15").
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (dr Draft) Validate() error {
	if err := dr.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(dr.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(dr.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if dr.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !dr.Category.IsValid() {
		return ErrUnknownCategory
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("missing id")
	}
	return e.Draft().Validate()
}

// Draft strips the backend-assigned id, producing the request body shape.
func (e Expense) Draft() Draft {
	return Draft{
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
	}
}
