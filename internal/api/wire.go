package api

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"outgo/internal/core"
)

// StatusError is any non-2xx backend response. Every non-2xx status is
// treated uniformly, so callers only ever inspect the type, not the
// code.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned %d", e.Method, e.Path, e.StatusCode)
}

// IsStatus reports whether err wraps a non-2xx backend response.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// wireExpense is the record shape on the wire. The amount arrives as a
// JSON number and the date as an ISO-8601 string.
type wireExpense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        core.Date       `json:"date"`
}

// toDomain trusts backend-shaped input: no re-validation of what the
// backend already accepted.
func (w wireExpense) toDomain() core.Expense {
	return core.Expense{
		ID:          w.ID,
		Amount:      w.Amount,
		Category:    core.Category(w.Category),
		Description: w.Description,
		Date:        w.Date,
	}
}

// wireDraft is the request body for create and update: the record
// fields without an id. The amount is written as a bare JSON number.
type wireDraft core.Draft

func (w wireDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount      json.Number `json:"amount"`
		Category    string      `json:"category"`
		Description string      `json:"description"`
		Date        core.Date   `json:"date"`
	}{
		Amount:      json.Number(w.Amount.String()),
		Category:    string(w.Category),
		Description: w.Description,
		Date:        w.Date,
	})
}
