package dto

import (
	"time"

	"stockbook/internal/core/numerator"
	"stockbook/internal/domain/documents"
)

// dateOnly is accepted in addition to RFC 3339 timestamps.
const dateOnly = "2006-01-02"

// NextNumberRequest is the optional body of POST /numbering/:type/next.
type NextNumberRequest struct {
	// Date is the document date; empty means now.
	Date string `json:"date"`
}

// DocumentDate parses Date. The zero time means "now".
func (r NextNumberRequest) DocumentDate() (time.Time, error) {
	if r.Date == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
		return t, nil
	}
	return time.Parse(dateOnly, r.Date)
}

// NumberResponse is an allocated document number.
type NumberResponse struct {
	Number   string         `json:"number"`
	Sequence int64          `json:"sequence"`
	Period   string         `json:"period"`
	Type     documents.Type `json:"type"`
}

// FromDocumentNumber creates NumberResponse from numerator.DocumentNumber.
func FromDocumentNumber(t documents.Type, n numerator.DocumentNumber) NumberResponse {
	return NumberResponse{
		Number:   n.Value,
		Sequence: n.Sequence,
		Period:   n.Period,
		Type:     t,
	}
}

// AdvanceRequest raises a counter.
type AdvanceRequest struct {
	Period string `json:"period"`
	Value  int64  `json:"value" binding:"required,min=1"`
}

// AdvanceResponse reports the counter after an advance.
type AdvanceResponse struct {
	Type     documents.Type `json:"type"`
	Period   string         `json:"period"`
	Sequence int64          `json:"sequence"`
}

// ImportRequest carries a number issued by a previous numbering scheme.
type ImportRequest struct {
	Number string `json:"number" binding:"required"`
}

// ImportResponse reports where numbering continues after an import.
type ImportResponse struct {
	Type documents.Type `json:"type"`
	numerator.ImportResult
}
