package domain

import (
	"fmt"
	"strings"

	"github.com/golang-sql/civil"
)

// TaxiType represents the licence colour of a taxi
type TaxiType string

const (
	TaxiTypeRed   TaxiType = "red"
	TaxiTypeGreen TaxiType = "green"
	TaxiTypeBlue  TaxiType = "blue"
)

// Car represents a rentable vehicle listing
type Car struct {
	ID          string   `json:"id"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	District    string   `json:"district"`
	TaxiType    TaxiType `json:"taxi_type"`
	Seats       int      `json:"seats"`
	Year        int      `json:"year"`
	CompanyName string   `json:"company_name"`
	// Prices are in cents.
	MorningPriceCents int64 `json:"morning_price_cents"`
	EveningPriceCents int64 `json:"evening_price_cents"`
	// DepositCents is collected at pickup and never charged online.
	DepositCents int64 `json:"deposit_cents"`
}

// IsValidTaxiType checks if the taxi type is valid
func IsValidTaxiType(t TaxiType) bool {
	switch t {
	case TaxiTypeRed, TaxiTypeGreen, TaxiTypeBlue:
		return true
	default:
		return false
	}
}

// Validate checks the listing fields the booking engine depends on
func (c Car) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return NewInvalidInputError("car id is required", "")
	}
	if c.MorningPriceCents <= 0 {
		return NewInvalidInputError("morning price must be positive", fmt.Sprintf("car: %s", c.ID))
	}
	if c.EveningPriceCents <= 0 {
		return NewInvalidInputError("evening price must be positive", fmt.Sprintf("car: %s", c.ID))
	}
	if c.DepositCents < 0 {
		return NewInvalidInputError("deposit must be non-negative", fmt.Sprintf("car: %s", c.ID))
	}
	if c.TaxiType != "" && !IsValidTaxiType(c.TaxiType) {
		return NewInvalidInputError("invalid taxi type", string(c.TaxiType))
	}
	return nil
}

// ParseDate parses an ISO YYYY-MM-DD date supplied by the host UI
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, NewInvalidInputError("invalid date", s)
	}
	return d, nil
}

// FormatCents renders minor units as a currency amount with two decimals
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
