package pricing

import (
	"github.com/golang-sql/civil"

	"github.com/taxirent/bookingservice/internal/domain"
	"github.com/taxirent/bookingservice/internal/selection"
)

const (
	LabelMorning = "morning"
	LabelEvening = "evening"
	LabelSpecial = "special full-day"
)

// Config holds the pricing knobs. A non-positive FeeRoundingCents falls
// back to 10 cents.
type Config struct {
	// SpecialDiscountCents is taken off morning+evening for a full-day booking.
	SpecialDiscountCents int64
	// FeeBasisPoints is the platform fee rate, 100 = 1%.
	FeeBasisPoints int64
	// FeeRoundingCents is the unit the fee is rounded half-up to.
	FeeRoundingCents int64
}

func DefaultConfig() Config {
	return Config{
		SpecialDiscountCents: 4000,
		FeeBasisPoints:       100,
		FeeRoundingCents:     10,
	}
}

// LineItem is one priced shift.
type LineItem struct {
	Date       civil.Date          `json:"date"`
	Mode       selection.ShiftMode `json:"mode"`
	Label      string              `json:"label"`
	PriceCents int64               `json:"price_cents"`
}

// Totals is the price summary of a selection.
type Totals struct {
	Items            []LineItem `json:"items"`
	SubtotalCents    int64      `json:"subtotal_cents"`
	PlatformFeeCents int64      `json:"platform_fee_cents"`
	GrandTotalCents  int64      `json:"grand_total_cents"`
}

// Empty reports whether there is nothing to book.
func (t Totals) Empty() bool {
	return len(t.Items) == 0
}

// Calculator turns shift selections into priced line items.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	def := DefaultConfig()
	if cfg.FeeRoundingCents <= 0 {
		cfg.FeeRoundingCents = def.FeeRoundingCents
	}
	if cfg.FeeBasisPoints < 0 {
		cfg.FeeBasisPoints = 0
	}
	if cfg.SpecialDiscountCents < 0 {
		cfg.SpecialDiscountCents = 0
	}
	return &Calculator{cfg: cfg}
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// SpecialPrice is the full-day price of car.
func (c *Calculator) SpecialPrice(car domain.Car) int64 {
	price := car.MorningPriceCents + car.EveningPriceCents - c.cfg.SpecialDiscountCents
	if price < 0 {
		return 0
	}
	return price
}

// Totals prices entries in the order given.
func (c *Calculator) Totals(entries []selection.Entry, car domain.Car) Totals {
	t := Totals{Items: make([]LineItem, 0, len(entries))}

	for _, e := range entries {
		switch {
		case e.State.Has(selection.ModeSpecial):
			t.Items = append(t.Items, LineItem{
				Date: e.Date, Mode: selection.ModeSpecial, Label: LabelSpecial, PriceCents: c.SpecialPrice(car),
			})
		default:
			if e.State.Has(selection.ModeMorning) {
				t.Items = append(t.Items, LineItem{
					Date: e.Date, Mode: selection.ModeMorning, Label: LabelMorning, PriceCents: car.MorningPriceCents,
				})
			}
			if e.State.Has(selection.ModeEvening) {
				t.Items = append(t.Items, LineItem{
					Date: e.Date, Mode: selection.ModeEvening, Label: LabelEvening, PriceCents: car.EveningPriceCents,
				})
			}
		}
	}

	for _, item := range t.Items {
		t.SubtotalCents += item.PriceCents
	}
	t.PlatformFeeCents = c.Fee(t.SubtotalCents)
	t.GrandTotalCents = t.SubtotalCents + t.PlatformFeeCents
	return t
}

// Fee applies the platform rate to subtotal, rounded half-up to the
// configured unit.
func (c *Calculator) Fee(subtotalCents int64) int64 {
	if subtotalCents <= 0 || c.cfg.FeeBasisPoints == 0 {
		return 0
	}
	denom := 10000 * c.cfg.FeeRoundingCents
	units := (subtotalCents*c.cfg.FeeBasisPoints + denom/2) / denom
	return units * c.cfg.FeeRoundingCents
}
