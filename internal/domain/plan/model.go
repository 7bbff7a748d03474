package plan

import (
	"github.com/shopspring/decimal"
)

// Plan represents a catalog entry the user can subscribe to
type Plan struct {
	// ID is the unique identifier for the plan
	ID string `json:"id"`

	// Name is the display name of the plan
	Name string `json:"name"`

	// Price is the recurring price of the plan
	Price decimal.Decimal `json:"price"`

	// Currency is the currency of the price in lowercase 3 digit ISO codes
	Currency string `json:"currency"`

	// Features is the ordered list of feature descriptions shown to the user
	Features []string `json:"features"`

	// Limitations is the optional list of plan limitation descriptions
	Limitations []string `json:"limitations,omitempty"`
}

// IsFree returns true when the plan carries no recurring charge
func (p *Plan) IsFree() bool {
	return p.Price.IsZero()
}
