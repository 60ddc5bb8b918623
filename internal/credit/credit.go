package credit

import (
	"time"

	"github.com/google/uuid"
)

// Credit is a credit sale to a customer. ProductID references a product
// owned by the same user by convention only; the reference is not enforced
// and survives deletion of the product.
type Credit struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       *uuid.UUID `json:"productId,omitempty"`
	CustomerName    string     `json:"customerName"`
	TotalAmount     float64    `json:"totalAmount"`
	AmountPaid      float64    `json:"amountPaid"`
	AmountRemaining float64    `json:"amountRemaining"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type CreateParams struct {
	ProductID    *uuid.UUID
	CustomerName string
	TotalAmount  float64
	AmountPaid   float64
	Notes        string
}

// UpdateParams carries a partial update. AmountRemaining is not recomputed
// here; only payment application does that.
type UpdateParams struct {
	CustomerName    *string
	TotalAmount     *float64
	AmountPaid      *float64
	AmountRemaining *float64
	Notes           *string
}

func (c *Credit) Apply(up UpdateParams) {
	if up.CustomerName != nil {
		c.CustomerName = *up.CustomerName
	}

	if up.TotalAmount != nil {
		c.TotalAmount = *up.TotalAmount
	}

	if up.AmountPaid != nil {
		c.AmountPaid = *up.AmountPaid
	}

	if up.AmountRemaining != nil {
		c.AmountRemaining = *up.AmountRemaining
	}

	if up.Notes != nil {
		c.Notes = *up.Notes
	}
}
