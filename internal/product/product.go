package product

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a product. The set is fixed; "other" is the catch-all.
type Category string

const (
	CategoryLaptop     Category = "laptop"
	CategorySmartphone Category = "smartphone"
	CategoryTablet     Category = "tablet"
	CategoryAccessory  Category = "accessory"
	CategoryOther      Category = "other"
)

func Categories() []Category {
	return []Category{CategoryLaptop, CategorySmartphone, CategoryTablet, CategoryAccessory, CategoryOther}
}

// Status is the sale lifecycle state of a product. Reserved and Sold are
// normally driven by credit operations; Damaged and In Stock can be set by
// direct edit from any state.
type Status string

const (
	StatusInStock  Status = "In Stock"
	StatusSold     Status = "Sold"
	StatusReserved Status = "Reserved"
	StatusDamaged  Status = "Damaged"
)

func Statuses() []Status {
	return []Status{StatusInStock, StatusSold, StatusReserved, StatusDamaged}
}

// Product is a tracked inventory item. The two cost prices are independent
// manual inputs in different currencies; no conversion is ever derived.
// PicturePath and ImageURL carry opaque, already-encoded image payloads.
type Product struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Category       Category   `json:"category"`
	CostPriceCad   float64    `json:"costPriceCad"`
	CostPriceDzd   float64    `json:"costPriceDzd"`
	TransportPrice float64    `json:"transportPrice"`
	SalePrice      float64    `json:"salePrice"`
	PackageSize    string     `json:"packageSize,omitempty"`
	Quantity       int        `json:"quantity"`
	ArrivalDate    *time.Time `json:"arrivalDate,omitempty"`
	SaleDate       *time.Time `json:"saleDate,omitempty"`
	Status         Status     `json:"status"`
	PicturePath    string     `json:"picturePath,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CreateParams carries the fields for a new product. Quantity is a pointer
// so an explicit zero is distinguishable from unset; unset defaults to 1.
type CreateParams struct {
	Name           string
	Category       Category
	CostPriceCad   float64
	CostPriceDzd   float64
	TransportPrice float64
	SalePrice      float64
	PackageSize    string
	Quantity       *int
	ArrivalDate    *time.Time
	Status         Status
	PicturePath    string
	ImageURL       string
	Notes          string
}

// UpdateParams carries a partial update. Nil fields are left untouched.
// SaleDate uses a double pointer so callers can distinguish "leave alone"
// (nil) from "clear" (pointer to nil).
type UpdateParams struct {
	Name           *string
	Category       *Category
	CostPriceCad   *float64
	CostPriceDzd   *float64
	TransportPrice *float64
	SalePrice      *float64
	PackageSize    *string
	Quantity       *int
	ArrivalDate    *time.Time
	SaleDate       **time.Time
	Status         *Status
	PicturePath    *string
	ImageURL       *string
	Notes          *string
}

func (p *Product) Apply(up UpdateParams) {
	if up.Name != nil {
		p.Name = *up.Name
	}

	if up.Category != nil {
		p.Category = *up.Category
	}

	if up.CostPriceCad != nil {
		p.CostPriceCad = *up.CostPriceCad
	}

	if up.CostPriceDzd != nil {
		p.CostPriceDzd = *up.CostPriceDzd
	}

	if up.TransportPrice != nil {
		p.TransportPrice = *up.TransportPrice
	}

	if up.SalePrice != nil {
		p.SalePrice = *up.SalePrice
	}

	if up.PackageSize != nil {
		p.PackageSize = *up.PackageSize
	}

	if up.Quantity != nil {
		p.Quantity = *up.Quantity
	}

	if up.ArrivalDate != nil {
		p.ArrivalDate = up.ArrivalDate
	}

	if up.SaleDate != nil {
		p.SaleDate = *up.SaleDate
	}

	if up.Status != nil {
		p.Status = *up.Status
	}

	if up.PicturePath != nil {
		p.PicturePath = *up.PicturePath
	}

	if up.ImageURL != nil {
		p.ImageURL = *up.ImageURL
	}

	if up.Notes != nil {
		p.Notes = *up.Notes
	}
}
