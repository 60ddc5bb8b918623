package analytics

import (
	"github.com/adjelloud/stockbook/internal/credit"
	"github.com/adjelloud/stockbook/internal/product"
)

// Report is a point-in-time summary over one user's products and credits.
// It is recomputed on every call and never stored.
type Report struct {
	Products     ProductCounts `json:"products"`
	Financial    Financial     `json:"financial"`
	Credits      CreditTotals  `json:"credits"`
	ProfitMargin float64       `json:"profitMargin"`
}

type ProductCounts struct {
	Total    int `json:"totalProducts"`
	InStock  int `json:"inStock"`
	Sold     int `json:"sold"`
	Reserved int `json:"reserved"`
}

type Financial struct {
	TotalRevenue float64 `json:"totalRevenue"`
	TotalCost    float64 `json:"totalCost"`
	TotalProfit  float64 `json:"totalProfit"`
}

type CreditTotals struct {
	TotalCredits     float64 `json:"totalCredits"`
	TotalPaid        float64 `json:"totalPaid"`
	TotalOutstanding float64 `json:"totalOutstanding"`
}

// Compute aggregates the given collections. Empty inputs yield a zero
// report; the profit margin is defined as 0 when revenue is 0.
func Compute(products []*product.Product, credits []*credit.Credit) Report {
	var r Report

	r.Products.Total = len(products)

	for _, p := range products {
		switch p.Status {
		case product.StatusInStock:
			r.Products.InStock++
		case product.StatusSold:
			r.Products.Sold++
		case product.StatusReserved:
			r.Products.Reserved++
		}

		if p.Status != product.StatusSold {
			continue
		}

		r.Financial.TotalRevenue += p.SalePrice
		r.Financial.TotalCost += costOf(p) + p.TransportPrice
	}

	r.Financial.TotalProfit = r.Financial.TotalRevenue - r.Financial.TotalCost

	for _, c := range credits {
		r.Credits.TotalCredits += c.TotalAmount
		r.Credits.TotalPaid += c.AmountPaid
		r.Credits.TotalOutstanding += c.AmountRemaining
	}

	if r.Financial.TotalRevenue > 0 {
		r.ProfitMargin = r.Financial.TotalProfit / r.Financial.TotalRevenue * 100
	}

	return r
}

// costOf picks whichever cost field was entered. The two prices are
// independent manual inputs; CAD wins when both are set.
func costOf(p *product.Product) float64 {
	if p.CostPriceCad != 0 {
		return p.CostPriceCad
	}

	return p.CostPriceDzd
}
