package view

import (
	"fmt"
	"time"
)

// FormatMoney renders a monetary value the way it was entered, without
// implying a currency.
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDatePtr formats an optional date, rendering "-" when unset.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return FormatDate(*t)
}
