// Package report aggregates the transaction ledger for the analytics
// view. Pure functions; no state.
package report

import (
	"apexpos/model"
)

// Summary is the rolled-up view of a set of transactions.
type Summary struct {
	TotalSales    float64
	Orders        int
	AvgOrderValue float64
	SalesByDay    map[string]float64
	ByMethod      map[model.PaymentMethod]int
}

// Summarize rolls up transactions into totals, a per-weekday revenue
// breakdown and a payment-method count.
func Summarize(txs []model.Transaction) Summary {
	s := Summary{
		SalesByDay: make(map[string]float64),
		ByMethod:   make(map[model.PaymentMethod]int),
	}
	for _, t := range txs {
		s.TotalSales += t.Total
		s.Orders++
		day := t.Timestamp.Weekday().String()[:3]
		s.SalesByDay[day] += t.Total
		s.ByMethod[t.PaymentMethod]++
	}
	if s.Orders > 0 {
		s.AvgOrderValue = s.TotalSales / float64(s.Orders)
	}
	return s
}
