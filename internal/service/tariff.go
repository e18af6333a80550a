package service

import "math"

// Tariff is the pricing configuration threaded in at construction. There is
// no runtime mutation path.
type Tariff struct {
	CostPerKWh    float64
	CostPerMinute float64
	AdminFee      float64
}

// Bill is the computed cost breakdown for a stopped session.
type Bill struct {
	CostTotal    float64
	BillingTotal float64
}

// Bill prices consumed energy and elapsed time. Inputs are not validated;
// negative or zero values flow through unchanged.
func (t Tariff) Bill(kwh, minutes float64) Bill {
	cost := kwh*t.CostPerKWh + minutes*t.CostPerMinute
	return Bill{
		CostTotal:    cost,
		BillingTotal: cost + t.AdminFee,
	}
}

// round2 and round3 are applied once, at the point of persistence.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
