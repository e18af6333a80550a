package models

import "time"

// Payment status values.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Tariff is the pricing snapshot applied to an invoice.
type Tariff struct {
	CostPerKWh    float64 `json:"cost_per_kwh"`
	CostPerMinute float64 `json:"cost_per_minute"`
	AdminFee      float64 `json:"admin_fee"`
}

// Invoice bills exactly one stopped session. BillingTotal is CostTotal plus
// the tariff's fixed admin fee.
type Invoice struct {
	ID            int64     `db:"id" json:"id"`
	SessionID     int64     `db:"session_id" json:"session_id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	Tariff        Tariff    `db:"tariff" json:"tariff"`
	CostTotal     float64   `db:"cost_total" json:"cost_total"`
	BillingTotal  float64   `db:"billing_total" json:"billing_total"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
