package models

import "time"

// Session status values. Sessions are inserted as ONGOING; the pre-start
// state never reaches storage.
const (
	SessionStatusOngoing = "ONGOING"
	SessionStatusStopped = "STOPPED"
)

// ChargingSession is one charge episode linking a user and an asset.
// End time, duration and energy are set exactly once, at stop.
type ChargingSession struct {
	ID              int64      `db:"id" json:"id"`
	UserID          int64      `db:"user_id" json:"user_id"`
	AssetID         int64      `db:"asset_id" json:"asset_id"`
	Status          string     `db:"status" json:"status"`
	StartTime       time.Time  `db:"start_time" json:"start_time"`
	EndTime         *time.Time `db:"end_time" json:"end_time,omitempty"`
	DurationMinutes *float64   `db:"duration_minutes" json:"duration_minutes,omitempty"`
	TotalKWh        *float64   `db:"total_kwh" json:"total_kwh,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
