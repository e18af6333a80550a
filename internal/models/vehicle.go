package models

import "time"

// ConnectorPort describes a charging plug: standard name plus rated power.
type ConnectorPort struct {
	Standard     string  `json:"standard"`
	RatedPowerKW float64 `json:"rated_power_kw"`
}

// Vehicle belongs to exactly one user and is identified by its plate.
type Vehicle struct {
	ID                 int64         `db:"id" json:"id"`
	UserID             int64         `db:"user_id" json:"user_id"`
	Plate              string        `db:"plate" json:"plate"`
	BatteryCapacityKWh float64       `db:"battery_capacity_kwh" json:"battery_capacity_kwh"`
	Connector          ConnectorPort `db:"connector_port" json:"connector_port"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
}
