package models

import "time"

// Location is a station's physical position.
type Location struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

// Station is a physical charging location owning zero or more assets.
type Station struct {
	ID                 int64     `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Location           Location  `db:"location" json:"location"`
	ConnectorStandards []string  `db:"connector_standards" json:"connector_standards"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// MaintenanceLog records the most recent fault flagged on an asset.
type MaintenanceLog struct {
	Fault     string    `json:"fault"`
	Timestamp time.Time `json:"timestamp"`
}

// StationAsset is one physical charger unit. IsAvailable is false whenever
// an ongoing session occupies it or a maintenance fault is flagged.
type StationAsset struct {
	ID          int64           `db:"id" json:"id"`
	StationID   int64           `db:"station_id" json:"station_id"`
	Connector   ConnectorPort   `db:"connector_port" json:"connector_port"`
	IsAvailable bool            `db:"is_available" json:"is_available"`
	Maintenance *MaintenanceLog `db:"maintenance_log" json:"maintenance_log,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
