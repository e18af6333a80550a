package repository

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"chargenet/internal/models"
)

// Stored value objects are decoded leniently: malformed JSONB yields the
// zero value instead of failing the read. Write paths always marshal valid
// shapes, so a decode failure means hand-edited or legacy rows; read
// availability wins over strict validation there.

func decodeConnector(raw []byte) models.ConnectorPort {
	var port models.ConnectorPort
	if len(raw) == 0 {
		return port
	}
	if err := json.Unmarshal(raw, &port); err != nil {
		return models.ConnectorPort{}
	}
	return port
}

func decodeLocation(raw []byte) models.Location {
	var loc models.Location
	if len(raw) == 0 {
		return loc
	}
	if err := json.Unmarshal(raw, &loc); err != nil {
		return models.Location{}
	}
	return loc
}

func decodeStandards(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var standards []string
	if err := json.Unmarshal(raw, &standards); err != nil {
		return nil
	}
	return standards
}

func decodeMaintenance(raw []byte) *models.MaintenanceLog {
	if len(raw) == 0 {
		return nil
	}
	var log models.MaintenanceLog
	if err := json.Unmarshal(raw, &log); err != nil {
		return nil
	}
	return &log
}

func decodeTariff(raw []byte) models.Tariff {
	var tariff models.Tariff
	if len(raw) == 0 {
		return tariff
	}
	if err := json.Unmarshal(raw, &tariff); err != nil {
		return models.Tariff{}
	}
	return tariff
}

// isUniqueViolation reports whether err is a postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
