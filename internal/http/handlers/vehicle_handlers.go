package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chargenet/internal/http/middleware"
	"chargenet/internal/models"
	"chargenet/internal/service"
)

// NewVehicleCreateHandler returns POST /vehicles handler.
func NewVehicleCreateHandler(svc *service.VehicleService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		Plate              string               `json:"plate"`
		BatteryCapacityKWh float64              `json:"battery_capacity_kwh"`
		Connector          models.ConnectorPort `json:"connector_port"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		var req request
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Plate == "" {
			writeError(w, http.StatusBadRequest, "plate is required")
			return
		}

		vehicle, err := svc.CreateVehicle(r.Context(), userID, req.Plate, req.BatteryCapacityKWh, req.Connector)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, vehicle)
	}
}

// NewVehiclesMeHandler returns GET /vehicles/me handler.
func NewVehiclesMeHandler(svc *service.VehicleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		vehicles, err := svc.VehiclesForUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"vehicles": vehicles})
	}
}
