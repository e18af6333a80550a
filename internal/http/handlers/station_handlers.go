package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"chargenet/internal/models"
	"chargenet/internal/service"
)

// NewStationCreateHandler returns POST /stations handler.
func NewStationCreateHandler(svc *service.StationService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		Name               string          `json:"name"`
		Location           models.Location `json:"location"`
		ConnectorStandards []string        `json:"connector_standards"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		station, err := svc.CreateStation(r.Context(), req.Name, req.Location, req.ConnectorStandards)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, station)
	}
}

// NewStationListHandler returns GET /stations handler.
func NewStationListHandler(svc *service.StationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stations, err := svc.ListStations(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"stations": stations})
	}
}

// NewStationDetailHandler returns GET /stations/{id} handler: the station
// together with its assets.
func NewStationDetailHandler(svc *service.StationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		station, assets, err := svc.StationDetail(r.Context(), id)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"station": station,
			"assets":  assets,
		})
	}
}

// NewAssetCreateHandler returns POST /assets handler.
func NewAssetCreateHandler(svc *service.StationService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		StationID int64                `json:"station_id"`
		Connector models.ConnectorPort `json:"connector_port"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if !decodeBody(w, r, &req) {
			return
		}
		if req.StationID <= 0 {
			writeError(w, http.StatusBadRequest, "station_id is required")
			return
		}

		asset, err := svc.CreateAsset(r.Context(), req.StationID, req.Connector)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, asset)
	}
}

// NewAssetListHandler returns GET /assets handler. Supports ?station_id=
// and ?available=true filters.
func NewAssetListHandler(svc *service.StationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stationID int64
		if raw := r.URL.Query().Get("station_id"); raw != "" {
			parsed, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid station_id")
				return
			}
			stationID = parsed
		}
		availableOnly := r.URL.Query().Get("available") == "true"

		assets, err := svc.ListAssets(r.Context(), stationID, availableOnly)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
	}
}

// NewAssetAvailabilityHandler returns PATCH /assets/{id}/availability handler.
func NewAssetAvailabilityHandler(svc *service.StationService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		IsAvailable bool `json:"is_available"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req request
		if !decodeBody(w, r, &req) {
			return
		}

		asset, err := svc.SetAssetAvailability(r.Context(), id, req.IsAvailable)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}

// NewAssetMaintenanceHandler returns POST /assets/{id}/maintenance handler.
func NewAssetMaintenanceHandler(svc *service.StationService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		Fault string `json:"fault"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var req request
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Fault == "" {
			writeError(w, http.StatusBadRequest, "fault description is required")
			return
		}

		asset, err := svc.FlagMaintenance(r.Context(), id, req.Fault)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, asset)
	}
}
