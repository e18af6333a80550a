package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chargenet/internal/http/middleware"
	"chargenet/internal/service"
)

// NewSessionStartHandler returns POST /sessions/start handler.
func NewSessionStartHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		AssetID int64 `json:"asset_id"`
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
		if req.AssetID <= 0 {
			writeError(w, http.StatusBadRequest, "asset_id is required")
			return
		}

		session, err := svc.Start(r.Context(), userID, req.AssetID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

// NewSessionStopHandler returns POST /sessions/{id}/stop handler. The body
// is optional; manual_kwh, when present, overrides the simulated energy.
func NewSessionStopHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		ManualKWh *float64 `json:"manual_kwh"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var req request
		if r.Body != nil && r.ContentLength != 0 {
			if !decodeBody(w, r, &req) {
				return
			}
		}

		// Ownership first, so one user cannot stop another's session.
		if _, err := svc.SessionForUser(r.Context(), id, userID); err != nil {
			writeServiceError(w, logger, err)
			return
		}

		session, err := svc.Stop(r.Context(), id, req.ManualKWh)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// NewSessionActiveHandler returns GET /sessions/active handler.
func NewSessionActiveHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		session, err := svc.ActiveSessionForUser(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

// NewSessionsMeHandler returns GET /sessions/me handler.
func NewSessionsMeHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		sessions, err := svc.SessionsForUser(r.Context(), userID, 50)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
	}
}

// NewSessionDetailHandler returns GET /sessions/{id} handler.
func NewSessionDetailHandler(svc *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		session, err := svc.SessionForUser(r.Context(), id, userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}
