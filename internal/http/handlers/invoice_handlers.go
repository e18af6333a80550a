package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"chargenet/internal/http/middleware"
	"chargenet/internal/service"
)

// NewInvoicesMeHandler returns GET /invoices/me handler.
func NewInvoicesMeHandler(svc *service.BillingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		invoices, err := svc.InvoicesForUser(r.Context(), userID, 50)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices})
	}
}

// NewInvoiceDetailHandler returns GET /invoices/{id} handler.
func NewInvoiceDetailHandler(svc *service.BillingService, logger *zap.Logger) http.HandlerFunc {
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

		invoice, err := svc.InvoiceForUser(r.Context(), id, userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, invoice)
	}
}

// NewInvoicePaymentHandler returns PATCH /invoices/{id}/payment handler.
// Only the invoice's owner may settle it.
func NewInvoicePaymentHandler(svc *service.BillingService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		Status string `json:"status"`
		Method string `json:"method"`
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
		if !decodeBody(w, r, &req) {
			return
		}

		if _, err := svc.InvoiceForUser(r.Context(), id, userID); err != nil {
			writeServiceError(w, logger, err)
			return
		}

		invoice, err := svc.UpdatePayment(r.Context(), id, req.Status, req.Method)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, invoice)
	}
}
