package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Register          http.HandlerFunc
	Login             http.HandlerFunc
	VehicleCreate     http.HandlerFunc
	VehiclesMe        http.HandlerFunc
	StationCreate     http.HandlerFunc
	StationList       http.HandlerFunc
	StationDetail     http.HandlerFunc
	AssetCreate       http.HandlerFunc
	AssetList         http.HandlerFunc
	AssetAvailability http.HandlerFunc
	AssetMaintenance  http.HandlerFunc
	SessionStart      http.HandlerFunc
	SessionStop       http.HandlerFunc
	SessionActive     http.HandlerFunc
	SessionsMe        http.HandlerFunc
	SessionDetail     http.HandlerFunc
	InvoicesMe        http.HandlerFunc
	InvoiceDetail     http.HandlerFunc
	InvoicePayment    http.HandlerFunc
	AvailabilityFeed  http.HandlerFunc
	Health            http.HandlerFunc
}

// NewRouter registers endpoints. Handlers under auth require a valid bearer
// token; station and asset administration are left open.
func NewRouter(routes Routes, auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, handler http.HandlerFunc) {
		if handler != nil {
			mux.Handle(pattern, handler)
		}
	}
	protected := func(pattern string, handler http.HandlerFunc) {
		if handler != nil {
			mux.Handle(pattern, auth(handler))
		}
	}

	handle("POST /auth/register", routes.Register)
	handle("POST /auth/login", routes.Login)

	protected("POST /vehicles", routes.VehicleCreate)
	protected("GET /vehicles/me", routes.VehiclesMe)

	handle("POST /stations", routes.StationCreate)
	handle("GET /stations", routes.StationList)
	handle("GET /stations/{id}", routes.StationDetail)

	handle("POST /assets", routes.AssetCreate)
	handle("GET /assets", routes.AssetList)
	handle("PATCH /assets/{id}/availability", routes.AssetAvailability)
	handle("POST /assets/{id}/maintenance", routes.AssetMaintenance)

	protected("POST /sessions/start", routes.SessionStart)
	protected("POST /sessions/{id}/stop", routes.SessionStop)
	protected("GET /sessions/active", routes.SessionActive)
	protected("GET /sessions/me", routes.SessionsMe)
	protected("GET /sessions/{id}", routes.SessionDetail)

	protected("GET /invoices/me", routes.InvoicesMe)
	protected("GET /invoices/{id}", routes.InvoiceDetail)
	protected("PATCH /invoices/{id}/payment", routes.InvoicePayment)

	handle("GET /ws/availability", routes.AvailabilityFeed)
	handle("GET /health", routes.Health)

	return mux
}
