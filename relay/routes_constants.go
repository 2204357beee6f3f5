package relay

// Route path constants
// All relay routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - provider flow
	RouteConnect  = "/connect/{provider}"
	RouteCallback = "/auth/{provider}/callback"

	// Session Routes
	RouteUser   = "/user"
	RouteLogout = "/logout"

	// Operational Routes
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
