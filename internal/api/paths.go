// Package api provides the HTTP client for the concierge chat service.
package api

// GJSON paths for extracting values from service responses.
const (
	// Chat reply
	PathResponse  = "response"
	PathAgentType = "agent_type"

	// Health report, all optional
	PathStatus         = "status"
	PathTimestamp      = "timestamp"
	PathStats          = "stats"
	PathStatsOrders    = "stats.orders"
	PathStatsRequests  = "stats.requests"
	PathStatsMenuItems = "stats.menu_items"

	// Error bodies produced by the service framework
	PathDetail = "detail"
)
