// Package models contains data types and constants for the concierge chat service.
package models

// Defaults for the concierge service
const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultSessionID = "default"

	// FallbackReply is appended as the assistant's answer whenever a turn fails
	FallbackReply = "Sorry, I'm having trouble connecting. Please check if the backend is running."
)

// Service endpoints, relative to the base URL
const (
	EndpointChat   = "/chat"
	EndpointHealth = "/health"
	EndpointMenu   = "/menu"
)

// Display labels
const (
	SenderUser      = "You"
	SenderAssistant = "Concierge"
)

// Agent types reported by the service in agent_type
const (
	AgentReceptionist = "Receptionist"
	AgentRestaurant   = "Restaurant"
	AgentRoomService  = "RoomService"
)

// DefaultHeaders returns the headers sent with every request to the service
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": "concierge-cli/1.0",
	}
}

// JSONHeaders returns the headers for requests carrying a JSON body
func JSONHeaders() map[string]string {
	h := DefaultHeaders()
	h["Content-Type"] = "application/json"
	return h
}
