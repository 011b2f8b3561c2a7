package models

import "time"

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	History   []Message `json:"history"`
	SessionID string    `json:"session_id"`
}

// ChatReply is the decoded body of a successful POST /chat
type ChatReply struct {
	Response  string `json:"response"`
	AgentType string `json:"agent_type,omitempty"`
}

// HealthStats holds the optional counters reported by GET /health
type HealthStats struct {
	Orders    int64 `json:"orders" yaml:"orders"`
	Requests  int64 `json:"requests" yaml:"requests"`
	MenuItems int64 `json:"menu_items" yaml:"menu_items"`
}

// HealthReport is the best-effort view of a GET /health body.
// Healthiness is decided by the status code alone; every field here is optional.
type HealthReport struct {
	StatusCode int           `json:"-" yaml:"-"`
	Status     string        `json:"status,omitempty" yaml:"status,omitempty"`
	Timestamp  *time.Time    `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Stats      *HealthStats  `json:"stats,omitempty" yaml:"stats,omitempty"`
	Latency    time.Duration `json:"-" yaml:"-"`
}
