package api

import (
	"context"

	"github.com/diogo/concierge/internal/models"
)

// ChatAPI is the service surface consumed by the conversation client
type ChatAPI interface {
	// Chat posts the conversation and returns the assistant reply
	Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error)
	// Health probes the service; a nil error means a 2xx response
	Health(ctx context.Context) (*models.HealthReport, error)
}

// Ensure Client implements ChatAPI
var _ ChatAPI = (*Client)(nil)
