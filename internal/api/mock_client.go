package api

import (
	"context"
	"sync"

	"github.com/diogo/concierge/internal/models"
)

// MockClient is a mock implementation of ChatAPI for testing
type MockClient struct {
	// ChatFunc, when set, takes precedence over ChatReplyVal/ChatErr
	ChatFunc     func(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error)
	ChatReplyVal *models.ChatReply
	ChatErr      error

	HealthFunc func(ctx context.Context) (*models.HealthReport, error)
	HealthVal  *models.HealthReport
	HealthErr  error

	mu          sync.Mutex
	requests    []models.ChatRequest
	healthCalls int
}

// Ensure MockClient implements ChatAPI
var _ ChatAPI = (*MockClient)(nil)

// Chat records a copy of req and returns the configured reply
func (m *MockClient) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error) {
	m.mu.Lock()
	recorded := models.ChatRequest{SessionID: req.SessionID}
	recorded.History = append([]models.Message(nil), req.History...)
	m.requests = append(m.requests, recorded)
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if m.ChatErr != nil {
		return nil, m.ChatErr
	}
	if m.ChatReplyVal == nil {
		return &models.ChatReply{Response: "Hello!"}, nil
	}
	reply := *m.ChatReplyVal
	return &reply, nil
}

// Health returns the configured health report
func (m *MockClient) Health(ctx context.Context) (*models.HealthReport, error) {
	m.mu.Lock()
	m.healthCalls++
	fn := m.HealthFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if m.HealthErr != nil {
		return nil, m.HealthErr
	}
	if m.HealthVal == nil {
		return &models.HealthReport{StatusCode: 200, Status: "healthy"}, nil
	}
	report := *m.HealthVal
	return &report, nil
}

// Requests returns copies of every chat request received so far
func (m *MockClient) Requests() []models.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChatRequest(nil), m.requests...)
}

// LastRequest returns the most recent chat request, if any
func (m *MockClient) LastRequest() (models.ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return models.ChatRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// HealthCalls returns how many times Health was invoked
func (m *MockClient) HealthCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthCalls
}
