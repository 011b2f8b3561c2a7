// Package conversation owns the chat history and connection state of one
// concierge session.
package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/diogo/concierge/internal/api"
	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/models"
)

// Listener observes presentation-relevant changes of a Session.
// Callbacks run on the goroutine that triggered them, outside the session lock.
type Listener interface {
	Composing(active bool)
	StateChanged(state models.ConnectionState)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnComposing    func(active bool)
	OnStateChanged func(state models.ConnectionState)
}

func (l ListenerFuncs) Composing(active bool) {
	if l.OnComposing != nil {
		l.OnComposing(active)
	}
}

func (l ListenerFuncs) StateChanged(state models.ConnectionState) {
	if l.OnStateChanged != nil {
		l.OnStateChanged(state)
	}
}

// Result describes the outcome of a Submit
type Result struct {
	// Accepted is false when the text was empty after trimming
	Accepted bool
	// Reply is the assistant message appended for this turn
	Reply models.Message
	// Err is the underlying failure when Reply is the fallback. Display only.
	Err error
}

// Failed reports whether the turn ended with the fallback reply
func (r Result) Failed() bool {
	return r.Accepted && r.Reply.Fallback
}

// HealthResult describes the outcome of CheckHealth
type HealthResult struct {
	State  models.ConnectionState
	Report *models.HealthReport
	Err    error
}

// Session is the conversation client: History and ConnectionState are only
// mutated through Submit and CheckHealth.
type Session struct {
	api             api.ChatAPI
	sessionID       string
	includeFallback bool
	listener        Listener
	logger          zerolog.Logger
	now             func() time.Time

	mu       sync.RWMutex
	history  []models.Message
	state    models.ConnectionState
	inFlight int
}

// Option configures a Session
type Option func(*Session)

// WithSessionID sets the identifier sent with every request
func WithSessionID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.sessionID = id
		}
	}
}

// WithFallbackInRequests controls whether fallback replies kept in History
// are sent back to the service on later turns
func WithFallbackInRequests(include bool) Option {
	return func(s *Session) {
		s.includeFallback = include
	}
}

// WithListener registers the observer for composing and state changes
func WithListener(l Listener) Option {
	return func(s *Session) {
		s.listener = l
	}
}

// WithLogger sets the logger used for failure diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for message timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates a Session with an empty History and unknown state
func NewSession(client api.ChatAPI, opts ...Option) *Session {
	s := &Session{
		api:             client,
		sessionID:       models.DefaultSessionID,
		includeFallback: true,
		listener:        ListenerFuncs{},
		logger:          log.Logger.With().Str("component", "conversation").Logger(),
		now:             time.Now,
		state:           models.StateUnknown,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.listener == nil {
		s.listener = ListenerFuncs{}
	}
	return s
}

// Submit sends one user turn. Empty text is ignored.
// The user message is in History before the request is issued, and exactly one
// assistant message (reply or fallback) is appended when it completes.
func (s *Session) Submit(ctx context.Context, text string) Result {
	userMsg := models.NewUserMessage(text, s.now())
	if userMsg.Content == "" {
		return Result{}
	}

	s.mu.Lock()
	s.history = append(s.history, userMsg)
	req := &models.ChatRequest{
		History:   s.requestHistoryLocked(),
		SessionID: s.sessionID,
	}
	s.inFlight++
	s.mu.Unlock()

	s.listener.Composing(true)
	defer s.listener.Composing(false)

	reply, err := s.api.Chat(ctx, req)

	var (
		assistant models.Message
		state     models.ConnectionState
	)
	if err != nil {
		assistant = models.NewFallbackMessage(s.now())
		state = models.StateDisconnected
		s.logger.Warn().
			Err(err).
			Str("kind", apierrors.Classify(err).String()).
			Str("session_id", s.sessionID).
			Int("history", len(req.History)).
			Msg("chat request failed, showing fallback reply")
	} else {
		assistant = models.NewAssistantMessage(reply.Response, reply.AgentType, s.now())
		state = models.StateConnected
		s.logger.Debug().
			Str("session_id", s.sessionID).
			Str("agent", reply.AgentType).
			Int("history", len(req.History)).
			Msg("chat reply received")
	}

	s.mu.Lock()
	s.history = append(s.history, assistant)
	s.inFlight--
	changed := s.setStateLocked(state)
	s.mu.Unlock()

	if changed {
		s.listener.StateChanged(state)
	}

	return Result{Accepted: true, Reply: assistant, Err: err}
}

// CheckHealth probes the service and updates the connection state.
// History is never touched.
func (s *Session) CheckHealth(ctx context.Context) HealthResult {
	report, err := s.api.Health(ctx)
	state := models.StateFromOutcome(err == nil)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("kind", apierrors.Classify(err).String()).
			Msg("health probe failed")
	}

	s.mu.Lock()
	changed := s.setStateLocked(state)
	s.mu.Unlock()

	if changed {
		s.listener.StateChanged(state)
	}

	return HealthResult{State: state, Report: report, Err: err}
}

// setStateLocked updates the state and reports whether it changed.
// MUST be called with s.mu held for writing.
func (s *Session) setStateLocked(state models.ConnectionState) bool {
	if s.state == state {
		return false
	}
	s.state = state
	return true
}

// requestHistoryLocked copies History for the outgoing request.
// MUST be called with s.mu held.
func (s *Session) requestHistoryLocked() []models.Message {
	out := make([]models.Message, 0, len(s.history))
	for _, msg := range s.history {
		if msg.Fallback && !s.includeFallback {
			continue
		}
		out = append(out, msg)
	}
	return out
}

// History returns a copy of the messages exchanged so far
func (s *Session) History() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Len returns the number of messages in History
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// State returns the current connection state
func (s *Session) State() models.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Composing reports whether a submit is in flight
func (s *Session) Composing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight > 0
}

// SessionID returns the identifier sent with every request
func (s *Session) SessionID() string {
	return s.sessionID
}

// LastReply returns the most recent assistant message, if any
func (s *Session) LastReply() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Role == models.RoleAssistant {
			return s.history[i], true
		}
	}
	return models.Message{}, false
}
