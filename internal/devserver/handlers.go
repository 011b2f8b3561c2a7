package devserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/diogo/concierge/internal/models"
)

// M is a shorthand for ad-hoc JSON objects
type M = render.M

func (s *Server) postChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = models.DefaultSessionID
	}
	s.chats.Add(1)

	if len(req.History) == 0 {
		render.JSON(w, r, models.ChatReply{Response: Greeting, AgentType: models.AgentReceptionist})
		return
	}

	text := lastUserMessage(req.History)
	agent := routeAgent(text)
	s.count(agent, text)

	s.logger.Info().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("session_id", req.SessionID).
		Int("history", len(req.History)).
		Str("agent", agent).
		Msg("chat")

	render.JSON(w, r, models.ChatReply{
		Response:  cannedReply(agent, text),
		AgentType: agent,
	})
}

// count bumps the in-memory order and service request counters
func (s *Server) count(agent, text string) {
	lower := strings.ToLower(text)
	switch {
	case agent == models.AgentRestaurant && strings.Contains(lower, "order"):
		s.orders.Add(1)
	case agent == models.AgentRoomService:
		s.requests.Add(1)
	}
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, M{
		"status":    "healthy",
		"timestamp": s.now().Format(time.RFC3339Nano),
		"stats":     s.Stats(),
	})
}

func (s *Server) getMenu(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, M{"menu": menuText()})
}

func (s *Server) getRoot(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, M{
		"message": "Eco Resort concierge (devserver)",
		"version": "1.0",
		"endpoints": M{
			"chat":   "POST " + models.EndpointChat,
			"menu":   "GET " + models.EndpointMenu,
			"health": "GET " + models.EndpointHealth,
		},
	})
}

// fail writes an error body in the {"detail": ...} shape the client understands
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	s.logger.Warn().
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Str("detail", detail).
		Msg("request failed")
	render.Status(r, status)
	render.JSON(w, r, M{"detail": detail})
}

// Stats returns the current counters
func (s *Server) Stats() models.HealthStats {
	return models.HealthStats{
		Orders:    s.orders.Load(),
		Requests:  s.requests.Load(),
		MenuItems: int64(len(menu)),
	}
}

// Chats returns the number of chat requests served
func (s *Server) Chats() int64 {
	return s.chats.Load()
}
