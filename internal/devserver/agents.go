package devserver

import (
	"fmt"
	"strings"

	"github.com/diogo/concierge/internal/models"
)

// Greeting answers a chat with no history
const Greeting = "Welcome to Eco Resort! How can I help?"

const defaultReply = "How can I help you?"

var (
	restaurantWords  = []string{"menu", "order", "food", "restaurant"}
	roomServiceWords = []string{"service", "clean", "towel"}
)

type menuItem struct {
	Category string
	Name     string
	Price    int
}

var menu = []menuItem{
	{"Breakfast", "Puri Bhaji", 140},
	{"Breakfast", "Masala Dosa", 120},
	{"Breakfast", "Filter Coffee", 60},
	{"Main Course", "Veg Thali", 260},
	{"Main Course", "Paneer Butter Masala", 220},
	{"Main Course", "Jeera Rice", 150},
	{"Drinks", "Fresh Lime Soda", 80},
	{"Drinks", "Soft Drink", 50},
}

// routeAgent picks the responder for the last user message
func routeAgent(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, restaurantWords):
		return models.AgentRestaurant
	case containsAny(lower, roomServiceWords):
		return models.AgentRoomService
	default:
		return models.AgentReceptionist
	}
}

// lastUserMessage returns the content of the most recent user message, or ""
func lastUserMessage(history []models.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

// cannedReply produces the agent's answer for text
func cannedReply(agent, text string) string {
	lower := strings.ToLower(text)

	switch agent {
	case models.AgentRestaurant:
		if strings.Contains(lower, "menu") {
			return menuText()
		}
		return "I can take your order. Please specify items and room number."
	case models.AgentRoomService:
		return "I can help with room service. Please provide your room number and request details."
	}

	switch {
	case strings.Contains(lower, "check") && strings.Contains(lower, "in"):
		return "Check-in: 2:00 PM, Check-out: 11:00 AM"
	case strings.Contains(lower, "room") && strings.Contains(lower, "available"):
		return "Rooms available: Deluxe (₹250), Standard (₹150)"
	}
	return defaultReply
}

// menuText renders the menu grouped by category as markdown
func menuText() string {
	var b strings.Builder
	b.WriteString("🍽️ **RESTAURANT MENU** 🍽️\n")

	category := ""
	for _, item := range menu {
		if item.Category != category {
			category = item.Category
			b.WriteString("\n**" + category + ":**\n")
		}
		fmt.Fprintf(&b, "• %s - ₹%d\n", item.Name, item.Price)
	}
	return b.String()
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
