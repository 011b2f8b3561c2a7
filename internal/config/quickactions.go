package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// QuickAction is a labelled prompt submitted with a single keystroke
type QuickAction struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// QuickActionConfig stores the quick actions and help examples shown in chat
type QuickActionConfig struct {
	Actions  []QuickAction `json:"actions"`
	Examples []string      `json:"examples,omitempty"`
}

// DefaultQuickActions returns the pre-configured quick actions
func DefaultQuickActions() []QuickAction {
	return []QuickAction{
		{Label: "Menu", Prompt: "Show me the restaurant menu"},
		{Label: "Order food", Prompt: "I would like to order food to my room"},
		{Label: "Towels", Prompt: "Can I get fresh towels in my room?"},
		{Label: "Cleaning", Prompt: "Please schedule room cleaning"},
		{Label: "Check-out", Prompt: "What time is check-out?"},
	}
}

// DefaultExamples returns example prompts listed by /help
func DefaultExamples() []string {
	return []string{
		"What's on the breakfast menu?",
		"Order 2 coffees and a croissant to room 204",
		"I need extra pillows in room 112",
		"Where is the spa?",
		"Can you book a table for dinner at 8pm?",
	}
}

// GetQuickActionsPath returns the path to the quick actions file
func GetQuickActionsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "quick_actions.json"), nil
}

// LoadQuickActions loads the quick action configuration, falling back to defaults
func LoadQuickActions() (*QuickActionConfig, error) {
	path, err := GetQuickActionsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &QuickActionConfig{
				Actions:  DefaultQuickActions(),
				Examples: DefaultExamples(),
			}, nil
		}
		return nil, fmt.Errorf("failed to read quick actions: %w", err)
	}

	var cfg QuickActionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse quick actions: %w", err)
	}

	cfg.Actions = validActions(cfg.Actions)
	if len(cfg.Examples) == 0 {
		cfg.Examples = DefaultExamples()
	}

	return &cfg, nil
}

// SaveQuickActions saves the quick action configuration
func SaveQuickActions(cfg *QuickActionConfig) error {
	path, err := GetQuickActionsPath()
	if err != nil {
		return err
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quick actions: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// FindQuickAction returns the action with the given label (case-insensitive)
func (c *QuickActionConfig) FindQuickAction(label string) (*QuickAction, error) {
	for i := range c.Actions {
		if strings.EqualFold(c.Actions[i].Label, label) {
			return &c.Actions[i], nil
		}
	}
	return nil, fmt.Errorf("quick action '%s' not found", label)
}

// At returns the action for a 1-based slot, as bound to alt+1..9
func (c *QuickActionConfig) At(slot int) (*QuickAction, bool) {
	if slot < 1 || slot > len(c.Actions) || slot > 9 {
		return nil, false
	}
	return &c.Actions[slot-1], true
}

// validActions drops entries without a prompt
func validActions(actions []QuickAction) []QuickAction {
	out := make([]QuickAction, 0, len(actions))
	for _, a := range actions {
		if strings.TrimSpace(a.Prompt) == "" {
			continue
		}
		if a.Label == "" {
			a.Label = a.Prompt
		}
		out = append(out, a)
	}
	return out
}
