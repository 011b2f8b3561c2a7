package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadQuickActions_Defaults(t *testing.T) {
	withConfigDir(t)

	cfg, err := LoadQuickActions()
	if err != nil {
		t.Fatalf("LoadQuickActions() error = %v", err)
	}
	if len(cfg.Actions) != len(DefaultQuickActions()) {
		t.Errorf("got %d actions, want defaults", len(cfg.Actions))
	}
	if len(cfg.Examples) == 0 {
		t.Error("expected default examples")
	}
}

func TestSaveAndLoadQuickActions(t *testing.T) {
	withConfigDir(t)

	in := &QuickActionConfig{
		Actions: []QuickAction{
			{Label: "Spa", Prompt: "Book a massage"},
			{Label: "", Prompt: "Late check-out please"},
			{Label: "Empty", Prompt: "   "},
		},
	}
	if err := SaveQuickActions(in); err != nil {
		t.Fatalf("SaveQuickActions() error = %v", err)
	}

	cfg, err := LoadQuickActions()
	if err != nil {
		t.Fatalf("LoadQuickActions() error = %v", err)
	}
	if len(cfg.Actions) != 2 {
		t.Fatalf("got %d actions, want 2 (empty prompt dropped)", len(cfg.Actions))
	}
	if cfg.Actions[1].Label != "Late check-out please" {
		t.Errorf("missing label should default to prompt, got %q", cfg.Actions[1].Label)
	}
	if len(cfg.Examples) == 0 {
		t.Error("examples should fall back to defaults")
	}
}

func TestLoadQuickActions_InvalidJSON(t *testing.T) {
	dir := withConfigDir(t)
	if err := os.WriteFile(filepath.Join(dir, "quick_actions.json"), []byte("["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadQuickActions(); err == nil {
		t.Error("expected parse error")
	}
}

func TestFindQuickAction(t *testing.T) {
	cfg := &QuickActionConfig{Actions: DefaultQuickActions()}

	a, err := cfg.FindQuickAction("menu")
	if err != nil {
		t.Fatalf("FindQuickAction() error = %v", err)
	}
	if a.Prompt != "Show me the restaurant menu" {
		t.Errorf("Prompt = %q", a.Prompt)
	}

	if _, err := cfg.FindQuickAction("nope"); err == nil {
		t.Error("expected not found error")
	}
}

func TestQuickActionAt(t *testing.T) {
	cfg := &QuickActionConfig{Actions: DefaultQuickActions()}

	if a, ok := cfg.At(1); !ok || a.Label != "Menu" {
		t.Errorf("At(1) = %v, %v", a, ok)
	}
	for _, slot := range []int{0, -1, len(cfg.Actions) + 1, 10} {
		if _, ok := cfg.At(slot); ok {
			t.Errorf("At(%d) should be out of range", slot)
		}
	}
}
