package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/concierge/internal/models"
)

func sampleMessages() []models.Message {
	at := time.Date(2025, 6, 1, 18, 5, 9, 0, time.UTC)
	return []models.Message{
		models.NewUserMessage("Can I see the menu?", at),
		models.NewAssistantMessage("Tonight we serve **risotto**.", models.AgentRestaurant, at.Add(2*time.Second)),
		models.NewUserMessage("And towels please", at.Add(time.Minute)),
		models.NewFallbackMessage(at.Add(time.Minute + time.Second)),
	}
}

func TestNewTranscript(t *testing.T) {
	msgs := sampleMessages()
	tr := NewTranscript("default", msgs)

	if _, err := uuid.Parse(tr.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", tr.ID, err)
	}
	if tr.SessionID != "default" {
		t.Errorf("SessionID = %q", tr.SessionID)
	}
	if len(tr.Messages) != 4 {
		t.Fatalf("Messages = %d, want 4", len(tr.Messages))
	}

	msgs[0].Content = "changed"
	if tr.Messages[0].Content != "Can I see the menu?" {
		t.Error("transcript should hold a copy of the messages")
	}

	other := NewTranscript("default", nil)
	if other.ID == tr.ID {
		t.Error("each transcript should get its own id")
	}
}

func TestToMarkdown(t *testing.T) {
	tr := NewTranscript("room-204", sampleMessages())
	md := tr.ToMarkdown(DefaultExportOptions())

	checks := []string{
		"# Concierge conversation",
		"**Session:** room-204",
		"**Transcript:** " + tr.ID,
		"**Messages:** 4",
		"## You (18:05:09)",
		"## Restaurant (18:05:11)",
		"Tonight we serve **risotto**.",
		"> " + models.FallbackReply,
	}
	for _, want := range checks {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestToMarkdown_Options(t *testing.T) {
	tr := NewTranscript("default", sampleMessages())
	md := tr.ToMarkdown(ExportOptions{})

	if strings.Contains(md, "18:05:09") {
		t.Error("timestamps should be omitted")
	}
	if strings.Contains(md, models.FallbackReply) {
		t.Error("fallback messages should be omitted")
	}
	if !strings.Contains(md, "**Messages:** 3") {
		t.Error("message count should exclude fallback")
	}
	if !strings.HasSuffix(md, "And towels please\n") {
		t.Errorf("last visible message should close the document:\n%s", md)
	}
}

func TestToJSON(t *testing.T) {
	tr := NewTranscript("default", sampleMessages())

	data, err := tr.ToJSON(DefaultExportOptions())
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded struct {
		ID        string `json:"id"`
		SessionID string `json:"session_id"`
		Messages  []struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			Agent     string     `json:"agent"`
			Fallback  bool       `json:"fallback"`
			Timestamp *time.Time `json:"timestamp"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if decoded.ID != tr.ID || decoded.SessionID != "default" {
		t.Errorf("header = %s / %s", decoded.ID, decoded.SessionID)
	}
	if len(decoded.Messages) != 4 {
		t.Fatalf("Messages = %d, want 4", len(decoded.Messages))
	}
	if decoded.Messages[1].Agent != models.AgentRestaurant {
		t.Errorf("Agent = %q", decoded.Messages[1].Agent)
	}
	if !decoded.Messages[3].Fallback {
		t.Error("fallback flag should be exported")
	}
	if decoded.Messages[0].Timestamp == nil {
		t.Error("timestamp should be exported")
	}

	data, _ = tr.ToJSON(ExportOptions{})
	if strings.Contains(string(data), "timestamp") || strings.Contains(string(data), "fallback") {
		t.Errorf("options not honored: %s", data)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	tr := NewTranscript("default", sampleMessages())

	mdPath := filepath.Join(dir, "nested", "chat.md")
	if err := tr.WriteFile(mdPath, ExportFormatMarkdown, DefaultExportOptions()); err != nil {
		t.Fatalf("WriteFile markdown: %v", err)
	}
	data, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Concierge conversation") {
		t.Errorf("unexpected markdown file: %s", data)
	}

	jsonPath := filepath.Join(dir, "chat.json")
	if err := tr.WriteFile(jsonPath, ExportFormatJSON, DefaultExportOptions()); err != nil {
		t.Fatalf("WriteFile json: %v", err)
	}
	data, _ = os.ReadFile(jsonPath)
	if !json.Valid(data) {
		t.Error("json export should be valid JSON")
	}

	if err := tr.WriteFile(filepath.Join(dir, "x"), ExportFormat("pdf"), DefaultExportOptions()); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"", ExportFormatMarkdown, false},
		{"md", ExportFormatMarkdown, false},
		{".MD", ExportFormatMarkdown, false},
		{"json", ExportFormatJSON, false},
		{".json", ExportFormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}

	if FormatForPath("/tmp/a.json") != ExportFormatJSON || FormatForPath("/tmp/a.txt") != ExportFormatMarkdown {
		t.Error("FormatForPath picked the wrong format")
	}
}

func TestDefaultFileName(t *testing.T) {
	now := time.Date(2025, 6, 1, 18, 5, 9, 0, time.UTC)
	if got := DefaultFileName(now, ExportFormatMarkdown); got != "concierge-20250601-180509.md" {
		t.Errorf("DefaultFileName() = %q", got)
	}
	if got := DefaultFileName(now, ExportFormatJSON); got != "concierge-20250601-180509.json" {
		t.Errorf("DefaultFileName() = %q", got)
	}
}
