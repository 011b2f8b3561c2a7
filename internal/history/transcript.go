// Package history exports the in-memory conversation of a session.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/concierge/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseFormat maps a name or file extension onto an ExportFormat
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "md", "markdown":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown or json)", s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to markdown
func FormatForPath(path string) ExportFormat {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return ExportFormatMarkdown
}

// ExportOptions configures how transcripts are exported
type ExportOptions struct {
	IncludeTimestamps bool
	IncludeFallback   bool // Include the fixed reply of failed turns
}

// DefaultExportOptions returns the options used by /export and --transcript
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		IncludeTimestamps: true,
		IncludeFallback:   true,
	}
}

// Transcript is a snapshot of a session's History
type Transcript struct {
	ID        string
	SessionID string
	CreatedAt time.Time
	Messages  []models.Message
}

// NewTranscript snapshots messages under a fresh transcript id
func NewTranscript(sessionID string, messages []models.Message) *Transcript {
	msgs := make([]models.Message, len(messages))
	copy(msgs, messages)
	return &Transcript{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		CreatedAt: time.Now(),
		Messages:  msgs,
	}
}

// visible returns the messages selected by opts
func (t *Transcript) visible(opts ExportOptions) []models.Message {
	if opts.IncludeFallback {
		return t.Messages
	}
	out := make([]models.Message, 0, len(t.Messages))
	for _, msg := range t.Messages {
		if !msg.Fallback {
			out = append(out, msg)
		}
	}
	return out
}

// ToMarkdown renders the transcript as Markdown
func (t *Transcript) ToMarkdown(opts ExportOptions) string {
	msgs := t.visible(opts)

	var sb strings.Builder

	sb.WriteString("# Concierge conversation\n\n")
	sb.WriteString("**Session:** ")
	sb.WriteString(t.SessionID)
	sb.WriteString("\n")
	sb.WriteString("**Transcript:** ")
	sb.WriteString(t.ID)
	sb.WriteString("\n")
	sb.WriteString("**Exported:** ")
	sb.WriteString(t.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(msgs)))

	for i, msg := range msgs {
		sb.WriteString("## ")
		sb.WriteString(msg.Sender())
		if opts.IncludeTimestamps && !msg.SentAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.SentAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if msg.Fallback {
			sb.WriteString("> ")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	Role      models.Role `json:"role"`
	Content   string      `json:"content"`
	Agent     string      `json:"agent,omitempty"`
	Fallback  bool        `json:"fallback,omitempty"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
}

type exportTranscript struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
	Messages  []exportMessage `json:"messages"`
}

// ToJSON renders the transcript as indented JSON
func (t *Transcript) ToJSON(opts ExportOptions) ([]byte, error) {
	msgs := t.visible(opts)

	export := exportTranscript{
		ID:        t.ID,
		SessionID: t.SessionID,
		CreatedAt: t.CreatedAt,
		Messages:  make([]exportMessage, len(msgs)),
	}

	for i, msg := range msgs {
		export.Messages[i] = exportMessage{
			Role:     msg.Role,
			Content:  msg.Content,
			Agent:    msg.Agent,
			Fallback: msg.Fallback,
		}
		if opts.IncludeTimestamps && !msg.SentAt.IsZero() {
			ts := msg.SentAt
			export.Messages[i].Timestamp = &ts
		}
	}

	return json.MarshalIndent(export, "", "  ")
}

// WriteFile writes the transcript to path in the given format
func (t *Transcript) WriteFile(path string, format ExportFormat, opts ExportOptions) error {
	var data []byte
	switch format {
	case ExportFormatJSON:
		b, err := t.ToJSON(opts)
		if err != nil {
			return fmt.Errorf("failed to marshal transcript: %w", err)
		}
		data = b
	case ExportFormatMarkdown, "":
		data = []byte(t.ToMarkdown(opts))
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// DefaultFileName returns a timestamped file name for an export
func DefaultFileName(now time.Time, format ExportFormat) string {
	ext := "md"
	if format == ExportFormatJSON {
		ext = "json"
	}
	return fmt.Sprintf("concierge-%s.%s", now.Format("20060102-150405"), ext)
}
