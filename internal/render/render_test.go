package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/diogo/concierge/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != StyleDark {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=false")
	}
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().WithWidth(100).WithStyle(StyleLight)

	if opts.Width != 100 || opts.Style != StyleLight {
		t.Errorf("got %+v", opts)
	}
	if !opts.EnableEmoji {
		t.Error("other fields should be preserved")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	md := config.MarkdownConfig{Style: "tokyonight", EnableEmoji: false, TableWrap: true}
	opts := OptionsFromConfig(md)

	if opts.Style != "tokyonight" {
		t.Errorf("Style = %q", opts.Style)
	}
	if opts.EnableEmoji || opts.PreserveNewLines {
		t.Error("booleans from config should override defaults")
	}

	t.Setenv("GLAMOUR_STYLE", "light")
	if got := OptionsFromConfig(md).Style; got != "light" {
		t.Errorf("GLAMOUR_STYLE should win, got %q", got)
	}
}

func TestNormalizeStyle(t *testing.T) {
	tests := map[string]string{
		"":            StyleDark,
		"dark":        StyleDark,
		"Dark":        StyleDark,
		"tokyonight":  StyleTokyoNight,
		"tokyo-night": StyleTokyoNight,
		"plain":       StyleNoTTY,
		"dracula":     StyleDracula,
		"/tmp/x.json": "/tmp/x.json",
	}
	for in, want := range tests {
		if got := NormalizeStyle(in); got != want {
			t.Errorf("NormalizeStyle(%q) = %q, want %q", in, got, want)
		}
	}

	if !IsBuiltinStyle("tokyonight") || IsBuiltinStyle("/tmp/x.json") {
		t.Error("IsBuiltinStyle mismatch")
	}
}

func TestMarkdown(t *testing.T) {
	ClearCache()

	out, err := Markdown("# Menu\n\n**Risotto** and *salad*", DefaultOptions().WithStyle(StyleNoTTY))
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(out, "Menu") || !strings.Contains(out, "Risotto") {
		t.Errorf("rendered output lost content: %q", out)
	}
	if CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", CacheSize())
	}
}

func TestMarkdownWraps(t *testing.T) {
	long := strings.Repeat("towel ", 40)
	out, err := Markdown(long, DefaultOptions().WithWidth(40))
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if strings.Count(out, "\n") < 3 {
		t.Errorf("expected wrapped output, got %q", out)
	}
}

func TestReplyFallsBackToRaw(t *testing.T) {
	opts := DefaultOptions().WithStyle("/nonexistent/style.json")
	if got := Reply("plain **text**", opts); got != "plain **text**" {
		t.Errorf("Reply() = %q, want raw content", got)
	}

	got := Reply("hello", DefaultOptions().WithStyle(StyleNoTTY))
	if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
		t.Errorf("Reply() should trim blank lines: %q", got)
	}
}

func TestMarkdownConcurrent(t *testing.T) {
	opts := DefaultOptions().WithStyle(StyleASCII)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("- towels\n- pillows", opts); err != nil {
				t.Errorf("Markdown failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != len(AvailableThemes()) {
		t.Fatal("ThemeNames should mirror AvailableThemes")
	}
	for _, name := range names {
		if !IsBuiltinStyle(name) {
			t.Errorf("%q should be a glamour style", name)
		}
	}
}

func TestTUIThemes(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		if theme.Name == "" || theme.Description == "" {
			t.Errorf("theme %+v missing name or description", theme)
		}
		for _, c := range []string{string(theme.Primary), string(theme.Secondary), string(theme.Error), string(theme.Text), string(theme.TextDim), string(theme.Border)} {
			if c == "" {
				t.Errorf("theme %s has an empty color", theme.Name)
			}
		}
		got, ok := GetTUIThemeByName(strings.ToUpper(theme.Name))
		if !ok || got.Name != theme.Name {
			t.Errorf("lookup of %s failed", theme.Name)
		}
	}

	if TUIThemeOrDefault("nope").Name != DefaultTUITheme.Name {
		t.Error("unknown theme should fall back to default")
	}
	if len(TUIThemeNames()) != 3 {
		t.Errorf("TUIThemeNames() = %v", TUIThemeNames())
	}
}
