package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/diogo/concierge/internal/models"
)

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONCIERGE_CONFIG_DIR", dir)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != models.DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, models.DefaultBaseURL)
	}
	if cfg.SessionID != "default" {
		t.Errorf("SessionID = %q, want 'default'", cfg.SessionID)
	}
	if !cfg.IncludeFallbackInRequests {
		t.Error("IncludeFallbackInRequests should default to true")
	}
	if cfg.Timeout() != 120*time.Second {
		t.Errorf("Timeout() = %v, want 2m", cfg.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestGetConfigDir(t *testing.T) {
	t.Setenv("CONCIERGE_CONFIG_DIR", "")
	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("GetConfigDir() returned relative path: %s", dir)
	}
	if filepath.Base(dir) != ".concierge" {
		t.Errorf("GetConfigDir() = %s, want .concierge suffix", dir)
	}

	custom := withConfigDir(t)
	dir, _ = GetConfigDir()
	if dir != custom {
		t.Errorf("GetConfigDir() = %s, want override %s", dir, custom)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	withConfigDir(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.BaseURL != models.DefaultBaseURL {
		t.Errorf("expected defaults, got BaseURL %q", cfg.BaseURL)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	withConfigDir(t)

	cfg := DefaultConfig()
	cfg.BaseURL = "http://resort.local:9000"
	cfg.SessionID = "room-204"
	cfg.IncludeFallbackInRequests = false

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.BaseURL != cfg.BaseURL || loaded.SessionID != cfg.SessionID {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
	if loaded.IncludeFallbackInRequests {
		t.Error("IncludeFallbackInRequests should round-trip as false")
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dir := withConfigDir(t)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.BaseURL != models.DefaultBaseURL {
		t.Error("defaults should be returned on parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	withConfigDir(t)

	cfg := DefaultConfig()
	cfg.BaseURL = "http://from-file:8000"
	cfg.SessionID = "from-file"
	if err := SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONCIERGE_BASE_URL", "http://from-env:8000")
	t.Setenv("CONCIERGE_TIMEOUT", "15")
	t.Setenv("CONCIERGE_INCLUDE_FALLBACK", "false")

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.BaseURL != "http://from-env:8000" {
		t.Errorf("BaseURL = %q, want env value", loaded.BaseURL)
	}
	if loaded.SessionID != "from-file" {
		t.Errorf("SessionID = %q, unset env must keep file value", loaded.SessionID)
	}
	if loaded.Timeout() != 15*time.Second {
		t.Errorf("Timeout() = %v, want 15s", loaded.Timeout())
	}
	if loaded.IncludeFallbackInRequests {
		t.Error("IncludeFallbackInRequests should be overridden to false")
	}
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	t.Setenv("CONCIERGE_TIMEOUT", "soon")
	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("expected error for non-numeric timeout")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"empty session", func(c *Config) { c.SessionID = "  " }, "session_id"},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://host" }, "scheme"},
		{"no host", func(c *Config) { c.BaseURL = "http://" }, "missing host"},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }, "timeout"},
		{"profile case-insensitive", func(c *Config) { c.ClientProfile = "Firefox_120" }, ""},
		{"empty profile", func(c *Config) { c.ClientProfile = "" }, ""},
		{"unknown profile", func(c *Config) { c.ClientProfile = "netscape_4" }, "client_profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAvailableProfiles(t *testing.T) {
	names := AvailableProfiles()
	if !sort.StringsAreSorted(names) {
		t.Error("profiles should be sorted")
	}
	for _, want := range []string{DefaultConfig().ClientProfile, "chrome_124", "firefox_120", "safari_16_0"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("AvailableProfiles() missing %q", want)
		}
	}
	for _, name := range names {
		if !IsKnownProfile(name) {
			t.Errorf("listed profile %q is not accepted", name)
		}
	}
}

func TestTimeoutDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutSeconds = 0
	if cfg.Timeout() != 0 {
		t.Errorf("Timeout() = %v, want 0", cfg.Timeout())
	}
}

func TestToYAML(t *testing.T) {
	out, err := DefaultConfig().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	for _, want := range []string{"base_url: http://localhost:8000", "session_id: default", "markdown:"} {
		if !strings.Contains(out, want) {
			t.Errorf("ToYAML() missing %q in:\n%s", want, out)
		}
	}
}
