package commands

import (
	"errors"
	"strings"
	"testing"
	"time"

	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/models"
)

func TestHealth_Connected(t *testing.T) {
	env := newTestEnv()
	ts := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	env.client.HealthVal = &models.HealthReport{
		StatusCode: 200,
		Status:     "healthy",
		Timestamp:  &ts,
		Stats:      &models.HealthStats{Orders: 3, Requests: 1, MenuItems: 8},
		Latency:    12 * time.Millisecond,
	}

	if err := env.execute("health"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	out := env.out.String()
	for _, want := range []string{"Connected", models.DefaultBaseURL, "healthy", "2025-06-01T08:00:00Z", "Orders:     3", "Menu items: 8", "12ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if env.client.HealthCalls() != 1 {
		t.Errorf("HealthCalls = %d", env.client.HealthCalls())
	}
}

func TestHealth_MinimalReport(t *testing.T) {
	env := newTestEnv()
	env.client.HealthVal = &models.HealthReport{StatusCode: 204}

	if err := env.execute("health"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if strings.Contains(env.out.String(), "Orders") {
		t.Errorf("no stats expected, got %q", env.out.String())
	}
}

func TestHealth_Disconnected(t *testing.T) {
	env := newTestEnv()
	env.client.HealthErr = apierrors.NewAPIError(503, "/health", "Service unavailable")

	err := env.execute("health")
	if err == nil {
		t.Fatal("expected non-zero exit when disconnected")
	}
	if !errors.Is(err, apierrors.ErrProtocol) {
		t.Errorf("error %v should wrap the API error", err)
	}
	if !strings.Contains(env.out.String(), "Disconnected") {
		t.Errorf("output = %q", env.out.String())
	}
	if len(env.client.Requests()) != 0 {
		t.Error("health must not send chat requests")
	}
}

func TestHealth_YAML(t *testing.T) {
	env := newTestEnv()
	env.client.HealthVal = &models.HealthReport{
		StatusCode: 200,
		Status:     "healthy",
		Stats:      &models.HealthStats{MenuItems: 8},
	}

	if err := env.execute("health", "--yaml"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	out := env.out.String()
	if !strings.Contains(out, "status: healthy") || !strings.Contains(out, "menu_items: 8") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}
