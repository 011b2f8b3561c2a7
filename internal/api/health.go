package api

import (
	"context"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/concierge/internal/errors"
	"github.com/diogo/concierge/internal/models"
)

// Health issues GET /health. Any 2xx is healthy regardless of the body;
// the body is parsed best-effort into the report.
func (c *Client) Health(ctx context.Context) (*models.HealthReport, error) {
	if c.IsClosed() {
		return nil, errors.New("client is closed")
	}

	endpoint := c.endpoint(models.EndpointHealth)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create health request")
	}
	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	start := time.Now()
	data, status, err := c.do(ctx, req, "check health", endpoint)
	latency := time.Since(start)
	if err != nil {
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("health probe failed")
		return nil, err
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", status).
		Dur("latency", latency).
		Msg("health probe completed")

	if !isSuccess(status) {
		return nil, apierrors.NewAPIError(status, endpoint, statusMessage(status, data)).WithBody(string(data))
	}

	report := parseHealthReport(data)
	report.StatusCode = status
	report.Latency = latency
	return report, nil
}

// parseHealthReport reads whatever fields are present; it never fails
func parseHealthReport(data []byte) *models.HealthReport {
	report := &models.HealthReport{}
	if !gjson.ValidBytes(data) {
		return report
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return report
	}

	if status := root.Get(PathStatus); status.Type == gjson.String {
		report.Status = status.String()
	}
	if ts := root.Get(PathTimestamp); ts.Type == gjson.String {
		if parsed, ok := parseTimestamp(ts.String()); ok {
			report.Timestamp = &parsed
		}
	}
	if root.Get(PathStats).IsObject() {
		report.Stats = &models.HealthStats{
			Orders:    root.Get(PathStatsOrders).Int(),
			Requests:  root.Get(PathStatsRequests).Int(),
			MenuItems: root.Get(PathStatsMenuItems).Int(),
		}
	}
	return report
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO form some servers emit
func parseTimestamp(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
