package api

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/diogo/concierge/internal/models"
)

// DefaultTimeout bounds a single request unless overridden
const DefaultTimeout = 120 * time.Second

// maxBodySize is the largest chat reply body accepted (4 MiB)
const maxBodySize = 4 << 20

// Client talks to the concierge service over HTTP
type Client struct {
	httpClient tls_client.HttpClient
	baseURL    string
	timeout    time.Duration
	profile    string
	logger     zerolog.Logger
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClientProfile selects the TLS client profile by name (e.g. "chrome_120")
func WithClientProfile(name string) ClientOption {
	return func(c *Client) {
		c.profile = name
	}
}

// WithHTTPClient replaces the transport, mainly for tests
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client for the service at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = models.DefaultBaseURL
	}

	client := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
		profile: "chrome_120",
		logger:  log.Logger.With().Str("component", "api").Logger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		profile, err := resolveProfile(client.profile)
		if err != nil {
			return nil, err
		}

		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutMilliseconds(int(client.timeout / time.Millisecond)),
			tls_client.WithClientProfile(profile),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// resolveProfile maps a profile name onto a tls-client profile
func resolveProfile(name string) (profiles.ClientProfile, error) {
	if name == "" {
		return profiles.Chrome_120, nil
	}
	profile, ok := profiles.MappedTLSClients[strings.ToLower(name)]
	if !ok {
		return profiles.ClientProfile{}, fmt.Errorf("unknown client profile %q", name)
	}
	return profile, nil
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the configured per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Close releases idle connections. Further requests fail.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.httpClient.CloseIdleConnections()
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// endpoint joins the base URL and a service path
func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}
