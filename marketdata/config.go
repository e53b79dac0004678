package marketdata

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL        = "https://financialmodelingprep.com"
	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 120 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultMaxRetries     = 2
	defaultMaxConns       = 10
)

// Config carries client settings.
type Config struct {
	apiKey         string
	baseURL        string
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxRetries     int
	httpClient     *http.Client
	logger         *slog.Logger
}

// Option configures the client.
type Option func(*Config)

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Config) {
		c.baseURL = u
	}
}

// WithTimeouts sets the dial, response-header and request-write bounds.
func WithTimeouts(connect, read, write time.Duration) Option {
	return func(c *Config) {
		if connect > 0 {
			c.connectTimeout = connect
		}
		if read > 0 {
			c.readTimeout = read
		}
		if write > 0 {
			c.writeTimeout = write
		}
	}
}

// WithMaxRetries bounds transport-level retries.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithHTTPClient replaces the built transport entirely.
func WithHTTPClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}
