package wiki

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds MediaWiki connection settings
type Config struct {
	// BaseURL is the wiki API endpoint (e.g., https://wiki.example.com/api.php)
	BaseURL string

	// Username for authentication (optional, required for mutating actions)
	Username string

	// Password for authentication (optional, required for mutating actions)
	Password string

	// Timeout for API requests
	Timeout time.Duration

	// UserAgent identifies the client to the wiki
	UserAgent string

	// MaxConcurrent caps parallel in-flight API requests
	MaxConcurrent int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	baseURL := os.Getenv("SCRIPTORIUM_WIKI_URL")
	if baseURL == "" {
		return nil, errors.New("SCRIPTORIUM_WIKI_URL environment variable is required")
	}

	timeout := 30 * time.Second
	if t := os.Getenv("SCRIPTORIUM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	maxConcurrent := 3
	if m := os.Getenv("SCRIPTORIUM_MAX_CONCURRENT"); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			maxConcurrent = n
		}
	}

	userAgent := os.Getenv("SCRIPTORIUM_USER_AGENT")
	if userAgent == "" {
		userAgent = "Scriptorium/1.0 (https://github.com/askeland/scriptorium)"
	}

	return &Config{
		BaseURL:       baseURL,
		Username:      os.Getenv("SCRIPTORIUM_USERNAME"),
		Password:      os.Getenv("SCRIPTORIUM_PASSWORD"),
		Timeout:       timeout,
		UserAgent:     userAgent,
		MaxConcurrent: maxConcurrent,
	}, nil
}

// HasCredentials returns true if authentication credentials are configured
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
