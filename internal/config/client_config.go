package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

type ClientConfig interface {
	GetAPIURL() string
	GetHost() string
	GetStateFile() string
	GetHTTPTimeout() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

// GetAPIURL returns the backend base URL without a trailing slash
func (Client) GetAPIURL() string {
	return strings.TrimRight(GetEnv("MARTORY_API_URL", "http://localhost:8080"), "/")
}

// GetHost is the host name the resolver falls back to (e.g. "acme.martory.com")
func (Client) GetHost() string {
	return GetEnv("MARTORY_HOST", "")
}

func (Client) GetStateFile() string {
	if f := os.Getenv("MARTORY_STATE_FILE"); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".martory-state.json"
	}
	return filepath.Join(home, ".martory", "state.json")
}

func (Client) GetHTTPTimeout() time.Duration {
	return GetEnvDuration("MARTORY_HTTP_TIMEOUT", 15*time.Second)
}
