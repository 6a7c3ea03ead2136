package config

import (
	"encoding/base64"
	"fmt"
	"time"
)

const (
	defaultRateLimitWindow = 60 * time.Second
	defaultRateLimitMax    = 100
)

// RateLimitConfig defines the per-connection event budget. A connection
// may send up to MaxEvents events per Window before further events are
// rejected until the window rolls over.
type RateLimitConfig struct {
	Window    time.Duration
	MaxEvents int
}

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	MigrationsURL  string
	SigningKey     []byte
	AllowedOrigins []string
	RateLimit      RateLimitConfig
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, databaseDSN, base64Secret string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	// Decode the base64 encoded signing secret
	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		MigrationsURL:  "file://migrations",
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		RateLimit: RateLimitConfig{
			Window:    defaultRateLimitWindow,
			MaxEvents: defaultRateLimitMax,
		},
	}, nil
}
