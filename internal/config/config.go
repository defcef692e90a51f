package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	API struct {
		// BaseURL is the root of the tracer REST API, without a trailing slash
		BaseURL string `yaml:"base_url" env:"TRACER_API_BASE"`
		// RequestTimeout bounds every CRUD call
		RequestTimeout string `yaml:"request_timeout" env:"TRACER_API_TIMEOUT"`
		// TokenWait bounds the post-login poll for a provisioned token
		TokenWait         string `yaml:"token_wait" env:"TRACER_TOKEN_WAIT"`
		TokenPollInterval string `yaml:"token_poll_interval" env:"TRACER_TOKEN_POLL_INTERVAL"`
	} `yaml:"api"`

	Storage struct {
		// StateDir holds the durable client state (cached profile, token)
		StateDir string `yaml:"state_dir" env:"TRACER_STATE_DIR"`
		// WatchInterval is the poll period for picking up state changes
		// written by another process
		WatchInterval string `yaml:"watch_interval" env:"TRACER_STATE_WATCH_INTERVAL"`
	} `yaml:"storage"`

	Stub struct {
		Port                  string `yaml:"port" env:"STUB_PORT"`
		Mode                  string `yaml:"mode" env:"STUB_MODE"`
		UploadDir             string `yaml:"upload_dir" env:"STUB_UPLOAD_DIR"`
		JWTSecret             string `yaml:"jwt_secret" env:"STUB_JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"STUB_ACCESS_TOKEN_EXPIRATION"`
		TokenIssuer           string `yaml:"token_issuer" env:"STUB_TOKEN_ISSUER"`
	} `yaml:"stub"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, .env, and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; ignore when absent
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.API.BaseURL = "http://127.0.0.1:8000"
	config.API.RequestTimeout = "15s"
	config.API.TokenWait = "3s"
	config.API.TokenPollInterval = "300ms"

	config.Storage.StateDir = defaultStateDir()
	config.Storage.WatchInterval = "2s"

	config.Stub.Port = "8000"
	config.Stub.Mode = "development"
	config.Stub.UploadDir = "uploads"
	config.Stub.JWTSecret = "stub-only-secret"
	config.Stub.AccessTokenExpiration = "1h"
	config.Stub.TokenIssuer = "alumnitracer.stub"

	config.Logging.Level = "info"
	config.Logging.Format = "console"
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".alumnitracer"
	}
	return home + string(os.PathSeparator) + ".alumnitracer"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	for _, d := range []struct {
		name, val string
	}{
		{"api.request_timeout", config.API.RequestTimeout},
		{"api.token_wait", config.API.TokenWait},
		{"api.token_poll_interval", config.API.TokenPollInterval},
		{"storage.watch_interval", config.Storage.WatchInterval},
		{"stub.access_token_expiration", config.Stub.AccessTokenExpiration},
	} {
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("%s: invalid duration %q", d.name, d.val)
		}
	}
	return nil
}

// RequestTimeout returns the parsed API request timeout
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.API.RequestTimeout, 15*time.Second)
}

// TokenWait returns how long the client waits for a token after login
func (c *Config) TokenWait() time.Duration {
	return parseDuration(c.API.TokenWait, 3*time.Second)
}

// TokenPollInterval returns the poll interval used while waiting for a token
func (c *Config) TokenPollInterval() time.Duration {
	return parseDuration(c.API.TokenPollInterval, 300*time.Millisecond)
}

// StorageWatchInterval returns the poll period for external state changes
func (c *Config) StorageWatchInterval() time.Duration {
	return parseDuration(c.Storage.WatchInterval, 2*time.Second)
}

// StubTokenExpiration returns the stub server's access token lifetime
func (c *Config) StubTokenExpiration() time.Duration {
	return parseDuration(c.Stub.AccessTokenExpiration, time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
