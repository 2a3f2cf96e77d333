// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RecruitCRM RecruitCRMConfig `mapstructure:"recruitcrm"`
	AlphaRun   AlphaRunConfig   `mapstructure:"alpharun"`
	Fireflies  FirefliesConfig  `mapstructure:"fireflies"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Firestore  FirestoreConfig  `mapstructure:"firestore"`
	Tasks      TasksConfig      `mapstructure:"tasks"`
	Gmail      GmailConfig      `mapstructure:"gmail"`
	Bulk       BulkConfig       `mapstructure:"bulk"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RecruitCRMConfig holds credentials for the RecruitCRM REST API.
type RecruitCRMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AlphaRunConfig holds credentials for the AlphaRun interview API.
type AlphaRunConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// FirefliesConfig holds credentials for the Fireflies GraphQL API.
type FirefliesConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// GeminiConfig selects the generation model and credentials.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// FirestoreConfig selects the Firestore project. When ProjectID is empty the
// service falls back to in-memory stores, which suits local development.
type FirestoreConfig struct {
	ProjectID string `mapstructure:"project_id"`
}

// TasksConfig targets the Cloud Tasks queue that drives the summary worker.
// When ProjectID is empty the service uses an in-process queue.
type TasksConfig struct {
	ProjectID           string `mapstructure:"project_id"`
	Location            string `mapstructure:"location"`
	Queue               string `mapstructure:"queue"`
	WorkerURL           string `mapstructure:"worker_url"`
	ServiceAccountEmail string `mapstructure:"service_account_email"`
}

// GmailConfig holds the OAuth client used to refresh caller tokens.
type GmailConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// BulkConfig governs the background bulk processor.
type BulkConfig struct {
	QueueDepth int `mapstructure:"queue_depth"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SUMMARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading a file or the
// environment.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 300)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("recruitcrm.base_url", "https://api.recruitcrm.io/v1")
	v.SetDefault("recruitcrm.timeout_seconds", 15)
	v.SetDefault("alpharun.base_url", "https://api.alpharun.com/api/v1")
	v.SetDefault("alpharun.timeout_seconds", 15)
	v.SetDefault("fireflies.endpoint", "https://api.fireflies.ai/graphql")
	v.SetDefault("fireflies.timeout_seconds", 30)
	v.SetDefault("gemini.model", "gemini-2.5-pro")
	v.SetDefault("tasks.location", "us-central1")
	v.SetDefault("tasks.queue", "candidate-summary-tasks")
	v.SetDefault("bulk.queue_depth", 16)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.TimeoutSeconds <= 0 {
		return fmt.Errorf("server.timeout_seconds must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Bulk.QueueDepth <= 0 {
		return fmt.Errorf("bulk.queue_depth must be > 0")
	}
	if c.Tasks.ProjectID != "" && c.Tasks.WorkerURL == "" {
		return fmt.Errorf("tasks.worker_url must be set when tasks.project_id is set")
	}
	return nil
}

// RequestTimeout returns the server-wide request deadline.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}
