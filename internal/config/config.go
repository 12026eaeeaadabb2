// Package config loads the typed application configuration from layered
// YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

func (e Environment) IsValid() bool {
	switch e {
	case Development, Staging, Production:
		return true
	}
	return false
}

// Config is the complete application configuration.
type Config struct {
	Environment Environment    `yaml:"environment"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	AI          AIConfig       `yaml:"ai"`
	Security    SecurityConfig `yaml:"security"`
	Events      EventsConfig   `yaml:"events"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Tracing     TracingConfig  `yaml:"tracing"`
	Logging     LoggingConfig  `yaml:"logging"`
	CORS        CORSConfig     `yaml:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Database providers.
const (
	ProviderMemory   = "memory"
	ProviderBadger   = "badger"
	ProviderDynamoDB = "dynamodb"
)

type DatabaseConfig struct {
	Provider  string `yaml:"provider"`
	TableName string `yaml:"table_name"`
	Region    string `yaml:"region"`
	// Endpoint overrides the DynamoDB endpoint, e.g. for DynamoDB Local.
	Endpoint  string `yaml:"endpoint"`
	BadgerDir string `yaml:"badger_dir"`
}

// AI providers.
const (
	AIProviderMock   = "mock"
	AIProviderGemini = "gemini"
)

type AIConfig struct {
	Provider     string        `yaml:"provider"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	Model        string        `yaml:"model"`
	Timeout      time.Duration `yaml:"timeout"`
	// MaxCandidates bounds how many nodes are offered for auto-connect.
	MaxCandidates int `yaml:"max_candidates"`
}

type SecurityConfig struct {
	EnableAuth  bool          `yaml:"enable_auth"`
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	JWTAudience string        `yaml:"jwt_audience"`
	TokenExpiry time.Duration `yaml:"token_expiry"`
	// DevUserID is the owner used when auth is disabled and the request
	// carries no X-User-ID header.
	DevUserID string `yaml:"dev_user_id"`
}

// Event providers.
const (
	EventsLog         = "log"
	EventsEventBridge = "eventbridge"
	EventsKafka       = "kafka"
)

type EventsConfig struct {
	Provider     string   `yaml:"provider"`
	EventBusName string   `yaml:"event_bus_name"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRate  float64 `yaml:"sample_rate"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// ZapLevel parses Level, defaulting to info.
func (l LoggingConfig) ZapLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

// Default returns the configuration used before any file or variable is
// applied.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  25 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Provider:  ProviderMemory,
			TableName: "conceptforge-dev",
			Region:    "us-east-1",
			BadgerDir: "./data/conceptforge",
		},
		AI: AIConfig{
			Provider:      AIProviderMock,
			Model:         "gemini-2.0-flash",
			Timeout:       30 * time.Second,
			MaxCandidates: 20,
		},
		Security: SecurityConfig{
			EnableAuth:  false,
			JWTIssuer:   "conceptforge",
			JWTAudience: "conceptforge-api",
			TokenExpiry: 24 * time.Hour,
			DevUserID:   "dev-user",
		},
		Events: EventsConfig{
			Provider:   EventsLog,
			KafkaTopic: "conceptforge.events",
		},
		Metrics: MetricsConfig{Enabled: true, Namespace: "conceptforge"},
		Tracing: TracingConfig{ServiceName: "conceptforge"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
			MaxAge:         300,
		},
	}
}

// applyEnvironmentDefaults tightens settings outside development.
func (c *Config) applyEnvironmentDefaults() {
	if c.Environment == Production {
		c.Logging.Format = "json"
		if c.Logging.Level == "debug" {
			c.Logging.Level = "info"
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error
	if !c.Environment.IsValid() {
		errs = append(errs, fmt.Errorf("unknown environment %q", c.Environment))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	switch c.Database.Provider {
	case ProviderMemory:
	case ProviderBadger:
		if c.Database.BadgerDir == "" {
			errs = append(errs, errors.New("database.badger_dir is required for the badger provider"))
		}
	case ProviderDynamoDB:
		if c.Database.TableName == "" {
			errs = append(errs, errors.New("database.table_name is required for the dynamodb provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database provider %q", c.Database.Provider))
	}
	switch c.AI.Provider {
	case AIProviderMock, AIProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unknown ai provider %q", c.AI.Provider))
	}
	switch c.Events.Provider {
	case EventsLog:
	case EventsEventBridge:
		if c.Events.EventBusName == "" {
			errs = append(errs, errors.New("events.event_bus_name is required for the eventbridge provider"))
		}
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 || c.Events.KafkaTopic == "" {
			errs = append(errs, errors.New("events.kafka_brokers and events.kafka_topic are required for the kafka provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events provider %q", c.Events.Provider))
	}
	if c.Security.EnableAuth && c.Security.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required when auth is enabled"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate %v must be within [0,1]", c.Tracing.SampleRate))
	}
	return errors.Join(errs...)
}
