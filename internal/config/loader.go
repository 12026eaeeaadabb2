package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader applies configuration sources from lowest to highest priority:
//
//  1. defaults
//  2. <dir>/base.yaml
//  3. <dir>/<environment>.yaml
//  4. <dir>/local.yaml (development only)
//  5. environment variables
type Loader struct {
	dir    string
	getenv func(string) string
}

// NewLoader reads files from dir ("config" when empty).
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = "config"
	}
	return &Loader{dir: dir, getenv: os.Getenv}
}

// WithEnv replaces the environment lookup, mainly for tests.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// Dir is the directory files are read from.
func (l *Loader) Dir() string {
	return l.dir
}

// Load builds and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()
	cfg.LoadedFrom = []string{"defaults"}

	if env := l.getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = Environment(strings.ToLower(env))
	}

	if err := l.loadFile("base", cfg); err != nil {
		return nil, err
	}
	// The base file may set the environment; variables still win.
	if env := l.getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = Environment(strings.ToLower(env))
	}
	if err := l.loadFile(string(cfg.Environment), cfg); err != nil {
		return nil, err
	}
	if cfg.Environment == Development {
		if err := l.loadFile("local", cfg); err != nil {
			return nil, err
		}
	}

	l.applyEnv(cfg)
	cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")
	cfg.applyEnvironmentDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile overlays <dir>/<name>.yaml (or .yml) onto cfg. A missing file is
// not an error.
func (l *Loader) loadFile(name string, cfg *Config) error {
	for _, ext := range []string{"yaml", "yml"} {
		path := filepath.Join(l.dir, name+"."+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.LoadedFrom = append(cfg.LoadedFrom, path)
		return nil
	}
	return nil
}

func (l *Loader) applyEnv(cfg *Config) {
	get := l.getenv

	// PORT is what most platforms inject; SERVER_PORT takes precedence.
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if v := get(key); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				cfg.Server.Port = port
			}
		}
	}
	if v := get("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := get("DATABASE_PROVIDER"); v != "" {
		cfg.Database.Provider = strings.ToLower(v)
	}
	if v := get("TABLE_NAME"); v != "" {
		cfg.Database.TableName = v
	}
	if v := get("DYNAMODB_ENDPOINT"); v != "" {
		cfg.Database.Endpoint = v
	}
	if v := get("BADGER_DIR"); v != "" {
		cfg.Database.BadgerDir = v
	}
	if v := get("AWS_REGION"); v != "" {
		cfg.Database.Region = v
	}

	if v := get("JWT_SECRET"); v != "" {
		cfg.Security.JWTSecret = v
	}
	if v := get("ENABLE_AUTH"); v != "" {
		cfg.Security.EnableAuth = parseBool(v)
	}
	if v := get("DEV_USER_ID"); v != "" {
		cfg.Security.DevUserID = v
	}

	if v := get("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiAPIKey = v
	}
	if v := get("AI_PROVIDER"); v != "" {
		cfg.AI.Provider = strings.ToLower(v)
	}

	if v := get("EVENTS_PROVIDER"); v != "" {
		cfg.Events.Provider = strings.ToLower(v)
	}
	if v := get("EVENT_BUS_NAME"); v != "" {
		cfg.Events.EventBusName = v
	}
	if v := get("KAFKA_BROKERS"); v != "" {
		cfg.Events.KafkaBrokers = splitList(v)
	}
	if v := get("KAFKA_TOPIC"); v != "" {
		cfg.Events.KafkaTopic = v
	}

	if v := get("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
		cfg.Tracing.Enabled = true
	}
	if v := get("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := get("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = splitList(v)
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
