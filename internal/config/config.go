package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every dotted config key when read from the
// environment, e.g. PSIAI_SERVER_PORT.
const EnvPrefix = "PSIAI"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	BodyLimitMB    int           `mapstructure:"body_limit_mb"`
	CORSOrigins    string        `mapstructure:"cors_origins"`

	// SessionRateLimit caps session uploads per client IP per minute; 0 disables it.
	SessionRateLimit int `mapstructure:"session_rate_limit"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	BaseURL            string `mapstructure:"base_url"`
	ChatModel          string `mapstructure:"chat_model"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	Language           string `mapstructure:"language"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig points at the Supabase Storage bucket used when audio is retained.
type StorageConfig struct {
	URL         string `mapstructure:"url"`
	Key         string `mapstructure:"key"`
	Bucket      string `mapstructure:"bucket"`
	RetainAudio bool   `mapstructure:"retain_audio"`
}

type PipelineConfig struct {
	SubjectLabel        string `mapstructure:"subject_label"`
	CounterpartLabel    string `mapstructure:"counterpart_label"`
	ConcurrentArtifacts bool   `mapstructure:"concurrent_artifacts"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

// legacyEnv maps config keys to the unprefixed variable names used by
// existing deployments' .env files.
var legacyEnv = map[string]string{
	"server.port":     "PORT",
	"auth.api_key":    "API_KEY",
	"openai.api_key":  "OPENAI_API_KEY",
	"database.url":    "DATABASE_URL",
	"storage.url":     "SUPABASE_URL",
	"storage.key":     "SUPABASE_KEY",
	"storage.bucket":  "SUPABASE_STORAGE_BUCKET",
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. Missing required settings
// are reported together in a single error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".psiai"))
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.request_timeout", 10*time.Minute)
	v.SetDefault("server.body_limit_mb", 100)
	v.SetDefault("server.session_rate_limit", 10)
	v.SetDefault("server.cors_origins", "*")

	v.SetDefault("auth.api_key", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.chat_model", "gpt-4")
	v.SetDefault("openai.transcription_model", "whisper-1")
	v.SetDefault("openai.language", "pt")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "data/psiai.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("storage.url", "")
	v.SetDefault("storage.key", "")
	v.SetDefault("storage.bucket", "audio-sessions")
	v.SetDefault("storage.retain_audio", false)

	v.SetDefault("pipeline.subject_label", "Paciente")
	v.SetDefault("pipeline.counterpart_label", "você")
	v.SetDefault("pipeline.concurrent_artifacts", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}
}

// Validate reports every missing or invalid setting.
func (c *Config) Validate() error {
	var problems []string

	if c.Auth.APIKey == "" {
		problems = append(problems, "auth.api_key (API_KEY) is required")
	}
	if c.OpenAI.APIKey == "" {
		problems = append(problems, "openai.api_key (OPENAI_API_KEY) is required")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverPgx:
		if c.Database.URL == "" {
			problems = append(problems, "database.url (DATABASE_URL) is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			problems = append(problems, "database.path is required for the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not one of postgres, pgx, sqlite", c.Database.Driver))
	}

	if c.Storage.RetainAudio {
		if c.Storage.URL == "" {
			problems = append(problems, "storage.url (SUPABASE_URL) is required when storage.retain_audio is set")
		}
		if c.Storage.Key == "" {
			problems = append(problems, "storage.key (SUPABASE_KEY) is required when storage.retain_audio is set")
		}
	}
	if c.Storage.Bucket == "" {
		problems = append(problems, "storage.bucket must not be empty")
	}

	if c.Server.RequestTimeout <= 0 {
		problems = append(problems, "server.request_timeout must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
