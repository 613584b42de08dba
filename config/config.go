package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EnvProduction = "production"
)

// LLMConfig configures the OpenAI-compatible completion endpoint used for
// plan generation and the coach.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	Mode              string `mapstructure:"mode"`
	JWTSecret         string `mapstructure:"jwt_secret"`
	FirebaseProjectID string `mapstructure:"firebase_project_id"`
	JWKSURL           string `mapstructure:"jwks_url"`
}

type RateLimitConfig struct {
	Requests  int           `mapstructure:"requests"`
	Window    time.Duration `mapstructure:"window"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

type SchedulerConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	MetricsRefreshInterval time.Duration `mapstructure:"metrics_refresh_interval"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Exporter    string `mapstructure:"exporter"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// Config holds the application's configuration.
type Config struct {
	App struct {
		Env      string `mapstructure:"env"`
		Timezone string `mapstructure:"timezone"`
	} `mapstructure:"app"`
	Server struct {
		Port        string   `mapstructure:"port"`
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"server"`
	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"` // "memory", a SQLite file path, or a postgres DSN
	} `mapstructure:"database"`
	Auth  AuthConfig `mapstructure:"auth"`
	LLM   LLMConfig  `mapstructure:"llm"`
	Coach struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"coach"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig is the global configuration instance, set by LoadConfig.
var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.timezone", "Local")
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "data/stackedwins.db")
	v.SetDefault("auth.mode", AuthModeJWT)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.firebase_project_id", "")
	v.SetDefault("auth.jwks_url", "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4-turbo-preview")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("coach.enabled", false)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", 15*time.Minute)
	v.SetDefault("rate_limit.redis_addr", "")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.metrics_refresh_interval", time.Hour)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "stackedwins")
}

// LoadConfig reads .env, config.yaml and the environment, in increasing order
// of precedence. Environment keys use underscores, e.g. AUTH_JWT_SECRET.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: [Config] Failed to read .env file: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AddConfigPath("../config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Slices are not split from env by AutomaticEnv.
	if raw := os.Getenv("SERVER_CORS_ORIGINS"); raw != "" {
		cfg.Server.CORSOrigins = splitList(raw)
	}
	cfg.Auth.Mode = strings.ToLower(strings.TrimSpace(cfg.Auth.Mode))
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	AppConfig = cfg
	return &cfg, nil
}

// Validate fails fast on settings the server cannot run without.
func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case AuthModeJWT:
		if strings.TrimSpace(c.Auth.JWTSecret) == "" {
			return errors.New("auth.jwt_secret is required when auth.mode is jwt")
		}
	case AuthModeFirebase:
		if strings.TrimSpace(c.Auth.FirebaseProjectID) == "" {
			return errors.New("auth.firebase_project_id is required when auth.mode is firebase")
		}
	default:
		return fmt.Errorf("unsupported auth.mode %q", c.Auth.Mode)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate_limit.requests and rate_limit.window must be positive")
	}
	return nil
}

// IsProduction reports whether error details should be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// Location resolves app.timezone; unknown names fall back to time.Local.
func (c *Config) Location() *time.Location {
	name := strings.TrimSpace(c.App.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("WARN: [Config] Unknown timezone %q, using local time: %v", name, err)
		return time.Local
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
