package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Grpc      GrpcConfig      `mapstructure:"grpc"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	// TrustedProxies lists the peers (IPs or CIDRs) whose X-Forwarded-For
	// and X-Real-IP headers are believed. Empty trusts nobody.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// GrpcConfig controls the gRPC health endpoint. An empty port disables it.
type GrpcConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	// DSN takes precedence over the individual connection fields.
	DSN             string `mapstructure:"dsn"`
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	LoginWindow   time.Duration `mapstructure:"login_window"`
	LoginMaxTries int           `mapstructure:"login_max_attempts"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

// EventsConfig selects where record lifecycle events go: "none", "nats" or "kafka".
type EventsConfig struct {
	Driver string      `mapstructure:"driver"`
	NATS   NATSConfig  `mapstructure:"nats"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type DashboardConfig struct {
	Port   string `mapstructure:"port"`
	APIURL string `mapstructure:"api_url"`
}

var (
	ErrMissingJWTSecret = errors.New("auth.jwt_secret (JWT_SECRET) is required")
	ErrMissingDatabase  = errors.New("database.dsn (DATABASE_URL) or database.host is required")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("server.port", "3001")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("grpc.port", "")

	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "student_records")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.login_window", "15m")
	v.SetDefault("auth.login_max_attempts", 5)

	v.SetDefault("events.driver", "none")
	v.SetDefault("events.nats.url", "nats://localhost:4222")
	v.SetDefault("events.nats.subject", "student-records.events")
	v.SetDefault("events.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("events.kafka.topic", "student-records.events")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")

	v.SetDefault("dashboard.port", "3000")
	v.SetDefault("dashboard.api_url", "http://localhost:3001/api")
}

// Load reads configs/config.<ENV>.yaml when present and applies
// environment overrides on top of it.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDashboard is Load without the API-server requirements.
func LoadDashboard() (*Config, error) {
	return load()
}

func load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")      // Kubernetes mount
	v.AddConfigPath("./configs")     // repo root
	v.AddConfigPath("../configs")    // IDE from cmd/
	v.AddConfigPath("../../configs") // IDE from cmd/<binary>

	// Config file is optional - continue with ENV variables
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("env", "ENV")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.trusted_proxies", "TRUSTED_PROXIES")
	v.BindEnv("grpc.port", "GRPC_PORT")
	v.BindEnv("database.dsn", "DATABASE_URL")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("dashboard.port", "DASHBOARD_PORT")
	v.BindEnv("dashboard.api_url", "DASHBOARD_API_URL")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks the secrets the API server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.Database.DSN == "" && c.Database.Host == "" {
		return ErrMissingDatabase
	}
	return nil
}
