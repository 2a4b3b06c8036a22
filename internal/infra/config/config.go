package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App        AppSettings        `mapstructure:"app"`
	Postgres   PostgresSettings   `mapstructure:"postgres"`
	Redis      RedisSettings      `mapstructure:"redis"`
	Kafka      KafkaSettings      `mapstructure:"kafka"`
	Attendance AttendanceSettings `mapstructure:"attendance"`
	Identity   IdentitySettings   `mapstructure:"identity"`
	RateLimit  RateLimitSettings  `mapstructure:"rate_limit"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	DB               int    `mapstructure:"db"`
	Password         string `mapstructure:"password"`
	TLSEnabled       bool   `mapstructure:"tls_enabled"`
	CredentialPrefix string `mapstructure:"credential_prefix"`
}

// KafkaSettings configures the Kafka producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// AttendanceSettings configures credential rotation and the anti-fraud heuristic
type AttendanceSettings struct {
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
	MinRefreshInterval time.Duration `mapstructure:"min_refresh_interval"`
	GraceBuffer        time.Duration `mapstructure:"grace_buffer"`
	CodeLength         int           `mapstructure:"code_length"`
	AuditTrailCapacity int           `mapstructure:"audit_trail_capacity"`
	DeviceReusePolicy  string        `mapstructure:"device_reuse_policy"`
	CheckinLinkBase    string        `mapstructure:"checkin_link_base"`
}

// IdentitySettings configures validation of tokens minted by the identity service
type IdentitySettings struct {
	TokenSecret string `mapstructure:"token_secret"`
	Issuer      string `mapstructure:"issuer"`
}

// RateLimitSettings configures the sliding window on the submission endpoint
type RateLimitSettings struct {
	WindowDuration    time.Duration `mapstructure:"window_duration"`
	SubmitMaxAttempts int           `mapstructure:"submit_max_attempts"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("ATTEND")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.credential_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"attendance.refresh_interval",
		"attendance.min_refresh_interval",
		"attendance.grace_buffer",
		"attendance.code_length",
		"attendance.audit_trail_capacity",
		"attendance.device_reuse_policy",
		"attendance.checkin_link_base",
		"identity.token_secret",
		"identity.issuer",
		"rate_limit.window_duration",
		"rate_limit.submit_max_attempts",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "attendance-core")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "attendance")
	v.SetDefault("postgres.password", "attendance_password")
	v.SetDefault("postgres.database", "attendance")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.credential_prefix", "attendance:current_credential")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "attendance")
	v.SetDefault("kafka.async", true)

	v.SetDefault("attendance.refresh_interval", "10s")
	v.SetDefault("attendance.min_refresh_interval", "5s")
	v.SetDefault("attendance.grace_buffer", "5s")
	v.SetDefault("attendance.code_length", 6)
	v.SetDefault("attendance.audit_trail_capacity", 5)
	v.SetDefault("attendance.device_reuse_policy", "flag")
	v.SetDefault("attendance.checkin_link_base", "https://attendance.example.com")

	v.SetDefault("identity.token_secret", "")
	v.SetDefault("identity.issuer", "identity-service")

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.submit_max_attempts", 10)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "ATTEND_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
